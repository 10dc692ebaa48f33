package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/halcyon-labs/emblem/internal/domain"
	"github.com/halcyon-labs/emblem/internal/repository"
)

// certificationRepository implements repository.CertificationRepository for SQLite.
type certificationRepository struct {
	db *DB
}

// NewCertificationRepository creates a new SQLite certification repository.
func NewCertificationRepository(db *DB) repository.CertificationRepository {
	return &certificationRepository{db: db}
}

// Create creates a new certification.
func (r *certificationRepository) Create(ctx context.Context, cert *domain.Certification) error {
	query := `
		INSERT INTO certifications (name, description, required_badges, created_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		cert.Name,
		cert.Description,
		cert.RequiredBadges,
		cert.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create certification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	cert.ID = id

	return nil
}

// GetByID retrieves a certification by ID.
func (r *certificationRepository) GetByID(ctx context.Context, id int64) (*domain.Certification, error) {
	query := `
		SELECT id, name, description, required_badges, created_at
		FROM certifications
		WHERE id = ?
	`

	cert := &domain.Certification{}
	var createdAt string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&cert.ID,
		&cert.Name,
		&cert.Description,
		&cert.RequiredBadges,
		&createdAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrCertificationNotFound
		}
		return nil, fmt.Errorf("failed to get certification: %w", err)
	}

	if cert.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	return cert, nil
}

// List returns all certifications.
func (r *certificationRepository) List(ctx context.Context) ([]*domain.Certification, error) {
	query := `
		SELECT id, name, description, required_badges, created_at
		FROM certifications
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list certifications: %w", err)
	}
	defer rows.Close()

	var certs []*domain.Certification
	for rows.Next() {
		cert := &domain.Certification{}
		var createdAt string
		if err := rows.Scan(&cert.ID, &cert.Name, &cert.Description, &cert.RequiredBadges, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan certification: %w", err)
		}
		if cert.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating certifications: %w", err)
	}

	return certs, nil
}

// ListProgressByUser returns a user's progress rows joined with
// certification details.
func (r *certificationRepository) ListProgressByUser(ctx context.Context, userID int64) ([]*domain.CertProgress, error) {
	query := `
		SELECT c.id, c.name, c.description, c.required_badges, c.created_at,
		       ucp.status, ucp.completion_date
		FROM user_cert_progress ucp
		JOIN certifications c ON c.id = ucp.cert_id
		WHERE ucp.user_id = ?
		ORDER BY c.id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list certification progress: %w", err)
	}
	defer rows.Close()

	var progress []*domain.CertProgress
	for rows.Next() {
		cp := &domain.CertProgress{}
		var createdAt, status string
		var completionDate sql.NullString
		err := rows.Scan(
			&cp.ID,
			&cp.Name,
			&cp.Description,
			&cp.RequiredBadges,
			&createdAt,
			&status,
			&completionDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan certification progress: %w", err)
		}
		if cp.Certification.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
		}
		cp.Status = domain.CertStatus(status)
		if completionDate.Valid {
			t, err := parseTime("completion_date", completionDate.String)
			if err != nil {
				return nil, err
			}
			cp.CompletionDate = &t
		}
		progress = append(progress, cp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating certification progress: %w", err)
	}

	return progress, nil
}

// UpsertProgress creates or updates a user's progress for one
// certification in a single atomic statement.
func (r *certificationRepository) UpsertProgress(ctx context.Context, userID, certID int64, status domain.CertStatus) error {
	var completion sql.NullString
	if status == domain.CertCompleted {
		completion = sql.NullString{String: time.Now().UTC().Format(time.RFC3339), Valid: true}
	}

	query := `
		INSERT INTO user_cert_progress (user_id, cert_id, status, completion_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, cert_id) DO UPDATE
		SET status = excluded.status, completion_date = excluded.completion_date
	`

	_, err := r.db.ExecContext(ctx, query, userID, certID, string(status), completion)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCertificationNotFound
		}
		return fmt.Errorf("failed to upsert certification progress: %w", err)
	}

	return nil
}

// Ensure certificationRepository implements repository.CertificationRepository.
var _ repository.CertificationRepository = (*certificationRepository)(nil)
