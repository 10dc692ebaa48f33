package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/halcyon-labs/emblem/internal/domain"
	"github.com/halcyon-labs/emblem/internal/repository"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	users     map[int64]*domain.User
	nextID    int64
	createErr error
	getErr    error
	updateErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[int64]*domain.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return domain.ErrUserAlreadyExists
		}
		if user.Email != nil && u.Email != nil && *u.Email == *user.Email {
			return domain.ErrUserAlreadyExists
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, exists := m.users[id]; exists {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username string, email *string) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
		if email != nil && u.Email != nil && *u.Email == *email {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id int64, patch domain.ProfilePatch) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	u, exists := m.users[id]
	if !exists {
		return domain.ErrUserNotFound
	}
	if patch.FullName != nil {
		u.FullName = patch.FullName
	}
	if patch.ProfileBio != nil {
		u.ProfileBio = patch.ProfileBio
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var items []*domain.User
	for _, u := range m.users {
		items = append(items, u)
	}
	return &repository.ListResult[domain.User]{
		Items:  items,
		Total:  int64(len(items)),
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

// MockBadgeRepository is a mock implementation of repository.BadgeRepository.
type MockBadgeRepository struct {
	badges    map[int64]*domain.Badge
	nextID    int64
	createErr error
	getErr    error
}

func NewMockBadgeRepository() *MockBadgeRepository {
	return &MockBadgeRepository{
		badges: make(map[int64]*domain.Badge),
		nextID: 1,
	}
}

func (m *MockBadgeRepository) Create(ctx context.Context, badge *domain.Badge) error {
	if m.createErr != nil {
		return m.createErr
	}
	badge.ID = m.nextID
	m.nextID++
	m.badges[badge.ID] = badge
	return nil
}

func (m *MockBadgeRepository) GetByID(ctx context.Context, id int64) (*domain.Badge, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if b, exists := m.badges[id]; exists {
		return b, nil
	}
	return nil, domain.ErrBadgeNotFound
}

func (m *MockBadgeRepository) List(ctx context.Context) ([]*domain.Badge, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var result []*domain.Badge
	for _, b := range m.badges {
		result = append(result, b)
	}
	return result, nil
}

func (m *MockBadgeRepository) UpdateIconURL(ctx context.Context, id int64, iconURL string) error {
	if b, exists := m.badges[id]; exists {
		b.IconURL = iconURL
		return nil
	}
	return domain.ErrBadgeNotFound
}

// MockAchievementRepository is a mock implementation of
// repository.AchievementRepository.
type MockAchievementRepository struct {
	achievements []*domain.Achievement
	badges       map[int64]*domain.Badge // shared badge details for joins
	nextID       int64
	createErr    error
}

func NewMockAchievementRepository(badges map[int64]*domain.Badge) *MockAchievementRepository {
	return &MockAchievementRepository{
		badges: badges,
		nextID: 1,
	}
}

func (m *MockAchievementRepository) Create(ctx context.Context, a *domain.Achievement) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.achievements {
		if existing.UserID == a.UserID && existing.BadgeID == a.BadgeID {
			return domain.ErrBadgeAlreadyAwarded
		}
	}
	a.ID = m.nextID
	m.nextID++
	m.achievements = append(m.achievements, a)
	return nil
}

func (m *MockAchievementRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.EarnedBadge, error) {
	var result []*domain.EarnedBadge
	for _, a := range m.achievements {
		if a.UserID != userID {
			continue
		}
		badge, exists := m.badges[a.BadgeID]
		if !exists {
			continue
		}
		result = append(result, &domain.EarnedBadge{
			Badge:      *badge,
			EarnedAt:   a.EarnedAt,
			ShareToken: a.ShareToken,
		})
	}
	return result, nil
}

func (m *MockAchievementRepository) GetByShareToken(ctx context.Context, token uuid.UUID) (*domain.EarnedBadge, error) {
	for _, a := range m.achievements {
		if a.ShareToken != token {
			continue
		}
		badge, exists := m.badges[a.BadgeID]
		if !exists {
			continue
		}
		return &domain.EarnedBadge{
			Badge:      *badge,
			EarnedAt:   a.EarnedAt,
			ShareToken: a.ShareToken,
		}, nil
	}
	return nil, domain.ErrAchievementNotFound
}

// MockCertificationRepository is a mock implementation of
// repository.CertificationRepository.
type MockCertificationRepository struct {
	certs    map[int64]*domain.Certification
	progress map[int64]map[int64]*domain.CertProgress // userID -> certID
	nextID   int64
}

func NewMockCertificationRepository() *MockCertificationRepository {
	return &MockCertificationRepository{
		certs:    make(map[int64]*domain.Certification),
		progress: make(map[int64]map[int64]*domain.CertProgress),
		nextID:   1,
	}
}

func (m *MockCertificationRepository) Create(ctx context.Context, cert *domain.Certification) error {
	cert.ID = m.nextID
	m.nextID++
	m.certs[cert.ID] = cert
	return nil
}

func (m *MockCertificationRepository) GetByID(ctx context.Context, id int64) (*domain.Certification, error) {
	if c, exists := m.certs[id]; exists {
		return c, nil
	}
	return nil, domain.ErrCertificationNotFound
}

func (m *MockCertificationRepository) List(ctx context.Context) ([]*domain.Certification, error) {
	var result []*domain.Certification
	for _, c := range m.certs {
		result = append(result, c)
	}
	return result, nil
}

func (m *MockCertificationRepository) ListProgressByUser(ctx context.Context, userID int64) ([]*domain.CertProgress, error) {
	var result []*domain.CertProgress
	for _, p := range m.progress[userID] {
		result = append(result, p)
	}
	return result, nil
}

func (m *MockCertificationRepository) UpsertProgress(ctx context.Context, userID, certID int64, status domain.CertStatus) error {
	cert, exists := m.certs[certID]
	if !exists {
		return domain.ErrCertificationNotFound
	}
	if m.progress[userID] == nil {
		m.progress[userID] = make(map[int64]*domain.CertProgress)
	}
	p := &domain.CertProgress{Certification: *cert, Status: status}
	if status == domain.CertCompleted {
		now := time.Now().UTC()
		p.CompletionDate = &now
	}
	m.progress[userID][certID] = p
	return nil
}

// MockCache is an in-memory mock implementation of repository.Cache.
type MockCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	setErr  error
}

func NewMockCache() *MockCache {
	return &MockCache{entries: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if data, exists := m.entries[key]; exists {
		return data, nil
	}
	return nil, repository.ErrCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MockCache) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.entries[key]
	return exists, nil
}

// MockIconStore is a mock implementation of storage.IconStore.
type MockIconStore struct {
	stored map[string]string // name -> content type
	putErr error
}

func NewMockIconStore() *MockIconStore {
	return &MockIconStore{stored: make(map[string]string)}
}

func (m *MockIconStore) Put(ctx context.Context, name, contentType string, content io.Reader) (string, error) {
	if m.putErr != nil {
		return "", m.putErr
	}
	m.stored[name] = contentType
	return "/icons/" + name, nil
}

func (m *MockIconStore) Delete(ctx context.Context, name string) error {
	delete(m.stored, name)
	return nil
}
