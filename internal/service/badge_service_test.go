package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/halcyon-labs/emblem/internal/domain"
)

func newBadgeService(badgeRepo *MockBadgeRepository, achRepo *MockAchievementRepository, cache *MockCache) *BadgeService {
	return NewBadgeService(badgeRepo, achRepo, cache, NewMockIconStore(), zerolog.Nop())
}

func TestBadgeService_Create(t *testing.T) {
	badgeRepo := NewMockBadgeRepository()
	achRepo := NewMockAchievementRepository(badgeRepo.badges)
	svc := newBadgeService(badgeRepo, achRepo, NewMockCache())

	badge, err := svc.Create(context.Background(), CreateBadgeInput{
		Name:        "Go Novice",
		Description: "Completed the Go basics track",
		Criteria:    "Finish all basics modules",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if badge.ID == 0 {
		t.Error("expected non-zero badge ID")
	}

	if _, err := svc.Create(context.Background(), CreateBadgeInput{}); !errors.Is(err, domain.ErrMissingField) {
		t.Errorf("expected ErrMissingField for empty name, got %v", err)
	}
}

func TestBadgeService_List_UsesCache(t *testing.T) {
	badgeRepo := NewMockBadgeRepository()
	achRepo := NewMockAchievementRepository(badgeRepo.badges)
	cache := NewMockCache()
	svc := newBadgeService(badgeRepo, achRepo, cache)

	if _, err := svc.Create(context.Background(), CreateBadgeInput{Name: "Go Novice"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("first list: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 badge, got %d", len(first))
	}

	// Second read must come from the cache, not the store.
	badgeRepo.getErr = errors.New("store down")
	second, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("cached list: %v", err)
	}
	if len(second) != 1 || second[0].Name != "Go Novice" {
		t.Errorf("unexpected cached result: %+v", second)
	}
}

func TestBadgeService_Create_InvalidatesListCache(t *testing.T) {
	badgeRepo := NewMockBadgeRepository()
	achRepo := NewMockAchievementRepository(badgeRepo.badges)
	cache := NewMockCache()
	svc := newBadgeService(badgeRepo, achRepo, cache)

	if _, err := svc.Create(context.Background(), CreateBadgeInput{Name: "First"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateBadgeInput{Name: "Second"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	badges, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list after create: %v", err)
	}
	if len(badges) != 2 {
		t.Errorf("expected 2 badges after invalidation, got %d", len(badges))
	}
}

func TestBadgeService_Get(t *testing.T) {
	badgeRepo := NewMockBadgeRepository()
	achRepo := NewMockAchievementRepository(badgeRepo.badges)
	svc := newBadgeService(badgeRepo, achRepo, NewMockCache())

	created, err := svc.Create(context.Background(), CreateBadgeInput{Name: "Go Novice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	badge, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if badge.Name != "Go Novice" {
		t.Errorf("expected Go Novice, got %s", badge.Name)
	}

	if _, err := svc.Get(context.Background(), 99); !errors.Is(err, domain.ErrBadgeNotFound) {
		t.Errorf("expected ErrBadgeNotFound, got %v", err)
	}
}

func TestBadgeService_SetIcon(t *testing.T) {
	badgeRepo := NewMockBadgeRepository()
	achRepo := NewMockAchievementRepository(badgeRepo.badges)
	svc := newBadgeService(badgeRepo, achRepo, NewMockCache())

	created, err := svc.Create(context.Background(), CreateBadgeInput{Name: "Go Novice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	iconURL, err := svc.SetIcon(context.Background(), created.ID, "novice.png", "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iconURL == "" {
		t.Error("expected non-empty icon URL")
	}
	if badgeRepo.badges[created.ID].IconURL != iconURL {
		t.Errorf("icon URL not recorded on badge, got %q", badgeRepo.badges[created.ID].IconURL)
	}

	if _, err := svc.SetIcon(context.Background(), 99, "x.png", "image/png", strings.NewReader("x")); !errors.Is(err, domain.ErrBadgeNotFound) {
		t.Errorf("expected ErrBadgeNotFound, got %v", err)
	}
}

func TestBadgeService_Award(t *testing.T) {
	badgeRepo := NewMockBadgeRepository()
	achRepo := NewMockAchievementRepository(badgeRepo.badges)
	svc := newBadgeService(badgeRepo, achRepo, NewMockCache())

	created, err := svc.Create(context.Background(), CreateBadgeInput{Name: "Go Novice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	achievement, err := svc.Award(context.Background(), 1, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if achievement.ShareToken == uuid.Nil {
		t.Error("expected a share token to be minted")
	}
	if achievement.EarnedAt.IsZero() {
		t.Error("expected earned timestamp to be set")
	}

	if _, err := svc.Award(context.Background(), 1, created.ID); !errors.Is(err, domain.ErrBadgeAlreadyAwarded) {
		t.Errorf("expected ErrBadgeAlreadyAwarded on repeat award, got %v", err)
	}
	_, err = svc.Award(context.Background(), 1, 99)
	if !errors.Is(err, domain.ErrBadgeNotFound) {
		t.Errorf("expected ErrBadgeNotFound for unknown badge, got %v", err)
	}

	// The error carries the badge ID so operators can tell which award
	// failed.
	var derr *domain.DomainError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if derr.Resource != "99" {
		t.Errorf("expected resource 99, got %q", derr.Resource)
	}
}

func TestBadgeService_GetShared(t *testing.T) {
	badgeRepo := NewMockBadgeRepository()
	achRepo := NewMockAchievementRepository(badgeRepo.badges)
	svc := newBadgeService(badgeRepo, achRepo, NewMockCache())

	created, err := svc.Create(context.Background(), CreateBadgeInput{Name: "Go Novice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	achievement, err := svc.Award(context.Background(), 1, created.ID)
	if err != nil {
		t.Fatalf("award: %v", err)
	}

	earned, err := svc.GetShared(context.Background(), achievement.ShareToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if earned.Name != "Go Novice" {
		t.Errorf("expected badge details on shared view, got %+v", earned)
	}

	if _, err := svc.GetShared(context.Background(), uuid.New()); !errors.Is(err, domain.ErrAchievementNotFound) {
		t.Errorf("expected ErrAchievementNotFound, got %v", err)
	}
}

func TestCertificationService_SetProgress(t *testing.T) {
	certRepo := NewMockCertificationRepository()
	userRepo := NewMockUserRepository()
	userRepo.users[1] = &domain.User{ID: 1, Username: "alice"}
	svc := NewCertificationService(certRepo, userRepo, zerolog.Nop())

	cert, err := svc.Create(context.Background(), CreateCertificationInput{Name: "Gopher Cert", RequiredBadges: 3})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.SetProgress(context.Background(), 1, cert.ID, domain.CertInProgress); err != nil {
		t.Fatalf("set in_progress: %v", err)
	}
	progress, err := svc.ListProgressByUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("list progress: %v", err)
	}
	if len(progress) != 1 || progress[0].Status != domain.CertInProgress {
		t.Fatalf("unexpected progress: %+v", progress)
	}
	if progress[0].CompletionDate != nil {
		t.Error("in_progress must not carry a completion date")
	}

	if err := svc.SetProgress(context.Background(), 1, cert.ID, domain.CertCompleted); err != nil {
		t.Fatalf("set completed: %v", err)
	}
	progress, err = svc.ListProgressByUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("list progress: %v", err)
	}
	if len(progress) != 1 {
		t.Fatalf("upsert must not duplicate rows, got %d", len(progress))
	}
	if progress[0].Status != domain.CertCompleted || progress[0].CompletionDate == nil {
		t.Errorf("expected completed with date, got %+v", progress[0])
	}

	if err := svc.SetProgress(context.Background(), 1, cert.ID, domain.CertStatus("abandoned")); !errors.Is(err, domain.ErrInvalidCertStatus) {
		t.Errorf("expected ErrInvalidCertStatus, got %v", err)
	}
	if err := svc.SetProgress(context.Background(), 1, 99, domain.CertInProgress); !errors.Is(err, domain.ErrCertificationNotFound) {
		t.Errorf("expected ErrCertificationNotFound, got %v", err)
	}
	if err := svc.SetProgress(context.Background(), 42, cert.ID, domain.CertInProgress); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestProfileService_Get(t *testing.T) {
	userRepo := NewMockUserRepository()
	badgeRepo := NewMockBadgeRepository()
	achRepo := NewMockAchievementRepository(badgeRepo.badges)
	certRepo := NewMockCertificationRepository()

	userRepo.users[1] = &domain.User{ID: 1, Username: "alice", FullName: strPtr("Alice Liddell")}
	badgeRepo.badges[1] = &domain.Badge{ID: 1, Name: "Go Novice"}
	achRepo.achievements = append(achRepo.achievements, &domain.Achievement{
		ID: 1, UserID: 1, BadgeID: 1, EarnedAt: time.Now().UTC(), ShareToken: uuid.New(),
	})
	certRepo.certs[1] = &domain.Certification{ID: 1, Name: "Gopher Cert"}
	if err := certRepo.UpsertProgress(context.Background(), 1, 1, domain.CertInProgress); err != nil {
		t.Fatalf("seed progress: %v", err)
	}

	svc := NewProfileService(userRepo, achRepo, certRepo, NewMockCache(), zerolog.Nop())

	profile, err := svc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.User.Username != "alice" {
		t.Errorf("expected alice, got %s", profile.User.Username)
	}
	if len(profile.Badges) != 1 || profile.Badges[0].Name != "Go Novice" {
		t.Errorf("unexpected badges: %+v", profile.Badges)
	}
	if len(profile.Certifications) != 1 || profile.Certifications[0].Name != "Gopher Cert" {
		t.Errorf("unexpected certifications: %+v", profile.Certifications)
	}

	if _, err := svc.Get(context.Background(), 99); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
