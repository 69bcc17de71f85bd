package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/internal/tenant"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	"github.com/phantomos-app/phantomos-backend/pkg/logger"
	"github.com/phantomos-app/phantomos-backend/pkg/pagination"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type fakeRepository struct {
	createFn func(ctx context.Context, entry *models.AuditLog) error
	listFn   func(ctx context.Context, publisherID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.AuditLog, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if f.createFn != nil {
		return f.createFn(ctx, entry)
	}
	return nil
}

func (f *fakeRepository) List(ctx context.Context, publisherID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.AuditLog, error) {
	if f.listFn != nil {
		return f.listFn(ctx, publisherID, filter, params)
	}
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel})
}

func TestService_RecordAttributesActor(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	userID := uuid.New()
	publisherID := uuid.New()
	identity := tenant.User(userID, publisherID, enums.MemberRoleAdmin)

	var created *models.AuditLog
	repo.createFn = func(ctx context.Context, entry *models.AuditLog) error {
		created = entry
		return nil
	}

	resourceID := uuid.New()
	input := RecordInput{
		Action:       enums.AuditActionMappingConfirm,
		ResourceType: "product",
		ResourceID:   &resourceID,
	}
	if err := svc.Record(context.Background(), identity, input); err != nil {
		t.Fatalf("Record error: %v", err)
	}

	if created == nil {
		t.Fatal("expected entry to be created")
	}
	if created.PublisherID != publisherID {
		t.Fatalf("publisher mismatch: %s", created.PublisherID)
	}
	if created.ActorID == nil || *created.ActorID != userID {
		t.Fatal("actor not attributed")
	}
	if created.Status != enums.AuditStatusSuccess {
		t.Fatalf("expected default success status, got %s", created.Status)
	}
}

func TestService_RecordDemoHasNoActor(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo, testLogger())

	var created *models.AuditLog
	repo.createFn = func(ctx context.Context, entry *models.AuditLog) error {
		created = entry
		return nil
	}

	identity := tenant.Demo(uuid.New())
	input := RecordInput{Action: enums.AuditActionImportCSV, ResourceType: "product"}
	if err := svc.Record(context.Background(), identity, input); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if created.ActorID != nil {
		t.Fatal("demo entries must not carry an actor id")
	}
}

func TestService_RecordSwallowsRepoErrors(t *testing.T) {
	repo := &fakeRepository{
		createFn: func(ctx context.Context, entry *models.AuditLog) error {
			return errors.New("db down")
		},
	}
	svc, _ := NewService(repo, testLogger())

	identity := tenant.User(uuid.New(), uuid.New(), enums.MemberRoleOwner)
	input := RecordInput{Action: enums.AuditActionAssetCreate, ResourceType: "ip_asset"}
	if err := svc.Record(context.Background(), identity, input); err != nil {
		t.Fatalf("audit failures must not propagate, got %v", err)
	}
}

func TestService_RecordRejectsInvalidAction(t *testing.T) {
	svc, _ := NewService(&fakeRepository{}, testLogger())
	identity := tenant.User(uuid.New(), uuid.New(), enums.MemberRoleOwner)

	if err := svc.Record(context.Background(), identity, RecordInput{Action: "nope", ResourceType: "x"}); err == nil {
		t.Fatal("expected invalid action error")
	}
}

func TestService_ListPaginates(t *testing.T) {
	publisherID := uuid.New()
	entries := make([]models.AuditLog, 0, pagination.DefaultLimit+1)
	for i := 0; i < pagination.DefaultLimit+1; i++ {
		entries = append(entries, models.AuditLog{ID: uuid.New(), PublisherID: publisherID})
	}

	repo := &fakeRepository{
		listFn: func(ctx context.Context, gotPublisher uuid.UUID, filter ListFilter, params pagination.Params) ([]models.AuditLog, error) {
			if gotPublisher != publisherID {
				t.Fatalf("publisher mismatch: %s", gotPublisher)
			}
			return entries, nil
		},
	}
	svc, _ := NewService(repo, testLogger())

	page, next, err := svc.List(context.Background(), publisherID, ListFilter{}, pagination.Params{})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(page) != pagination.DefaultLimit {
		t.Fatalf("expected %d entries, got %d", pagination.DefaultLimit, len(page))
	}
	if next == "" {
		t.Fatal("expected next cursor")
	}
}
