// Package audit records an append-only trail of every mutating operation.
package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/internal/tenant"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	"github.com/phantomos-app/phantomos-backend/pkg/logger"
	"github.com/phantomos-app/phantomos-backend/pkg/pagination"
	"github.com/phantomos-app/phantomos-backend/pkg/types"
)

// Service defines operations that record and list audit entries.
type Service interface {
	Record(ctx context.Context, identity tenant.Identity, input RecordInput) error
	List(ctx context.Context, publisherID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.AuditLog, string, error)
}

// RecordInput captures the immutable data an audit entry requires.
type RecordInput struct {
	Action       enums.AuditAction
	ResourceType string
	ResourceID   *uuid.UUID
	ResourceName *string
	Metadata     types.JSONMap
	Status       enums.AuditStatus
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires an audit service with the provided repository.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Record writes one entry. Failures are logged but never surfaced: audit
// writes must not fail the operation they describe.
func (s *service) Record(ctx context.Context, identity tenant.Identity, input RecordInput) error {
	if !input.Action.IsValid() {
		return fmt.Errorf("invalid audit action %q", input.Action)
	}
	if input.ResourceType == "" {
		return fmt.Errorf("resource type is required")
	}

	status := input.Status
	if status == "" {
		status = enums.AuditStatusSuccess
	}

	entry := &models.AuditLog{
		PublisherID:  identity.PublisherID,
		ActorID:      identity.ActorID(),
		Action:       input.Action,
		ResourceType: input.ResourceType,
		ResourceID:   input.ResourceID,
		ResourceName: input.ResourceName,
		Metadata:     input.Metadata,
		Status:       status,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logg.Error(ctx, "audit write failed", err)
		return nil
	}
	return nil
}

func (s *service) List(ctx context.Context, publisherID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.AuditLog, string, error) {
	if publisherID == uuid.Nil {
		return nil, "", fmt.Errorf("publisher id is required")
	}

	entries, err := s.repo.List(ctx, publisherID, filter, params)
	if err != nil {
		return nil, "", err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	nextCursor := ""
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return entries, nextCursor, nil
}
