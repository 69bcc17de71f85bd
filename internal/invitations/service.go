// Package invitations handles member onboarding via one-time invite tokens.
package invitations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/internal/audit"
	"github.com/phantomos-app/phantomos-backend/internal/tenant"
	"github.com/phantomos-app/phantomos-backend/pkg/auth"
	"github.com/phantomos-app/phantomos-backend/pkg/config"
	"github.com/phantomos-app/phantomos-backend/pkg/db"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
	"github.com/phantomos-app/phantomos-backend/pkg/security"
	"gorm.io/gorm"
)

// Service manages the invitation lifecycle.
type Service interface {
	Create(ctx context.Context, identity tenant.Identity, input CreateInput) (*CreateResult, error)
	Redeem(ctx context.Context, input RedeemInput) (*RedeemResult, error)
}

type service struct {
	repo      Repository
	dbClient  *db.Client
	auditor   audit.Service
	inviteCfg config.InviteConfig
	jwtCfg    config.JWTConfig
}

// NewService constructs the invitation service.
func NewService(repo Repository, dbClient *db.Client, auditor audit.Service, inviteCfg config.InviteConfig, jwtCfg config.JWTConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invitation repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit service required")
	}
	return &service{repo: repo, dbClient: dbClient, auditor: auditor, inviteCfg: inviteCfg, jwtCfg: jwtCfg}, nil
}

// Create issues an invitation. Only the Argon2id hash of the token is stored;
// the plaintext appears once in the response and is gone.
func (s *service) Create(ctx context.Context, identity tenant.Identity, input CreateInput) (*CreateResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if input.Role == enums.MemberRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ownership is not grantable by invite")
	}
	actorID := identity.ActorID()
	if actorID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "demo sessions cannot invite members")
	}

	taken, err := s.repo.UserExistsByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already belongs to a member")
	}

	token, err := security.GenerateInviteToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate token")
	}
	hash, err := security.HashInviteToken(token, s.inviteCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash token")
	}

	invitation := &models.Invitation{
		PublisherID: identity.PublisherID,
		Email:       email,
		Role:        input.Role,
		TokenHash:   hash,
		InvitedBy:   *actorID,
		ExpiresAt:   time.Now().UTC().Add(s.inviteCfg.TokenTTL),
	}
	if err := s.repo.Create(ctx, invitation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create invitation")
	}

	_ = s.auditor.Record(ctx, identity, audit.RecordInput{
		Action:       enums.AuditActionInviteCreate,
		ResourceType: "invitation",
		ResourceID:   &invitation.ID,
		ResourceName: &email,
	})
	return &CreateResult{
		InvitationID: invitation.ID,
		Email:        email,
		Role:         invitation.Role,
		Token:        token,
		ExpiresAt:    invitation.ExpiresAt,
	}, nil
}

// Redeem validates the token and creates the membership. The invitation is
// single-use; redemption stamps it inside the same transaction that creates
// the user.
func (s *service) Redeem(ctx context.Context, input RedeemInput) (*RedeemResult, error) {
	if input.InvitationID == uuid.Nil || strings.TrimSpace(input.Token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invitation id and token are required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	var user *models.User
	var invitation *models.Invitation
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		invitation, err = repo.FindByID(ctx, input.InvitationID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invitation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load invitation")
		}
		if invitation.RedeemedAt != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "invitation already redeemed")
		}
		if time.Now().UTC().After(invitation.ExpiresAt) {
			return pkgerrors.New(pkgerrors.CodeValidation, "invitation expired")
		}

		valid, err := security.VerifyInviteToken(input.Token, invitation.TokenHash)
		if err != nil || !valid {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid invitation token")
		}

		user = &models.User{
			PublisherID: invitation.PublisherID,
			Email:       invitation.Email,
			Name:        name,
			Role:        invitation.Role,
		}
		if err := repo.CreateUser(ctx, user); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already belongs to a member")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		now := time.Now().UTC()
		invitation.RedeemedAt = &now
		if err := repo.Save(ctx, invitation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stamp invitation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	accessToken, err := auth.MintAccessToken(s.jwtCfg, time.Now().UTC(), auth.AccessTokenPayload{
		UserID:      user.ID,
		PublisherID: user.PublisherID,
		Role:        user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	identity := tenant.User(user.ID, user.PublisherID, user.Role)
	_ = s.auditor.Record(ctx, identity, audit.RecordInput{
		Action:       enums.AuditActionInviteRedeem,
		ResourceType: "invitation",
		ResourceID:   &invitation.ID,
		ResourceName: &user.Email,
	})
	return &RedeemResult{
		UserID:      user.ID,
		PublisherID: user.PublisherID,
		Role:        user.Role,
		AccessToken: accessToken,
	}, nil
}
