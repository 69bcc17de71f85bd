package controllers

import (
	"context"

	"github.com/phantomos-app/phantomos-backend/internal/tenant"
	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
)

// identityFrom pulls the resolved caller identity seeded by the auth
// middleware. Handlers behind the auth gate always find one.
func identityFrom(ctx context.Context) (tenant.Identity, error) {
	identity, ok := tenant.FromContext(ctx)
	if !ok {
		return tenant.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return identity, nil
}
