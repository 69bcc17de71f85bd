// Package tenant defines the caller identity every request resolves to
// exactly once, before any handler runs.
package tenant

import (
	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
)

// Kind discriminates the two ways a request can act on a publisher.
type Kind string

const (
	// KindUser is an authenticated member of a publisher.
	KindUser Kind = "user"
	// KindDemo is the anonymous trial identity, scoped to the demo publisher.
	KindDemo Kind = "demo"
)

// Identity is the resolved caller for one request. There is no partially
// resolved state: either the request carries a full identity or it was
// rejected during resolution.
type Identity struct {
	Kind        Kind
	UserID      uuid.UUID // zero for demo
	PublisherID uuid.UUID
	Role        enums.MemberRole // viewer-equivalent write grant for demo
}

// User builds an authenticated identity from verified claims.
func User(userID, publisherID uuid.UUID, role enums.MemberRole) Identity {
	return Identity{Kind: KindUser, UserID: userID, PublisherID: publisherID, Role: role}
}

// Demo builds the trial identity for the configured demo publisher.
func Demo(publisherID uuid.UUID) Identity {
	return Identity{Kind: KindDemo, PublisherID: publisherID}
}

// IsDemo reports whether the caller is the anonymous trial identity.
func (id Identity) IsDemo() bool {
	return id.Kind == KindDemo
}

// CanWrite reports whether the caller may mutate publisher data. Demo
// sessions get full write access inside their sandboxed publisher.
func (id Identity) CanWrite() bool {
	if id.Kind == KindDemo {
		return true
	}
	return id.Role.CanWrite()
}

// ActorID returns the user id for audit attribution, nil for demo.
func (id Identity) ActorID() *uuid.UUID {
	if id.Kind != KindUser || id.UserID == uuid.Nil {
		return nil
	}
	uid := id.UserID
	return &uid
}
