package tenant

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
)

func TestUserIdentityWriteAccess(t *testing.T) {
	userID := uuid.New()
	publisherID := uuid.New()

	owner := User(userID, publisherID, enums.MemberRoleOwner)
	if !owner.CanWrite() {
		t.Fatal("owner should have write access")
	}
	if owner.IsDemo() {
		t.Fatal("user identity reported as demo")
	}
	if actor := owner.ActorID(); actor == nil || *actor != userID {
		t.Fatal("actor id not preserved")
	}

	viewer := User(userID, publisherID, enums.MemberRoleViewer)
	if viewer.CanWrite() {
		t.Fatal("viewer should not have write access")
	}
}

func TestDemoIdentity(t *testing.T) {
	publisherID := uuid.New()
	demo := Demo(publisherID)

	if !demo.IsDemo() {
		t.Fatal("demo identity not flagged")
	}
	if !demo.CanWrite() {
		t.Fatal("demo identity should write inside its sandbox")
	}
	if demo.ActorID() != nil {
		t.Fatal("demo identity must not attribute an actor")
	}
	if demo.PublisherID != publisherID {
		t.Fatal("publisher id not preserved")
	}
}

func TestContextRoundTrip(t *testing.T) {
	id := User(uuid.New(), uuid.New(), enums.MemberRoleAdmin)
	ctx := WithIdentity(context.Background(), id)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("identity missing from context")
	}
	if got != id {
		t.Fatalf("identity mismatch: %+v vs %+v", got, id)
	}

	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("expected no identity in fresh context")
	}
}
