package auth

import (
	"context"

	"github.com/dukerupert/kidscoin/internal/model"
)

type contextKey struct{}

// Actor is who is acting on a request: the signed-in user plus the bearer
// token the gateway presents for them.
type Actor struct {
	UserID   string
	FamilyID string
	Role     model.Role
	Name     string
	Token    string
}

func ActorFor(u model.User, token string) Actor {
	return Actor{
		UserID:   u.ID,
		FamilyID: u.FamilyID,
		Role:     u.Role,
		Name:     u.FullName,
		Token:    token,
	}
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(contextKey{}).(Actor)
	return a, ok
}

func Token(ctx context.Context) string {
	a, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return a.Token
}
