package actorctx

import (
	"context"

	"github.com/geocoder89/reviewhub/internal/domain/user"
)

type ctxKey struct{}

func WithIdentity(ctx context.Context, id user.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IdentityFrom(ctx context.Context) (user.Identity, bool) {
	v, ok := ctx.Value(ctxKey{}).(user.Identity)

	return v, ok && v.UserID != ""
}
