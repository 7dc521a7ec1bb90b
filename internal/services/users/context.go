package users

import (
	"context"

	"github.com/praneeth552/Jobfinder/internal/domain/model"
)

type userContextKey string

const userKey userContextKey = "current_user"

func WithUser(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(userKey).(model.User)
	return user, ok
}
