// Package requestctx carries the per-request state (signed-in user, token,
// locale) through context.Context.
package requestctx

import (
	"context"

	"github.com/google/uuid"

	"praytogether-backend/models"
)

type requestDataKey struct{}

// RequestData is the request-scoped state attached by middleware
type RequestData struct {
	TokenString string
	UserID      uuid.UUID
	Locale      models.Locale
}

// Authenticated reports whether a user is signed in for this request
func (rd *RequestData) Authenticated() bool {
	return rd != nil && rd.UserID != uuid.Nil
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

// Get returns the request data, creating an empty value when none is attached
func Get(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok && rd != nil {
		return rd
	}
	return &RequestData{Locale: models.DefaultLocale}
}

// Ensure returns ctx with request data attached, reusing an existing value
func Ensure(ctx context.Context) (context.Context, *RequestData) {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok && rd != nil {
		return ctx, rd
	}
	rd := &RequestData{Locale: models.DefaultLocale}
	return WithRequestData(ctx, rd), rd
}

func UserID(ctx context.Context) uuid.UUID {
	return Get(ctx).UserID
}

func Locale(ctx context.Context) models.Locale {
	l := Get(ctx).Locale
	if l == "" {
		return models.DefaultLocale
	}
	return l
}
