package ucontext

import "context"

type UContext struct {
	OrganizationID string
}

type ucontextKey struct{}

func WithContext(ctx context.Context, uctx *UContext) context.Context {
	return context.WithValue(ctx, ucontextKey{}, uctx)
}

func GetOrganizationID(ctx context.Context) string {
	if uctx, ok := ctx.Value(ucontextKey{}).(*UContext); ok {
		return uctx.OrganizationID
	}
	return ""
}
