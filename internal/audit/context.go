package audit

import "context"

type clientKey struct{}

type client struct {
	ip        string
	userAgent string
}

// WithClient guarda IP y User-Agent del request; Record los usa si el evento no los trae.
func WithClient(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, clientKey{}, client{ip: ip, userAgent: userAgent})
}

func clientFrom(ctx context.Context) (client, bool) {
	c, ok := ctx.Value(clientKey{}).(client)
	return c, ok
}
