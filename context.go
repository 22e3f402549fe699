package credkit

import "context"

type contextKey string

const clientIPKey contextKey = "credkit_client_ip"

// WithClientIP annotates the context with the caller's IP address. Audit
// events emitted under this context carry the address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok {
		return ip
	}
	return ""
}
