package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// ToContext inyecta un logger en el contexto.
// Usado por el middleware del demo server para propagar request_id.
func ToContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From extrae el logger del contexto.
// Si no hay logger en el contexto, retorna el singleton.
func From(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return L()
	}
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return L()
}

// FromWithFields extrae el logger del contexto y agrega campos adicionales.
func FromWithFields(ctx context.Context, fields ...zap.Field) *zap.Logger {
	return From(ctx).With(fields...)
}

// ForFlow retorna el logger estándar de una operación del flujo OAuth.
func ForFlow(ctx context.Context, provider, op string) *zap.Logger {
	return From(ctx).With(
		Layer("engine"),
		Component("oauth.flow"),
		Provider(provider),
		Op(op),
	)
}

// ForAdapter retorna el logger de un adapter de provider.
func ForAdapter(ctx context.Context, provider, op string) *zap.Logger {
	return From(ctx).With(
		Layer("adapter"),
		Provider(provider),
		Op(op),
	)
}
