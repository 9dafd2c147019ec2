// Package appctx carries application-level values through command contexts.
package appctx

import (
	"context"

	"github.com/pingrep/pingrep/pkg/config"
)

type ctxKey int

const configKey ctxKey = iota

// WithConfig stores the resolved configuration on the context.
func WithConfig(ctx context.Context, cfg config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// ConfigFrom retrieves the resolved configuration from the context.
func ConfigFrom(ctx context.Context) (config.Config, bool) {
	cfg, ok := ctx.Value(configKey).(config.Config)
	return cfg, ok
}
