package kit

import "go.uber.org/zap"

// NewLogger builds the production logger shared by every handler. The
// service name rides along as an initial field.
func NewLogger(service string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.InitialFields = map[string]any{"service": service}
	l, _ := cfg.Build()
	return l
}
