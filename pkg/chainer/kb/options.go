package kb

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures a KnowledgeBase
type Option func(*options)

type options struct {
	logger     *zap.Logger
	registerer prometheus.Registerer
	cacheSize  int
}

// WithLogger sets the logger. Assert/retract/ask are logged at Info,
// individual inference steps at Debug.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics registers knowledge base metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithQueryCache keeps the answers of up to size distinct Ask queries.
// The cache is purged on every Assert and Retract.
func WithQueryCache(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}
