package config

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Timeouts applied around each store call and the HTTP server.
const (
	SheetReadTimeout  = 30 * time.Second
	SheetWriteTimeout = 30 * time.Second

	// Interactive consent waits on a human in a browser.
	CredentialTimeout = 5 * time.Minute

	HTTPReadHeaderTimeout = 5 * time.Second
	HTTPShutdownTimeout   = 10 * time.Second
)

// Sheets API request pacing. The per-user quota is 60 requests per minute.
const (
	DefaultRequestsPerMinute = 60
	DefaultRequestBurst      = 5
)

// RateConfig paces requests to the Sheets API.
type RateConfig struct {
	RequestsPerMinute int
	Burst             int
}

// DefaultRateConfig matches the default Sheets quota.
var DefaultRateConfig = RateConfig{
	RequestsPerMinute: DefaultRequestsPerMinute,
	Burst:             DefaultRequestBurst,
}

// Limit converts the per-minute rate. Zero or negative disables pacing.
func (r RateConfig) Limit() rate.Limit {
	if r.RequestsPerMinute <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(r.RequestsPerMinute) / 60)
}

// NewLimiter builds a limiter for r. A burst below 1 is raised to 1.
func (r RateConfig) NewLimiter() *rate.Limiter {
	burst := r.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(r.Limit(), burst)
}

// WithReadTimeout bounds a ScanAll or header read.
func WithReadTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, SheetReadTimeout)
}

// WithWriteTimeout bounds an Insert or UpdateStatusBatch. The batch update
// reads and writes, so it gets both budgets.
func WithWriteTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, SheetReadTimeout+SheetWriteTimeout)
}
