package calcwkr

import (
	"time"

	"catrank.dev/backend/internal/pkg/observability"
)

func observeRunDuration(job string, f func() error) error {
	start := time.Now()
	defer func() {
		dur := time.Since(start)
		observability.WorkerRunDuration.WithLabelValues(job).Set(dur.Seconds())
	}()
	return f()
}
