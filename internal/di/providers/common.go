package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// draftRetention expires submission drafts nobody has touched for a week.
	draftRetention = 7 * 24 * time.Hour
)
