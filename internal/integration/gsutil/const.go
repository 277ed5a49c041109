package gsutil

import "time"

const (
	name = "gsutil"
	// Listings of large clients take minutes.
	listTimeout = 10 * time.Minute
	// Copies of a whole client run for a long time on slow links.
	copyTimeout = 4 * time.Hour
	// heartbeatEvery is the number of output lines between two heartbeat dots.
	heartbeatEvery = 1000
	totalPrefix    = "TOTAL:"
)
