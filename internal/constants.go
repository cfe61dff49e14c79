package stattop

import (
	"time"
)

const (
	// POLL_INTERVAL is the time between polls of the stats source in seconds
	POLL_INTERVAL = 2

	// MAX_DATA_POINTS is the number of samples kept per rolling line chart
	MAX_DATA_POINTS = 30

	// FETCH_TIMEOUT bounds a single fetch in seconds so a hung request cannot stall the loop
	FETCH_TIMEOUT = 5

	// DEFAULT_STATS_URL is the stats endpoint polled when nothing else is configured
	DEFAULT_STATS_URL = "http://localhost:8082/api/stats"
)

// PollDuration returns the poll interval as a time.Duration
func PollDuration() time.Duration {
	return time.Duration(POLL_INTERVAL) * time.Second
}

// FetchTimeout returns the fetch timeout as a time.Duration
func FetchTimeout() time.Duration {
	return time.Duration(FETCH_TIMEOUT) * time.Second
}
