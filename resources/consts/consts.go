package consts

import (
	"time"
)

const (
	DefaultScheduleTime = "04:00"

	MinTimeBetweenRequests = 6 * time.Second

	DurationPollerRetryAfter = time.Minute

	IntJobQueueSize = 1
)
