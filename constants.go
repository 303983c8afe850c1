package server

import "time"

const (
	ProtocolVersion = 1
	writeWait       = 10 * time.Second
	// tickBudgetWarnRatio is how far past the tick interval a tick may run
	// before the scheduler warns.
	tickBudgetWarnRatio = 1.0
)
