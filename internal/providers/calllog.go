package providers

import (
	"time"

	"github.com/google/uuid"

	"github.com/marcus/schoolwork/internal/logging"
)

// callLog records one outbound assist call.
type callLog struct {
	log      *logging.Logger
	id       string
	provider string
	model    string
	start    time.Time
}

func startCall(provider, model string) *callLog {
	c := &callLog{
		log:      logging.Component("providers"),
		id:       uuid.NewString(),
		provider: provider,
		model:    model,
		start:    time.Now(),
	}
	c.log.DebugCtx("assist request", map[string]any{
		"request_id": c.id,
		"provider":   c.provider,
		"model":      c.model,
	})
	return c
}

func (c *callLog) done() {
	c.log.DebugCtx("assist response", map[string]any{
		"request_id":  c.id,
		"provider":    c.provider,
		"duration_ms": time.Since(c.start).Milliseconds(),
	})
}

func (c *callLog) fail(kind FailureKind, err error) {
	c.log.WarnCtx("assist failed", map[string]any{
		"request_id":  c.id,
		"provider":    c.provider,
		"failure":     kind.String(),
		"error":       err.Error(),
		"duration_ms": time.Since(c.start).Milliseconds(),
	})
}
