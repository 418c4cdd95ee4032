// File: pool/gate.go
// Author: momentics <momentics@gmail.com>

package pool

import (
	"github.com/momentics/hioload-pool/api"
	"github.com/rs/zerolog"
)

// gate is the single entry point for mutating pool bookkeeping. It does not
// lock; it only catches a pool being re-entered while one of its own
// operations is still running on the same goroutine.
type gate struct {
	busy bool
	op   string
}

func (g *gate) enter(op string) {
	if g.busy {
		panic(fatal("reentrant pool call", "op", op, "running", g.op))
	}
	g.busy = true
	g.op = op
}

func (g *gate) exit() {
	g.busy = false
	g.op = ""
}

// fatal builds the value pools panic with on programming errors.
func fatal(msg string, kv ...any) *api.Error {
	e := api.NewError(api.ErrCodeInternal, msg).WithCause(api.ErrCorrupted)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			e.WithContext(k, kv[i+1])
		}
	}
	return e
}

// finalize disposes of a buffer that leaves the pool for good.
func finalize[B api.Buffer](b B, log zerolog.Logger) {
	c, ok := any(b).(api.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		log.Warn().Err(err).Msg("closing discarded buffer")
	}
}
