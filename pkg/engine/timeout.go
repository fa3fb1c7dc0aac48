package engine

import (
	"fmt"
	"time"

	"github.com/chazu/subvol/pkg/scene"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

type evalResult struct {
	scene  *scene.Scene
	errors []EvalError
	err    error
}

// timeout returns the limit of one evaluation.
func (e *Engine) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return EvalTimeout
}

// wait returns the result on ch unless the limit passes first or a newer
// evaluation superseded generation gen. A timed-out goroutine keeps
// running; its late result is dropped by the buffered channel.
func (e *Engine) wait(ch <-chan evalResult, gen uint64) (*scene.Scene, []EvalError, error) {
	limit := e.timeout()
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case res := <-ch:
		e.mu.Lock()
		current := e.generation
		e.mu.Unlock()

		if gen != current {
			return nil, nil, fmt.Errorf("engine: evaluation superseded by newer request")
		}
		return res.scene, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("engine: evaluation timed out after %s", limit)
	}
}
