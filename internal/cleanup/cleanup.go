package cleanup

import (
	"fmt"
	"sync"
)

type hook struct {
	label string
	fn    func() error
}

var (
	mu    sync.Mutex
	hooks []hook
)

// Register adds a labeled cleanup hook executed in LIFO order.
// The label identifies the resource in failure reports ("history db",
// "log file").
func Register(label string, fn func() error) {
	if fn == nil {
		return
	}
	mu.Lock()
	hooks = append(hooks, hook{label: label, fn: fn})
	mu.Unlock()
}

// RunAll executes all registered hooks and returns a combined error if any fail.
func RunAll() error {
	mu.Lock()
	local := hooks
	hooks = nil
	mu.Unlock()

	var errs []string
	for i := len(local) - 1; i >= 0; i-- {
		if err := local[i].fn(); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", local[i].label, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("cleanup failed: %v", errs)
}
