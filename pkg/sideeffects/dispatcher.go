// Package sideeffects reacts to committed setting changes. Hooks are
// registered per key prefix and run synchronously after a durable commit;
// hook failures are reported to the caller for logging but never undo the
// commit that triggered them.
package sideeffects

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/small-frappuccino/mirrorcore/pkg/log"
)

// Hook reacts to one committed change.
type Hook func(key string, value any) error

// Dispatcher routes committed changes to hooks by key prefix. It satisfies
// the console's SideEffectDispatcher interface.
type Dispatcher struct {
	mu    sync.RWMutex
	hooks map[string][]Hook // prefix -> hooks
}

func New() *Dispatcher {
	return &Dispatcher{hooks: make(map[string][]Hook)}
}

// Register attaches a hook to every key starting with prefix. An empty
// prefix matches all keys.
func (d *Dispatcher) Register(prefix string, h Hook) {
	if h == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks[prefix] = append(d.hooks[prefix], h)
}

// OnSet runs every hook whose prefix matches key. All matching hooks run
// even when earlier ones fail; failures are joined into the returned error.
func (d *Dispatcher) OnSet(key string, value any) error {
	d.mu.RLock()
	prefixes := make([]string, 0, len(d.hooks))
	for p := range d.hooks {
		if strings.HasPrefix(key, p) {
			prefixes = append(prefixes, p)
		}
	}
	sort.Strings(prefixes)
	var hooks []Hook
	for _, p := range prefixes {
		hooks = append(hooks, d.hooks[p]...)
	}
	d.mu.RUnlock()

	var failures []string
	for _, h := range hooks {
		if err := h(key, value); err != nil {
			log.Application().Warn("Side-effect hook failed", "key", key, "error", err)
			failures = append(failures, err.Error())
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("hooks for %s: %s", key, strings.Join(failures, "; "))
	}
	return nil
}
