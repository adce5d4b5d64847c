package console

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/small-frappuccino/mirrorcore/pkg/catalog"
	"github.com/small-frappuccino/mirrorcore/pkg/errutil"
)

// CommitResult carries non-fatal outcomes of a successful commit.
type CommitResult struct {
	// Fallback is true when lenient int parsing failed and the key was set
	// to its default instead of the typed value.
	Fallback bool

	// Warning is user-facing text to attach to the confirmation, such as a
	// restart hint for sensitive keys.
	Warning string
}

// EditController turns raw user input into committed setting values:
// coercion per declared type, catalog update, durable upsert with rollback,
// then best-effort side effects.
type EditController struct {
	catalog SettingsCatalog
	store   ConfigStore
	effects SideEffectDispatcher
}

func NewEditController(cat SettingsCatalog, store ConfigStore, effects SideEffectDispatcher) *EditController {
	return &EditController{catalog: cat, store: store, effects: effects}
}

// Commit coerces raw against key's declared type and applies it.
func (e *EditController) Commit(key, raw string) (CommitResult, error) {
	desc, ok := e.catalog.Describe(key)
	if !ok {
		return CommitResult{}, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	value, fallback, err := coerce(desc, raw)
	if err != nil {
		return CommitResult{}, err
	}
	result, err := e.Apply(key, value)
	result.Fallback = fallback
	return result, err
}

// Apply commits an already-typed value: catalog first, then the store, with
// the catalog rolled back if the store write fails. Side effects run after a
// durable commit and are never allowed to fail it.
func (e *EditController) Apply(key string, value any) (CommitResult, error) {
	desc, ok := e.catalog.Describe(key)
	if !ok {
		return CommitResult{}, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	previous := e.catalog.Get(key)
	if err := e.catalog.Set(key, value); err != nil {
		return CommitResult{}, &ValidationError{Key: key, Reason: err.Error()}
	}
	if err := errutil.HandleStoreError("upsert "+key, func() error {
		return e.store.Upsert(map[string]any{key: e.catalog.Get(key)})
	}); err != nil {
		errutil.LogBestEffort("rollback "+key, e.catalog.Set(key, previous))
		return CommitResult{}, &PersistenceError{Key: key, Err: err}
	}

	if e.effects != nil {
		errutil.LogBestEffort("side effect "+key, e.effects.OnSet(key, e.catalog.Get(key)))
	}

	var result CommitResult
	if desc.Sensitive {
		result.Warning = fmt.Sprintf("%s updated. A restart is required for it to take effect.", key)
	}
	return result, nil
}

// coerce parses raw into the canonical value for desc. The rules differ by
// type on purpose: booleans and structured values reject bad input, ints
// fall back to the default, unit floats clamp.
func coerce(desc catalog.Descriptor, raw string) (value any, fallback bool, err error) {
	raw = strings.TrimSpace(raw)

	switch desc.Type {
	case catalog.TypeBool:
		switch strings.ToLower(raw) {
		case "true":
			return true, false, nil
		case "false":
			return false, false, nil
		}
		return nil, false, &ValidationError{Key: desc.Key, Reason: "expected true or false"}

	case catalog.TypeInt:
		n, perr := strconv.Atoi(raw)
		if perr != nil {
			return desc.Default, true, nil
		}
		return n, false, nil

	case catalog.TypeFloat:
		f, perr := strconv.ParseFloat(raw, 64)
		if perr != nil {
			return nil, false, &ValidationError{Key: desc.Key, Reason: "expected a number"}
		}
		if desc.UnitRange {
			if f < 0 {
				f = 0
			} else if f > 1 {
				f = 1
			}
		}
		return f, false, nil

	case catalog.TypeString:
		return raw, false, nil

	case catalog.TypeStringList:
		var list []string
		if uerr := json.Unmarshal([]byte(raw), &list); uerr != nil {
			return nil, false, &ValidationError{Key: desc.Key, Reason: "expected a JSON array of strings"}
		}
		return list, false, nil

	case catalog.TypeStringMap:
		var m map[string]string
		if uerr := json.Unmarshal([]byte(raw), &m); uerr != nil {
			return nil, false, &ValidationError{Key: desc.Key, Reason: "expected a JSON object of strings"}
		}
		return m, false, nil
	}
	return nil, false, &ValidationError{Key: desc.Key, Reason: "unsupported type"}
}
