package console

import (
	"fmt"

	"github.com/small-frappuccino/mirrorcore/pkg/catalog"
	"github.com/small-frappuccino/mirrorcore/pkg/errutil"
)

// ToggleController commits boolean flips, enabled-set membership changes and
// category resets. Every operation writes all of its keys in one upsert so
// paired flips and cascades land atomically.
type ToggleController struct {
	catalog SettingsCatalog
	store   ConfigStore
	effects SideEffectDispatcher
	cascade func(member string) []string
}

func NewToggleController(cat SettingsCatalog, store ConfigStore, effects SideEffectDispatcher, cascade func(member string) []string) *ToggleController {
	return &ToggleController{catalog: cat, store: store, effects: effects, cascade: cascade}
}

// Toggle sets a boolean key. Enabling a key with a paired partner forces the
// partner to false in the same update, so the pair can never both be true.
func (t *ToggleController) Toggle(key string, value bool) error {
	desc, ok := t.catalog.Describe(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if desc.Type != catalog.TypeBool {
		return &ValidationError{Key: key, Reason: "not a boolean setting"}
	}

	updates := map[string]any{key: value}
	if value && desc.PairedKey != "" {
		if on, _ := t.catalog.Get(desc.PairedKey).(bool); on {
			updates[desc.PairedKey] = false
		}
	}
	return t.applyBatch(updates)
}

// ToggleMember adds or removes one member of an enabled-set key. Disabling a
// member also resets its dependent keys to defaults, in the same update.
func (t *ToggleController) ToggleMember(key, member string, enable bool) error {
	desc, ok := t.catalog.Describe(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if desc.Members == nil {
		return &ValidationError{Key: key, Reason: "not an enabled-set setting"}
	}
	if !memberOf(desc.Members, member) {
		return &ValidationError{Key: key, Reason: fmt.Sprintf("unknown member %q", member)}
	}

	current, _ := t.catalog.Get(key).(string)
	set := catalog.SplitSet(current)

	updates := make(map[string]any)
	if enable {
		set = append(set, member)
	} else {
		set = remove(set, member)
		t.addCascadeResets(updates, member)
	}
	updates[key] = catalog.JoinSet(set)
	return t.applyBatch(updates)
}

// EnableAll turns on every member of an enabled-set key.
func (t *ToggleController) EnableAll(key string) error {
	desc, ok := t.catalog.Describe(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if desc.Members == nil {
		return &ValidationError{Key: key, Reason: "not an enabled-set setting"}
	}
	return t.applyBatch(map[string]any{key: catalog.JoinSet(desc.Members)})
}

// DisableAll empties an enabled-set key and resets every member's dependent
// keys.
func (t *ToggleController) DisableAll(key string) error {
	desc, ok := t.catalog.Describe(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if desc.Members == nil {
		return &ValidationError{Key: key, Reason: "not an enabled-set setting"}
	}

	updates := map[string]any{key: ""}
	current, _ := t.catalog.Get(key).(string)
	for _, member := range catalog.SplitSet(current) {
		t.addCascadeResets(updates, member)
	}
	return t.applyBatch(updates)
}

// ResetCategory restores every key of a category to its default in one
// update. Running it on an already-default category is a harmless no-op
// write.
func (t *ToggleController) ResetCategory(category string) error {
	keys := t.catalog.Keys(category)
	if len(keys) == 0 {
		return fmt.Errorf("unknown category %q", category)
	}
	updates := make(map[string]any, len(keys))
	for _, key := range keys {
		updates[key] = t.catalog.DefaultOf(key)
	}
	return t.applyBatch(updates)
}

func (t *ToggleController) addCascadeResets(updates map[string]any, member string) {
	if t.cascade == nil {
		return
	}
	for _, dep := range t.cascade(member) {
		updates[dep] = t.catalog.DefaultOf(dep)
	}
}

// applyBatch commits updates to the catalog and the store together. If the
// store write fails, every catalog change is rolled back to its previous
// value and nothing is considered committed.
func (t *ToggleController) applyBatch(updates map[string]any) error {
	previous := make(map[string]any, len(updates))
	applied := make([]string, 0, len(updates))

	for key, value := range updates {
		previous[key] = t.catalog.Get(key)
		if err := t.catalog.Set(key, value); err != nil {
			for _, k := range applied {
				errutil.LogBestEffort("rollback "+k, t.catalog.Set(k, previous[k]))
			}
			return &ValidationError{Key: key, Reason: err.Error()}
		}
		applied = append(applied, key)
	}

	committed := make(map[string]any, len(updates))
	for key := range updates {
		committed[key] = t.catalog.Get(key)
	}
	if err := errutil.HandleStoreError("batch upsert", func() error {
		return t.store.Upsert(committed)
	}); err != nil {
		for _, k := range applied {
			errutil.LogBestEffort("rollback "+k, t.catalog.Set(k, previous[k]))
		}
		return &PersistenceError{Key: firstKey(updates), Err: err}
	}

	if t.effects != nil {
		for key, value := range committed {
			errutil.LogBestEffort("side effect "+key, t.effects.OnSet(key, value))
		}
	}
	return nil
}

func memberOf(members []string, m string) bool {
	for _, candidate := range members {
		if candidate == m {
			return true
		}
	}
	return false
}

func remove(set []string, m string) []string {
	out := set[:0]
	for _, s := range set {
		if s != m {
			out = append(out, s)
		}
	}
	return out
}

func firstKey(m map[string]any) string {
	for k := range m {
		return k
	}
	return ""
}
