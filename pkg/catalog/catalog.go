package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/small-frappuccino/mirrorcore/pkg/util"
)

// Type is the declared value type of a setting. Coercion of user input is
// driven by the declared type, never by sniffing the input.
type Type int

const (
	TypeBool Type = iota
	TypeInt
	TypeFloat
	TypeString
	TypeStringList
	TypeStringMap
)

func (t Type) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeStringList:
		return "list"
	case TypeStringMap:
		return "map"
	default:
		return "unknown"
	}
}

// BlobKind marks settings whose value is produced by a file or photo upload
// rather than typed text.
type BlobKind int

const (
	BlobNone BlobKind = iota
	BlobDocument
	BlobPhoto
)

// Descriptor is the static metadata of one setting. The console consults it
// for type coercion, menu routing, pairing and help text instead of
// per-key branching.
type Descriptor struct {
	Key      string
	Type     Type
	Default  any
	Category string
	Help     string

	// Sensitive marks credentials, process identity and proxy endpoints:
	// the stored value updates immediately but a restart warning is attached.
	Sensitive bool

	// PairedKey names a mutually-exclusive boolean partner: setting this key
	// to true forces the partner to false in the same update.
	PairedKey string

	// UnitRange clamps float input into [0.0, 1.0].
	UnitRange bool

	// Blob selects which upload kind satisfies an edit session for this key.
	Blob BlobKind

	// Members, when non-nil, marks an enabled-set key: the value is the
	// sorted, comma-joined subset of Members that is currently enabled.
	Members []string
}

// Catalog is the in-memory authority for setting values. Values are created
// from defaults at construction, mutated only through Set, and never deleted.
type Catalog struct {
	mu     sync.RWMutex
	descs  map[string]Descriptor
	values map[string]any

	categories []string            // sorted category names
	byCategory map[string][]string // category -> sorted keys
}

// New builds a catalog from the built-in registry.
func New() *Catalog {
	return NewFromDescriptors(Registry())
}

// NewFromDescriptors builds a catalog from an explicit descriptor set.
// Every value starts at its default.
func NewFromDescriptors(descs []Descriptor) *Catalog {
	c := &Catalog{
		descs:      make(map[string]Descriptor, len(descs)),
		values:     make(map[string]any, len(descs)),
		byCategory: make(map[string][]string),
	}
	for _, d := range descs {
		c.descs[d.Key] = d
		c.values[d.Key] = d.Default
		c.byCategory[d.Category] = append(c.byCategory[d.Category], d.Key)
	}
	for cat, keys := range c.byCategory {
		sort.Strings(keys)
		c.categories = append(c.categories, cat)
	}
	sort.Strings(c.categories)
	return c
}

// Get returns the current value of key, or nil for an unknown key.
func (c *Catalog) Get(key string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[key]
}

// Set stores value for key after checking it against the declared type.
func (c *Catalog) Set(key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.descs[key]
	if !ok {
		return fmt.Errorf("catalog: unknown key %q", key)
	}
	v, err := conform(d.Type, value)
	if err != nil {
		return fmt.Errorf("catalog: %s: %w", key, err)
	}
	c.values[key] = v
	return nil
}

// DefaultOf returns the default value of key, or nil for an unknown key.
func (c *Catalog) DefaultOf(key string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if d, ok := c.descs[key]; ok {
		return d.Default
	}
	return nil
}

// CategoryOf returns the category of key, or "" for an unknown key.
func (c *Catalog) CategoryOf(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if d, ok := c.descs[key]; ok {
		return d.Category
	}
	return ""
}

// Describe returns the descriptor for key.
func (c *Catalog) Describe(key string) (Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.descs[key]
	return d, ok
}

// Keys returns the sorted keys of a category. The returned slice is a copy.
func (c *Catalog) Keys(category string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := c.byCategory[category]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Categories returns the sorted category names.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// KeysWithPrefix returns every known key matching any of the prefixes, sorted.
func (c *Catalog) KeysWithPrefix(prefixes ...string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []string
	for key := range c.descs {
		if util.HasAnyPrefix(key, prefixes...) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// Snapshot returns a copy of every current value, keyed by setting name.
func (c *Catalog) Snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// LoadValues overlays persisted raw values onto the catalog. Each raw value
// is decoded per the key's declared type; undecodable or unknown entries are
// skipped and reported so one bad row cannot poison startup.
func (c *Catalog) LoadValues(raw map[string]string) []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for key, enc := range raw {
		d, ok := c.descs[key]
		if !ok {
			errs = append(errs, fmt.Errorf("catalog: unknown persisted key %q", key))
			continue
		}
		v, err := DecodeValue(d.Type, enc)
		if err != nil {
			errs = append(errs, fmt.Errorf("catalog: %s: %w", key, err))
			continue
		}
		c.values[key] = v
	}
	return errs
}

// conform normalizes value to the canonical Go type for t.
func conform(t Type, value any) (any, error) {
	switch t {
	case TypeBool:
		if v, ok := value.(bool); ok {
			return v, nil
		}
	case TypeInt:
		switch v := value.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			return int(v), nil
		}
	case TypeFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		}
	case TypeString:
		if v, ok := value.(string); ok {
			return v, nil
		}
	case TypeStringList:
		if v, ok := value.([]string); ok {
			return v, nil
		}
	case TypeStringMap:
		if v, ok := value.(map[string]string); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("value %T does not conform to declared type %s", value, t)
}
