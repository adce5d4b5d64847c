package theme

import (
	"fmt"
	"sync"
)

// Color is the int value used by discordgo.MessageEmbed.Color
type Color = int

// Theme holds the color roles used by the settings console embeds.
// Keep roles generic so they can be reused across menus; if a menu needs a
// very specific color, add a role here so themes can override it explicitly.
type Theme struct {
	// Human-friendly name for the theme (unique within the registry).
	Name string

	Primary Color // General primary color (Discord "blurple" by default)
	Info    Color
	Success Color
	Warning Color
	Error   Color
	Muted   Color // Neutral / disabled / read-only

	// Console-specific roles
	MenuView Color // category menu in view mode
	MenuEdit Color // category menu in edit mode
	Editor   Color // "waiting for a reply" prompt
}

// Clone returns a copy of the Theme.
func (t *Theme) Clone() *Theme {
	cp := *t
	return &cp
}

// ensureDefaults fills zero-valued fields with fallbacks derived from other
// roles so themes can override only a subset of fields.
func (t *Theme) ensureDefaults() {
	if t.Info == 0 {
		t.Info = 0x3B82F6
	}
	if t.Success == 0 {
		t.Success = 0x57F287
	}
	if t.Warning == 0 {
		t.Warning = 0xF59E0B
	}
	if t.Error == 0 {
		t.Error = 0xED4245
	}
	if t.Muted == 0 {
		t.Muted = 0x99AAB5
	}
	if t.MenuView == 0 {
		t.MenuView = t.Muted
	}
	if t.MenuEdit == 0 {
		t.MenuEdit = t.Primary
	}
	if t.Editor == 0 {
		t.Editor = t.Warning
	}
}

func defaultTheme() *Theme {
	th := &Theme{
		Name:    "default",
		Primary: 0x5865F2, // Discord blurple
		Info:    0x3B82F6,
		Success: 0x57F287,
		Warning: 0xF59E0B,
		Error:   0xED4245,
		Muted:   0x99AAB5,
	}
	th.ensureDefaults()
	return th
}

var (
	mu        sync.RWMutex
	registry  = map[string]*Theme{}
	currentTh = defaultTheme()
)

// Register adds a theme to the registry. It returns an error if the name is
// empty or already registered.
func Register(t *Theme) error {
	if t == nil {
		return fmt.Errorf("theme: cannot register nil theme")
	}
	if t.Name == "" {
		return fmt.Errorf("theme: name is required")
	}
	cp := t.Clone()
	cp.ensureDefaults()

	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[cp.Name]; exists {
		return fmt.Errorf("theme: theme %q already registered", cp.Name)
	}
	registry[cp.Name] = cp
	return nil
}

// SetCurrent switches the active theme by name. Empty name resets to default.
func SetCurrent(name string) error {
	mu.Lock()
	defer mu.Unlock()
	if name == "" {
		currentTh = defaultTheme()
		return nil
	}
	th, ok := registry[name]
	if !ok {
		return fmt.Errorf("theme: unknown theme %q", name)
	}
	currentTh = th
	return nil
}

func current() *Theme {
	mu.RLock()
	defer mu.RUnlock()
	return currentTh
}

// Accessors for the active theme's roles.

func Primary() Color  { return current().Primary }
func Info() Color     { return current().Info }
func Success() Color  { return current().Success }
func Warning() Color  { return current().Warning }
func Error() Color    { return current().Error }
func Muted() Color    { return current().Muted }
func MenuView() Color { return current().MenuView }
func MenuEdit() Color { return current().MenuEdit }
func Editor() Color   { return current().Editor }
