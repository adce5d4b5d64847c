package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/small-frappuccino/mirrorcore/pkg/catalog"
	"github.com/small-frappuccino/mirrorcore/pkg/theme"
)

// pageSize is how many settings render per category page. Enabled-set keys
// expand into one entry per member, so the grid never exceeds two button
// rows and the whole menu stays within transport row limits.
const pageSize = 10

const keysPerRow = 5

// MenuRenderer builds menus from the catalog. It is stateless; navigation
// state is supplied per call.
type MenuRenderer struct {
	catalog SettingsCatalog
}

func NewMenuRenderer(cat SettingsCatalog) *MenuRenderer {
	return &MenuRenderer{catalog: cat}
}

// RenderRoot builds the top-level category menu.
func (r *MenuRenderer) RenderRoot() Menu {
	categories := r.catalog.Categories()

	var body strings.Builder
	body.WriteString("Pick a category to inspect or edit its settings.\n")
	for _, cat := range categories {
		fmt.Fprintf(&body, "\n**%s** — %d settings", cat, len(r.catalog.Keys(cat)))
	}

	var rows [][]Button
	row := make([]Button, 0, 3)
	for _, cat := range categories {
		row = append(row, Button{Label: cat, Data: fmt.Sprintf("%s start %s 0", Namespace, cat)})
		if len(row) == 3 {
			rows = append(rows, row)
			row = make([]Button, 0, 3)
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []Button{{Label: "Close", Data: Namespace + " close"}})

	return Menu{
		Title: "Settings",
		Body:  body.String(),
		Rows:  rows,
		Color: theme.Primary(),
	}
}

// entry is one selectable item on a category page: a plain key, or one
// member of an enabled-set key.
type entry struct {
	line   string
	button Button
}

// Render builds the menu for one category page. The requested page wraps:
// paging past the last page lands on the first and vice versa. The
// normalized page is returned so callers can store it as navigation state.
func (r *MenuRenderer) Render(category string, page int, mode Mode) (Menu, int) {
	entries, setKey := r.entries(category, mode)

	pages := (len(entries) + pageSize - 1) / pageSize
	if pages == 0 {
		pages = 1
	}
	page = ((page % pages) + pages) % pages

	start := page * pageSize
	end := start + pageSize
	if end > len(entries) {
		end = len(entries)
	}
	visible := entries[start:end]

	var body strings.Builder
	fmt.Fprintf(&body, "Category **%s** — %s mode", category, mode)
	if pages > 1 {
		fmt.Fprintf(&body, " (page %d/%d)", page+1, pages)
	}
	body.WriteString("\n")
	for _, e := range visible {
		body.WriteString("\n")
		body.WriteString(e.line)
	}

	var rows [][]Button
	row := make([]Button, 0, keysPerRow)
	for _, e := range visible {
		row = append(row, e.button)
		if len(row) == keysPerRow {
			rows = append(rows, row)
			row = make([]Button, 0, keysPerRow)
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	if setKey != "" && mode == ModeEdit {
		rows = append(rows, []Button{
			{Label: "Enable all", Data: fmt.Sprintf("%s enableall %s", Namespace, setKey)},
			{Label: "Disable all", Data: fmt.Sprintf("%s disableall %s", Namespace, setKey)},
		})
	}

	if pages > 1 {
		rows = append(rows, []Button{
			{Label: "◀", Data: fmt.Sprintf("%s start %s %d", Namespace, category, page-1)},
			{Label: fmt.Sprintf("%d/%d", page+1, pages), Data: fmt.Sprintf("%s start %s %d", Namespace, category, page)},
			{Label: "▶", Data: fmt.Sprintf("%s start %s %d", Namespace, category, page+1)},
		})
	}

	footer := []Button{modeButton(category, page, mode)}
	if mode == ModeEdit {
		footer = append(footer, Button{Label: "Reset all", Data: fmt.Sprintf("%s resetcat %s", Namespace, category)})
	}
	footer = append(footer,
		Button{Label: "Back", Data: Namespace + " main"},
		Button{Label: "Close", Data: Namespace + " close"},
	)
	rows = append(rows, footer)

	color := theme.MenuView()
	if mode == ModeEdit {
		color = theme.MenuEdit()
	}
	return Menu{
		Title: "Settings: " + category,
		Body:  body.String(),
		Rows:  rows,
		Color: color,
	}, page
}

// RenderEditor builds the "waiting for a reply" prompt shown while an edit
// session is armed for desc.
func (r *MenuRenderer) RenderEditor(desc catalog.Descriptor, st NavState, timeout time.Duration) Menu {
	var body strings.Builder
	fmt.Fprintf(&body, "Editing **%s** (%s)\n", desc.Key, desc.Type)
	fmt.Fprintf(&body, "\nCurrent: %s", catalog.FormatValue(desc, r.catalog.Get(desc.Key)))
	fmt.Fprintf(&body, "\nDefault: %s", catalog.FormatValue(desc, desc.Default))
	if desc.Help != "" {
		body.WriteString("\n\n")
		body.WriteString(desc.Help)
	}
	switch desc.Blob {
	case catalog.BlobPhoto:
		fmt.Fprintf(&body, "\n\nUpload a photo within %d seconds.", int(timeout.Seconds()))
	case catalog.BlobDocument:
		fmt.Fprintf(&body, "\n\nUpload a file within %d seconds.", int(timeout.Seconds()))
	default:
		fmt.Fprintf(&body, "\n\nSend the new value as a message within %d seconds.", int(timeout.Seconds()))
	}

	return Menu{
		Title: "Settings: " + st.Category,
		Body:  body.String(),
		Rows: [][]Button{{
			{Label: "Reset to default", Data: fmt.Sprintf("%s default %s", Namespace, desc.Key)},
			{Label: "Cancel", Data: Namespace + " cancel"},
		}},
		Color: theme.Editor(),
	}
}

// entries expands a category's keys into selectable entries. Enabled-set
// keys contribute one entry per member instead of a single button; the first
// such key is returned so Render can attach the enable-all row.
func (r *MenuRenderer) entries(category string, mode Mode) ([]entry, string) {
	keys := r.catalog.Keys(category)
	out := make([]entry, 0, len(keys))
	setKey := ""

	for _, key := range keys {
		desc, ok := r.catalog.Describe(key)
		if !ok {
			continue
		}

		if desc.Members != nil {
			if setKey == "" {
				setKey = key
			}
			current, _ := r.catalog.Get(key).(string)
			for _, member := range desc.Members {
				out = append(out, memberEntry(key, member, catalog.SetContains(current, member), mode))
			}
			continue
		}

		out = append(out, r.keyEntry(desc, mode))
	}
	return out, setKey
}

func (r *MenuRenderer) keyEntry(desc catalog.Descriptor, mode Mode) entry {
	value := catalog.FormatValue(desc, r.catalog.Get(desc.Key))
	e := entry{line: fmt.Sprintf("`%s` = %s", desc.Key, value)}

	if mode == ModeView {
		e.button = Button{Label: desc.Key, Data: fmt.Sprintf("%s view %s", Namespace, desc.Key)}
		return e
	}

	switch {
	case desc.Type == catalog.TypeBool:
		on, _ := r.catalog.Get(desc.Key).(bool)
		e.button = Button{
			Label: mark(on) + " " + desc.Key,
			Data:  fmt.Sprintf("%s toggle %s %t", Namespace, desc.Key, !on),
		}
	case desc.Blob != catalog.BlobNone:
		e.button = Button{Label: "⬆ " + desc.Key, Data: fmt.Sprintf("%s upload %s", Namespace, desc.Key)}
	default:
		e.button = Button{Label: desc.Key, Data: fmt.Sprintf("%s editvar %s", Namespace, desc.Key)}
	}
	return e
}

func memberEntry(setKey, member string, on bool, mode Mode) entry {
	e := entry{line: fmt.Sprintf("`%s`: %s", member, mark(on))}
	if mode == ModeView {
		e.button = Button{Label: member, Data: fmt.Sprintf("%s view %s", Namespace, setKey)}
		return e
	}
	e.button = Button{
		Label: mark(on) + " " + member,
		Data:  fmt.Sprintf("%s togmember %s %s %t", Namespace, setKey, member, !on),
	}
	return e
}

func modeButton(category string, page int, mode Mode) Button {
	if mode == ModeEdit {
		return Button{Label: "View mode", Data: fmt.Sprintf("%s mode %s %d view", Namespace, category, page)}
	}
	return Button{Label: "Edit mode", Data: fmt.Sprintf("%s mode %s %d edit", Namespace, category, page)}
}

func mark(on bool) string {
	if on {
		return "✅"
	}
	return "❌"
}
