// Package symbol maps unit, building and command names to the emoji the bot
// application registered for them.
package symbol

import (
	"fmt"
	"strings"

	"github.com/louisbranch/twbb/internal/bbcode"
)

// Entry is one registered emoji.
type Entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Table is an immutable name to emoji id index.
type Table struct {
	ids map[string]string
}

var emptyTable = &Table{ids: map[string]string{}}

// NewTable indexes entries by name. An entry without id or name makes the
// whole table invalid. The first entry wins on duplicate names.
func NewTable(entries []Entry) (*Table, error) {
	ids := make(map[string]string, len(entries))
	for i, entry := range entries {
		if strings.TrimSpace(entry.ID) == "" || strings.TrimSpace(entry.Name) == "" {
			return nil, fmt.Errorf("entry %d: id and name are required", i)
		}
		if _, exists := ids[entry.Name]; exists {
			continue
		}
		ids[entry.Name] = entry.ID
	}
	return &Table{ids: ids}, nil
}

// Len returns the number of indexed names.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.ids)
}

// Lookup returns the emoji id registered under name.
func (t *Table) Lookup(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	id, ok := t.ids[name]
	return id, ok
}

// Token renders a custom emoji reference as chat clients expect it.
func Token(name, id string) string {
	return "<:" + name + ":" + id + ">"
}

// Key builds the table key for a tag body: the kind prefix followed by the
// trimmed, lower-cased body.
func Key(kind bbcode.Kind, body string) string {
	return prefix(kind) + strings.ToLower(strings.TrimSpace(body))
}

func prefix(kind bbcode.Kind) string {
	switch kind {
	case bbcode.KindUnit:
		return "unit_"
	case bbcode.KindBuilding:
		return "build_"
	default:
		return ""
	}
}
