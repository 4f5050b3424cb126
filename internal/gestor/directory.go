// internal/gestor/directory.go
package gestor

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Rep is a sales representative and their assigned territory.
type Rep struct {
	Name string `json:"name"`
	Zone string `json:"zone"`
}

// Directory resolves POS user identifiers to sales reps. Lookup keys
// are matched trimmed and case-insensitive.
type Directory struct {
	byUser map[string]Rep
}

// NewDirectory builds a directory from a static mapping.
func NewDirectory(entries map[string]Rep) *Directory {
	d := &Directory{byUser: make(map[string]Rep, len(entries))}
	for user, rep := range entries {
		key := normalizeKey(user)
		if key == "" {
			continue
		}
		d.byUser[key] = rep
	}
	return d
}

// LoadFile reads a JSON file of posUser -> {name, zone} entries.
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gestor directory %s: %w", path, err)
	}
	var entries map[string]Rep
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse gestor directory %s: %w", path, err)
	}
	return NewDirectory(entries), nil
}

// Lookup returns the rep for a POS user. A missing entry is not an
// error; both fields simply stay unset downstream.
func (d *Directory) Lookup(posUser string) (Rep, bool) {
	rep, ok := d.byUser[normalizeKey(posUser)]
	return rep, ok
}

func normalizeKey(user string) string {
	return strings.ToLower(strings.TrimSpace(user))
}
