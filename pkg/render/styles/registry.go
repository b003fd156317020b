package styles

import (
	"sort"

	"github.com/matzehuels/teamtree/pkg/errors"
)

var registry = map[string]func() Style{
	"simple": func() Style { return Simple{} },
}

// Register makes a style available by name. It is intended to be called from
// init functions of style packages.
func Register(name string, fn func() Style) {
	registry[name] = fn
}

// Lookup returns the style registered under name. An empty name selects
// "simple".
func Lookup(name string) (Style, error) {
	if name == "" {
		name = "simple"
	}
	fn, ok := registry[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidStyle, "unknown style %q (available: %v)", name, Names())
	}
	return fn(), nil
}

// Names lists registered style names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
