package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme and styling
type Theme struct {
	Name string

	// Background colors
	Background lipgloss.Color
	Foreground lipgloss.Color

	// UI elements
	Border        lipgloss.Color
	BorderFocused lipgloss.Color
	Selection     lipgloss.Color
	Cursor        lipgloss.Color
	Metadata      lipgloss.Color

	// Status colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// Table colors
	TableHeader      lipgloss.Color
	TableRowEven     lipgloss.Color
	TableRowOdd      lipgloss.Color
	TableRowSelected lipgloss.Color

	// JSON colors
	JSONKey     lipgloss.Color
	JSONIndex   lipgloss.Color
	JSONString  lipgloss.Color
	JSONNumber  lipgloss.Color
	JSONBoolean lipgloss.Color
	JSONNull    lipgloss.Color
	JSONDate    lipgloss.Color
	JSONBracket lipgloss.Color

	// ChromaStyle names the chroma style used for raw JSON
	ChromaStyle string
}

var registry = map[string]func() Theme{
	"default":          DefaultTheme,
	"catppuccin-mocha": CatppuccinMochaTheme,
}

// GetTheme returns a theme by name, falling back to the default theme
func GetTheme(name string) Theme {
	if fn, ok := registry[name]; ok {
		return fn()
	}
	return DefaultTheme()
}

// Names lists the registered themes
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
