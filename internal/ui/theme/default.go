package theme

import "github.com/charmbracelet/lipgloss"

// DefaultTheme returns the default dark theme
func DefaultTheme() Theme {
	return Theme{
		Name: "default",

		// Background colors
		Background: lipgloss.Color("235"),
		Foreground: lipgloss.Color("252"),

		// UI elements
		Border:        lipgloss.Color("240"),
		BorderFocused: lipgloss.Color("62"),
		Selection:     lipgloss.Color("237"),
		Cursor:        lipgloss.Color("248"),
		Metadata:      lipgloss.Color("244"),

		// Status colors
		Success: lipgloss.Color("42"),
		Warning: lipgloss.Color("220"),
		Error:   lipgloss.Color("196"),
		Info:    lipgloss.Color("75"),

		// Table colors
		TableHeader:      lipgloss.Color("105"),
		TableRowEven:     lipgloss.Color("235"),
		TableRowOdd:      lipgloss.Color("236"),
		TableRowSelected: lipgloss.Color("25"),

		// JSON colors
		JSONKey:     lipgloss.Color("117"),
		JSONIndex:   lipgloss.Color("109"),
		JSONString:  lipgloss.Color("180"),
		JSONNumber:  lipgloss.Color("150"),
		JSONBoolean: lipgloss.Color("75"),
		JSONNull:    lipgloss.Color("244"),
		JSONDate:    lipgloss.Color("176"),
		JSONBracket: lipgloss.Color("246"),

		ChromaStyle: "monokai",
	}
}
