package view

import (
	"fmt"
	"strings"
)

// Mode is the presentation of the document
type Mode int

const (
	ModeInput Mode = iota
	ModeTree
	ModeTable
)

// Modes lists every mode in cycling order
var Modes = []Mode{ModeInput, ModeTree, ModeTable}

func (m Mode) String() string {
	switch m {
	case ModeInput:
		return "input"
	case ModeTree:
		return "tree"
	case ModeTable:
		return "table"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Next returns the mode after m in cycling order
func (m Mode) Next() Mode {
	return Modes[(int(m)+1)%len(Modes)]
}

// ParseMode accepts "input" (or "raw"), "tree" and "table"
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "input", "raw", "text":
		return ModeInput, nil
	case "tree":
		return ModeTree, nil
	case "table":
		return ModeTable, nil
	default:
		return 0, fmt.Errorf("unknown view mode %q: expected input, tree or table", s)
	}
}
