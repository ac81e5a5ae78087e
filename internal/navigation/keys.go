package navigation

import (
	"strings"

	reviewerrors "github.com/a3tai/mcp-idp-review/internal/errors"
)

// Key is a key press understood by the navigator
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyHome
	KeyEnd
	KeyRight
	KeyLeft
	KeyShiftUp
	KeyShiftDown
	KeySpace
	KeySelectAll
	KeyTab
)

var keyNames = map[string]Key{
	"up":         KeyUp,
	"arrowup":    KeyUp,
	"down":       KeyDown,
	"arrowdown":  KeyDown,
	"home":       KeyHome,
	"end":        KeyEnd,
	"right":      KeyRight,
	"arrowright": KeyRight,
	"enter":      KeyRight,
	"left":       KeyLeft,
	"arrowleft":  KeyLeft,
	"escape":     KeyLeft,
	"esc":        KeyLeft,
	"shift+up":   KeyShiftUp,
	"shift+down": KeyShiftDown,
	"space":      KeySpace,
	" ":          KeySpace,
	"ctrl+a":     KeySelectAll,
	"cmd+a":      KeySelectAll,
	"tab":        KeyTab,
}

// ParseKey converts a key name such as "shift+down" into a Key
func ParseKey(name string) (Key, error) {
	normalized := strings.ToLower(name)
	if normalized != " " {
		normalized = strings.ReplaceAll(strings.TrimSpace(normalized), " ", "")
	}
	if k, ok := keyNames[normalized]; ok {
		return k, nil
	}
	return 0, reviewerrors.Newf(reviewerrors.ErrorTypeInvalidArgument, "unknown key: %q", name)
}

func (k Key) String() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyHome:
		return "home"
	case KeyEnd:
		return "end"
	case KeyRight:
		return "right"
	case KeyLeft:
		return "left"
	case KeyShiftUp:
		return "shift+up"
	case KeyShiftDown:
		return "shift+down"
	case KeySpace:
		return "space"
	case KeySelectAll:
		return "ctrl+a"
	case KeyTab:
		return "tab"
	default:
		return "unknown"
	}
}
