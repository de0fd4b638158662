package visibility

import (
	"strings"

	apperrors "github.com/matzehuels/callscope/pkg/errors"
)

// Mode selects which direction of a node collapse or expand acts on.
type Mode int

const (
	// Outgoing acts on the node's callees.
	Outgoing Mode = 1 << iota
	// Incoming acts on the node's callers.
	Incoming
	// Both acts on callees and callers.
	Both = Outgoing | Incoming
)

// String returns the canonical name of the mode.
func (m Mode) String() string {
	switch m {
	case Outgoing:
		return "outgoing"
	case Incoming:
		return "incoming"
	case Both:
		return "both"
	default:
		return "none"
	}
}

func (m Mode) has(d Mode) bool { return m&d != 0 }

// ParseMode parses "outgoing"/"out", "incoming"/"in" or "both".
// An empty string means Both.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "outgoing", "out":
		return Outgoing, nil
	case "incoming", "in":
		return Incoming, nil
	case "both", "":
		return Both, nil
	default:
		return 0, apperrors.New(apperrors.ErrCodeInvalidOperation, "unknown collapse mode %q (want outgoing, incoming or both)", s)
	}
}

// CollapseState records which directions of a node are collapsed.
// The zero value means fully expanded; such states are never stored.
type CollapseState struct {
	Outgoing bool `json:"outgoing"`
	Incoming bool `json:"incoming"`
}

// IsZero reports whether neither direction is collapsed.
func (s CollapseState) IsZero() bool { return !s.Outgoing && !s.Incoming }

func (s CollapseState) with(m Mode, v bool) CollapseState {
	if m.has(Outgoing) {
		s.Outgoing = v
	}
	if m.has(Incoming) {
		s.Incoming = v
	}
	return s
}

// StyleTag names the visual state a renderer should give a node.
type StyleTag string

// Style tags. The border reflects the outgoing state and the background
// the incoming state; collapsed-both sets both.
const (
	StyleExpanded          StyleTag = "expanded"
	StyleCollapsedOutgoing StyleTag = "collapsed-outgoing"
	StyleCollapsedIncoming StyleTag = "collapsed-incoming"
	StyleCollapsedBoth     StyleTag = "collapsed-both"
)

// StyleFor maps a collapse state to its style tag.
func StyleFor(s CollapseState) StyleTag {
	switch {
	case s.Outgoing && s.Incoming:
		return StyleCollapsedBoth
	case s.Outgoing:
		return StyleCollapsedOutgoing
	case s.Incoming:
		return StyleCollapsedIncoming
	default:
		return StyleExpanded
	}
}
