package explorer

import (
	"strconv"
	"strings"

	apperrors "github.com/matzehuels/callscope/pkg/errors"
	"github.com/matzehuels/callscope/pkg/visibility"
)

// OpKind names an explorer operation.
type OpKind string

// Operation kinds, as written on the command line.
const (
	OpCollapse     OpKind = "collapse"
	OpExpand       OpKind = "expand"
	OpToggle       OpKind = "toggle"
	OpIsolate      OpKind = "isolate"
	OpCollapseAll  OpKind = "collapse-all"
	OpExpandAll    OpKind = "expand-all"
	OpShowIsolated OpKind = "show-isolated"
	OpDepth        OpKind = "depth"
)

// Operation is a parsed explorer operation.
type Operation struct {
	Kind   OpKind
	NodeID string
	Mode   visibility.Mode
	Show   bool
	Depth  int
}

// String formats the operation in the syntax accepted by [ParseOperation].
func (op Operation) String() string {
	switch op.Kind {
	case OpCollapse, OpExpand:
		return string(op.Kind) + ":" + op.NodeID + ":" + op.Mode.String()
	case OpToggle, OpIsolate:
		return string(op.Kind) + ":" + op.NodeID
	case OpShowIsolated:
		if op.Show {
			return string(op.Kind) + ":on"
		}
		return string(op.Kind) + ":off"
	case OpDepth:
		return string(op.Kind) + ":" + strconv.Itoa(op.Depth)
	default:
		return string(op.Kind)
	}
}

// ParseOperation parses one operation:
//
//	collapse:<id>[:outgoing|incoming|both]
//	expand:<id>[:outgoing|incoming|both]
//	toggle:<id>
//	isolate:<id>
//	collapse-all
//	expand-all
//	show-isolated:on|off
//	depth:<n>
//
// The mode defaults to both and depth 0 lifts the depth limit. Node ids may themselves contain colons; a
// trailing segment is only taken as the mode when it names one.
func ParseOperation(s string) (Operation, error) {
	kind, arg, _ := strings.Cut(strings.TrimSpace(s), ":")
	op := Operation{Kind: OpKind(kind)}

	switch op.Kind {
	case OpCollapse, OpExpand:
		op.Mode = visibility.Both
		if i := strings.LastIndex(arg, ":"); i >= 0 {
			if m, err := visibility.ParseMode(arg[i+1:]); err == nil && arg[i+1:] != "" {
				op.Mode = m
				arg = arg[:i]
			}
		}
		op.NodeID = arg
	case OpToggle, OpIsolate:
		op.NodeID = arg
	case OpCollapseAll, OpExpandAll:
		if arg != "" {
			return Operation{}, apperrors.New(apperrors.ErrCodeInvalidOperation, "%s takes no argument", kind)
		}
		return op, nil
	case OpShowIsolated:
		switch strings.ToLower(arg) {
		case "on", "true", "":
			op.Show = true
		case "off", "false":
			op.Show = false
		default:
			return Operation{}, apperrors.New(apperrors.ErrCodeInvalidOperation, "show-isolated wants on or off, got %q", arg)
		}
		return op, nil
	case OpDepth:
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return Operation{}, apperrors.New(apperrors.ErrCodeInvalidOperation, "depth wants a non-negative number, got %q", arg)
		}
		op.Depth = n
		return op, nil
	default:
		return Operation{}, apperrors.New(apperrors.ErrCodeInvalidOperation, "unknown operation %q", kind)
	}

	if op.NodeID == "" {
		return Operation{}, apperrors.New(apperrors.ErrCodeInvalidOperation, "%s requires a node id", kind)
	}
	return op, nil
}

// ParseOperations parses every entry of ops, stopping at the first error.
func ParseOperations(ops []string) ([]Operation, error) {
	out := make([]Operation, 0, len(ops))
	for _, s := range ops {
		op, err := ParseOperation(s)
		if err != nil {
			return nil, err
		}
		out = append(out, op)
	}
	return out, nil
}
