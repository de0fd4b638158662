package explorer

import (
	"testing"

	apperrors "github.com/matzehuels/callscope/pkg/errors"
	"github.com/matzehuels/callscope/pkg/visibility"
)

func TestParseOperation(t *testing.T) {
	tests := []struct {
		in      string
		want    Operation
		wantErr bool
	}{
		{in: "collapse:main.run", want: Operation{Kind: OpCollapse, NodeID: "main.run", Mode: visibility.Both}},
		{in: "collapse:main.run:out", want: Operation{Kind: OpCollapse, NodeID: "main.run", Mode: visibility.Outgoing}},
		{in: "expand:main.run:incoming", want: Operation{Kind: OpExpand, NodeID: "main.run", Mode: visibility.Incoming}},
		{in: "expand:pkg:Type:both", want: Operation{Kind: OpExpand, NodeID: "pkg:Type", Mode: visibility.Both}},
		{in: "collapse:pkg:Type", want: Operation{Kind: OpCollapse, NodeID: "pkg:Type", Mode: visibility.Both}},
		{in: "toggle:a:b", want: Operation{Kind: OpToggle, NodeID: "a:b"}},
		{in: " isolate:main.main ", want: Operation{Kind: OpIsolate, NodeID: "main.main"}},
		{in: "collapse-all", want: Operation{Kind: OpCollapseAll}},
		{in: "expand-all", want: Operation{Kind: OpExpandAll}},
		{in: "show-isolated", want: Operation{Kind: OpShowIsolated, Show: true}},
		{in: "show-isolated:off", want: Operation{Kind: OpShowIsolated}},
		{in: "depth:2", want: Operation{Kind: OpDepth, Depth: 2}},
		{in: "depth:0", want: Operation{Kind: OpDepth}},
		{in: "collapse", wantErr: true},
		{in: "collapse::outgoing", wantErr: true},
		{in: "toggle:", wantErr: true},
		{in: "collapse-all:x", wantErr: true},
		{in: "show-isolated:maybe", wantErr: true},
		{in: "depth", wantErr: true},
		{in: "depth:-1", wantErr: true},
		{in: "depth:deep", wantErr: true},
		{in: "zoom:main.main", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOperation(tt.in)
			if tt.wantErr {
				if !apperrors.Is(err, apperrors.ErrCodeInvalidOperation) {
					t.Fatalf("ParseOperation(%q) error = %v, want INVALID_OPERATION", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseOperation(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseOperation(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestOperationStringRoundTrip(t *testing.T) {
	for _, s := range []string{
		"collapse:main.run:outgoing",
		"expand:a:b:both",
		"toggle:main.init",
		"isolate:x",
		"collapse-all",
		"expand-all",
		"show-isolated:on",
		"show-isolated:off",
		"depth:3",
	} {
		op, err := ParseOperation(s)
		if err != nil {
			t.Fatalf("ParseOperation(%q) error = %v", s, err)
		}
		if op.String() != s {
			t.Errorf("ParseOperation(%q).String() = %q", s, op.String())
		}
	}
}

func TestParseOperationsStopsAtFirstError(t *testing.T) {
	ops, err := ParseOperations([]string{"collapse-all", "bogus", "expand-all"})
	if err == nil || ops != nil {
		t.Errorf("ParseOperations() = %v, %v", ops, err)
	}
}
