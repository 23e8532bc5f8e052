package commands

import (
	"testing"
)

func TestParseItemRef(t *testing.T) {
	tests := []struct {
		args    []string
		want    int
		wantErr string
	}{
		{[]string{"5"}, 5, ""},
		{[]string{"12", "extra"}, 12, ""},
		{[]string{"0"}, 0, ""},
		{nil, 0, "item reference required"},
		{[]string{"a1"}, 0, "invalid item reference: a1"},
		{[]string{"-1"}, 0, "invalid item reference: -1"},
		{[]string{"1.5"}, 0, "invalid item reference: 1.5"},
		{[]string{"٣"}, 0, "invalid item reference: ٣"},
		{[]string{""}, 0, "invalid item reference: "},
	}
	for _, tt := range tests {
		got, err := ParseItemRef(tt.args)
		if tt.wantErr != "" {
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("%q: expected error %q, got %v", tt.args, tt.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.args, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: expected %d, got %d", tt.args, tt.want, got)
		}
	}
}

func TestParseItemRef_RequiredSentinel(t *testing.T) {
	if _, err := ParseItemRef([]string{}); err != ErrItemRefRequired {
		t.Errorf("expected ErrItemRefRequired, got %v", err)
	}
}
