package core

import (
	"testing"

	lcerrors "github.com/go-drift/lifecycle/pkg/errors"
)

func TestParseMoment(t *testing.T) {
	tests := []struct {
		name string
		want Moment
	}{
		{"", MomentEffect},
		{"effect", MomentEffect},
		{"layoutEffect", MomentLayoutEffect},
		{"memo", MomentMemo},
	}
	for _, tt := range tests {
		got, err := ParseMoment(tt.name)
		if err != nil {
			t.Errorf("ParseMoment(%q): %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ParseMoment(%q) = %v, want %v", tt.name, got, tt.want)
		}
		if tt.name != "" && got.String() != tt.name {
			t.Errorf("String() = %q, want %q", got.String(), tt.name)
		}
	}
}

func TestParseMoment_Unknown(t *testing.T) {
	_, err := ParseMoment("afterPaint")
	if !lcerrors.Is(err, lcerrors.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}
