package root

import (
	"testing"

	"conquer/internal/engine"
)

func TestParseSubtaskSpec(t *testing.T) {
	tests := []struct {
		raw     string
		want    engine.SubTaskSpec
		wantErr bool
	}{
		{raw: "low:Wipe the counter", want: engine.SubTaskSpec{Description: "Wipe the counter", Tier: engine.TierLow}},
		{raw: "medium:Sweep floor", want: engine.SubTaskSpec{Description: "Sweep floor", Tier: engine.TierMedium}},
		{raw: "high: Mop everything ", want: engine.SubTaskSpec{Description: "Mop everything", Tier: engine.TierHigh}},
		{raw: "high:With: colon inside", want: engine.SubTaskSpec{Description: "With: colon inside", Tier: engine.TierHigh}},
		{raw: "no-colon-here", wantErr: true},
		{raw: "epic:Unknown tier", wantErr: true},
		{raw: "low:   ", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseSubtaskSpec(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseSubtaskSpec(%q) expected error, got %+v", tt.raw, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSubtaskSpec(%q): %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSubtaskSpec(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}
