package sources

import (
	"context"
	"testing"
)

func TestAtempoChain(t *testing.T) {
	tests := []struct {
		factor float64
		want   string
	}{
		{2.0, "atempo=2"},
		{1.5, "atempo=1.5"},
		{3.0, "atempo=2.0,atempo=1.5"},
		{4.0, "atempo=2.0,atempo=2"},
		{0.25, "atempo=0.5,atempo=0.5"},
	}
	for _, tt := range tests {
		if got := atempoChain(tt.factor); got != tt.want {
			t.Errorf("atempoChain(%v) = %q, want %q", tt.factor, got, tt.want)
		}
	}
}

func TestSpeedUpAudioRejectsBadFactor(t *testing.T) {
	for _, factor := range []float64{0, -1.5} {
		if err := SpeedUpAudio(context.Background(), "in.mp3", "out.mp3", factor); err == nil {
			t.Errorf("factor %v: expected error", factor)
		}
	}
}
