package config

import (
	"runtime"
	"testing"
)

func TestNormalizeClampsWorkers(t *testing.T) {
	limit := runtime.NumCPU() * maxWorkersPerCPU

	cases := []struct {
		name string
		in   int
		want int
	}{
		{"zero falls back to default", 0, 8},
		{"negative falls back to default", -3, 8},
		{"within limit untouched", 2, 2},
		{"above limit clamped", limit + 100, limit},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := &Config{Workers: Workers{Max: c.in}}
			cfg.Normalize()
			want := c.want
			if want > limit {
				want = limit
			}
			if cfg.Workers.Max != want {
				t.Fatalf("Workers.Max = %d, want %d", cfg.Workers.Max, want)
			}
		})
	}
}

func TestNormalizeScalerDefaults(t *testing.T) {
	cfg := &Config{Scaler: Scaler{MinDimension: -1, JPEGQuality: 101}}
	cfg.Normalize()

	if cfg.Scaler.MinDimension != 350 {
		t.Errorf("MinDimension = %d, want 350", cfg.Scaler.MinDimension)
	}
	if cfg.Scaler.JPEGQuality != 90 {
		t.Errorf("JPEGQuality = %d, want 90", cfg.Scaler.JPEGQuality)
	}
	if cfg.Scaler.OutputSubdir != "resized_backgrounds" {
		t.Errorf("OutputSubdir = %q, want resized_backgrounds", cfg.Scaler.OutputSubdir)
	}
}
