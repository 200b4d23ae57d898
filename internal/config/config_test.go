package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeTempConfig(t, "seed: 7\nyears: 12\nsettlement:\n  name: Oakvale\n  radius: 2\nevents:\n  StartDating:\n    probability: 0.5\n    threshold: 0.6\n  Divorce:\n    enabled: false\n")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Seed != 7 || cfg.Years != 12 {
			t.Fatalf("unexpected seed/years: %d/%d", cfg.Seed, cfg.Years)
		}
		if cfg.Settlement.Name != "Oakvale" || cfg.Settlement.Radius != 2 {
			t.Fatalf("unexpected settlement: %+v", cfg.Settlement)
		}
		if cfg.Settlement.SeedFamilies != Default().Settlement.SeedFamilies {
			t.Fatalf("expected default seed_families to survive, got %d", cfg.Settlement.SeedFamilies)
		}
		if cfg.DaysPerTick != 30 {
			t.Fatalf("expected default days_per_tick, got %d", cfg.DaysPerTick)
		}
		if p := cfg.EventProbability("StartDating", 0.9); p != 0.5 {
			t.Fatalf("expected probability override, got %v", p)
		}
		if th := cfg.EventThreshold("StartDating", 0.7); th != 0.6 {
			t.Fatalf("expected threshold override, got %v", th)
		}
		if p := cfg.EventProbability("GetMarried", 0.1); p != 0.1 {
			t.Fatalf("expected default probability, got %v", p)
		}
		if cfg.EventEnabled("Divorce") {
			t.Fatalf("expected Divorce disabled")
		}
		if !cfg.EventEnabled("GetMarried") {
			t.Fatalf("expected GetMarried enabled")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := writeTempConfig(t, "years: [\n")
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("zero days per tick", func(t *testing.T) {
		path := writeTempConfig(t, "days_per_tick: 0\n")
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("blank settlement name", func(t *testing.T) {
		path := writeTempConfig(t, "settlement:\n  name: \"  \"\n")
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("probability out of range", func(t *testing.T) {
		path := writeTempConfig(t, "events:\n  Retire:\n    probability: 1.5\n")
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unknown log level", func(t *testing.T) {
		path := writeTempConfig(t, "log_level: loud\n")
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	if err != nil || lvl != slog.LevelDebug {
		t.Fatalf("expected debug, got %v %v", lvl, err)
	}
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "hamlet.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}
