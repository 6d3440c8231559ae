package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load(nil) returned error: %v", err)
	}
	if cfg.NumWays != 4 || cfg.NumRows != 64 || cfg.BlockSize != 64 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Mode != Standard {
		t.Fatalf("expected Standard mode by default, got %v", cfg.Mode)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(map[string]string{
		"num_ways":   "2",
		"num_rows":   "2",
		"blocksize":  "64",
		"mode":       "INCLUSIVE",
		"next_level": "l2",
	})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.NumWays != 2 || cfg.NumRows != 2 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.Mode != Inclusive {
		t.Fatalf("expected Inclusive mode, got %v", cfg.Mode)
	}
	if cfg.NextLevel != "l2" {
		t.Fatalf("expected next_level l2, got %q", cfg.NextLevel)
	}
}

func TestLoad_UnknownMode(t *testing.T) {
	_, err := Load(map[string]string{"mode": "BOGUS"})
	if err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestLoad_ExclusiveModeRejected(t *testing.T) {
	_, err := Load(map[string]string{"mode": "EXCLUSIVE"})
	if err == nil {
		t.Fatal("expected error for EXCLUSIVE mode (reserved, unimplemented)")
	}
}

func TestLoad_RowsNotPowerOfTwo(t *testing.T) {
	_, err := Load(map[string]string{"num_rows": "3"})
	if err == nil {
		t.Fatal("expected error for non-power-of-two num_rows")
	}
}

func TestLoad_ZeroWays(t *testing.T) {
	_, err := Load(map[string]string{"num_ways": "0"})
	if err == nil {
		t.Fatal("expected error for num_ways=0")
	}
}
