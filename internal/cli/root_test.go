package cli

import (
	"testing"

	"github.com/spf13/pflag"

	"github.com/lumipallolabs/dupedive/internal/config"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addScanFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return fs
}

func TestApplyFlagsUnsetKeepsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Hash = "xxh64"
	cfg.Workers = 3
	cfg.Verify = true

	if err := applyFlags(cfg, newFlags(t)); err != nil {
		t.Fatal(err)
	}
	if cfg.Hash != "xxh64" || cfg.Workers != 3 || !cfg.Verify || !cfg.Watch {
		t.Errorf("config changed by unset flags: %+v", cfg)
	}
}

func TestApplyFlagsOverrides(t *testing.T) {
	cfg := config.Default()

	fs := newFlags(t, "--hash", "crc32", "--verify", "--workers", "2", "--skip-empty", "--no-watch")
	if err := applyFlags(cfg, fs); err != nil {
		t.Fatal(err)
	}
	if cfg.Hash != "crc32" || !cfg.Verify || cfg.Workers != 2 || !cfg.SkipEmpty || cfg.Watch {
		t.Errorf("flags not applied: %+v", cfg)
	}
}

func TestApplyFlagsValidates(t *testing.T) {
	if err := applyFlags(config.Default(), newFlags(t, "--hash", "md5")); err == nil {
		t.Error("expected an error for an unknown hash")
	}
	if err := applyFlags(config.Default(), newFlags(t, "--workers", "0")); err == nil {
		t.Error("expected an error for zero workers")
	}
}
