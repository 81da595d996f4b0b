package config

import (
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.DefaultModel != "openai/gpt-4o-mini" {
		t.Errorf("default model = %q", c.DefaultModel)
	}
	if c.HTTPTimeoutSec != 60 || c.RetryMaxAttempts != 3 {
		t.Errorf("http/retry defaults = %d/%d", c.HTTPTimeoutSec, c.RetryMaxAttempts)
	}
	if c.MaxTokens != 500 || c.Temperature != 0.1 {
		t.Errorf("generation defaults = %d/%v", c.MaxTokens, c.Temperature)
	}
	if c.IQRMultiplier != 1.5 {
		t.Errorf("iqr multiplier = %v", c.IQRMultiplier)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	want := &Global{
		APIKey:           "sk-or-test",
		DefaultModel:     "anthropic/claude-3-haiku",
		HTTPTimeoutSec:   30,
		RetryMaxAttempts: 5,
		RetryBaseDelayMs: 100,
		RetryMaxDelayMs:  1000,
		MaxTokens:        256,
		Temperature:      0.3,
		IQRMultiplier:    2.0,
	}
	if err := Save(want, path); err != nil {
		t.Fatal(err)
	}
	// Keep ambient credentials out of the roundtrip.
	t.Setenv("AUTOTAB_API_KEY", "")
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.DefaultModel != want.DefaultModel || got.MaxTokens != want.MaxTokens {
		t.Errorf("roundtrip model/tokens = %q/%d", got.DefaultModel, got.MaxTokens)
	}
	if got.IQRMultiplier != want.IQRMultiplier {
		t.Errorf("roundtrip iqr = %v", got.IQRMultiplier)
	}
	if got.APIKey != want.APIKey {
		t.Errorf("roundtrip api key = %q", got.APIKey)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Save(&Global{DefaultModel: "from-file"}, path); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AUTOTAB_DEFAULT_MODEL", "from-env")
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.DefaultModel != "from-env" {
		t.Errorf("model = %q, want env to win", c.DefaultModel)
	}
}

func TestAPIKeyProviderFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("AUTOTAB_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-fallback")
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.APIKey != "sk-or-fallback" {
		t.Errorf("api key = %q, want provider fallback", c.APIKey)
	}
}
