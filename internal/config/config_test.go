package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Name != "finops-console" {
		t.Fatalf("app.name = %q", cfg.App.Name)
	}
	if cfg.Service.RequestTimeout != 15*time.Second {
		t.Fatalf("service.request_timeout = %v", cfg.Service.RequestTimeout)
	}
	if cfg.Watch.Interval != 15*time.Minute {
		t.Fatalf("watch.interval = %v", cfg.Watch.Interval)
	}
	if !cfg.Watch.AlignToBucket {
		t.Fatal("watch.align_to_bucket should default to true")
	}
	if cfg.Export.MaxRows != 100000 {
		t.Fatalf("export.max_rows = %d", cfg.Export.MaxRows)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
service:
  base_url: https://costs.example.com
  request_timeout: 5s
policy:
  policy_id: search-infra
  actor: Jamie Ops
providers:
  - id: openai
    name: OpenAI
  - id: anthropic
    name: Anthropic
watch:
  interval: 5m
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Service.BaseURL != "https://costs.example.com" {
		t.Fatalf("service.base_url = %q", cfg.Service.BaseURL)
	}
	if cfg.Service.RequestTimeout != 5*time.Second {
		t.Fatalf("service.request_timeout = %v", cfg.Service.RequestTimeout)
	}
	if cfg.Policy.PolicyID != "search-infra" {
		t.Fatalf("policy.policy_id = %q", cfg.Policy.PolicyID)
	}
	if len(cfg.Providers) != 2 || cfg.Providers[1].Name != "Anthropic" {
		t.Fatalf("providers = %+v", cfg.Providers)
	}
}

func TestValidateRejectsDuplicateProviders(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
providers:
  - id: openai
  - id: openai
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected duplicate provider id error")
	}
}

func TestValidateRequiresWebhookURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
audit:
  webhook:
    enabled: true
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected webhook url error")
	}
}

func TestResolveMaxRows(t *testing.T) {
	cfg := &Config{Export: ExportConfig{MaxRows: 500}}
	if got := cfg.ResolveMaxRows(0); got != 500 {
		t.Fatalf("default = %d", got)
	}
	if got := cfg.ResolveMaxRows(25); got != 25 {
		t.Fatalf("override = %d", got)
	}
}
