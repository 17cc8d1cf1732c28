package config

import (
	"strings"
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("AWS_REGION", "eu-north-1")
	t.Setenv("S3_BUCKET_NAME", "plantwatch-uploads")
	t.Setenv("LEX_BOT_ID", "BOT123")
	t.Setenv("LEX_BOT_ALIAS_ID", "ALIAS456")
}

func TestLoadWithRequiredVariables(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.AWS.Bucket != "plantwatch-uploads" {
		t.Fatalf("bucket = %q", cfg.AWS.Bucket)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr = %q, want :8080 default", cfg.Server.Addr)
	}
	if cfg.Assistant.Provider != ProviderLex {
		t.Fatalf("provider = %q, want lex default", cfg.Assistant.Provider)
	}
	if cfg.Simulated {
		t.Fatal("simulated defaulted to true")
	}
	if !strings.Contains(cfg.Weather.BaseURL, "smhi.se") {
		t.Fatalf("weather base URL = %q, want SMHI default", cfg.Weather.BaseURL)
	}
}

func TestLoadMissingRequiredVariableFails(t *testing.T) {
	setRequired(t)
	t.Setenv("LEX_BOT_ID", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing LEX_BOT_ID")
	}
}

func TestLoadArkProviderRequiresCredentials(t *testing.T) {
	setRequired(t)
	t.Setenv("ASSISTANT_PROVIDER", "ark")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for ark provider without credentials")
	}

	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("ARK_MODEL", "doubao-pro")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Assistant.Provider != ProviderArk {
		t.Fatalf("provider = %q, want ark", cfg.Assistant.Provider)
	}
}

func TestLoadInvalidProviderFails(t *testing.T) {
	setRequired(t)
	t.Setenv("ASSISTANT_PROVIDER", "clippy")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLoadCustomPort(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("addr = %q, want :9090", cfg.Server.Addr)
	}
}
