package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost:5432/contracts")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != "development" {
		t.Errorf("environment = %q, want development", cfg.Environment)
	}
	if cfg.HTTP.Host != "0.0.0.0" || cfg.HTTP.Port != 7090 {
		t.Errorf("http = %s:%d, want 0.0.0.0:7090", cfg.HTTP.Host, cfg.HTTP.Port)
	}
	if !reflect.DeepEqual(cfg.HTTP.AllowedOrigins, []string{"*"}) {
		t.Errorf("allowed origins = %v, want [*]", cfg.HTTP.AllowedOrigins)
	}
	if cfg.Audit.BufferSize != 256 {
		t.Errorf("audit buffer = %d, want 256", cfg.Audit.BufferSize)
	}
	if cfg.NATS.SubjectPrefix != "notifications.contracts" {
		t.Errorf("nats subject prefix = %q", cfg.NATS.SubjectPrefix)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_PORT", "8081")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("DB_DSN", "postgres://db:5432/contracts")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("NATS_URL", "nats://nats:4222")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != "production" {
		t.Errorf("environment = %q", cfg.Environment)
	}
	if cfg.HTTP.Port != 8081 {
		t.Errorf("port = %d, want 8081", cfg.HTTP.Port)
	}
	want := []string{"https://app.example.com", "https://admin.example.com"}
	if !reflect.DeepEqual(cfg.HTTP.AllowedOrigins, want) {
		t.Errorf("allowed origins = %v, want %v", cfg.HTTP.AllowedOrigins, want)
	}
	if cfg.NATS.URL != "nats://nats:4222" {
		t.Errorf("nats url = %q", cfg.NATS.URL)
	}
}

func TestLoadRequiredSettings(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	if _, err := Load(); err == nil {
		t.Error("Load succeeded without DB_DSN")
	}

	t.Setenv("DB_DSN", "postgres://db:5432/contracts")
	t.Setenv("JWT_ACCESS_SECRET", "")
	if _, err := Load(); err == nil {
		t.Error("Load succeeded without JWT_ACCESS_SECRET")
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"  ", nil},
		{"a", []string{"a"}},
		{"a, b ,c,", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		if got := parseList(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseList(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
