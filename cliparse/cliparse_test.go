// cliparse/cliparse_test.go
package cliparse

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("ADMIN_KEY", "test-admin-key")
	t.Setenv("IP_HASH_SALT", "test-ip-salt")
}

func TestParseFlags_EnvVars(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("RESULTS_CACHE_TTL", "1m")
	t.Setenv("MAX_DOCUMENT_SIZE", "5 MiB")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.ResultsCacheTTL != time.Minute {
		t.Errorf("expected results TTL 1m, got %s", cfg.ResultsCacheTTL)
	}
	if cfg.MaxDocumentBytes != 5*1024*1024 {
		t.Errorf("expected 5 MiB document limit, got %d", cfg.MaxDocumentBytes)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := ParseFlags(nil)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected default database type postgres, got %q", cfg.DatabaseType)
	}
	if cfg.ResultsCacheTTL != 30*time.Second {
		t.Errorf("expected default results TTL 30s, got %s", cfg.ResultsCacheTTL)
	}
	if cfg.DocumentPrefix != "nominations" {
		t.Errorf("expected default document prefix, got %q", cfg.DocumentPrefix)
	}
	if cfg.MaxDocumentBytes != 10*1000*1000 {
		t.Errorf("expected 10MB document limit, got %d", cfg.MaxDocumentBytes)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-t", "sqlite", "-admin-key", "k1", "-ip-salt", "s1"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected sqlite, got %q", cfg.DatabaseType)
	}
}

func TestParseFlags_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{"ADMIN_KEY": "k", "IP_HASH_SALT": "s"}},
		{"missing admin key", map[string]string{"DATABASE_URL": "x", "IP_HASH_SALT": "s"}},
		{"missing ip salt", map[string]string{"DATABASE_URL": "x", "ADMIN_KEY": "k"}},
		{"bad database type", map[string]string{"DATABASE_URL": "x", "ADMIN_KEY": "k", "IP_HASH_SALT": "s", "DATABASE_TYPE": "mysql"}},
		{"bad document size", map[string]string{"DATABASE_URL": "x", "ADMIN_KEY": "k", "IP_HASH_SALT": "s", "MAX_DOCUMENT_SIZE": "lots"}},
		{"bad ttl", map[string]string{"DATABASE_URL": "x", "ADMIN_KEY": "k", "IP_HASH_SALT": "s", "RESULTS_CACHE_TTL": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"DATABASE_URL", "ADMIN_KEY", "IP_HASH_SALT"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(nil); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
