package configs

import (
	"strings"
	"testing"
)

// setRequiredEnv fills in the settings without development defaults and
// pins everything else to a clean development state.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("S3_PUBLIC_BASE_URL", "")
	t.Setenv("S3_BUCKET_NAME", "chirp-media")
	t.Setenv("S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("S3_ACCESS_KEY_ID", "test-access-key")
	t.Setenv("S3_SECRET_ACCESS_KEY", "test-secret-key")
}

func TestLoadConfigDevelopmentDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf(`expected environment "development", got %q`, cfg.Environment)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.JWTSecret == "" {
		t.Error("expected a development default JWT secret")
	}
	if cfg.DatabaseDSN == "" {
		t.Error("expected a development default database DSN")
	}
	if cfg.S3PublicBaseURL != "http://localhost:9000/chirp-media" {
		t.Errorf("unexpected derived public base URL: %q", cfg.S3PublicBaseURL)
	}
}

func TestLoadConfigRejectsInvalidPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "not-a-number")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected an error for a non-numeric port")
	}
}

func TestLoadConfigRejectsPrivilegedPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "80")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected an error for a privileged port")
	}
}

func TestLoadConfigRequiresJWTSecretInProduction(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "postgres://app@db/chirp")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("expected an error when JWT_SECRET is missing in production")
	}
	if !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("error should name the missing variable, got: %v", err)
	}
}

func TestLoadConfigRequiresDatabaseURLInProduction(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected an error when DATABASE_URL is missing in production")
	}
}

func TestLoadConfigRequiresObjectStoreSettings(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("S3_BUCKET_NAME", "")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected an error when S3_BUCKET_NAME is missing")
	}
}

func TestLoadConfigParsesAllowedOrigins(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "https://chirp.example.com, https://admin.example.com ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	want := []string{"https://chirp.example.com", "https://admin.example.com"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("expected %d origins, got %d", len(want), len(cfg.AllowedOrigins))
	}
	for i := range want {
		if cfg.AllowedOrigins[i] != want[i] {
			t.Errorf("origin %d: expected %q, got %q", i, want[i], cfg.AllowedOrigins[i])
		}
	}
}

func TestLoadConfigTrimsPublicBaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("S3_PUBLIC_BASE_URL", "https://cdn.example.com/")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.S3PublicBaseURL != "https://cdn.example.com" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.S3PublicBaseURL)
	}
}
