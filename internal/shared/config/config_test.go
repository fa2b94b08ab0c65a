package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ENV", "OBJECT_STORE", "SEARCH_BACKEND", "ADMIN_PREFIX", "DOCUMENTS_SERVE_PREFIX",
		"MAX_UPLOAD_BYTES", "DOCUMENT_EXTENSIONS", "JWT_SECRET",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.ObjectStoreType != "local" {
		t.Fatalf("expected local store, got %q", cfg.ObjectStoreType)
	}
	if cfg.SearchBackend != "memory" {
		t.Fatalf("expected memory search backend, got %q", cfg.SearchBackend)
	}
	if cfg.AdminPrefix != "/admin" {
		t.Fatalf("expected /admin, got %q", cfg.AdminPrefix)
	}
	if cfg.DocumentsServePrefix != "/documents" {
		t.Fatalf("expected /documents, got %q", cfg.DocumentsServePrefix)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("expected 10MB upload cap, got %d", cfg.MaxUploadBytes)
	}
	if cfg.JWTSecret != "dev-secret" {
		t.Fatalf("expected dev secret fallback, got %q", cfg.JWTSecret)
	}
	if !cfg.IsDevLike() {
		t.Fatalf("expected dev-like config")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SEARCH_BACKEND", "Redis")
	t.Setenv("ADMIN_PREFIX", "cms/")
	t.Setenv("DOCUMENT_EXTENSIONS", "PDF, .docx ,,txt")
	t.Setenv("UPLOAD_RATE_PER_MINUTE", "2.5")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	if cfg.Env != "production" {
		t.Fatalf("expected production, got %q", cfg.Env)
	}
	if cfg.IsDevLike() {
		t.Fatalf("production must not be dev-like")
	}
	if cfg.SearchBackend != "redis" {
		t.Fatalf("expected redis, got %q", cfg.SearchBackend)
	}
	if cfg.AdminPrefix != "/cms" {
		t.Fatalf("expected /cms, got %q", cfg.AdminPrefix)
	}
	if want := []string{"pdf", "docx", "txt"}; !reflect.DeepEqual(cfg.DocumentExtensions, want) {
		t.Fatalf("expected %v, got %v", want, cfg.DocumentExtensions)
	}
	if cfg.UploadRatePerMinute != 2.5 {
		t.Fatalf("expected 2.5, got %v", cfg.UploadRatePerMinute)
	}
	if cfg.RedisDB != 0 {
		t.Fatalf("expected invalid REDIS_DB to fall back to 0, got %d", cfg.RedisDB)
	}
}
