package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage.Backend != BackendDisk {
		t.Fatalf("expected disk backend by default, got %s", cfg.Storage.Backend)
	}
	if cfg.Storage.MaxUploadBytes != 10*1024*1024 {
		t.Fatalf("expected 10 MiB upload limit, got %d", cfg.Storage.MaxUploadBytes)
	}
	if cfg.Storage.StrictFolderRefs {
		t.Fatalf("expected strict folder refs off by default")
	}
	if cfg.Server.Address() != "0.0.0.0:8080" {
		t.Fatalf("unexpected address %s", cfg.Server.Address())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DOCSHELF_BLOB_BACKEND", "MinIO")
	t.Setenv("DOCSHELF_MAX_UPLOAD_BYTES", "2048")
	t.Setenv("DOCSHELF_STRICT_FOLDER_REFS", "yes")
	t.Setenv("DOCSHELF_API_READ_TIMEOUT", "5s")
	t.Setenv("POSTGRES_PORT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage.Backend != BackendMinIO {
		t.Fatalf("expected minio backend, got %s", cfg.Storage.Backend)
	}
	if cfg.Storage.MaxUploadBytes != 2048 {
		t.Fatalf("expected 2048, got %d", cfg.Storage.MaxUploadBytes)
	}
	if !cfg.Storage.StrictFolderRefs {
		t.Fatalf("expected strict folder refs on")
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("expected 5s read timeout, got %s", cfg.Server.ReadTimeout)
	}
	if cfg.Postgres.Port != 5432 {
		t.Fatalf("expected fallback port on parse failure, got %d", cfg.Postgres.Port)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("DOCSHELF_BLOB_BACKEND", "tape")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestPostgresURLs(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}

	if p.DSN() != "postgres://u:p@db:5432/d?sslmode=disable" {
		t.Fatalf("unexpected DSN %s", p.DSN())
	}
	if p.MigrateURL() != "pgx5://u:p@db:5432/d?sslmode=disable" {
		t.Fatalf("unexpected migrate URL %s", p.MigrateURL())
	}
}
