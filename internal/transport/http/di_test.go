package http

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/astro-web3/recipebox/internal/config"
	"github.com/astro-web3/recipebox/internal/infra/storage"
	"github.com/astro-web3/recipebox/internal/infra/store"
)

func TestOpenDatabase_MigratesAndSeeds(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.DSN = filepath.Join(t.TempDir(), "recipebox.db")
	cfg.Database.SeedOnStart = true
	cfg.Seed.Email = "demo@example.com"
	cfg.Seed.Password = "DemoPassword123!"
	cfg.Seed.Name = "Demo User"

	db, err := openDatabase(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	n, err := store.NewUserRepository(db).Count(context.Background())
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if n != 1 {
		t.Errorf("expected seeded demo user, got %d users", n)
	}
}

func TestOpenDatabase_UnknownDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = "mysql"
	cfg.Database.DSN = "whatever"

	if _, err := openDatabase(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNewImageStorage(t *testing.T) {
	cfg := &config.Config{}
	if _, ok := newImageStorage(cfg).(storage.LogStorage); !ok {
		t.Error("expected log storage without a bucket")
	}

	cfg.Storage.S3.Bucket = "photos"
	cfg.Storage.S3.Region = "us-east-1"
	cfg.Storage.S3.Endpoint = "http://localhost:9000"
	if _, ok := newImageStorage(cfg).(*storage.S3Storage); !ok {
		t.Error("expected s3 storage with a bucket")
	}
}
