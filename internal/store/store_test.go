package store

import (
	"context"
	"testing"
)

func TestOpen_SQLiteMemory(t *testing.T) {
	repo, err := Open(context.Background(), Config{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer repo.Close()

	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	ps, err := repo.ListProviders(context.Background())
	if err != nil {
		t.Fatalf("ListProviders: %v", err)
	}
	if len(ps) != 1 || ps[0].Name != "google" {
		t.Fatalf("providers = %+v", ps)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: "mongo"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
