package entries

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/openble/tuya-ble-bridge/internal/credentials"
	"github.com/openble/tuya-ble-bridge/internal/infrastructure/database"
)

func openTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "entries.db"),
		WALMode:     true,
		BusyTimeout: 1,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE config_entries (
			id         TEXT PRIMARY KEY,
			kind       TEXT NOT NULL,
			title      TEXT NOT NULL DEFAULT '',
			data       TEXT NOT NULL DEFAULT '{}',
			options    TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	return NewSQLiteRepository(db.DB)
}

func accountEntry() *ConfigEntry {
	return &ConfigEntry{
		Kind:  KindAccount,
		Title: "Tuya account",
		Data: credentials.Data{
			credentials.FieldEndpoint:     "https://openapi.tuyaeu.com",
			credentials.FieldAccessID:     "A",
			credentials.FieldAccessSecret: "S",
			credentials.FieldUsername:     "U",
			credentials.FieldPassword:     "P",
			credentials.FieldCountryCode:  "C",
		},
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	entry := accountEntry()
	if err := repo.Create(ctx, entry); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if entry.ID == "" {
		t.Fatal("Create() did not generate an ID")
	}

	got, err := repo.GetByID(ctx, entry.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Kind != KindAccount || got.Title != "Tuya account" {
		t.Errorf("got = %+v", got)
	}
	if got.Data[credentials.FieldUsername] != "U" {
		t.Errorf("data round trip lost fields: %v", got.Data)
	}
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo := openTestRepo(t)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("GetByID() error = %v, want ErrEntryNotFound", err)
	}
}

func TestRepository_Create_DuplicateID(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	entry := accountEntry()
	entry.ID = "fixed-id"
	if err := repo.Create(ctx, entry); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dup := accountEntry()
	dup.ID = "fixed-id"
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrEntryExists) {
		t.Errorf("Create() error = %v, want ErrEntryExists", err)
	}
}

func TestRepository_Create_InvalidKind(t *testing.T) {
	repo := openTestRepo(t)

	entry := &ConfigEntry{Kind: "bogus"}
	if err := repo.Create(context.Background(), entry); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("Create() error = %v, want ErrInvalidKind", err)
	}
}

func TestRepository_Update(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	entry := accountEntry()
	if err := repo.Create(ctx, entry); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	entry.Options = credentials.Data{credentials.FieldUUID: "uuid-1"}
	entry.Title = "renamed"
	if err := repo.Update(ctx, entry); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(ctx, entry.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "renamed" || got.Options[credentials.FieldUUID] != "uuid-1" {
		t.Errorf("got = %+v, update not applied", got)
	}

	missing := accountEntry()
	missing.ID = "missing"
	if err := repo.Update(ctx, missing); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Update() error = %v, want ErrEntryNotFound", err)
	}
}

func TestRepository_Delete(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	entry := accountEntry()
	if err := repo.Create(ctx, entry); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Delete(ctx, entry.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, entry.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrEntryNotFound", err)
	}

	if err := repo.Delete(ctx, entry.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("second Delete() error = %v, want ErrEntryNotFound", err)
	}
}

func TestRepository_ListByKind(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, accountEntry()); err != nil {
		t.Fatalf("Create(account) error = %v", err)
	}
	device := &ConfigEntry{
		Kind: KindDevice,
		Data: credentials.Data{credentials.FieldAddress: "AA:BB:CC:DD:EE:FF"},
		Options: credentials.Data{
			credentials.FieldUsername: "U",
		},
	}
	if err := repo.Create(ctx, device); err != nil {
		t.Fatalf("Create(device) error = %v", err)
	}

	accounts, err := repo.ListByKind(ctx, KindAccount)
	if err != nil {
		t.Fatalf("ListByKind(account) error = %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("len(accounts) = %d, want 1", len(accounts))
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len(all) = %d, want 2", len(all))
	}
}

func TestLoginRecord_SourceByKind(t *testing.T) {
	account := &ConfigEntry{Kind: KindAccount, Data: credentials.Data{"k": "from-data"}}
	device := &ConfigEntry{Kind: KindDevice, Options: credentials.Data{"k": "from-options"}}

	if account.LoginRecord()["k"] != "from-data" {
		t.Error("account entry should source login from Data")
	}
	if device.LoginRecord()["k"] != "from-options" {
		t.Error("device entry should source login from Options")
	}
}

func TestLoginRecords(t *testing.T) {
	list := []ConfigEntry{
		{Kind: KindAccount, Data: credentials.Data{"k": "a"}},
		{Kind: KindDevice, Options: credentials.Data{"k": "b"}},
	}

	records := LoginRecords(list)
	if len(records) != 2 || records[0]["k"] != "a" || records[1]["k"] != "b" {
		t.Errorf("LoginRecords() = %v", records)
	}
}
