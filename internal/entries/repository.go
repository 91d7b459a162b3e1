package entries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/openble/tuya-ble-bridge/internal/credentials"
)

// Repository defines the interface for config entry persistence.
// This abstraction allows for different implementations (SQLite, mock)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves an entry by its unique identifier.
	// Returns ErrEntryNotFound if the entry does not exist.
	GetByID(ctx context.Context, id string) (*ConfigEntry, error)

	// List retrieves all entries.
	List(ctx context.Context) ([]ConfigEntry, error)

	// ListByKind retrieves all entries of one kind.
	ListByKind(ctx context.Context, kind Kind) ([]ConfigEntry, error)

	// Create inserts a new entry, generating an ID if none is set.
	// Returns ErrEntryExists if the ID already exists.
	Create(ctx context.Context, entry *ConfigEntry) error

	// Update modifies an existing entry's title, data, and options.
	// Returns ErrEntryNotFound if the entry does not exist.
	Update(ctx context.Context, entry *ConfigEntry) error

	// Delete removes an entry by ID.
	// Returns ErrEntryNotFound if the entry does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves an entry by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*ConfigEntry, error) {
	query := `
		SELECT id, kind, title, data, options, created_at, updated_at
		FROM config_entries
		WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("querying entry by id: %w", err)
	}
	return entry, nil
}

// List retrieves all entries.
func (r *SQLiteRepository) List(ctx context.Context) ([]ConfigEntry, error) {
	query := `
		SELECT id, kind, title, data, options, created_at, updated_at
		FROM config_entries
		ORDER BY created_at`

	return r.queryEntries(ctx, query)
}

// ListByKind retrieves all entries of one kind.
func (r *SQLiteRepository) ListByKind(ctx context.Context, kind Kind) ([]ConfigEntry, error) {
	query := `
		SELECT id, kind, title, data, options, created_at, updated_at
		FROM config_entries
		WHERE kind = ?
		ORDER BY created_at`

	return r.queryEntries(ctx, query, string(kind))
}

// Create inserts a new entry.
func (r *SQLiteRepository) Create(ctx context.Context, entry *ConfigEntry) error {
	if !entry.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, entry.Kind)
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	dataJSON, optionsJSON, err := marshalRecords(entry)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	query := `
		INSERT INTO config_entries (id, kind, title, data, options, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		entry.ID, string(entry.Kind), entry.Title,
		dataJSON, optionsJSON,
		entry.CreatedAt.Format(time.RFC3339), entry.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return ErrEntryExists
		}
		return fmt.Errorf("inserting entry: %w", err)
	}
	return nil
}

// Update modifies an existing entry's title, data, and options.
func (r *SQLiteRepository) Update(ctx context.Context, entry *ConfigEntry) error {
	dataJSON, optionsJSON, err := marshalRecords(entry)
	if err != nil {
		return err
	}

	entry.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE config_entries
		SET title = ?, data = ?, options = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		entry.Title, dataJSON, optionsJSON,
		entry.UpdatedAt.Format(time.RFC3339), entry.ID,
	)
	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if rows == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// Delete removes an entry by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM config_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if rows == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// queryEntries runs a multi-row query and scans the results.
func (r *SQLiteRepository) queryEntries(ctx context.Context, query string, args ...any) ([]ConfigEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var out []ConfigEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		out = append(out, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return out, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*ConfigEntry, error) {
	var entry ConfigEntry
	var kind, createdAt, updatedAt string
	var dataJSON, optionsJSON []byte

	err := row.Scan(&entry.ID, &kind, &entry.Title, &dataJSON, &optionsJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	entry.Kind = Kind(kind)
	if err := json.Unmarshal(dataJSON, &entry.Data); err != nil {
		return nil, fmt.Errorf("unmarshalling data: %w", err)
	}
	if err := json.Unmarshal(optionsJSON, &entry.Options); err != nil {
		return nil, fmt.Errorf("unmarshalling options: %w", err)
	}
	if entry.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if entry.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &entry, nil
}

func marshalRecords(entry *ConfigEntry) (data []byte, options []byte, err error) {
	if entry.Data == nil {
		entry.Data = credentials.Data{}
	}
	if entry.Options == nil {
		entry.Options = credentials.Data{}
	}
	data, err = json.Marshal(entry.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("marshalling data: %w", err)
	}
	options, err = json.Marshal(entry.Options)
	if err != nil {
		return nil, nil, fmt.Errorf("marshalling options: %w", err)
	}
	return data, options, nil
}

// LoginRecords extracts the login-bearing record of every entry of one
// kind, in storage order. This is the shape BuildCache consumes.
func LoginRecords(entries []ConfigEntry) []credentials.Data {
	out := make([]credentials.Data, 0, len(entries))
	for i := range entries {
		out = append(out, entries[i].LoginRecord())
	}
	return out
}
