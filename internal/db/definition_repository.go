package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/tilecombat/internal/data"
)

// DefinitionRepository stores combat definitions and field items as YAML
// bodies, one row per name or item id.
type DefinitionRepository struct {
	db *pgxpool.Pool
}

// NewDefinitionRepository creates a new DefinitionRepository.
func NewDefinitionRepository(db *pgxpool.Pool) *DefinitionRepository {
	return &DefinitionRepository{db: db}
}

// Get loads one definition. Returns nil, nil if it does not exist.
func (r *DefinitionRepository) Get(ctx context.Context, name string) (*data.Definition, error) {
	var body string
	err := r.db.QueryRow(ctx, `SELECT body FROM combat_definitions WHERE name = $1`, name).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying combat definition %q: %w", name, err)
	}

	def, err := data.ParseDefinition([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("combat definition %q: %w", name, err)
	}
	return def, nil
}

// Save inserts or replaces a definition.
func (r *DefinitionRepository) Save(ctx context.Context, def *data.Definition) error {
	return saveDefinition(ctx, r.db, def)
}

// SaveField inserts or replaces a field item.
func (r *DefinitionRepository) SaveField(ctx context.Context, f *data.FieldDef) error {
	return saveField(ctx, r.db, f)
}

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func saveDefinition(ctx context.Context, q execer, def *data.Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	body, err := def.Marshal()
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, `
		INSERT INTO combat_definitions (name, kind, body, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE
		SET kind = EXCLUDED.kind, body = EXCLUDED.body, updated_at = now()`,
		def.Name, def.Kind, string(body),
	)
	if err != nil {
		return fmt.Errorf("saving combat definition %q: %w", def.Name, err)
	}
	return nil
}

func saveField(ctx context.Context, q execer, f *data.FieldDef) error {
	if err := f.Validate(); err != nil {
		return err
	}
	body, err := f.Marshal()
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, `
		INSERT INTO combat_fields (item_id, body, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (item_id) DO UPDATE
		SET body = EXCLUDED.body, updated_at = now()`,
		int32(f.ItemID), string(body),
	)
	if err != nil {
		return fmt.Errorf("saving combat field %d: %w", f.ItemID, err)
	}
	return nil
}

// Delete removes a definition and reports whether it existed.
func (r *DefinitionRepository) Delete(ctx context.Context, name string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM combat_definitions WHERE name = $1`, name)
	if err != nil {
		return false, fmt.Errorf("deleting combat definition %q: %w", name, err)
	}
	return tag.RowsAffected() > 0, nil
}

// LoadCatalog loads every definition and field into a catalog.
func (r *DefinitionRepository) LoadCatalog(ctx context.Context) (*data.Catalog, error) {
	cat := data.NewCatalog()

	rows, err := r.db.Query(ctx, `SELECT name, body FROM combat_definitions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying combat definitions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, body string
		if err := rows.Scan(&name, &body); err != nil {
			return nil, fmt.Errorf("scanning combat definition row: %w", err)
		}
		def, err := data.ParseDefinition([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("combat definition %q: %w", name, err)
		}
		if def.Name != name {
			return nil, fmt.Errorf("combat definition %q: body is named %q", name, def.Name)
		}
		if err := cat.Add(def); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating combat definition rows: %w", err)
	}

	fields, err := r.db.Query(ctx, `SELECT item_id, body FROM combat_fields ORDER BY item_id`)
	if err != nil {
		return nil, fmt.Errorf("querying combat fields: %w", err)
	}
	defer fields.Close()

	for fields.Next() {
		var itemID int32
		var body string
		if err := fields.Scan(&itemID, &body); err != nil {
			return nil, fmt.Errorf("scanning combat field row: %w", err)
		}
		f, err := data.ParseField([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("combat field %d: %w", itemID, err)
		}
		if err := cat.AddField(f); err != nil {
			return nil, err
		}
	}
	if err := fields.Err(); err != nil {
		return nil, fmt.Errorf("iterating combat field rows: %w", err)
	}

	return cat, nil
}

// Import saves every definition and field of cat in one transaction.
func (r *DefinitionRepository) Import(ctx context.Context, cat *data.Catalog) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "error", err)
		}
	}()

	for _, name := range cat.Names() {
		def, _ := cat.Get(name)
		if err := saveDefinition(ctx, tx, def); err != nil {
			return err
		}
	}
	for _, f := range cat.Fields() {
		if err := saveField(ctx, tx, f); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	return nil
}
