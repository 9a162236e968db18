package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/abri-data/internal/schema"
)

// schemaLockKey serializes concurrent InitSchema calls across processes.
const schemaLockKey int64 = 0x41425249

// InitSchema creates every table and index that does not exist yet.
// Existing tables and rows are left alone, so it is safe on every start.
func (s *Store) InitSchema(ctx context.Context) error {
	stmts := schema.Statements()

	err := s.WithSession(ctx, func(ctx context.Context, sess *Session) error {
		if _, err := sess.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", schemaLockKey); err != nil {
			return fmt.Errorf("lock schema: %w", err)
		}
		for i, stmt := range stmts {
			if _, err := sess.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("schema statement %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	s.logger.Info("database schema initialized",
		"tables", len(schema.Tables),
		"statements", len(stmts),
	)
	return nil
}

// ColumnInfo is one column as the server reports it.
type ColumnInfo struct {
	Table    string
	Column   string
	DataType string
	Nullable bool
	Default  *string
}

// InspectSchema lists the columns of the store's tables from
// information_schema, ordered by table and position.
func (s *Store) InspectSchema(ctx context.Context) ([]ColumnInfo, error) {
	var cols []ColumnInfo

	err := s.WithSession(ctx, func(ctx context.Context, sess *Session) error {
		rows, err := sess.Query(ctx, `
			SELECT table_name, column_name, data_type, is_nullable = 'YES', column_default
			FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = ANY($1)
			ORDER BY table_name, ordinal_position
		`, schema.TableNames())
		if err != nil {
			return err
		}

		cols, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (ColumnInfo, error) {
			var c ColumnInfo
			err := row.Scan(&c.Table, &c.Column, &c.DataType, &c.Nullable, &c.Default)
			return c, err
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("inspect schema: %w", err)
	}
	return cols, nil
}

// SchemaDrift is how the server's columns differ from the table mapping.
// Entries are "table.column".
type SchemaDrift struct {
	Missing     []string `json:"missing,omitempty"`     // mapped but absent on the server
	Unexpected  []string `json:"unexpected,omitempty"`  // on the server but not mapped
	Nullability []string `json:"nullability,omitempty"` // nullable on one side only
}

// Empty reports whether the server matches the mapping.
func (d SchemaDrift) Empty() bool {
	return len(d.Missing) == 0 && len(d.Unexpected) == 0 && len(d.Nullability) == 0
}

// DiffSchema compares inspected columns with the mapping in package schema.
func DiffSchema(cols []ColumnInfo) SchemaDrift {
	var d SchemaDrift
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		key := c.Table + "." + c.Column
		seen[key] = true

		tbl, ok := schema.Lookup(c.Table)
		if !ok {
			d.Unexpected = append(d.Unexpected, key)
			continue
		}
		mapped, ok := tbl.Column(c.Column)
		if !ok {
			d.Unexpected = append(d.Unexpected, key)
			continue
		}
		if mapped.Nullable != c.Nullable {
			d.Nullability = append(d.Nullability, key)
		}
	}

	for _, name := range schema.TableNames() {
		tbl, _ := schema.Lookup(name)
		for _, col := range tbl.ColumnNames() {
			if key := name + "." + col; !seen[key] {
				d.Missing = append(d.Missing, key)
			}
		}
	}
	return d
}

// VerifySchema inspects the server and diffs it against the mapping.
// Tables created by an older version keep their columns, so drift is
// reported, not repaired.
func (s *Store) VerifySchema(ctx context.Context) (SchemaDrift, error) {
	cols, err := s.InspectSchema(ctx)
	if err != nil {
		return SchemaDrift{}, err
	}
	d := DiffSchema(cols)
	if !d.Empty() {
		s.logger.Warn("database schema drift",
			"missing", d.Missing,
			"unexpected", d.Unexpected,
			"nullability", d.Nullability,
		)
	}
	return d, nil
}
