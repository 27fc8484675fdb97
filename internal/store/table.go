// Package store is the database/sql persistence of the self-hosted backend.
// Each store serves one table and speaks the remote record contract:
// equality filters, a single order column, a limit and partial updates.
// Every read and write is scoped to one owner's rows.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/vbonduro/kitchzone/internal/remote"
)

// ErrUnknownColumn is returned when a query or update names a column the
// table does not expose.
var ErrUnknownColumn = errors.New("unknown column")

type scanner interface {
	Scan(dest ...any) error
}

type table struct {
	name    string
	columns []string
	// readOnly columns cannot be changed by Update.
	readOnly []string
}

func (t table) has(col string) bool {
	return slices.Contains(t.columns, col)
}

// selectQuery always restricts the rows to userID. A filter naming another
// owner matches nothing.
func (t table) selectQuery(userID string, q remote.Query) (string, []any, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(t.columns, ", "), t.name)

	filter := maps.Clone(q.Filter)
	if filter == nil {
		filter = map[string]string{}
	}
	if other, ok := filter[remote.FieldUserID]; ok && other != userID {
		b.WriteString(" WHERE 0")
		return b.String(), nil, nil
	}
	filter[remote.FieldUserID] = userID

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	args := make([]any, 0, len(keys)+1)
	for i, k := range keys {
		if !t.has(k) {
			return "", nil, fmt.Errorf("%w %q on %s", ErrUnknownColumn, k, t.name)
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "%s = ?", k)
		args = append(args, filter[k])
	}

	if q.OrderBy != "" {
		if !t.has(q.OrderBy) {
			return "", nil, fmt.Errorf("%w %q on %s", ErrUnknownColumn, q.OrderBy, t.name)
		}
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY %s %s, rowid %s", q.OrderBy, dir, dir)
	} else {
		b.WriteString(" ORDER BY rowid ASC")
	}

	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}
	return b.String(), args, nil
}

func (t table) updateQuery(userID, id string, fields remote.Fields) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("no fields to update on %s", t.name)
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if !t.has(k) || k == "id" || slices.Contains(t.readOnly, k) {
			return "", nil, fmt.Errorf("%w %q on %s", ErrUnknownColumn, k, t.name)
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	sets := make([]string, len(keys))
	args := make([]any, 0, len(keys)+1)
	for i, k := range keys {
		sets[i] = k + " = ?"
		args = append(args, fields[k])
	}
	args = append(args, id, userID)
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND user_id = ?", t.name, strings.Join(sets, ", ")), args, nil
}

func (t table) insertQuery() string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, strings.Join(t.columns, ", "), marks)
}

func list[T any](ctx context.Context, db *sql.DB, t table, userID string, q remote.Query, scan func(scanner) (T, error)) ([]T, error) {
	query, args, err := t.selectQuery(userID, q)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.name, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "table", t.name, "error", err)
		}
	}()

	out := []T{}
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", t.name, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", t.name, err)
	}
	return out, nil
}

func insert(ctx context.Context, db *sql.DB, t table, values ...any) error {
	if _, err := db.ExecContext(ctx, t.insertQuery(), values...); err != nil {
		return fmt.Errorf("failed to create %s: %w", t.name, err)
	}
	return nil
}

// update changes the row only when userID owns it; anything else reads as
// ErrRecordNotFound.
func update(ctx context.Context, db *sql.DB, t table, userID, id string, fields remote.Fields) error {
	query, args, err := t.updateQuery(userID, id, fields)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", t.name, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return remote.ErrRecordNotFound
	}
	return nil
}

func remove(ctx context.Context, db *sql.DB, t table, userID, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ? AND user_id = ?", t.name)
	if _, err := db.ExecContext(ctx, query, id, userID); err != nil {
		return fmt.Errorf("failed to delete %s: %w", t.name, err)
	}
	return nil
}

func nullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
