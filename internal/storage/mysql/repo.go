package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"estate_dashboard/internal/adapters/observability"
	"estate_dashboard/internal/domain"
)

func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Migrate creates the tables if they do not exist yet.
func (r *Repo) Migrate(ctx context.Context) error {
	for _, stmt := range schemaSQL {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Truncate drops the completion marker together with the data, so a reader
// never sees a partially imported table as complete.
func (r *Repo) Truncate(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, truncateImportsSQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, truncateListingsSQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, truncateColumnsSQL); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Repo) SaveColumns(ctx context.Context, columns []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i, c := range columns {
		if _, err := tx.ExecContext(ctx, insertColumnSQL, i, c); err != nil {
			return fmt.Errorf("save column %q: %w", c, err)
		}
	}
	return tx.Commit()
}

func (r *Repo) InsertListings(ctx context.Context, rows []domain.Listing) error {
	if len(rows) == 0 {
		return nil
	}
	values := make([]string, 0, len(rows))
	args := make([]any, 0, len(rows)*8) // 8 params per row
	for _, l := range rows {
		var extra []byte
		if len(l.Extra) > 0 {
			b, err := json.Marshal(l.Extra)
			if err != nil {
				return fmt.Errorf("marshal extra for row %d: %w", l.Row, err)
			}
			extra = b
		}
		values = append(values, "(?,?,?,?,?,?,?,?)")
		args = append(args,
			l.Row,
			l.Price,
			l.Bedrooms,
			l.Bathrooms,
			l.SquareFeet,
			l.Latitude,
			l.Longitude,
			valJSON(extra),
		)
	}
	sqlStr := insertListingsPrefix + strings.Join(values, ",") + insertListingsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// MarkComplete records a finished import of rows listings. It fails when the
// stored row count disagrees.
func (r *Repo) MarkComplete(ctx context.Context, rows int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.QueryRowContext(ctx, countListingsSQL).Scan(&n); err != nil {
		return fmt.Errorf("count listings: %w", err)
	}
	if n != rows {
		return fmt.Errorf("stored %d listings, expected %d", n, rows)
	}
	if _, err := tx.ExecContext(ctx, markImportSQL, rows); err != nil {
		return fmt.Errorf("mark import: %w", err)
	}
	return tx.Commit()
}

// Load reads the imported table back in source order. An empty or
// unreachable database wraps domain.ErrDataUnavailable.
func (r *Repo) Load(ctx context.Context) (domain.Table, error) {
	start := time.Now()
	t, err := r.load(ctx)
	observability.ObserveLoad("mysql", err, time.Since(start))
	if err != nil {
		return domain.Table{}, err
	}
	observability.SetDatasetRows(t.Len())
	return t, nil
}

func (r *Repo) load(ctx context.Context) (domain.Table, error) {
	cols, err := r.columns(ctx)
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: read columns: %v", domain.ErrDataUnavailable, err)
	}
	if len(cols) == 0 {
		return domain.Table{}, fmt.Errorf("%w: no dataset imported", domain.ErrDataUnavailable)
	}
	var want int
	err = r.db.QueryRowContext(ctx, selectImportSQL).Scan(&want)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Table{}, fmt.Errorf("%w: last import did not complete", domain.ErrDataUnavailable)
	}
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: read import marker: %v", domain.ErrDataUnavailable, err)
	}

	t := domain.Table{Columns: cols, Rows: []domain.Listing{}}
	for i, slot := range domain.Layout(cols) {
		if slot.Required == "" {
			t.Extra = append(t.Extra, cols[i])
		}
	}

	rows, err := r.db.QueryContext(ctx, selectListingsSQL)
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: query listings: %v", domain.ErrDataUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.Listing
		var extra sql.RawBytes
		if err := rows.Scan(&l.Row, &l.Price, &l.Bedrooms, &l.Bathrooms, &l.SquareFeet, &l.Latitude, &l.Longitude, &extra); err != nil {
			return domain.Table{}, fmt.Errorf("%w: scan listing: %v", domain.ErrDataUnavailable, err)
		}
		if len(extra) > 0 {
			if err := json.Unmarshal(extra, &l.Extra); err != nil {
				return domain.Table{}, fmt.Errorf("%w: row %d extra: %v", domain.ErrDataUnavailable, l.Row, err)
			}
		}
		t.Rows = append(t.Rows, l)
	}
	if err := rows.Err(); err != nil {
		return domain.Table{}, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
	}
	if t.Len() != want {
		return domain.Table{}, fmt.Errorf("%w: %d listings stored, import recorded %d", domain.ErrDataUnavailable, t.Len(), want)
	}
	return t, nil
}

func (r *Repo) columns(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, selectColumnsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countListingsSQL).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
