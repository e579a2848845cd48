package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"showcase_ingest/internal/models"
)

// SQLStore keeps the dataset in normalized tables. Postgres is reached via a
// pgx pool ("pgx") or lib/pq ("postgres"); "sqlite" uses modernc's driver.
type SQLStore struct {
	pool     *pgxpool.Pool
	db       *sql.DB
	numbered bool
}

func NewSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	const op = "storage.NewSQLStore"

	s := &SQLStore{}
	dialect := "postgres"

	switch driver {
	case models.DriverPgx:
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.pool = pool
		s.db = stdlib.OpenDBFromPool(pool)
		s.numbered = true
	case models.DriverPostgres:
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.db = db
		s.numbered = true
	case models.DriverSQLite:
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		// single writer connection
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.db = db
		dialect = "sqlite3"
	default:
		return nil, fmt.Errorf("%s: unsupported driver %q", op, driver)
	}

	if err := s.db.PingContext(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := runMigrations(s.db, dialect); err != nil {
		s.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func (s *SQLStore) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// DB exposes the handle for read-back in tooling and tests.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) PersistCategories(ctx context.Context, categories []models.CanonicalCategory) error {
	rows := make([][]any, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []any{c.ID, c.Name})
	}
	return s.replace(ctx, CollectionCategories, []string{"id", "name"}, rows)
}

func (s *SQLStore) PersistSubmissions(ctx context.Context, submissions []models.CanonicalSubmission) error {
	rows := make([][]any, 0, len(submissions))
	for _, sub := range submissions {
		rows = append(rows, []any{
			sub.ID, sub.Name, sub.Description, sub.Website, sub.Instagram,
			sub.Width, sub.Height, sub.Ratio, sub.Color, sub.FileName, sub.ThumbName,
		})
	}
	columns := []string{
		"id", "name", "description", "website", "instagram",
		"width", "height", "ratio", "colour", "file_name", "thumb_name",
	}
	return s.replace(ctx, CollectionSubmissions, columns, rows)
}

func (s *SQLStore) PersistAssociations(ctx context.Context, associations []models.Association) error {
	rows := make([][]any, 0, len(associations))
	for _, a := range associations {
		rows = append(rows, []any{a.SubmissionID, a.CategoryID})
	}
	return s.replace(ctx, CollectionAssociation, []string{"submission_id", "category_id"}, rows)
}

// replace swaps the table contents for rows inside a single transaction.
func (s *SQLStore) replace(ctx context.Context, table string, columns []string, rows [][]any) (err error) {
	fail := func(e error) error { return &PersistenceError{Collection: table, Err: e} }

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fail(err)
	}

	stmt, err := tx.PrepareContext(ctx, s.insertSQL(table, columns))
	if err != nil {
		return fail(err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err = stmt.ExecContext(ctx, row...); err != nil {
			return fail(err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fail(err)
	}
	return nil
}

func (s *SQLStore) insertSQL(table string, columns []string) string {
	params := make([]string, len(columns))
	for i := range columns {
		if s.numbered {
			params[i] = "$" + strconv.Itoa(i+1)
		} else {
			params[i] = "?"
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), strings.Join(params, ", "))
}
