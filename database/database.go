package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the postgres error code for a unique constraint violation.
const uniqueViolation = "23505"

var (
	ErrDBNotFound        = sql.ErrNoRows
	ErrDBDuplicatedEntry = errors.New("duplicated entry")
)

type Config struct {
	User         string `conf:"default:postgres"`
	Password     string `conf:"default:postgres,mask"`
	Host         string `conf:"default:localhost:5432"`
	Name         string `conf:"default:storefront"`
	MaxIdleConns int    `conf:"default:2"`
	MaxOpenConns int    `conf:"default:0"`
	DisableTLS   bool   `conf:"default:true"`
}

func Open(cfg Config) (*sqlx.DB, error) {
	sslMode := "require"
	if cfg.DisableTLS {
		sslMode = "disable"
	}

	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host,
		Path:     cfg.Name,
		RawQuery: q.Encode(),
	}

	db, err := sqlx.Open("postgres", u.String())
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	return db, nil
}

// StatusCheck returns nil if it can successfully talk to the database.
func StatusCheck(ctx context.Context, db *sqlx.DB) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Second)
		defer cancel()
	}

	var pingError error
	for attempts := 1; ; attempts++ {
		pingError = db.PingContext(ctx)
		if pingError == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	var tmp bool
	return db.QueryRowContext(ctx, `SELECT true`).Scan(&tmp)
}

// Transaction runs fn inside a database transaction, committing when fn
// returns nil and rolling back otherwise.
func Transaction(ctx context.Context, db *sqlx.DB, fn func(tx sqlx.ExtContext) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NamedExecContext executes a named query and reports how many rows it touched.
func NamedExecContext(ctx context.Context, db sqlx.ExtContext, query string, data any) (int64, error) {
	res, err := sqlx.NamedExecContext(ctx, db, query, data)
	if err != nil {
		return 0, translate(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// NamedQueryStruct scans the first row of a named query into dest. It
// returns ErrDBNotFound when the query yields no rows.
func NamedQueryStruct(ctx context.Context, db sqlx.ExtContext, query string, data any, dest any) error {
	rows, err := sqlx.NamedQueryContext(ctx, db, query, data)
	if err != nil {
		return translate(err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return ErrDBNotFound
	}

	if err := rows.StructScan(dest); err != nil {
		return err
	}
	return nil
}

// NamedQuerySlice scans every row of a named query into dest.
func NamedQuerySlice[T any](ctx context.Context, db sqlx.ExtContext, query string, data any, dest *[]T) error {
	rows, err := sqlx.NamedQueryContext(ctx, db, query, data)
	if err != nil {
		return translate(err)
	}
	defer rows.Close()

	var slice []T
	for rows.Next() {
		v := new(T)
		if err := rows.StructScan(v); err != nil {
			return err
		}
		slice = append(slice, *v)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	*dest = slice
	return nil
}

func translate(err error) error {
	var pqerr *pq.Error
	if errors.As(err, &pqerr) && pqerr.Code == uniqueViolation {
		return ErrDBDuplicatedEntry
	}
	return err
}
