package pricedb

import (
	"context"
	"database/sql"
	"time"

	"github.com/govalues/ledger"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Schema creates the prices table.
const Schema = `
CREATE TABLE IF NOT EXISTS prices (
	symbol TEXT NOT NULL,
	moment DATETIME NOT NULL,
	price TEXT NOT NULL,
	UNIQUE (symbol, moment, price)
);

CREATE INDEX IF NOT EXISTS idx_prices_moment ON prices(moment);
`

// SQLite keeps prices in an SQLite database.
// Each row holds the base symbol, the moment in UTC and the full string of
// the price amount.
type SQLite struct {
	db   *sql.DB
	opts options
}

// OpenSQLite opens the database named by dsn, for example "prices.db" or
// ":memory:", and creates the schema if needed.
func OpenSQLite(ctx context.Context, dsn string, opts ...Option) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %v", dsn)
	}
	// An in-memory database lives in a single connection.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	s := &SQLite{db: db, opts: newOptions(opts)}
	s.opts.logger.Debug().Str("dsn", dsn).Msg("price database opened")
	return s, nil
}

// List returns the stored prices ordered by moment.
func (s *SQLite) List(ctx context.Context, p *ledger.Pool) ([]ledger.Price, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, moment, price FROM prices ORDER BY moment, rowid`)
	if err != nil {
		return nil, errors.Wrap(err, "query prices")
	}
	defer rows.Close()

	var res []ledger.Price
	for rows.Next() {
		var (
			symbol string
			moment time.Time
			text   string
		)
		if err := rows.Scan(&symbol, &moment, &text); err != nil {
			return nil, errors.Wrap(err, "scan price")
		}
		value, err := p.Parse(text, ledger.ParseDefault)
		if err != nil {
			return nil, errors.Wrapf(err, "price of %v", symbol)
		}
		r, err := ledger.NewPrice(p.FindOrCreate(symbol), moment.UTC(), value)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "query prices")
	}
	return res, nil
}

// Put inserts prices in a single transaction.
func (s *SQLite) Put(ctx context.Context, prices ...ledger.Price) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO prices (symbol, moment, price) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	added := int64(0)
	for _, r := range prices {
		res, err := stmt.ExecContext(ctx, r.Base().Symbol(), r.Moment().UTC(), r.Amount().FullString())
		if err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "insert %v", r)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += n
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	s.opts.logger.Debug().Int64("added", added).Msg("prices stored")
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
