package journal

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
)

const schema = `CREATE TABLE IF NOT EXISTS gls_journal (
  id BIGINT NOT NULL AUTO_INCREMENT,
  operation VARCHAR(50) NOT NULL,
  reference VARCHAR(250) NOT NULL DEFAULT '',
  success TINYINT(1) NOT NULL DEFAULT 0,
  http_code INT NOT NULL DEFAULT 0,
  message VARCHAR(250) NOT NULL DEFAULT '',
  elapsed BIGINT NOT NULL DEFAULT 0,
  created DATETIME NOT NULL,
  PRIMARY KEY (id),
  KEY gls_journal_op (operation, created)
)`

type basicRepository struct {
	db *sqlx.DB
}

//New creates new Repository, expect mysql connection string
//(needs parseTime=true). Creates the journal table if it is missing.
func New(connection string) (Repository, error) {
	db, err := sqlx.Connect("mysql", connection)
	if err != nil {
		return nil, err
	}
	if err = createTable(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func createTable(ctx context.Context, db execer) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

//NewWithDB creates new Repository over open sqlx.DB
func NewWithDB(db *sqlx.DB) Repository {
	return &basicRepository{db: db}
}

func (b *basicRepository) Close() {
	b.db.Close()
}

func (b *basicRepository) Log(ctx context.Context, e Entry) error {
	var sb strings.Builder
	sb.WriteString("INSERT INTO gls_journal (operation, reference, success, http_code, message, elapsed, created)")
	sb.WriteString(" VALUES (?, LEFT(?, 250), ?, ?, LEFT(?, 250), ?, NOW())")
	_, err := b.db.ExecContext(ctx, sb.String(), e.Operation, e.Reference, e.Success, e.HTTPCode, e.Message, int64(e.Elapsed))
	return err
}

func (b *basicRepository) List(ctx context.Context, operation string, limit int) ([]Entry, error) {
	var res []Entry
	ssql := "SELECT id, operation, reference, success, http_code, message, elapsed, created FROM gls_journal"
	args := []interface{}{}
	if operation != "" {
		ssql += " WHERE operation = ?"
		args = append(args, operation)
	}
	ssql += " ORDER BY id DESC"
	if limit > 0 {
		ssql += " LIMIT ?"
		args = append(args, limit)
	}
	err := b.db.SelectContext(ctx, &res, ssql, args...)
	return res, err
}
