// Package sqlite implements service/dao.Store over a single-table sqlite
// database, grounded on server/dao/sqlite/sqlite.go and games.go: a
// modernc.org/sqlite-backed *sql.DB, prepared statements per operation, and
// wrapDBError translating sqlite constraint violations into dao sentinel
// errors.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dekarrin/taul/service/dao"
	"github.com/google/uuid"
	"modernc.org/sqlite"
)

// Store is a sqlite-backed dao.Store caching serialized grammars by content
// hash.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the grammar cache database at
// filepath.Join(storageDir, "grammars.db") and ensures its schema exists.
func Open(storageDir string) (*Store, error) {
	file := filepath.Join(storageDir, "grammars.db")

	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}

	st := &Store{db: db}
	if err := st.init(); err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

func (s *Store) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS grammars (
		id TEXT NOT NULL PRIMARY KEY,
		hash TEXT NOT NULL UNIQUE,
		data BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);`
	_, err := s.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (s *Store) Put(ctx context.Context, rec dao.Record) error {
	if rec.ID == uuid.Nil {
		newID, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("generate id: %w", err)
		}
		rec.ID = newID
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	stmt, err := s.db.Prepare(`INSERT INTO grammars (id, hash, data, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return wrapDBError(err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, rec.ID.String(), rec.Hash, rec.Data, rec.CreatedAt.Unix())
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (dao.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, hash, data, created_at FROM grammars WHERE id = ?`, id.String())
	return scanRecord(row)
}

func (s *Store) GetByHash(ctx context.Context, hash string) (dao.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, hash, data, created_at FROM grammars WHERE hash = ?`, hash)
	return scanRecord(row)
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM grammars WHERE id = ?`, id.String())
	if err != nil {
		return wrapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError(err)
	}
	if n == 0 {
		return dao.ErrNotFound
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func scanRecord(row *sql.Row) (dao.Record, error) {
	var idStr, hash string
	var data []byte
	var createdAtUnix int64

	err := row.Scan(&idStr, &hash, &data, &createdAtUnix)
	if err != nil {
		return dao.Record{}, wrapDBError(err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return dao.Record{}, fmt.Errorf("decode stored id: %w", err)
	}

	return dao.Record{
		ID:        id,
		Hash:      hash,
		Data:      data,
		CreatedAt: time.Unix(createdAtUnix, 0),
	}, nil
}

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 { // SQLITE_CONSTRAINT
			return dao.ErrAlreadyExists
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return dao.ErrNotFound
	}
	return err
}
