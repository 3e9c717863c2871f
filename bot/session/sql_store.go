package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLStore keeps records as JSON documents in the session_records table.
// It works with both the postgres and the sqlite schema.
type SQLStore struct {
	db *sqlx.DB

	getQuery    string
	upsertQuery string
	listQuery   string
}

type recordRow struct {
	UserID int64  `db:"user_id"`
	Data   string `db:"data"`
}

// NewSQLStore prepares the queries for the driver behind db.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{
		db:       db,
		getQuery: db.Rebind(`SELECT data FROM session_records WHERE user_id = ?`),
		upsertQuery: db.Rebind(`INSERT INTO session_records (user_id, data, updated_at) VALUES (?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`),
		listQuery: `SELECT user_id, data FROM session_records ORDER BY user_id`,
	}
}

func (s *SQLStore) Get(ctx context.Context, userID int64) (*Record, error) {
	var data string
	if err := s.db.GetContext(ctx, &data, s.getQuery, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session: select %d: %w", userID, err)
	}
	rec, err := decode([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("session: decode %d: %w", userID, err)
	}
	return rec, nil
}

func (s *SQLStore) Put(ctx context.Context, userID int64, rec *Record) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.upsertQuery, userID, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("session: upsert %d: %w", userID, err)
	}
	return nil
}

func (s *SQLStore) ListAll(ctx context.Context) ([]Listing, error) {
	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, s.listQuery); err != nil {
		return nil, fmt.Errorf("session: list: %w", err)
	}
	out := make([]Listing, 0, len(rows))
	for _, row := range rows {
		rec, err := decode([]byte(row.Data))
		if err != nil {
			err = fmt.Errorf("session: decode %d: %w", row.UserID, err)
		}
		out = append(out, Listing{UserID: row.UserID, Record: rec, Err: err})
	}
	return out, nil
}
