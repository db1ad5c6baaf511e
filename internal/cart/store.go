package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cassa-pos-services/internal/db"

	"github.com/jackc/pgx/v5"
)

// Store persists sessions as JSONB rows keyed by visit token. Writes are
// whole-row upserts: a table is single-actor, so last-write-wins is enough.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

// Load returns the session for the visit token, or a fresh empty session
// bound to the table when none exists yet.
func (st *Store) Load(ctx context.Context, dbx db.DBTX, visitToken string, tableNumber int32) (*Session, error) {
	var raw []byte
	err := dbx.QueryRow(ctx, `
		select lines from cart_sessions where visit_token = $1
	`, visitToken).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Session{VisitToken: visitToken, TableNumber: tableNumber, Lines: []Line{}}, nil
	}
	if err != nil {
		return nil, err
	}

	session := &Session{VisitToken: visitToken, TableNumber: tableNumber}
	if err := json.Unmarshal(raw, &session.Lines); err != nil {
		return nil, err
	}
	return session, nil
}

func (st *Store) Save(ctx context.Context, dbx db.DBTX, s *Session) error {
	lines := s.Lines
	if lines == nil {
		lines = []Line{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	_, err = dbx.Exec(ctx, `
		insert into cart_sessions (visit_token, table_number, lines, updated_at)
		values ($1, $2, $3, $4)
		on conflict (visit_token) do update set lines = $3, updated_at = $4
	`, s.VisitToken, s.TableNumber, raw, time.Now())
	return err
}

// Clear drops the session row entirely; called once the visit's bill is paid.
func (st *Store) Clear(ctx context.Context, dbx db.DBTX, visitToken string) error {
	_, err := dbx.Exec(ctx, `delete from cart_sessions where visit_token = $1`, visitToken)
	return err
}
