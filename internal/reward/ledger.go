// internal/reward/ledger.go
//
// SQL ledger of issued codes (reward_codes table). Checkout staff look codes up
// here; one code per (session, date) is enforced by a unique index, and
// duplicate inserts are ignored.

package reward

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrUnknownCode = errors.New("reward: unknown code")

// Issued is one ledger row.
type Issued struct {
	Code      string    `json:"code"`
	SessionID string    `json:"-"`
	Date      string    `json:"date"`
	IssuedAt  time.Time `json:"issuedAt"`
}

// Ledger records codes in SQLite.
type Ledger struct{ db *sql.DB }

func NewLedger(db *sql.DB) *Ledger { return &Ledger{db: db} }

// Record inserts r and reports whether it was new. A second code for the
// same session and date is ignored and reported as false.
func (l *Ledger) Record(ctx context.Context, r Issued) (bool, error) {
	if r.IssuedAt.IsZero() {
		r.IssuedAt = time.Now().UTC()
	}
	res, err := l.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO reward_codes(code, session_id, date, issued_at)
        VALUES(?,?,?,?)`, r.Code, r.SessionID, r.Date, r.IssuedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// IssuedFor returns the code the session received on date.
func (l *Ledger) IssuedFor(ctx context.Context, sessionID, date string) (Issued, error) {
	return l.one(ctx,
		`SELECT code, session_id, date, issued_at FROM reward_codes WHERE session_id=? AND date=?`,
		sessionID, date)
}

// Lookup finds a code.
func (l *Ledger) Lookup(ctx context.Context, code string) (Issued, error) {
	return l.one(ctx,
		`SELECT code, session_id, date, issued_at FROM reward_codes WHERE code=?`, code)
}

func (l *Ledger) one(ctx context.Context, query string, args ...any) (Issued, error) {
	var r Issued
	var at string
	err := l.db.QueryRowContext(ctx, query, args...).Scan(&r.Code, &r.SessionID, &r.Date, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return Issued{}, ErrUnknownCode
	}
	if err != nil {
		return Issued{}, err
	}
	r.IssuedAt, _ = time.Parse(time.RFC3339, at)
	return r, nil
}
