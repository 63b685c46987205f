// Package sqlite stores the transition journal in SQLite, giving an app a
// durable audit trail of every pass's records.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Git0Shuai/bevy/pkg/domain"
	"github.com/Git0Shuai/bevy/pkg/ports"
)

// Journal implements ports.TransitionJournal on a SQL database.
type Journal struct {
	db *sql.DB
}

var _ ports.TransitionJournal = (*Journal)(nil)

// NewJournal wires the journal to db and creates its schema. The caller owns
// the connection and must import an sqlite driver, for example
// modernc.org/sqlite.
func NewJournal(db *sql.DB) (*Journal, error) {
	j := &Journal{db: db}
	if err := j.initSchema(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Journal) initSchema() error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS transitions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pass INTEGER NOT NULL,
			kind TEXT NOT NULL,
			from_value TEXT,
			to_value TEXT,
			at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_transitions_kind ON transitions(kind, id);
	`)
	return err
}

// Append stores one pass's records in a single transaction so a batch is
// journaled entirely or not at all. Absent endpoints persist as NULL; present
// values persist in display form.
func (j *Journal) Append(ctx context.Context, records []domain.Transition) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin journal batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transitions (pass, kind, from_value, to_value, at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare journal insert: %w", err)
	}
	defer stmt.Close()

	at := time.Now().UnixNano()
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Pass,
			r.Name,
			endpointValue(r.From),
			endpointValue(r.To),
			at,
		); err != nil {
			return fmt.Errorf("journal %s: %w", r.Name, err)
		}
	}

	return tx.Commit()
}

// List returns journaled records in append order. A positive limit keeps only
// the most recent records. Endpoint values come back in display form; the
// kind ID is not persisted.
func (j *Journal) List(ctx context.Context, limit int) ([]domain.Transition, error) {
	query := `
		SELECT pass, kind, from_value, to_value
		FROM transitions
		ORDER BY id ASC`
	args := []any{}
	if limit > 0 {
		query = `
		SELECT pass, kind, from_value, to_value FROM (
			SELECT id, pass, kind, from_value, to_value
			FROM transitions
			ORDER BY id DESC
			LIMIT ?
		) ORDER BY id ASC`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	defer rows.Close()

	var out []domain.Transition
	for rows.Next() {
		var (
			pass uint64
			kind string
			from sql.NullString
			to   sql.NullString
		)
		if err := rows.Scan(&pass, &kind, &from, &to); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		out = append(out, domain.Transition{
			Name: kind,
			From: endpointOptional(from),
			To:   endpointOptional(to),
			Pass: pass,
		})
	}
	return out, rows.Err()
}

func endpointValue(o domain.Optional) any {
	if !o.Valid {
		return nil
	}
	return fmt.Sprint(o.Value)
}

func endpointOptional(s sql.NullString) domain.Optional {
	if !s.Valid {
		return domain.None()
	}
	return domain.Some(s.String)
}
