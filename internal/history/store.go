// Package history records every audience expression the user saves or copies
// in a local SQLite database.
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rebeliceyang/lazyaudience/internal/expr"
	"github.com/rebeliceyang/lazyaudience/internal/filter"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one compiled expression in the log
type Entry struct {
	ID            int64
	AudienceName  string
	Expression    string // wire JSON
	Description   string
	QuestionIDs   []string
	QuestionCount int
	CompiledAt    time.Time
}

// NewEntry builds an entry from a compiled expression
func NewEntry(audienceName string, e expr.Expression) (Entry, error) {
	data, err := expr.Marshal(e)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode expression: %w", err)
	}
	questions := expr.QuestionIDs(e)
	return Entry{
		AudienceName:  audienceName,
		Expression:    string(data),
		Description:   filter.Describe(e),
		QuestionIDs:   questions,
		QuestionCount: len(questions),
		CompiledAt:    time.Now(),
	}, nil
}

// Store manages compile history persistence
type Store struct {
	db *sql.DB
}

// NewStore opens (and if needed creates) the history database at path
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Add inserts an entry and returns its id
func (s *Store) Add(entry Entry) (int64, error) {
	if entry.CompiledAt.IsZero() {
		entry.CompiledAt = time.Now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		INSERT INTO compile_history
		(audience_name, expression, description, question_count, compiled_at)
		VALUES (?, ?, ?, ?, ?)`,
		entry.AudienceName,
		entry.Expression,
		entry.Description,
		entry.QuestionCount,
		entry.CompiledAt.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert history entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, q := range entry.QuestionIDs {
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO compile_history_questions (entry_id, question_id)
			VALUES (?, ?)`, id, q); err != nil {
			return 0, fmt.Errorf("failed to index question %s: %w", q, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetRecent retrieves the most recent entries, newest first
func (s *Store) GetRecent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, audience_name, expression, description, question_count, compiled_at
		FROM compile_history
		ORDER BY compiled_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return s.scan(rows)
}

// Search retrieves entries whose expression references questionID
func (s *Store) Search(questionID string, limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT h.id, h.audience_name, h.expression, h.description, h.question_count, h.compiled_at
		FROM compile_history h
		JOIN compile_history_questions q ON q.entry_id = h.id
		WHERE q.question_id = ?
		ORDER BY h.compiled_at DESC, h.id DESC
		LIMIT ?`, questionID, limit)
	if err != nil {
		return nil, err
	}
	return s.scan(rows)
}

func (s *Store) scan(rows *sql.Rows) ([]Entry, error) {
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var compiledAt int64

		err := rows.Scan(
			&e.ID,
			&e.AudienceName,
			&e.Expression,
			&e.Description,
			&e.QuestionCount,
			&compiledAt,
		)
		if err != nil {
			return nil, err
		}
		e.CompiledAt = time.Unix(0, compiledAt)

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// release the connection before the per-entry lookups
	_ = rows.Close()

	for i := range entries {
		questions, err := s.questions(entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].QuestionIDs = questions
	}

	return entries, nil
}

func (s *Store) questions(entryID int64) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT question_id FROM compile_history_questions
		WHERE entry_id = ?
		ORDER BY rowid`, entryID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Prune keeps the newest max entries and deletes the rest. max <= 0 keeps
// everything.
func (s *Store) Prune(max int) (int64, error) {
	if max <= 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		DELETE FROM compile_history
		WHERE id NOT IN (
			SELECT id FROM compile_history
			ORDER BY compiled_at DESC, id DESC
			LIMIT ?
		)`, max)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(`
		DELETE FROM compile_history_questions
		WHERE entry_id NOT IN (SELECT id FROM compile_history)`); err != nil {
		return 0, fmt.Errorf("failed to prune history questions: %w", err)
	}

	return removed, tx.Commit()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
