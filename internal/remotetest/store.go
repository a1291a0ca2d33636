package remotetest

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/pollchat/internal/chat"
)

const schema = `
CREATE TABLE messages (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	text      TEXT NOT NULL,
	sender    TEXT NOT NULL,
	timestamp INTEGER NOT NULL
);
`

// Store keeps the fake endpoint's messages in an in-memory SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens a fresh in-memory database with the messages schema applied.
func NewStore() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Every new connection to :memory: is a separate database, so pin to one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert stores a message. A zero ID lets SQLite assign the next one.
func (s *Store) Insert(ctx context.Context, msg chat.Message) (chat.Message, error) {
	var id sql.NullInt64
	if msg.ID != 0 {
		id = sql.NullInt64{Int64: msg.ID, Valid: true}
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, text, sender, timestamp) VALUES (?, ?, ?, ?)`,
		id, msg.Text, msg.Sender, msg.Timestamp,
	)
	if err != nil {
		return chat.Message{}, fmt.Errorf("insert message: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return chat.Message{}, fmt.Errorf("get last insert id: %w", err)
	}
	msg.ID = lastID
	return msg, nil
}

// List returns every message in insertion order.
func (s *Store) List(ctx context.Context) ([]chat.Message, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, text, sender, timestamp FROM messages ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	msgs := make([]chat.Message, 0)
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.Text, &m.Sender, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}

// Clear removes every message.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	return nil
}
