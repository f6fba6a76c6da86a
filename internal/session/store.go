package session

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Store provides SQLite-backed persistence for sessions.
type Store struct {
	db *sql.DB
}

// NewStore opens the SQLite database at dbPath and creates tables if they don't exist.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		project TEXT NOT NULL,
		task TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT '',
		phase TEXT NOT NULL,
		role TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS transitions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		from_phase TEXT NOT NULL,
		to_phase TEXT NOT NULL,
		cause TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE TABLE IF NOT EXISTS artifacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		content TEXT NOT NULL,
		approved INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateSession creates a new active session in Intake for the given project and task.
func (s *Store) CreateSession(project, task string) (*Session, error) {
	id := uuid.New().String()
	now := time.Now()

	_, err := s.db.Exec(
		`INSERT INTO sessions (id, project, task, kind, phase, role, status, created_at, updated_at)
		 VALUES (?, ?, ?, '', ?, ?, 'active', ?, ?)`,
		id, project, task, string(PhaseIntake), string(RoleArchitect), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return &Session{
		ID:        id,
		Project:   project,
		Task:      task,
		Phase:     PhaseIntake,
		Role:      RoleArchitect,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetSession retrieves a session by ID. Returns nil, nil when not found.
func (s *Store) GetSession(id string) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT id, project, task, kind, phase, role, status, created_at, updated_at
		 FROM sessions WHERE id = ?`,
		id,
	)
	return scanSession(row)
}

// GetLatestActive returns the most recently updated active session for the given project.
func (s *Store) GetLatestActive(project string) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT id, project, task, kind, phase, role, status, created_at, updated_at
		 FROM sessions
		 WHERE project = ? AND status = 'active'
		 ORDER BY updated_at DESC
		 LIMIT 1`,
		project,
	)
	return scanSession(row)
}

func scanSession(row *sql.Row) (*Session, error) {
	var sess Session
	var phase, role string
	err := row.Scan(&sess.ID, &sess.Project, &sess.Task, &sess.Kind, &phase, &role, &sess.Status, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	sess.Phase = Phase(phase)
	sess.Role = Role(role)
	return &sess, nil
}

// UpdateSession updates an existing session.
func (s *Store) UpdateSession(session *Session) error {
	session.UpdatedAt = time.Now()

	_, err := s.db.Exec(
		`UPDATE sessions SET project = ?, task = ?, kind = ?, phase = ?, role = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		session.Project, session.Task, session.Kind, string(session.Phase), string(session.Role),
		session.Status, session.UpdatedAt, session.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	return nil
}

// ListSessions returns summaries of the most recent sessions.
func (s *Store) ListSessions(limit int) ([]Summary, error) {
	rows, err := s.db.Query(
		`SELECT id, task, phase, status, updated_at
		 FROM sessions
		 ORDER BY updated_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		var phase string
		if err := rows.Scan(&sum.ID, &sum.Task, &phase, &sum.Status, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		sum.Phase = Phase(phase)
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return summaries, nil
}

// AddTransition appends an applied phase change to the session's history.
func (s *Store) AddTransition(sessionID string, from, to Phase, trigger string) error {
	_, err := s.db.Exec(
		`INSERT INTO transitions (session_id, from_phase, to_phase, cause, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, string(from), string(to), trigger, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert transition: %w", err)
	}

	return nil
}

// GetTransitions retrieves the ordered transition history for a session.
func (s *Store) GetTransitions(sessionID string) ([]Transition, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, from_phase, to_phase, cause, timestamp
		 FROM transitions
		 WHERE session_id = ?
		 ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transitions []Transition
	for rows.Next() {
		var tr Transition
		var from, to string
		if err := rows.Scan(&tr.ID, &tr.SessionID, &from, &to, &tr.Trigger, &tr.Timestamp); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		tr.From = Phase(from)
		tr.To = Phase(to)
		transitions = append(transitions, tr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return transitions, nil
}

// AddMessage adds a chat message to the session.
func (s *Store) AddMessage(sessionID, role, content string) error {
	_, err := s.db.Exec(
		`INSERT INTO messages (session_id, role, content, timestamp)
		 VALUES (?, ?, ?, ?)`,
		sessionID, role, content, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

// GetMessages retrieves all messages for a session.
func (s *Store) GetMessages(sessionID string) ([]Message, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, role, content, timestamp
		 FROM messages
		 WHERE session_id = ?
		 ORDER BY timestamp ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return messages, nil
}

// SaveArtifact stores a serialized artifact snapshot for a session.
func (s *Store) SaveArtifact(sessionID, kind, content string, approved bool) error {
	flag := 0
	if approved {
		flag = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO artifacts (session_id, kind, content, approved, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, kind, content, flag, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}

	return nil
}
