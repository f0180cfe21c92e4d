package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/polydemo/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// SQLite works best with a single connection; this also keeps :memory: databases alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS polls (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question TEXT NOT NULL,
			category TEXT,
			options TEXT NOT NULL,
			votes TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS votes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			poll_id INTEGER NOT NULL,
			option_index INTEGER NOT NULL,
			widget_id TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (poll_id) REFERENCES polls(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_poll ON votes(poll_id)`,
		`CREATE INDEX IF NOT EXISTS idx_polls_created ON polls(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	// Insert default settings if not exists.
	// base_url is set by app.go with the detected LAN address on startup.
	defaultSettings := map[string]string{
		"data_source": models.SourceAuto,
	}

	for key, value := range defaultSettings {
		_, err := r.db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, value)
		if err != nil {
			return err
		}
	}

	return nil
}

// ==================== Poll Methods ====================

const pollColumns = `id, question, category, options, votes, status, created_at, expires_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoll(row rowScanner) (models.Poll, error) {
	var p models.Poll
	var category sql.NullString
	var optionsJSON, votesJSON string
	if err := row.Scan(&p.ID, &p.Question, &category, &optionsJSON, &votesJSON, &p.Status, &p.CreatedAt, &p.ExpiresAt); err != nil {
		return p, err
	}
	p.Category = category.String
	if err := json.Unmarshal([]byte(optionsJSON), &p.Options); err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(votesJSON), &p.Votes); err != nil {
		return p, err
	}
	p.Source = models.SourceContract
	return p, nil
}

// ListPolls returns polls newest first
func (r *Repository) ListPolls(ctx context.Context, limit, offset int) ([]models.Poll, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+pollColumns+`
		FROM polls
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	polls := []models.Poll{}
	for rows.Next() {
		p, err := scanPoll(rows)
		if err != nil {
			return nil, err
		}
		polls = append(polls, p)
	}
	return polls, rows.Err()
}

// CountPolls returns the number of stored polls
func (r *Repository) CountPolls(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM polls`).Scan(&count)
	return count, err
}

// GetPoll retrieves a poll by ID
func (r *Repository) GetPoll(ctx context.Context, id int) (*models.Poll, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+pollColumns+` FROM polls WHERE id = ?`, id)
	p, err := scanPoll(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePoll stores a poll and returns its ID
func (r *Repository) CreatePoll(ctx context.Context, p models.Poll) (int64, error) {
	optionsJSON, err := json.Marshal(p.Options)
	if err != nil {
		return 0, err
	}
	votes := p.Votes
	if votes == nil {
		votes = make([]int, len(p.Options))
	}
	votesJSON, err := json.Marshal(votes)
	if err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO polls (question, category, options, votes, status, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.Question, p.Category, string(optionsJSON), string(votesJSON), p.Status, p.CreatedAt.UTC(), p.ExpiresAt.UTC())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// SetPollStatus sets the explicit status flag of a poll
func (r *Repository) SetPollStatus(ctx context.Context, id int, status string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE polls SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordVote increments one option's tally and logs the ballot in a single transaction
func (r *Repository) RecordVote(ctx context.Context, pollID, option int, widgetID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var votesJSON string
	err = tx.QueryRowContext(ctx, `SELECT votes FROM polls WHERE id = ?`, pollID).Scan(&votesJSON)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var votes []int
	if err := json.Unmarshal([]byte(votesJSON), &votes); err != nil {
		return err
	}
	if option < 0 || option >= len(votes) {
		return ErrOptionOutOfRange
	}
	votes[option]++

	updated, err := json.Marshal(votes)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE polls SET votes = ? WHERE id = ?`, string(updated), pollID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO votes (poll_id, option_index, widget_id, created_at)
		VALUES (?, ?, ?, ?)
	`, pollID, option, widgetID, time.Now().UTC()); err != nil {
		return err
	}

	return tx.Commit()
}

// CountVotes returns how many ballots were recorded for a poll
func (r *Repository) CountVotes(ctx context.Context, pollID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes WHERE poll_id = ?`, pollID).Scan(&count)
	return count, err
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting updates a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// DeleteSetting removes a setting so readers fall back to defaults
func (r *Repository) DeleteSetting(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	return err
}
