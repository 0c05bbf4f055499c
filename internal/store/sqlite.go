package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alkaman93/orgazm/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// table maps a request kind to its backing table.
func table(kind domain.Kind) (string, error) {
	switch kind {
	case domain.KindVerification:
		return "vouch_requests", nil
	case domain.KindComplaint:
		return "complaints", nil
	case domain.KindPurchase:
		return "buy_requests", nil
	default:
		return "", fmt.Errorf("unknown request kind %q", kind)
	}
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		user_id INTEGER PRIMARY KEY,
		username TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS vouch_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		username TEXT NOT NULL DEFAULT '',
		target_username TEXT NOT NULL,
		amount REAL NOT NULL,
		currency TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		operator_response TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_vouch_status ON vouch_requests(status);

	CREATE TABLE IF NOT EXISTS complaints (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		username TEXT NOT NULL DEFAULT '',
		complaint_text TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		operator_response TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_complaints_status ON complaints(status);

	CREATE TABLE IF NOT EXISTS buy_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		username TEXT NOT NULL DEFAULT '',
		amount REAL NOT NULL,
		currency TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		operator_response TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_buy_status ON buy_requests(status);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// UpsertUser creates a user record on first contact. Registration time is
// immutable; handle and first name are only set when previously empty.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user *domain.User) error {
	query := `
	INSERT INTO users (user_id, username, first_name, created_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		username = CASE WHEN users.username = '' THEN excluded.username ELSE users.username END,
		first_name = CASE WHEN users.first_name = '' THEN excluded.first_name ELSE users.first_name END`

	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Username, user.FirstName, user.RegisteredAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// CountUsers returns the number of registered users.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// InsertRequest persists a new request and returns its assigned id.
func (s *SQLiteStore) InsertRequest(ctx context.Context, req *domain.Request) (int64, error) {
	tbl, err := table(req.Kind)
	if err != nil {
		return 0, err
	}

	var res sql.Result
	switch req.Kind {
	case domain.KindVerification:
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO `+tbl+` (user_id, username, target_username, amount, currency, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			req.RequesterID, req.RequesterHandle, req.TargetHandle,
			req.Amount, req.Currency, string(domain.StatusPending), req.CreatedAt.Unix(),
		)
	case domain.KindComplaint:
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO `+tbl+` (user_id, username, complaint_text, status, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			req.RequesterID, req.RequesterHandle, req.Body,
			string(domain.StatusPending), req.CreatedAt.Unix(),
		)
	case domain.KindPurchase:
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO `+tbl+` (user_id, username, amount, currency, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			req.RequesterID, req.RequesterHandle,
			req.Amount, req.Currency, string(domain.StatusPending), req.CreatedAt.Unix(),
		)
	}
	if err != nil {
		return 0, fmt.Errorf("insert %s request: %w", req.Kind, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func selectColumns(kind domain.Kind) string {
	switch kind {
	case domain.KindComplaint:
		return `id, user_id, username, complaint_text, status, operator_response, created_at`
	case domain.KindPurchase:
		return `id, user_id, username, amount, currency, status, operator_response, created_at`
	default:
		return `id, user_id, username, target_username, amount, currency, status, operator_response, created_at`
	}
}

func (s *SQLiteStore) scanRequest(kind domain.Kind, row interface{ Scan(...any) error }) (*domain.Request, error) {
	req := &domain.Request{Kind: kind}
	var response sql.NullString
	var createdAt int64
	var err error

	switch kind {
	case domain.KindComplaint:
		err = row.Scan(&req.ID, &req.RequesterID, &req.RequesterHandle,
			&req.Body, &req.Status, &response, &createdAt)
	case domain.KindVerification:
		err = row.Scan(&req.ID, &req.RequesterID, &req.RequesterHandle,
			&req.TargetHandle, &req.Amount, &req.Currency, &req.Status, &response, &createdAt)
	case domain.KindPurchase:
		err = row.Scan(&req.ID, &req.RequesterID, &req.RequesterHandle,
			&req.Amount, &req.Currency, &req.Status, &response, &createdAt)
	}
	if err != nil {
		return nil, err
	}

	req.OperatorResponse = response.String
	req.CreatedAt = time.Unix(createdAt, 0)
	return req, nil
}

// GetRequest retrieves a request by kind and id.
func (s *SQLiteStore) GetRequest(ctx context.Context, kind domain.Kind, id int64) (*domain.Request, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns(kind)+` FROM `+tbl+` WHERE id = ?`, id)
	req, err := s.scanRequest(kind, row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s request: %w", kind, err)
	}
	return req, nil
}

// ListPending returns all pending requests of the given kind, newest id first.
func (s *SQLiteStore) ListPending(ctx context.Context, kind domain.Kind) ([]*domain.Request, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns(kind)+` FROM `+tbl+` WHERE status = ? ORDER BY id DESC`,
		string(domain.StatusPending),
	)
	if err != nil {
		return nil, fmt.Errorf("query pending %s requests: %w", kind, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close pending rows", "kind", kind, "error", closeErr)
		}
	}()

	var reqs []*domain.Request
	for rows.Next() {
		req, err := s.scanRequest(kind, rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending %s request: %w", kind, err)
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending %s requests: %w", kind, err)
	}

	return reqs, nil
}

// CountPending returns the number of pending requests of the given kind.
func (s *SQLiteStore) CountPending(ctx context.Context, kind domain.Kind) (int64, error) {
	tbl, err := table(kind)
	if err != nil {
		return 0, err
	}

	var n int64
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+tbl+` WHERE status = ?`, string(domain.StatusPending),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending %s requests: %w", kind, err)
	}
	return n, nil
}

// AnswerRequest transitions a pending request to a terminal status. The
// update is conditional on the row still being pending, so a second answer
// never overwrites the first.
func (s *SQLiteStore) AnswerRequest(ctx context.Context, kind domain.Kind, id int64, status domain.Status, response string) error {
	if !status.Terminal() {
		return errNonTerminal(status)
	}
	tbl, err := table(kind)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE `+tbl+` SET status = ?, operator_response = ? WHERE id = ? AND status = ?`,
		string(status), response, id, string(domain.StatusPending),
	)
	if err != nil {
		return fmt.Errorf("update %s request status: %w", kind, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	// The row was not pending or does not exist; look it up to say which.
	if _, err := s.GetRequest(ctx, kind, id); err != nil {
		return err
	}
	return ErrAlreadyHandled
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
