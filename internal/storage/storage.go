// Package storage is the Postgres persistence layer of the bot.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/iptvbot/internal/models"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

// ErrAlreadyProcessed is returned when a pending request was approved or
// rejected by another admin action first.
var ErrAlreadyProcessed = errors.New("storage: request already processed")

// Storage wraps the database handle with typed queries.
type Storage struct {
	db *sqlx.DB
}

// New creates the storage layer over an open connection.
func New(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// FindUserByPhone looks a user up by normalized phone number.
func (s *Storage) FindUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE phone = $1`, phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// CreateUser registers a first-contact user in the main menu state.
func (s *Storage) CreateUser(ctx context.Context, phone string) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u,
		`INSERT INTO users (phone) VALUES ($1) RETURNING *`, phone)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

// UpdateUserState moves the user to another conversation state.
func (s *Storage) UpdateUserState(ctx context.Context, phone, state string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET current_state = $1 WHERE phone = $2`, state, phone)
	if err != nil {
		return fmt.Errorf("update state: %w", err)
	}
	return requireRow(res)
}

// UpdateUserProfile stores the trial enrollment answers on the user row.
func (s *Storage) UpdateUserProfile(ctx context.Context, phone string, name, city, device *string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			name   = COALESCE($1, name),
			city   = COALESCE($2, city),
			device = COALESCE($3, device)
		WHERE phone = $4`,
		name, city, device, phone)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireRow(res)
}

// TouchInteraction bumps the message counter and last interaction timestamp.
func (s *Storage) TouchInteraction(ctx context.Context, phone string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			message_count    = message_count + 1,
			last_interaction = NOW()
		WHERE phone = $1`, phone)
	if err != nil {
		return fmt.Errorf("touch interaction: %w", err)
	}
	return requireRow(res)
}

// CreateFreeTest records a trial request and returns its id.
func (s *Storage) CreateFreeTest(ctx context.Context, userID int64, name, city, device string) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, `
		INSERT INTO free_tests (user_id, name, city, device)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		userID, name, city, device)
	if err != nil {
		return 0, fmt.Errorf("create free test: %w", err)
	}
	return id, nil
}

// CreateSubscription records a plan purchase request and returns its id.
func (s *Storage) CreateSubscription(ctx context.Context, userID int64, plan string, price float64) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, `
		INSERT INTO subscriptions (user_id, plan, price)
		VALUES ($1, $2, $3) RETURNING id`,
		userID, plan, price)
	if err != nil {
		return 0, fmt.Errorf("create subscription: %w", err)
	}
	return id, nil
}

// CreateRenewal records a renewal request with its payment proof and returns
// the new id.
func (s *Storage) CreateRenewal(ctx context.Context, userID int64, currentLogin, plan string, price float64, proof string) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, `
		INSERT INTO renewals (user_id, current_login, plan, price, payment_proof)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		userID, currentLogin, plan, price, proof)
	if err != nil {
		return 0, fmt.Errorf("create renewal: %w", err)
	}
	return id, nil
}

// CreatePaymentProof stores proof content linked to the request it pays for.
func (s *Storage) CreatePaymentProof(ctx context.Context, phone, requestType string, requestID int64, proof string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_proofs (phone, request_type, request_id, proof_data)
		VALUES ($1, $2, $3, $4)`,
		phone, requestType, requestID, proof)
	if err != nil {
		return fmt.Errorf("create payment proof: %w", err)
	}
	return nil
}

// CreateSupportRequest opens a support ticket and returns its id.
func (s *Storage) CreateSupportRequest(ctx context.Context, userID int64, problem string) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, `
		INSERT INTO support_requests (user_id, problem_description)
		VALUES ($1, $2) RETURNING id`,
		userID, problem)
	if err != nil {
		return 0, fmt.Errorf("create support request: %w", err)
	}
	return id, nil
}

// LogMessage appends one inbound or outbound message to the history.
func (s *Storage) LogMessage(ctx context.Context, userID int64, content, msgType string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (user_id, message_content, message_type)
		VALUES ($1, $2, $3)`,
		userID, content, msgType)
	if err != nil {
		return fmt.Errorf("log message: %w", err)
	}
	return nil
}

// RecentMessages returns the latest logged messages across all users, newest
// first, with the owner's phone and name joined in.
func (s *Storage) RecentMessages(ctx context.Context, limit int) ([]models.MessageLog, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []models.MessageLog
	err := s.db.SelectContext(ctx, &out, `
		SELECT m.*, u.phone, u.name
		FROM messages m
		JOIN users u ON u.id = m.user_id
		ORDER BY m.created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	return out, nil
}

// RecentUsers lists the latest registered users, newest first.
func (s *Storage) RecentUsers(ctx context.Context, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []models.User
	err := s.db.SelectContext(ctx, &out, `
		SELECT * FROM users
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent users: %w", err)
	}
	return out, nil
}

// OpenSupportRequests lists open tickets, oldest first.
func (s *Storage) OpenSupportRequests(ctx context.Context, limit int) ([]models.SupportRequest, error) {
	if limit <= 0 {
		limit = 5
	}
	var out []models.SupportRequest
	err := s.db.SelectContext(ctx, &out, `
		SELECT sr.*, u.phone
		FROM support_requests sr
		JOIN users u ON u.id = sr.user_id
		WHERE sr.status = $1
		ORDER BY sr.created_at
		LIMIT $2`, models.SupportOpen, limit)
	if err != nil {
		return nil, fmt.Errorf("open support requests: %w", err)
	}
	return out, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
