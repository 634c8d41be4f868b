package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/m3rciful/iptvbot/internal/models"
)

// GetFreeTest returns one trial request with the owner's phone joined in.
func (s *Storage) GetFreeTest(ctx context.Context, id int64) (*models.FreeTest, error) {
	var t models.FreeTest
	err := s.db.GetContext(ctx, &t, `
		SELECT ft.*, u.phone
		FROM free_tests ft
		JOIN users u ON u.id = ft.user_id
		WHERE ft.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get free test: %w", err)
	}
	return &t, nil
}

// GetSubscription returns one purchase request with the owner's phone joined in.
func (s *Storage) GetSubscription(ctx context.Context, id int64) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.GetContext(ctx, &sub, `
		SELECT sb.*, u.phone
		FROM subscriptions sb
		JOIN users u ON u.id = sb.user_id
		WHERE sb.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &sub, nil
}

// GetRenewal returns one renewal request with the owner's phone joined in.
func (s *Storage) GetRenewal(ctx context.Context, id int64) (*models.Renewal, error) {
	var r models.Renewal
	err := s.db.GetContext(ctx, &r, `
		SELECT rn.*, u.phone
		FROM renewals rn
		JOIN users u ON u.id = rn.user_id
		WHERE rn.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get renewal: %w", err)
	}
	return &r, nil
}

// PendingTests lists trial requests awaiting a decision, oldest first.
func (s *Storage) PendingTests(ctx context.Context) ([]models.FreeTest, error) {
	var out []models.FreeTest
	err := s.db.SelectContext(ctx, &out, `
		SELECT ft.*, u.phone
		FROM free_tests ft
		JOIN users u ON u.id = ft.user_id
		WHERE ft.status = $1
		ORDER BY ft.created_at`, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("pending tests: %w", err)
	}
	return out, nil
}

// PendingSubscriptions lists purchase requests awaiting a decision, oldest first.
func (s *Storage) PendingSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	var out []models.Subscription
	err := s.db.SelectContext(ctx, &out, `
		SELECT sb.*, u.phone
		FROM subscriptions sb
		JOIN users u ON u.id = sb.user_id
		WHERE sb.status = $1
		ORDER BY sb.created_at`, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("pending subscriptions: %w", err)
	}
	return out, nil
}

// PendingRenewals lists renewal requests awaiting a decision, oldest first.
func (s *Storage) PendingRenewals(ctx context.Context) ([]models.Renewal, error) {
	var out []models.Renewal
	err := s.db.SelectContext(ctx, &out, `
		SELECT rn.*, u.phone
		FROM renewals rn
		JOIN users u ON u.id = rn.user_id
		WHERE rn.status = $1
		ORDER BY rn.created_at`, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("pending renewals: %w", err)
	}
	return out, nil
}

// ApproveTest activates a pending trial with credentials and expiry. The
// status guard makes double approval report ErrAlreadyProcessed.
func (s *Storage) ApproveTest(ctx context.Context, id int64, login, password string, expiresAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE free_tests SET
			status        = $1,
			test_login    = $2,
			test_password = $3,
			expires_at    = $4,
			approved_at   = NOW()
		WHERE id = $5 AND status = $6`,
		models.StatusActive, login, password, expiresAt, id, models.StatusPending)
	if err != nil {
		return fmt.Errorf("approve test: %w", err)
	}
	return s.decided(ctx, res, `SELECT 1 FROM free_tests WHERE id = $1`, id)
}

// RejectTest marks a pending trial rejected.
func (s *Storage) RejectTest(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE free_tests SET status = $1
		WHERE id = $2 AND status = $3`,
		models.StatusRejected, id, models.StatusPending)
	if err != nil {
		return fmt.Errorf("reject test: %w", err)
	}
	return s.decided(ctx, res, `SELECT 1 FROM free_tests WHERE id = $1`, id)
}

// ApproveSubscription activates a pending purchase with credentials and
// expiry.
func (s *Storage) ApproveSubscription(ctx context.Context, id int64, login, password string, expiresAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions SET
			status      = $1,
			login       = $2,
			password    = $3,
			expires_at  = $4,
			approved_at = NOW()
		WHERE id = $5 AND status = $6`,
		models.StatusActive, login, password, expiresAt, id, models.StatusPending)
	if err != nil {
		return fmt.Errorf("approve subscription: %w", err)
	}
	return s.decided(ctx, res, `SELECT 1 FROM subscriptions WHERE id = $1`, id)
}

// RejectSubscription marks a pending purchase rejected.
func (s *Storage) RejectSubscription(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions SET status = $1
		WHERE id = $2 AND status = $3`,
		models.StatusRejected, id, models.StatusPending)
	if err != nil {
		return fmt.Errorf("reject subscription: %w", err)
	}
	return s.decided(ctx, res, `SELECT 1 FROM subscriptions WHERE id = $1`, id)
}

// ApproveRenewal stores the new expiry on a pending renewal.
func (s *Storage) ApproveRenewal(ctx context.Context, id int64, expiresAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE renewals SET
			status      = $1,
			expires_at  = $2,
			approved_at = NOW()
		WHERE id = $3 AND status = $4`,
		models.StatusApproved, expiresAt, id, models.StatusPending)
	if err != nil {
		return fmt.Errorf("approve renewal: %w", err)
	}
	return s.decided(ctx, res, `SELECT 1 FROM renewals WHERE id = $1`, id)
}

// RejectRenewal marks a pending renewal rejected.
func (s *Storage) RejectRenewal(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE renewals SET status = $1
		WHERE id = $2 AND status = $3`,
		models.StatusRejected, id, models.StatusPending)
	if err != nil {
		return fmt.Errorf("reject renewal: %w", err)
	}
	return s.decided(ctx, res, `SELECT 1 FROM renewals WHERE id = $1`, id)
}

// decided maps a zero-row guarded update to the right sentinel: the row is
// either gone (ErrNotFound) or no longer pending (ErrAlreadyProcessed).
func (s *Storage) decided(ctx context.Context, res sql.Result, existsQuery string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	err = s.db.GetContext(ctx, &one, existsQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrAlreadyProcessed
}
