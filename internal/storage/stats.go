package storage

import (
	"context"
	"fmt"

	"github.com/m3rciful/iptvbot/internal/models"
)

// Stats gathers the dashboard counters in one round trip.
func (s *Storage) Stats(ctx context.Context) (*models.Stats, error) {
	var st models.Stats
	err := s.db.QueryRowxContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM free_tests WHERE status = $1),
			(SELECT COUNT(*) FROM subscriptions WHERE status = $1),
			(SELECT COUNT(*) FROM renewals WHERE status = $1),
			(SELECT COUNT(*) FROM free_tests WHERE status = $2),
			(SELECT COUNT(*) FROM subscriptions WHERE status = $2),
			(SELECT COUNT(*) FROM support_requests WHERE status = $3),
			(SELECT COUNT(*) FROM messages WHERE created_at >= CURRENT_DATE)`,
		models.StatusPending, models.StatusActive, models.SupportOpen,
	).Scan(
		&st.Users,
		&st.PendingTests,
		&st.PendingSubscriptions,
		&st.PendingRenewals,
		&st.ActiveTests,
		&st.ActiveSubscriptions,
		&st.OpenSupport,
		&st.MessagesToday,
	)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return &st, nil
}
