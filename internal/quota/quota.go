package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/clipscreen/clipscreen/internal/database"
	"github.com/jackc/pgx/v5"
)

// CheckAndConsume atomically consumes one analysis from the user's monthly
// allowance. It returns false when the allowance is exhausted. The window
// resets at the start of each calendar month; the reset happens lazily on
// the first request of a new month.
func CheckAndConsume(ctx context.Context, db database.DBTX, userID string, limit int) (bool, error) {
	var used int
	err := db.QueryRow(ctx,
		`INSERT INTO api_quotas (user_id, requests_used, window_start)
		 VALUES ($1, 1, date_trunc('month', now()))
		 ON CONFLICT (user_id) DO UPDATE SET
		     requests_used = CASE
		         WHEN api_quotas.window_start < date_trunc('month', now()) THEN 1
		         ELSE api_quotas.requests_used + 1
		     END,
		     window_start = date_trunc('month', now())
		 WHERE api_quotas.requests_used < $2
		    OR api_quotas.window_start < date_trunc('month', now())
		 RETURNING requests_used`,
		userID, limit,
	).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("consume quota: %w", err)
	}
	return true, nil
}

// Remaining reports how many analyses the user has left this month. A user
// with no quota row has the full allowance.
func Remaining(ctx context.Context, db database.DBTX, userID string, limit int) (int, error) {
	var used int
	err := db.QueryRow(ctx,
		`SELECT requests_used FROM api_quotas
		 WHERE user_id = $1 AND window_start >= date_trunc('month', now())`,
		userID,
	).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return limit, nil
		}
		return 0, fmt.Errorf("read quota: %w", err)
	}
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
