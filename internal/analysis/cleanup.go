package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/clipscreen/clipscreen/internal/database"
)

// PurgeExpiredUploads deletes upload records older than the retention
// window, removing archived videos from object storage first. Returns the
// number of purged records.
func PurgeExpiredUploads(ctx context.Context, db database.DBTX, store ObjectStore, retention time.Duration) int {
	cutoff := time.Now().Add(-retention)

	rows, err := db.Query(ctx,
		`SELECT id, file_key FROM uploads WHERE created_at < $1 LIMIT 50`,
		cutoff,
	)
	if err != nil {
		slog.Error("retention: failed to query expired uploads", "error", err)
		return 0
	}
	defer rows.Close()

	type expired struct {
		id      string
		fileKey *string
	}
	var batch []expired
	for rows.Next() {
		var e expired
		if err := rows.Scan(&e.id, &e.fileKey); err != nil {
			slog.Error("retention: failed to scan upload", "error", err)
			continue
		}
		batch = append(batch, e)
	}

	purged := 0
	for _, e := range batch {
		if e.fileKey != nil && store != nil {
			if err := deleteWithRetry(ctx, store, *e.fileKey, 3); err != nil {
				slog.Error("retention: failed to delete video", "key", *e.fileKey, "error", err)
				continue
			}
		}
		if _, err := db.Exec(ctx, `DELETE FROM uploads WHERE id = $1`, e.id); err != nil {
			slog.Error("retention: failed to delete upload", "id", e.id, "error", err)
			continue
		}
		purged++
	}
	return purged
}

func deleteWithRetry(ctx context.Context, store ObjectStore, key string, attempts int) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = store.DeleteObject(ctx, key); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second << i):
		}
	}
	return err
}

// StartRetentionLoop purges expired uploads on a fixed interval until the
// context is canceled.
func StartRetentionLoop(ctx context.Context, db database.DBTX, store ObjectStore, interval, retention time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Info("retention: shutting down")
				return
			case <-ticker.C:
				if n := PurgeExpiredUploads(ctx, db, store, retention); n > 0 {
					slog.Info("retention: purged expired uploads", "count", n)
				}
			}
		}
	}()
}
