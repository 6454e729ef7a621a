package database

import (
	"context"
	"time"
)

// Cleanup removes status events older than the retention window of a week.
func (db *Database) Cleanup(ctx context.Context) error {
	if _, err := db.conn.Exec(ctx, "DELETE FROM status_event WHERE occurred_at < $1", time.Now().AddDate(0, 0, -8)); err != nil {
		return err
	}
	return nil
}
