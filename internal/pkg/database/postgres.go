// Package database records every consumed status event so operators can
// audit what was delivered and when.
package database

import (
	"context"
	"io"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/anicoll/chatbridge/internal/pkg/model"
)

type Database struct {
	conn *pgx.Conn
	io.Closer
}

func NewDatabase(conn *pgx.Conn) *Database {
	return &Database{
		conn: conn,
	}
}

func (db *Database) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close(context.Background())
}

type EventRecord struct {
	ID         int64     `json:"id"`
	DeviceID   string    `json:"device_id"`
	State      string    `json:"device_status"`
	ChatID     string    `json:"chat_id"`
	Platform   string    `json:"platform"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}

// WriteEvent appends one delivered status event to the history table.
func (db *Database) WriteEvent(ctx context.Context, event model.StatusEvent) error {
	const insertSQL = `
	INSERT INTO status_event (device_id, device_status, chat_id, platform, username, occurred_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	if _, err := db.conn.Exec(ctx, insertSQL,
		event.DeviceID, event.State.String(), event.ChatID,
		event.Platform.String(), event.Username, occurredAt); err != nil {
		return err
	}
	return nil
}

// RecentEvents returns the delivery history of one device, newest first.
func (db *Database) RecentEvents(ctx context.Context, deviceID string, limit int) ([]EventRecord, error) {
	const query = `
	SELECT id, device_id, device_status, chat_id, platform, username, occurred_at
	FROM status_event
	WHERE device_id = $1
	ORDER BY occurred_at DESC
	LIMIT $2;
	`

	rows, err := db.conn.Query(ctx, query, deviceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []EventRecord
	for rows.Next() {
		var r EventRecord
		if err := rows.Scan(&r.ID, &r.DeviceID, &r.State, &r.ChatID, &r.Platform, &r.Username, &r.OccurredAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		if err == pgx.ErrNoRows {
			return records, nil
		}
		return nil, err
	}

	return records, nil
}
