package signage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepo struct{ pool *pgxpool.Pool }

func NewEventRepo(pool *pgxpool.Pool) *EventRepo { return &EventRepo{pool: pool} }

func (r *EventRepo) Append(ctx context.Context, eventType string, payload []byte, status int, body string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO signage_events (event_type, payload, response_status, response_body)
		VALUES ($1,$2,$3,$4)
	`, eventType, payload, status, body)
	return err
}

func (r *EventRepo) Recent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, event_type, payload, response_status, response_body, created_at
		FROM signage_events
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.EventType, &e.Payload, &e.ResponseStatus, &e.ResponseBody, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
