package store

import (
	"context"
	"fmt"
	"time"
)

// PanelMessage remembers which chat message shows a panel on one target.
// TargetKey never holds the raw webhook URL.
type PanelMessage struct {
	TargetKey string
	Panel     string
	MessageID string
	UpdatedAt time.Time
}

func (s *Store) PanelMessages(ctx context.Context) ([]PanelMessage, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT target_key, panel, message_id, updated_at
FROM push_panel_messages
ORDER BY target_key, panel`)
	if err != nil {
		return nil, fmt.Errorf("list panel messages: %w", err)
	}
	defer rows.Close()
	out := make([]PanelMessage, 0)
	for rows.Next() {
		var m PanelMessage
		if err := rows.Scan(&m.TargetKey, &m.Panel, &m.MessageID, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan panel message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SavePanelMessage upserts the message id of one panel.
func (s *Store) SavePanelMessage(ctx context.Context, m PanelMessage) error {
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now()
	}
	_, err := s.Pool.Exec(ctx, `
INSERT INTO push_panel_messages (target_key, panel, message_id, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (target_key, panel) DO UPDATE
SET message_id = EXCLUDED.message_id, updated_at = EXCLUDED.updated_at`,
		m.TargetKey, m.Panel, m.MessageID, timestamptzParam(m.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save panel message: %w", err)
	}
	return nil
}
