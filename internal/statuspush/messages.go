package statuspush

import (
	"context"
	"time"

	"farmwatch/internal/statuspush/platforms"
	"farmwatch/internal/store"
)

// PanelMessageRepo is the storage side of remembered panel messages.
type PanelMessageRepo interface {
	PanelMessages(ctx context.Context) ([]store.PanelMessage, error)
	SavePanelMessage(ctx context.Context, m store.PanelMessage) error
}

// StoredMessages adapts a PanelMessageRepo to platforms.MessageStore.
type StoredMessages struct {
	repo PanelMessageRepo
	now  func() time.Time
}

func NewStoredMessages(repo PanelMessageRepo) *StoredMessages {
	return &StoredMessages{repo: repo, now: time.Now}
}

func (s *StoredMessages) Load(ctx context.Context) (map[platforms.PanelRef]string, error) {
	rows, err := s.repo.PanelMessages(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[platforms.PanelRef]string, len(rows))
	for _, r := range rows {
		if !Panel(r.Panel).Valid() {
			continue
		}
		out[platforms.PanelRef{Target: r.TargetKey, Panel: r.Panel}] = r.MessageID
	}
	return out, nil
}

func (s *StoredMessages) Save(ctx context.Context, ref platforms.PanelRef, messageID string) error {
	return s.repo.SavePanelMessage(ctx, store.PanelMessage{
		TargetKey: ref.Target,
		Panel:     ref.Panel,
		MessageID: messageID,
		UpdatedAt: s.now(),
	})
}
