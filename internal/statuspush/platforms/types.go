package platforms

import "context"

type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Message is one chat panel. Messages sharing a PanelKey on the same
// endpoint replace each other instead of piling up.
type Message struct {
	PanelKey    string
	Title       string
	Content     string
	Description string
	Color       int
	Timestamp   string
	Footer      string
	ImageURL    string
	Fields      []Field
}

type Adapter interface {
	Name() string
	Send(ctx context.Context, endpoint, secret string, msg Message) error
}

// PanelRef names one panel on one target. Target is a digest of the
// endpoint so webhook tokens are never persisted.
type PanelRef struct {
	Target string
	Panel  string
}

// MessageStore keeps panel message ids across restarts.
type MessageStore interface {
	Load(ctx context.Context) (map[PanelRef]string, error)
	Save(ctx context.Context, ref PanelRef, messageID string) error
}
