package platforms

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Discord limits, see the webhook embed documentation.
const (
	discordDescriptionLimit = 4096
	discordFieldValueLimit  = 1024
	discordMaxFields        = 25
)

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordEmbed struct {
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
	Footer      *discordText   `json:"footer,omitempty"`
	Image       *discordImage  `json:"image,omitempty"`
	Fields      []discordField `json:"fields"`
}

type discordText struct {
	Text string `json:"text"`
}

type discordImage struct {
	URL string `json:"url"`
}

type discordPayload struct {
	Content string         `json:"content"`
	Embeds  []discordEmbed `json:"embeds"`
}

// DiscordAdapter posts panels to a webhook and edits them in place on
// later sends. With a MessageStore the ids outlive the process.
type DiscordAdapter struct {
	client    *HTTPClient
	store     MessageStore
	mu        sync.Mutex
	messageBy map[PanelRef]string
}

// NewDiscordAdapter builds the adapter. store may be nil.
func NewDiscordAdapter(client *HTTPClient, store MessageStore) *DiscordAdapter {
	return &DiscordAdapter{
		client:    client,
		store:     store,
		messageBy: map[PanelRef]string{},
	}
}

func (a *DiscordAdapter) Name() string {
	return "discord"
}

// Restore loads remembered panel messages so the next send edits them.
func (a *DiscordAdapter) Restore(ctx context.Context) (int, error) {
	if a.store == nil {
		return 0, nil
	}
	ids, err := a.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("restore discord panels: %w", err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for ref, id := range ids {
		if strings.TrimSpace(id) != "" {
			a.messageBy[ref] = id
		}
	}
	return len(a.messageBy), nil
}

func (a *DiscordAdapter) Send(ctx context.Context, endpoint, _ string, msg Message) error {
	payload := buildDiscordPayload(msg)
	if strings.TrimSpace(msg.PanelKey) == "" {
		return a.client.PostJSON(ctx, endpoint, payload)
	}

	ref := panelRef(endpoint, msg.PanelKey)
	msgID := a.getMessageID(ref)
	if msgID == "" {
		return a.create(ctx, ref, endpoint, payload)
	}

	editURL, ok := messageEditURL(endpoint, msgID)
	if !ok {
		return a.client.PostJSON(ctx, endpoint, payload)
	}
	_, _, err := a.client.PatchJSONWithResponse(ctx, editURL, payload)
	if err == nil {
		return nil
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		return err
	}
	// message was deleted in the channel
	return a.create(ctx, ref, endpoint, payload)
}

func (a *DiscordAdapter) create(ctx context.Context, ref PanelRef, endpoint string, payload discordPayload) error {
	createdID, err := a.createPanelMessage(ctx, endpoint, payload)
	if err != nil {
		return err
	}
	a.setMessageID(ref, createdID)
	if a.store != nil {
		// the message is already posted, a lost id only costs a duplicate after restart
		if err := a.store.Save(ctx, ref, createdID); err != nil {
			log.Warn().Err(err).Str("panel", ref.Panel).Msg("panel_message_save_failed")
		}
	}
	return nil
}

func buildDiscordPayload(msg Message) discordPayload {
	fields := make([]discordField, 0, len(msg.Fields))
	for i, f := range msg.Fields {
		if i >= discordMaxFields {
			break
		}
		fields = append(fields, discordField{Name: f.Name, Value: truncate(f.Value, discordFieldValueLimit), Inline: f.Inline})
	}
	embed := discordEmbed{
		Title:       msg.Title,
		Description: truncate(msg.Description, discordDescriptionLimit),
		Color:       msg.Color,
		Timestamp:   msg.Timestamp,
		Fields:      fields,
	}
	if msg.Footer != "" {
		embed.Footer = &discordText{Text: msg.Footer}
	}
	if msg.ImageURL != "" {
		embed.Image = &discordImage{URL: msg.ImageURL}
	}
	return discordPayload{Content: msg.Content, Embeds: []discordEmbed{embed}}
}

func (a *DiscordAdapter) getMessageID(ref PanelRef) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.messageBy[ref]
}

func (a *DiscordAdapter) setMessageID(ref PanelRef, msgID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messageBy[ref] = msgID
}

func panelRef(endpoint, panelKey string) PanelRef {
	return PanelRef{Target: TargetDigest(endpoint), Panel: strings.TrimSpace(panelKey)}
}

// TargetDigest is the stable, token-free key of a webhook endpoint.
func TargetDigest(endpoint string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(endpoint)))
	return hex.EncodeToString(sum[:16])
}

func (a *DiscordAdapter) createPanelMessage(ctx context.Context, endpoint string, payload discordPayload) (string, error) {
	waitEndpoint := endpoint
	if strings.Contains(waitEndpoint, "?") {
		waitEndpoint += "&wait=true"
	} else {
		waitEndpoint += "?wait=true"
	}
	_, body, err := a.client.PostJSONWithResponse(ctx, waitEndpoint, payload)
	if err != nil {
		return "", err
	}
	var created struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(body, &created) == nil && strings.TrimSpace(created.ID) != "" {
		return created.ID, nil
	}
	return "", fmt.Errorf("discord webhook create message missing id")
}

func messageEditURL(endpoint, msgID string) (string, bool) {
	if strings.TrimSpace(endpoint) == "" || strings.TrimSpace(msgID) == "" {
		return "", false
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 {
		return "", false
	}
	// /api/webhooks/{webhook.id}/{webhook.token}
	if parts[0] != "api" || parts[1] != "webhooks" {
		return "", false
	}
	u.Path = "/api/webhooks/" + parts[2] + "/" + parts[3] + "/messages/" + msgID
	u.RawQuery = ""
	return u.String(), true
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
