// Package discord mirrors the action log into a Discord channel through an
// incoming webhook.
package discord

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/disgo/webhook"

	"github.com/nekoden/nekoden/internal/domain/actionlog"
)

const embedColor = 0xF4A6C0

type embedSender interface {
	CreateEmbeds(embeds []discord.Embed, opts ...rest.RequestOpt) (*discord.Message, error)
}

// Mirror implements actionlog.Mirror.
type Mirror struct {
	sender embedSender
	close  func(context.Context)
}

var _ actionlog.Mirror = (*Mirror)(nil)

func NewMirror(webhookURL string) (*Mirror, error) {
	client, err := webhook.NewWithURL(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord webhook client: %w", err)
	}
	return &Mirror{sender: client, close: client.Close}, nil
}

func (m *Mirror) Mirror(ctx context.Context, entry actionlog.Entry) error {
	if _, err := m.sender.CreateEmbeds([]discord.Embed{buildEmbed(entry)}, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to post action log entry: %w", err)
	}
	return nil
}

func (m *Mirror) Close(ctx context.Context) {
	if m.close != nil {
		m.close(ctx)
	}
}

func buildEmbed(entry actionlog.Entry) discord.Embed {
	return discord.NewEmbedBuilder().
		SetDescription(entry.Action).
		SetColor(embedColor).
		SetFooterText(entry.ActorName).
		SetTimestamp(entry.Timestamp).
		Build()
}
