package acmonitor

import (
	"errors"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var ErrInvalidWebhookURL = errors.New("acmonitor: invalid discord webhook url")

// DiscordWebhook is a Messenger backed by a single Discord webhook. Webhook
// calls authenticate with the token embedded in the URL, so no bot token is
// needed.
type DiscordWebhook struct {
	session *discordgo.Session
	id      string
	token   string
}

func NewDiscordWebhook(webhookURL string) (*DiscordWebhook, error) {
	id, token, err := parseWebhookURL(webhookURL)

	if err != nil {
		return nil, err
	}

	session, err := discordgo.New("")

	if err != nil {
		return nil, err
	}

	return &DiscordWebhook{
		session: session,
		id:      id,
		token:   token,
	}, nil
}

// parseWebhookURL splits https://discord.com/api/webhooks/{id}/{token} into
// its id and token parts.
func parseWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)

	if err != nil {
		return "", "", err
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")

	for i, part := range parts {
		if part == "webhooks" && len(parts) >= i+3 {
			return parts[i+1], parts[i+2], nil
		}
	}

	return "", "", ErrInvalidWebhookURL
}

func (d *DiscordWebhook) Send(content string) (string, error) {
	message, err := d.session.WebhookExecute(d.id, d.token, true, &discordgo.WebhookParams{
		Content: content,
	})

	if err != nil {
		return "", err
	}

	return message.ID, nil
}

func (d *DiscordWebhook) Edit(messageID string, content string) error {
	_, err := d.session.WebhookMessageEdit(d.id, d.token, messageID, &discordgo.WebhookEdit{
		Content: &content,
	})

	return err
}

func (d *DiscordWebhook) Delete(messageID string) error {
	return d.session.WebhookMessageDelete(d.id, d.token, messageID)
}
