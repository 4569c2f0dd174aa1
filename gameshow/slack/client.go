// gameshow/slack/client.go
package slack

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gameshow-bot/gameshow-service/gameshow/messages"
	"github.com/gameshow-bot/gameshow-service/shared/api"
)

// ErrSlackAPI marks failures the Slack Web API reports inside its 200
// envelope (`{"ok": false, "error": "..."}`).
var ErrSlackAPI = fmt.Errorf("slack api error")

// Client is a thin messaging client for the Slack Web API. The base URL is
// configurable so tests can point it at a local httptest server.
type Client struct {
	api *api.Client
}

// NewClient creates a Slack client authenticated with the bot user token.
func NewClient(baseURL, botToken string, httpClient *http.Client) *Client {
	return &Client{
		api: api.NewClient(baseURL, httpClient).WithBearer(botToken),
	}
}

// apiEnvelope is the response prefix every Web API method shares.
type apiEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (e *apiEnvelope) check(method string) error {
	if !e.OK {
		return fmt.Errorf("%w: %s returned %q", ErrSlackAPI, method, e.Error)
	}
	return nil
}

// OpenIM opens (or resumes) a direct-message channel with a user and returns
// its channel id.
func (c *Client) OpenIM(ctx context.Context, userID string) (string, error) {
	req := struct {
		Users string `json:"users"`
	}{Users: userID}

	var resp struct {
		apiEnvelope
		Channel struct {
			ID string `json:"id"`
		} `json:"channel"`
	}
	if err := c.api.Post(ctx, "/conversations.open", req, &resp); err != nil {
		return "", fmt.Errorf("failed to open IM with %s: %w", userID, err)
	}
	if err := resp.check("conversations.open"); err != nil {
		return "", err
	}
	return resp.Channel.ID, nil
}

// PostMessage posts a message to a channel and returns its timestamp, the
// handle needed to delete it later.
func (c *Client) PostMessage(ctx context.Context, channelID string, msg *messages.Message) (string, error) {
	req := struct {
		Channel string           `json:"channel"`
		Text    string           `json:"text,omitempty"`
		Blocks  []messages.Block `json:"blocks,omitempty"`
	}{Channel: channelID, Text: msg.Text, Blocks: msg.Blocks}

	var resp struct {
		apiEnvelope
		Channel   string `json:"channel"`
		Timestamp string `json:"ts"`
	}
	if err := c.api.Post(ctx, "/chat.postMessage", req, &resp); err != nil {
		return "", fmt.Errorf("failed to post message to %s: %w", channelID, err)
	}
	if err := resp.check("chat.postMessage"); err != nil {
		return "", err
	}
	return resp.Timestamp, nil
}

// PostEphemeral posts a message to a channel visible only to one user.
func (c *Client) PostEphemeral(ctx context.Context, channelID, userID string, msg *messages.Message) error {
	req := struct {
		Channel string           `json:"channel"`
		User    string           `json:"user"`
		Text    string           `json:"text,omitempty"`
		Blocks  []messages.Block `json:"blocks,omitempty"`
	}{Channel: channelID, User: userID, Text: msg.Text, Blocks: msg.Blocks}

	var resp apiEnvelope
	if err := c.api.Post(ctx, "/chat.postEphemeral", req, &resp); err != nil {
		return fmt.Errorf("failed to post ephemeral message to %s for %s: %w", channelID, userID, err)
	}
	return resp.check("chat.postEphemeral")
}

// DeleteMessage deletes a previously posted message.
func (c *Client) DeleteMessage(ctx context.Context, channelID, timestamp string) error {
	req := struct {
		Channel string `json:"channel"`
		TS      string `json:"ts"`
	}{Channel: channelID, TS: timestamp}

	var resp apiEnvelope
	if err := c.api.Post(ctx, "/chat.delete", req, &resp); err != nil {
		return fmt.Errorf("failed to delete message %s in %s: %w", timestamp, channelID, err)
	}
	return resp.check("chat.delete")
}

// ChannelMembers fetches the full member list of a channel, following
// pagination cursors until exhausted.
func (c *Client) ChannelMembers(ctx context.Context, channelID string) ([]string, error) {
	var members []string
	cursor := ""

	for {
		query := url.Values{"channel": {channelID}}
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		var resp struct {
			apiEnvelope
			Members          []string `json:"members"`
			ResponseMetadata struct {
				NextCursor string `json:"next_cursor"`
			} `json:"response_metadata"`
		}
		if err := c.api.Get(ctx, "/conversations.members", query, &resp); err != nil {
			return nil, fmt.Errorf("failed to fetch members of %s: %w", channelID, err)
		}
		if err := resp.check("conversations.members"); err != nil {
			return nil, err
		}

		members = append(members, resp.Members...)
		cursor = resp.ResponseMetadata.NextCursor
		if cursor == "" {
			return members, nil
		}
	}
}

// PostResponse delivers a message to the one-shot response_url of an inbound
// event. Slack answers these with a bare "ok" body, so nothing is decoded.
func (c *Client) PostResponse(ctx context.Context, responseURL string, msg *messages.Message) error {
	if err := c.api.PostURL(ctx, responseURL, msg, nil); err != nil {
		return fmt.Errorf("failed to post to response url: %w", err)
	}
	return nil
}
