// Package chat fetches channel history from the Slack Web API and derives
// the per-channel aggregates stored in the snapshot.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/teamrecap/recap/schema"
)

const (
	defaultBaseURL = "https://slack.com/api"
	pageLimit      = 200
)

// API is the subset of the Slack Web API the connector needs. The
// concrete Client implements it; tests substitute a fake.
type API interface {
	ListChannels(ctx context.Context, cursor string) ([]schema.ChatChannel, string, error)
	LatestMessage(ctx context.Context, channelID string) (*schema.ChatMessage, error)
	History(ctx context.Context, channelID string, oldest, latest string, cursor string) ([]*schema.ChatMessage, string, error)
	Replies(ctx context.Context, channelID, threadTS string, cursor string) ([]*schema.ChatMessage, string, error)
	UserInfo(ctx context.Context, userID string) (*schema.ChatUser, error)
	EmojiList(ctx context.Context) (map[string]string, error)
}

// Client wraps the Slack Web API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

var _ API = &Client{} // Compile-time check

// NewClient creates a new Slack API client.
func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiError is the ok=false envelope every Slack response can carry.
type apiError struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// call makes an authenticated GET request to one API method and decodes
// the response into target. A 429 answer is retried after the duration
// the Retry-After header names; every throttle is retried.
func (c *Client) call(ctx context.Context, method string, params url.Values, target any) error {
	reqURL := c.baseURL + "/" + method
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := retryAfter(resp)
			drainAndClose(resp)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return readErrorAndClose(method, resp)
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read %s response: %w", method, err)
		}

		var envelope apiError
		if err := json.Unmarshal(body, &envelope); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", method, err)
		}
		if !envelope.OK {
			return fmt.Errorf("slack API %s returned error: %s", method, envelope.Error)
		}

		return json.Unmarshal(body, target)
	}
}

func retryAfter(resp *http.Response) time.Duration {
	if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return time.Second
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func readErrorAndClose(method string, resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("slack API %s error %d: %s", method, resp.StatusCode, string(body))
}

type channelListResponse struct {
	Channels []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Topic struct {
			Value string `json:"value"`
		} `json:"topic"`
		Purpose struct {
			Value string `json:"value"`
		} `json:"purpose"`
		NumMembers int `json:"num_members"`
	} `json:"channels"`
	ResponseMetadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
}

// ListChannels returns one page of public channels and the cursor for the
// next page, "" when exhausted.
func (c *Client) ListChannels(ctx context.Context, cursor string) ([]schema.ChatChannel, string, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(pageLimit))
	params.Set("exclude_archived", "true")
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	var result channelListResponse
	if err := c.call(ctx, "conversations.list", params, &result); err != nil {
		return nil, "", err
	}

	channels := make([]schema.ChatChannel, 0, len(result.Channels))
	for _, ch := range result.Channels {
		channels = append(channels, schema.ChatChannel{
			ID:         ch.ID,
			Name:       ch.Name,
			Topic:      ch.Topic.Value,
			Purpose:    ch.Purpose.Value,
			NumMembers: ch.NumMembers,
		})
	}
	return channels, result.ResponseMetadata.NextCursor, nil
}

type historyResponse struct {
	Messages         []*schema.ChatMessage `json:"messages"`
	ResponseMetadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
}

// LatestMessage returns the newest message in the channel, or nil when the
// channel is empty.
func (c *Client) LatestMessage(ctx context.Context, channelID string) (*schema.ChatMessage, error) {
	params := url.Values{}
	params.Set("channel", channelID)
	params.Set("limit", "1")

	var result historyResponse
	if err := c.call(ctx, "conversations.history", params, &result); err != nil {
		return nil, err
	}
	if len(result.Messages) == 0 {
		return nil, nil
	}
	return result.Messages[0], nil
}

// History returns one page of channel history between the oldest and
// latest timestamps.
func (c *Client) History(ctx context.Context, channelID string, oldest, latest string, cursor string) ([]*schema.ChatMessage, string, error) {
	params := url.Values{}
	params.Set("channel", channelID)
	params.Set("limit", strconv.Itoa(pageLimit))
	if oldest != "" {
		params.Set("oldest", oldest)
	}
	if latest != "" {
		params.Set("latest", latest)
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	var result historyResponse
	if err := c.call(ctx, "conversations.history", params, &result); err != nil {
		return nil, "", err
	}
	return result.Messages, result.ResponseMetadata.NextCursor, nil
}

// Replies returns one page of a thread, including the thread parent as
// the first message of the first page.
func (c *Client) Replies(ctx context.Context, channelID, threadTS string, cursor string) ([]*schema.ChatMessage, string, error) {
	params := url.Values{}
	params.Set("channel", channelID)
	params.Set("ts", threadTS)
	params.Set("limit", strconv.Itoa(pageLimit))
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	var result historyResponse
	if err := c.call(ctx, "conversations.replies", params, &result); err != nil {
		return nil, "", err
	}
	return result.Messages, result.ResponseMetadata.NextCursor, nil
}

type userInfoResponse struct {
	User schema.ChatUser `json:"user"`
}

// UserInfo resolves a user id to its profile.
func (c *Client) UserInfo(ctx context.Context, userID string) (*schema.ChatUser, error) {
	params := url.Values{}
	params.Set("user", userID)

	var result userInfoResponse
	if err := c.call(ctx, "users.info", params, &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

type emojiListResponse struct {
	Emoji map[string]string `json:"emoji"`
}

// EmojiList returns the workspace's custom emoji name to image URL map.
// Alias entries keep their "alias:" value untouched.
func (c *Client) EmojiList(ctx context.Context) (map[string]string, error) {
	var result emojiListResponse
	if err := c.call(ctx, "emoji.list", url.Values{}, &result); err != nil {
		return nil, err
	}
	return result.Emoji, nil
}
