package chat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/teamrecap/recap/internal/contract"
	"github.com/teamrecap/recap/schema"
)

// SaveFunc persists the snapshot after each channel so an interrupted run
// keeps the channels already fetched.
type SaveFunc func(*schema.Snapshot) error

// Connector fetches channel history and derives per-channel aggregates.
type Connector struct {
	api       API
	cfg       *contract.SlackConfig
	publicDir string
	save      SaveFunc
}

// New returns a connector over the given API.
func New(api API, cfg *contract.SlackConfig, publicDir string, save SaveFunc) *Connector {
	return &Connector{api: api, cfg: cfg, publicDir: publicDir, save: save}
}

// Collect fetches every configured channel for the window. A channel whose
// latest message is already stored is skipped, leaving its aggregates
// untouched.
func (c *Connector) Collect(ctx context.Context, from, to time.Time, snap *schema.Snapshot) error {
	channels, err := c.resolveChannels(ctx)
	if err != nil {
		return err
	}

	for _, name := range c.cfg.Channels {
		channel, ok := channels[name]
		if !ok {
			contract.StepSkip("channel %q not found", name)
			continue
		}

		if err := c.collectChannel(ctx, channel, from, to, snap); err != nil {
			return fmt.Errorf("failed to collect channel %q: %w", name, err)
		}
		if err := c.save(snap); err != nil {
			return err
		}
	}

	if err := c.collectEmoji(ctx, snap); err != nil {
		contract.LogWarn("failed to fetch emoji list", err)
	}

	return nil
}

// resolveChannels pages the channel list until every configured name has
// been seen or the list is exhausted.
func (c *Connector) resolveChannels(ctx context.Context) (map[string]schema.ChatChannel, error) {
	wanted := make(map[string]bool, len(c.cfg.Channels))
	for _, name := range c.cfg.Channels {
		wanted[name] = true
	}

	found := map[string]schema.ChatChannel{}
	cursor := ""
	for {
		page, next, err := c.api.ListChannels(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to list channels: %w", err)
		}
		for _, channel := range page {
			if wanted[channel.Name] {
				found[channel.Name] = channel
			}
		}
		if len(found) == len(c.cfg.Channels) || next == "" {
			return found, nil
		}
		cursor = next
	}
}

func (c *Connector) collectChannel(ctx context.Context, channel schema.ChatChannel, from, to time.Time, snap *schema.Snapshot) error {
	data := snap.Chat.Channels[channel.Name]
	if data == nil {
		data = &schema.ChatChannelData{}
		snap.Chat.Channels[channel.Name] = data
	}
	data.Channel = channel

	latest, err := c.api.LatestMessage(ctx, channel.ID)
	if err != nil {
		return err
	}
	if latest != nil && latest.TS == latestStoredTS(data.Messages) {
		contract.StepSkip("#%s: no new messages", channel.Name)
		return nil
	}

	messages, err := c.fetchHistory(ctx, channel, from, to)
	if err != nil {
		return err
	}
	data.Messages = messages

	if err := c.cacheUsers(ctx, messages, snap); err != nil {
		return err
	}

	data.MessageCount = len(Flatten(messages))
	data.Reacji = TallyReacji(messages)
	data.TopPosters = resolvePosters(TopPosters(messages), snap.Chat.Users)
	data.Emojis = CountEmoji(messages, c.cfg.IgnoreEmoji)
	data.Emojis.ByPerson = resolvePersons(data.Emojis.ByPerson, snap.Chat.Users)
	data.MessageCountByWeekday = CountByWeekday(messages)
	data.DayWithMostMessages = BusiestDay(messages)

	contract.StepDone("#%s: %d messages", channel.Name, data.MessageCount)
	return nil
}

// fetchHistory pages the channel's window and hangs each thread's replies
// off the message that started it. A failed thread fetch is logged and the
// thread keeps an empty reply list.
func (c *Connector) fetchHistory(ctx context.Context, channel schema.ChatChannel, from, to time.Time) ([]*schema.ChatMessage, error) {
	oldest := strconv.FormatInt(from.Unix(), 10)
	latest := strconv.FormatInt(to.Unix(), 10)

	var messages []*schema.ChatMessage
	cursor := ""
	for {
		page, next, err := c.api.History(ctx, channel.ID, oldest, latest, cursor)
		if err != nil {
			return nil, err
		}
		messages = append(messages, page...)
		if next == "" {
			break
		}
		cursor = next
	}

	for _, msg := range messages {
		if msg.ReplyCount == 0 {
			continue
		}
		replies, err := c.fetchReplies(ctx, channel.ID, msg.TS)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("failed to fetch thread %s in #%s", msg.TS, channel.Name), err)
			continue
		}
		msg.Replies = replies
	}

	return messages, nil
}

// fetchReplies pages one thread, dropping the thread parent the API
// returns as the first message.
func (c *Connector) fetchReplies(ctx context.Context, channelID, threadTS string) ([]*schema.ChatMessage, error) {
	var replies []*schema.ChatMessage
	cursor := ""
	for {
		page, next, err := c.api.Replies(ctx, channelID, threadTS, cursor)
		if err != nil {
			return nil, err
		}
		for _, msg := range page {
			if msg.TS == threadTS {
				continue
			}
			replies = append(replies, msg)
		}
		if next == "" {
			return replies, nil
		}
		cursor = next
	}
}

// cacheUsers resolves every user id seen in the messages that is not
// already in the snapshot's profile cache.
func (c *Connector) cacheUsers(ctx context.Context, messages []*schema.ChatMessage, snap *schema.Snapshot) error {
	for _, msg := range Flatten(messages) {
		if msg.User == "" {
			continue
		}
		if _, ok := snap.Chat.Users[msg.User]; ok {
			continue
		}
		user, err := c.api.UserInfo(ctx, msg.User)
		if err != nil {
			return fmt.Errorf("failed to resolve user %s: %w", msg.User, err)
		}
		snap.Chat.Users[msg.User] = user
	}
	return nil
}

// collectEmoji stores the workspace emoji map and downloads each custom
// emoji image to the public directory. Aliases and already-downloaded
// images are skipped.
func (c *Connector) collectEmoji(ctx context.Context, snap *schema.Snapshot) error {
	emoji, err := c.api.EmojiList(ctx)
	if err != nil {
		return err
	}
	snap.Chat.Emoji = emoji

	dir := filepath.Join(c.publicDir, "emoji")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for name, imageURL := range emoji {
		if strings.HasPrefix(imageURL, "alias:") {
			continue
		}
		target := filepath.Join(dir, name+filepath.Ext(imageURL))
		if _, err := os.Stat(target); err == nil {
			continue
		}
		if err := downloadFile(ctx, imageURL, target); err != nil {
			contract.LogWarn(fmt.Sprintf("failed to download emoji %q", name), err)
		}
	}
	return nil
}

func downloadFile(ctx context.Context, sourceURL, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	_, err = io.Copy(out, resp.Body)
	return err
}

// displayName resolves a user id through the profile cache, preferring
// the real name and falling back to the id when the lookup has nothing.
func displayName(users map[string]*schema.ChatUser, id string) string {
	user := users[id]
	if user == nil {
		return id
	}
	if user.RealName != "" {
		return user.RealName
	}
	if user.Name != "" {
		return user.Name
	}
	return id
}

// resolvePosters re-keys poster counts from user ids to display names.
func resolvePosters(counts map[string]int, users map[string]*schema.ChatUser) map[string]int {
	resolved := make(map[string]int, len(counts))
	for id, count := range counts {
		resolved[displayName(users, id)] += count
	}
	return resolved
}

// resolvePersons re-keys per-person emoji tallies from user ids to
// display names.
func resolvePersons(byPerson map[string]map[string]int, users map[string]*schema.ChatUser) map[string]map[string]int {
	resolved := make(map[string]map[string]int, len(byPerson))
	for id, tally := range byPerson {
		name := displayName(users, id)
		if resolved[name] == nil {
			resolved[name] = map[string]int{}
		}
		for emoji, count := range tally {
			resolved[name][emoji] += count
		}
	}
	return resolved
}

// latestStoredTS returns the newest top-level timestamp in the stored
// history, "" for an empty channel.
func latestStoredTS(messages []*schema.ChatMessage) string {
	latest := ""
	for _, msg := range messages {
		if tsAfter(msg.TS, latest) {
			latest = msg.TS
		}
	}
	return latest
}

// tsAfter reports whether a comes after b, comparing the numeric seconds
// part first and the sequence part lexically.
func tsAfter(a, b string) bool {
	if b == "" {
		return a != ""
	}
	aSec, aSeq, _ := strings.Cut(a, ".")
	bSec, bSeq, _ := strings.Cut(b, ".")
	aN, errA := strconv.ParseInt(aSec, 10, 64)
	bN, errB := strconv.ParseInt(bSec, 10, 64)
	if errA != nil || errB != nil {
		return a > b
	}
	if aN != bN {
		return aN > bN
	}
	return aSeq > bSeq
}
