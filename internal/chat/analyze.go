package chat

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/teamrecap/recap/schema"
)

const topPosterCount = 10

var emojiTokenRe = regexp.MustCompile(`:(\w+):`)

// Flatten returns every message in the channel, top-level and replies,
// as one flat list. Traversal is iterative over an explicit stack.
func Flatten(messages []*schema.ChatMessage) []*schema.ChatMessage {
	var flat []*schema.ChatMessage
	stack := make([]*schema.ChatMessage, len(messages))
	for i := range messages {
		// Reverse so the stack pops in original order.
		stack[len(messages)-1-i] = messages[i]
	}

	for len(stack) > 0 {
		msg := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		flat = append(flat, msg)
		for i := len(msg.Replies) - 1; i >= 0; i-- {
			stack = append(stack, msg.Replies[i])
		}
	}
	return flat
}

// TallyReacji sums reaction counts by reaction name across all messages.
func TallyReacji(messages []*schema.ChatMessage) map[string]int {
	reacji := map[string]int{}
	for _, msg := range Flatten(messages) {
		for _, reaction := range msg.Reactions {
			reacji[reaction.Name] += reaction.Count
		}
	}
	return reacji
}

// TopPosters returns message counts for the ten most active user ids.
func TopPosters(messages []*schema.ChatMessage) map[string]int {
	counts := map[string]int{}
	for _, msg := range Flatten(messages) {
		if msg.User != "" {
			counts[msg.User]++
		}
	}

	type entry struct {
		user  string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for user, count := range counts {
		entries = append(entries, entry{user, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].user < entries[j].user
	})

	if len(entries) > topPosterCount {
		entries = entries[:topPosterCount]
	}
	top := make(map[string]int, len(entries))
	for _, e := range entries {
		top[e.user] = e.count
	}
	return top
}

// CountEmoji scans message text for :name: tokens and tallies usage
// globally and per user id. Purely numeric names and names on the ignore
// list are dropped.
func CountEmoji(messages []*schema.ChatMessage, ignore []string) *schema.EmojiUsage {
	ignored := make(map[string]bool, len(ignore))
	for _, name := range ignore {
		ignored[name] = true
	}

	usage := &schema.EmojiUsage{
		ByCount:  map[string]int{},
		ByPerson: map[string]map[string]int{},
	}

	for _, msg := range Flatten(messages) {
		for _, match := range emojiTokenRe.FindAllStringSubmatch(msg.Text, -1) {
			name := match[1]
			if ignored[name] || isNumeric(name) {
				continue
			}
			usage.ByCount[name]++
			if msg.User != "" {
				if usage.ByPerson[msg.User] == nil {
					usage.ByPerson[msg.User] = map[string]int{}
				}
				usage.ByPerson[msg.User][name]++
			}
		}
	}
	return usage
}

func isNumeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// CountByWeekday buckets every message by its local weekday. The busiest
// day below stays on UTC dates.
func CountByWeekday(messages []*schema.ChatMessage) map[string]int {
	counts := map[string]int{}
	for _, day := range schema.Weekdays {
		counts[day] = 0
	}
	for _, msg := range Flatten(messages) {
		when, ok := parseTS(msg.TS)
		if !ok {
			continue
		}
		local := when.Local()
		counts[schema.Weekdays[(int(local.Weekday())+6)%7]]++
	}
	return counts
}

// BusiestDay buckets every message by its UTC calendar date and returns
// the date with the highest count, nil when there are no messages.
func BusiestDay(messages []*schema.ChatMessage) *schema.DayCount {
	counts := map[string]int{}
	for _, msg := range Flatten(messages) {
		when, ok := parseTS(msg.TS)
		if !ok {
			continue
		}
		counts[when.Format("2006-01-02")]++
	}

	var best *schema.DayCount
	for day, count := range counts {
		if best == nil || count > best.Count || (count == best.Count && day < best.Day) {
			best = &schema.DayCount{Day: day, Count: count}
		}
	}
	return best
}

// parseTS converts a Slack "seconds.sequence" timestamp to UTC time.
func parseTS(ts string) (time.Time, bool) {
	seconds, _, _ := strings.Cut(ts, ".")
	unix, err := strconv.ParseInt(seconds, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(unix, 0).UTC(), true
}
