// Package schema defines the data model shared across the recap CLI:
// the persisted snapshot, its light projection, and the derived statistics.
package schema

import "time"

// Snapshot is the aggregate that every connector writes into and that the
// aggregation pass reads from. One instance exists per date window; it is
// persisted after every meaningful unit of fetched work so an interrupted
// run can resume from the last checkpoint.
type Snapshot struct {
	Review      map[string]*ReviewPersonData `json:"github"`
	Git         GitData                      `json:"git"`
	Chat        ChatData                     `json:"slack"`
	TeamTotals  TeamTotals                   `json:"teamTotals"`
	TeamLeaders TeamLeaders                  `json:"teamLeaders"`

	// CreatedOn is stamped on the final save of a successful run and acts
	// as the freshness signal for incremental fetching.
	CreatedOn *time.Time `json:"createdOn,omitempty"`
}

// SnapshotLight is the redacted projection consumed by the presentation
// layer. It never carries raw pull bodies or chat message lists.
type SnapshotLight struct {
	Review      map[string]*ReviewPersonLight `json:"github"`
	Git         GitData                       `json:"git"`
	Chat        ChatDataLight                 `json:"slack"`
	TeamTotals  TeamTotals                    `json:"teamTotals"`
	TeamLeaders TeamLeaders                   `json:"teamLeaders"`
	CreatedOn   *time.Time                    `json:"createdOn,omitempty"`
}

// ReviewPersonData holds everything fetched from the review platform for a
// single person. Pull numbers are unique within each of the three maps.
type ReviewPersonData struct {
	Pulls            map[int]*PullRequest    `json:"pulls"`
	PullsReviewed    map[int]*PullRequestRef `json:"pullsReviewed"`
	PullsCommentedOn map[int]*PullRequestRef `json:"pullsCommentedOn"`

	// PullsAllFetched is set only after a full, uninterrupted pass over the
	// person's authored pulls. Together with the freshness rule it decides
	// whether the person can be skipped on the next run; commented and
	// reviewed sets are refetched on every run that is not skipped.
	PullsAllFetched bool `json:"pullsAllFetched"`

	Totals ReviewTotals `json:"totals"`
}

// ReviewPersonLight is ReviewPersonData without the bulky per-item maps.
type ReviewPersonLight struct {
	PullsAllFetched bool         `json:"pullsAllFetched"`
	Totals          ReviewTotals `json:"totals"`
}

// PullRequest is a normalized authored item with full detail.
type PullRequest struct {
	Number       int            `json:"number"`
	Title        string         `json:"title"`
	URL          string         `json:"url"`
	Additions    int            `json:"additions"`
	Deletions    int            `json:"deletions"`
	ChangedFiles int            `json:"changedFiles"`
	Comments     int            `json:"comments"`
	Commits      int            `json:"commits"`
	CreatedAt    time.Time      `json:"createdAt"`
	Body         string         `json:"body"`
	Reactions    ReactionCounts `json:"reactions"`
}

// PullRequestRef is a normalized search result for items a person reviewed
// or commented on. Only identity fields are kept.
type PullRequestRef struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReactionCounts mirrors the upstream reaction rollup on a pull request.
type ReactionCounts struct {
	TotalCount int `json:"total_count"`
	PlusOne    int `json:"+1"`
	MinusOne   int `json:"-1"`
	Laugh      int `json:"laugh"`
	Hooray     int `json:"hooray"`
	Confused   int `json:"confused"`
	Heart      int `json:"heart"`
	Rocket     int `json:"rocket"`
	Eyes       int `json:"eyes"`
}

// TestTypes holds the checkbox flags parsed from a pull request body.
type TestTypes struct {
	Manual      bool `json:"manual"`
	Unit        bool `json:"unit"`
	Client      bool `json:"client"`
	Integration bool `json:"integration"`
	Browser     bool `json:"browser"`
}

// ReviewTotals are the per-person sums and averages derived from the
// person's normalized pull data. List-valued fields collect pull numbers
// (or per-pull counts for words/images) so leaders can be computed either
// by length or by sum.
type ReviewTotals struct {
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	ChangedFiles int `json:"changedFiles"`
	Comments     int `json:"comments"`
	Commits      int `json:"commits"`

	Pulls            []int `json:"pulls"`
	PullsReviewed    []int `json:"pullsReviewed"`
	PullsCommentedOn []int `json:"pullsCommentedOn"`

	WordsInPullBodies  []int `json:"wordsInPullBodies"`
	ImagesInPullBodies []int `json:"imagesInPullBodies"`

	AdditionsPerPullAvg    float64 `json:"additionsPerPullAvg"`
	DeletionsPerPullAvg    float64 `json:"deletionsPerPullAvg"`
	ChangedFilesPerPullAvg float64 `json:"changedFilesPerPullAvg"`
	WordsPerPullAvg        float64 `json:"wordsPerPullAvg"`
	ImagesPerPullAvg       float64 `json:"imagesPerPullAvg"`

	PullsTestedManually    []int `json:"pullsTestedManually"`
	PullsTestedUnit        []int `json:"pullsTestedUnit"`
	PullsTestedClient      []int `json:"pullsTestedClient"`
	PullsTestedBrowser     []int `json:"pullsTestedBrowser"`
	PullsTestedIntegration []int `json:"pullsTestedIntegration"`
}

// NewReviewTotals returns zeroed totals with all list fields allocated, so
// JSON round-trips keep `[]` instead of `null`.
func NewReviewTotals() ReviewTotals {
	return ReviewTotals{
		Pulls:                  []int{},
		PullsReviewed:          []int{},
		PullsCommentedOn:       []int{},
		WordsInPullBodies:      []int{},
		ImagesInPullBodies:     []int{},
		PullsTestedManually:    []int{},
		PullsTestedUnit:        []int{},
		PullsTestedClient:      []int{},
		PullsTestedBrowser:     []int{},
		PullsTestedIntegration: []int{},
	}
}

// ReviewTeamTotals are team-wide sums plus averages and medians. Pull
// counts are distinct across the team, not the sum of per-person counts.
type ReviewTeamTotals struct {
	Additions          int `json:"additions"`
	Deletions          int `json:"deletions"`
	ChangedFiles       int `json:"changedFiles"`
	Comments           int `json:"comments"`
	Commits            int `json:"commits"`
	Pulls              int `json:"pulls"`
	PullsReviewed      int `json:"pullsReviewed"`
	PullsCommentedOn   int `json:"pullsCommentedOn"`
	WordsInPullBodies  int `json:"wordsInPullBodies"`
	ImagesInPullBodies int `json:"imagesInPullBodies"`

	AdditionsPerPullAvg    float64 `json:"additionsPerPullAvg"`
	DeletionsPerPullAvg    float64 `json:"deletionsPerPullAvg"`
	ChangedFilesPerPullAvg float64 `json:"changedFilesPerPullAvg"`
	AdditionsPerPullMed    float64 `json:"additionsPerPullMed"`
	DeletionsPerPullMed    float64 `json:"deletionsPerPullMed"`
	ChangedFilesPerPullMed float64 `json:"changedFilesPerPullMed"`

	PullsTestedManually    int `json:"pullsTestedManually"`
	PullsTestedUnit        int `json:"pullsTestedUnit"`
	PullsTestedClient      int `json:"pullsTestedClient"`
	PullsTestedBrowser     int `json:"pullsTestedBrowser"`
	PullsTestedIntegration int `json:"pullsTestedIntegration"`
}

// ChatTeamTotals are summed from per-channel aggregates; computing them
// performs no fetching.
type ChatTeamTotals struct {
	Messages  int `json:"messages"`
	Words     int `json:"words"`
	Reactions int `json:"reactions"`
	Emojis    int `json:"emojis"`
}

// TeamTotals holds the derived team-wide sections. They are recomputed on
// every run and never loaded from disk as authoritative.
type TeamTotals struct {
	Review *ReviewTeamTotals `json:"github,omitempty"`
	Chat   *ChatTeamTotals   `json:"slack,omitempty"`
}

// Leaders names the person(s) tied for the maximum value of one metric.
type Leaders struct {
	Names []string `json:"names"`
	Value float64  `json:"value"`
}

// TeamLeaders maps metric name to its leader entry, per source.
type TeamLeaders struct {
	Review map[string]*Leaders `json:"github,omitempty"`
}

// ChatData is the chat section of the snapshot: per-channel aggregates plus
// the process-wide user profile cache and the emoji name to image URL map.
type ChatData struct {
	Channels map[string]*ChatChannelData `json:"channels"`
	Users    map[string]*ChatUser        `json:"users"`
	Emoji    map[string]string           `json:"emoji"`
}

// ChatDataLight drops user profiles and per-channel raw messages.
type ChatDataLight struct {
	Channels map[string]*ChatChannelLight `json:"channels"`
	Emoji    map[string]string            `json:"emoji"`
}

// ChatChannelData carries the raw message history for one channel along
// with every per-channel aggregate derived from it.
type ChatChannelData struct {
	Channel  ChatChannel    `json:"channel"`
	Messages []*ChatMessage `json:"messages,omitempty"`

	// MessageCount is top-level messages plus all nested replies.
	MessageCount          int            `json:"messageCount"`
	Reacji                map[string]int `json:"reacji,omitempty"`
	TopPosters            map[string]int `json:"topPosters,omitempty"`
	Emojis                *EmojiUsage    `json:"emojis,omitempty"`
	MessageCountByWeekday map[string]int `json:"messageCountByDay,omitempty"`
	DayWithMostMessages   *DayCount      `json:"dayWithMostMessages,omitempty"`
}

// ChatChannelLight is ChatChannelData without channel metadata or messages.
type ChatChannelLight struct {
	MessageCount          int            `json:"messageCount"`
	Reacji                map[string]int `json:"reacji,omitempty"`
	TopPosters            map[string]int `json:"topPosters,omitempty"`
	Emojis                *EmojiUsage    `json:"emojis,omitempty"`
	MessageCountByWeekday map[string]int `json:"messageCountByDay,omitempty"`
	DayWithMostMessages   *DayCount      `json:"dayWithMostMessages,omitempty"`
}

// ChatChannel is the minimal channel metadata consumed downstream.
type ChatChannel struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Topic      string `json:"topic,omitempty"`
	Purpose    string `json:"purpose,omitempty"`
	NumMembers int    `json:"num_members,omitempty"`
}

// ChatMessage is a normalized chat message; replies are nested in order
// under the message that started the thread.
type ChatMessage struct {
	TS         string         `json:"ts"`
	User       string         `json:"user,omitempty"`
	Text       string         `json:"text,omitempty"`
	ThreadTS   string         `json:"thread_ts,omitempty"`
	ReplyCount int            `json:"reply_count,omitempty"`
	Reactions  []ChatReaction `json:"reactions,omitempty"`
	Replies    []*ChatMessage `json:"replies,omitempty"`
}

// ChatReaction is one reaction name with its count on a single message.
type ChatReaction struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ChatUser is a cached user profile used to resolve ids to display names.
type ChatUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RealName string `json:"real_name,omitempty"`
}

// EmojiUsage tallies emoji tokens found in message text, globally and per
// resolved person.
type EmojiUsage struct {
	ByCount  map[string]int            `json:"byCount"`
	ByPerson map[string]map[string]int `json:"byPerson"`
}

// DayCount records the single calendar day with the highest message count.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// GitData is the version-control section of the snapshot.
type GitData struct {
	Folders  map[string]*GitFolderData `json:"folders"`
	Activity *GitActivitySummary       `json:"activity,omitempty"`
}

// GitFolderData holds the per-folder log statistics.
type GitFolderData struct {
	LinesChanged    int            `json:"linesChanged"`
	ExtensionCounts map[string]int `json:"extensionCounts,omitempty"`
}

// GitActivitySummary holds the repository-wide statistics computed once
// per run, restricted to the configured people's commits.
type GitActivitySummary struct {
	CommitAtFrom string `json:"commitAtFrom"`
	CommitAtTo   string `json:"commitAtTo"`

	BusiestHour         int     `json:"busiestHour"`
	BusiestHourCount    int     `json:"busiestHourCount"`
	BusiestWeekday      string  `json:"busiestWeekday"`
	BusiestWeekdayCount int     `json:"busiestWeekdayCount"`
	CommitMessageLenAvg float64 `json:"commitMessageLenAvg"`

	// CoauthorPairs is keyed by an order-independent pair key, so the
	// {A,B} and {B,A} trailers land in the same bucket.
	CoauthoredCommits int            `json:"coauthoredCommits"`
	CoauthorPairs     map[string]int `json:"coauthorPairs,omitempty"`
}

// NewSnapshot returns an empty snapshot with every top-level map allocated.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Review: map[string]*ReviewPersonData{},
		Git:    GitData{Folders: map[string]*GitFolderData{}},
		Chat: ChatData{
			Channels: map[string]*ChatChannelData{},
			Users:    map[string]*ChatUser{},
			Emoji:    map[string]string{},
		},
	}
}

// EnsurePerson initializes the review bucket for a person if missing and
// backfills any nil maps from older snapshot files.
func (s *Snapshot) EnsurePerson(name string) *ReviewPersonData {
	data, ok := s.Review[name]
	if !ok || data == nil {
		data = &ReviewPersonData{Totals: NewReviewTotals()}
		s.Review[name] = data
	}
	if data.Pulls == nil {
		data.Pulls = map[int]*PullRequest{}
	}
	if data.PullsReviewed == nil {
		data.PullsReviewed = map[int]*PullRequestRef{}
	}
	if data.PullsCommentedOn == nil {
		data.PullsCommentedOn = map[int]*PullRequestRef{}
	}
	return data
}
