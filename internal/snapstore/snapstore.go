// Package snapstore persists the aggregate snapshot to disk.
//
// Each date window maps to one deterministic file under the data
// directory, alongside a pretty-printed light projection for the
// presentation layer and a .bak copy of the previous full file.
package snapstore

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/teamrecap/recap/internal/contract"
	"github.com/teamrecap/recap/schema"
)

// Store loads and saves snapshots for one date window.
type Store struct {
	dir  string
	from time.Time
	to   time.Time
}

// SaveOptions controls a save operation.
type SaveOptions struct {
	// StampTimestamp overwrites CreatedOn with the current time before
	// writing. Only the final save of a run sets this.
	StampTimestamp bool
}

// New returns a store rooted at dir for the [from, to) window.
func New(dir string, from, to time.Time) *Store {
	return &Store{dir: dir, from: from, to: to}
}

// Path returns the deterministic full-snapshot path for the window.
func (s *Store) Path() string {
	name := fmt.Sprintf("data-%d-%d.json", s.from.UnixMilli(), s.to.UnixMilli())
	return filepath.Join(s.dir, name)
}

// LightPath returns the path of the light projection file.
func (s *Store) LightPath() string {
	return strings.TrimSuffix(s.Path(), ".json") + ".light.json"
}

// Load returns the snapshot stored for the window, or a fresh empty
// snapshot when no file exists. A corrupt file is logged as a warning and
// replaced with an empty snapshot; Load never fails. Before reading, the
// existing file is copied to a .bak sibling (best effort).
func (s *Store) Load(people []string) *schema.Snapshot {
	snap := schema.NewSnapshot()
	path := s.Path()

	if _, err := os.Stat(path); err == nil {
		if err := copyFile(path, path+".bak"); err != nil {
			contract.LogWarn("could not back up snapshot", err)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("failed to read snapshot at %s", path), err)
		} else if err := json.Unmarshal(content, snap); err != nil {
			contract.LogWarn(fmt.Sprintf("failed to parse snapshot at %s, starting fresh", path), err)
			snap = schema.NewSnapshot()
		}
	}

	normalize(snap, people)
	return snap
}

// normalize backfills maps that may be nil after decoding an older or
// empty snapshot file, and ensures a review bucket exists per person.
func normalize(snap *schema.Snapshot, people []string) {
	if snap.Review == nil {
		snap.Review = map[string]*schema.ReviewPersonData{}
	}
	if snap.Git.Folders == nil {
		snap.Git.Folders = map[string]*schema.GitFolderData{}
	}
	if snap.Chat.Channels == nil {
		snap.Chat.Channels = map[string]*schema.ChatChannelData{}
	}
	if snap.Chat.Users == nil {
		snap.Chat.Users = map[string]*schema.ChatUser{}
	}
	if snap.Chat.Emoji == nil {
		snap.Chat.Emoji = map[string]string{}
	}
	for _, name := range people {
		snap.EnsurePerson(name)
	}
}

// Save writes the full snapshot and its light projection. Writes go to a
// temp file first and are renamed into place, so a concurrent reader sees
// either the old or the new content.
func (s *Store) Save(snap *schema.Snapshot, opts SaveOptions) error {
	if opts.StampTimestamp {
		now := time.Now()
		snap.CreatedOn = &now
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %q: %w", s.dir, err)
	}

	full, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := writeAtomic(s.Path(), full); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	light, err := json.MarshalIndent(Light(snap), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode light snapshot: %w", err)
	}
	if err := writeAtomic(s.LightPath(), light); err != nil {
		return fmt.Errorf("failed to write light snapshot: %w", err)
	}

	return nil
}

// Light builds the redacted projection: aggregates and metadata only, no
// raw pull bodies or message lists.
func Light(snap *schema.Snapshot) *schema.SnapshotLight {
	light := &schema.SnapshotLight{
		Review:      map[string]*schema.ReviewPersonLight{},
		Git:         snap.Git,
		TeamTotals:  snap.TeamTotals,
		TeamLeaders: snap.TeamLeaders,
		CreatedOn:   snap.CreatedOn,
		Chat: schema.ChatDataLight{
			Channels: map[string]*schema.ChatChannelLight{},
			Emoji:    snap.Chat.Emoji,
		},
	}

	for name, data := range snap.Review {
		light.Review[name] = &schema.ReviewPersonLight{
			PullsAllFetched: data.PullsAllFetched,
			Totals:          data.Totals,
		}
	}

	for name, channel := range snap.Chat.Channels {
		light.Chat.Channels[name] = &schema.ChatChannelLight{
			MessageCount:          channel.MessageCount,
			Reacji:                channel.Reacji,
			TopPosters:            channel.TopPosters,
			Emojis:                channel.Emojis,
			MessageCountByWeekday: channel.MessageCountByWeekday,
			DayWithMostMessages:   channel.DayWithMostMessages,
		}
	}

	return light
}

// writeAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// copyFile copies src to dst, truncating dst if it exists.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, in)
	return err
}
