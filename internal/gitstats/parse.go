package gitstats

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/teamrecap/recap/internal/gitclient"
	"github.com/teamrecap/recap/schema"
)

// SumLinesChanged totals the added plus removed lines across every file
// entry in `git log --numstat` output. Binary entries report "-" for both
// counts and are skipped.
func SumLinesChanged(numstat []byte) int {
	total := 0
	for _, line := range strings.Split(string(numstat), "\n") {
		added, removed, _, ok := parseNumstatLine(line)
		if !ok {
			continue
		}
		total += added + removed
	}
	return total
}

// CountExtensions tallies file modifications by extension across numstat
// output. Files without an extension are counted under their base name
// (Makefile, Dockerfile and the like).
func CountExtensions(numstat []byte) map[string]int {
	counts := map[string]int{}
	for _, line := range strings.Split(string(numstat), "\n") {
		_, _, path, ok := parseNumstatLine(line)
		if !ok {
			continue
		}
		ext := filepath.Ext(path)
		if ext == "" {
			ext = filepath.Base(path)
		}
		counts[ext]++
	}
	return counts
}

// TopExtensions keeps the n most-modified extensions. Ties break
// alphabetically so the result is stable across runs.
func TopExtensions(counts map[string]int, n int) map[string]int {
	type entry struct {
		ext   string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for ext, count := range counts {
		entries = append(entries, entry{ext, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].ext < entries[j].ext
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	top := make(map[string]int, len(entries))
	for _, e := range entries {
		top[e.ext] = e.count
	}
	return top
}

func parseNumstatLine(line string) (added, removed int, path string, ok bool) {
	fields := strings.SplitN(strings.TrimSpace(line), "\t", 3)
	if len(fields) != 3 {
		return 0, 0, "", false
	}
	added, errA := strconv.Atoi(fields[0])
	removed, errB := strconv.Atoi(fields[1])
	if errA != nil || errB != nil {
		return 0, 0, "", false
	}
	return added, removed, fields[2], true
}

// SummarizeActivity derives the busiest hour, busiest weekday and average
// commit-subject length from "authorDate\tauthorName\tsubject" log lines,
// considering only commits authored by the given people.
func SummarizeActivity(log []byte, people []string) *schema.GitActivitySummary {
	wanted := make(map[string]bool, len(people))
	for _, name := range people {
		wanted[name] = true
	}

	hourCounts := map[int]int{}
	weekdayCounts := map[string]int{}
	subjectLenSum := 0
	commits := 0

	for _, line := range strings.Split(string(log), "\n") {
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) != 3 || !wanted[fields[1]] {
			continue
		}
		when, err := time.Parse(time.RFC3339, fields[0])
		if err != nil {
			continue
		}

		utc := when.UTC()
		hourCounts[utc.Hour()]++
		weekdayCounts[weekdayLabel(utc.Weekday())]++
		subjectLenSum += len(fields[2])
		commits++
	}

	summary := &schema.GitActivitySummary{}
	for hour, count := range hourCounts {
		if count > summary.BusiestHourCount || (count == summary.BusiestHourCount && hour < summary.BusiestHour) {
			summary.BusiestHour = hour
			summary.BusiestHourCount = count
		}
	}
	for _, day := range schema.Weekdays {
		if count := weekdayCounts[day]; count > summary.BusiestWeekdayCount {
			summary.BusiestWeekday = day
			summary.BusiestWeekdayCount = count
		}
	}
	if commits > 0 {
		summary.CommitMessageLenAvg = float64(subjectLenSum) / float64(commits)
	}
	return summary
}

// TallyCoauthors scans delimited commit bodies for "Co-authored-by:"
// trailers and tallies co-authored commits and unordered author pairs for
// the commit author.
func TallyCoauthors(bodies []byte, author string) (coauthored int, pairs map[string]int) {
	pairs = map[string]int{}
	for _, body := range strings.Split(string(bodies), gitclient.CommitDelimiter) {
		found := false
		for _, line := range strings.Split(body, "\n") {
			name := parseCoauthorName(line)
			if name == "" || name == author {
				continue
			}
			found = true
			pairs[schema.CoauthorPairKey(author, name)]++
		}
		if found {
			coauthored++
		}
	}
	return coauthored, pairs
}

func parseCoauthorName(line string) string {
	const prefix = "Co-authored-by:"
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, prefix) {
		return ""
	}
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
	if i := strings.Index(rest, "<"); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}

func weekdayLabel(d time.Weekday) string {
	// schema.Weekdays starts on Monday, time.Weekday on Sunday.
	return schema.Weekdays[(int(d)+6)%7]
}
