// Package outwriter renders the aggregated snapshot as console tables.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"

	"github.com/teamrecap/recap/internal/contract"
	"github.com/teamrecap/recap/schema"
)

// OutWriter provides a unified interface for all console output.
type OutWriter struct {
	w io.Writer
}

// NewOutWriter creates a writer that prints to stdout.
func NewOutWriter() *OutWriter {
	return &OutWriter{w: os.Stdout}
}

// NewOutWriterTo creates a writer over an arbitrary destination.
func NewOutWriterTo(w io.Writer) *OutWriter {
	return &OutWriter{w: w}
}

// WriteSummary prints every derived section of the snapshot followed by a
// completion line.
func (ow *OutWriter) WriteSummary(snap *schema.Snapshot, cfg *contract.Config, duration time.Duration) error {
	if snap.TeamTotals.Review != nil {
		if err := ow.writeReviewTotals(snap.TeamTotals.Review); err != nil {
			return err
		}
	}
	if len(snap.TeamLeaders.Review) > 0 {
		if err := ow.writeLeaders(snap.TeamLeaders.Review); err != nil {
			return err
		}
	}
	if len(snap.Chat.Channels) > 0 {
		if err := ow.writeChatChannels(snap.Chat.Channels); err != nil {
			return err
		}
	}
	if len(snap.Git.Folders) > 0 {
		if err := ow.writeGitFolders(snap.Git.Folders); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintf(ow.w, "Recap for %s (%s) completed in %v\n", cfg.TeamName, cfg.PeriodName, duration)
	return nil
}

func (ow *OutWriter) writeReviewTotals(totals *schema.ReviewTeamTotals) error {
	_, _ = contract.BoldColor.Fprintln(ow.w, "Pull requests")

	table := tablewriter.NewWriter(ow.w)
	table.Header([]string{"Metric", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := [][]string{
		{"Pulls merged", schema.FormatNumber(float64(totals.Pulls))},
		{"Pulls reviewed", schema.FormatNumber(float64(totals.PullsReviewed))},
		{"Pulls commented on", schema.FormatNumber(float64(totals.PullsCommentedOn))},
		{"Lines added", schema.FormatNumber(float64(totals.Additions))},
		{"Lines deleted", schema.FormatNumber(float64(totals.Deletions))},
		{"Files changed", schema.FormatNumber(float64(totals.ChangedFiles))},
		{"Comments", schema.FormatNumber(float64(totals.Comments))},
		{"Commits", schema.FormatNumber(float64(totals.Commits))},
		{"Words written", schema.FormatNumber(float64(totals.WordsInPullBodies))},
		{"Additions per pull (avg)", fmt.Sprintf("%.1f", totals.AdditionsPerPullAvg)},
		{"Additions per pull (med)", fmt.Sprintf("%.1f", totals.AdditionsPerPullMed)},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func (ow *OutWriter) writeLeaders(leaders map[string]*schema.Leaders) error {
	_, _ = contract.BoldColor.Fprintln(ow.w, "Leaders")

	table := tablewriter.NewWriter(ow.w)
	table.Header([]string{"Metric", "Who", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	metrics := make([]string, 0, len(leaders))
	for metric := range leaders {
		metrics = append(metrics, metric)
	}
	sort.Strings(metrics)

	var data [][]string
	for _, metric := range metrics {
		entry := leaders[metric]
		if len(entry.Names) == 0 {
			continue
		}
		data = append(data, []string{
			metric,
			strings.Join(entry.Names, ", "),
			schema.FormatNumber(entry.Value),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func (ow *OutWriter) writeChatChannels(channels map[string]*schema.ChatChannelData) error {
	_, _ = contract.BoldColor.Fprintln(ow.w, "Chat channels")

	table := tablewriter.NewWriter(ow.w)
	table.Header([]string{"Channel", "Messages", "Busiest Day"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	names := make([]string, 0, len(channels))
	for name := range channels {
		names = append(names, name)
	}
	sort.Strings(names)

	maxName := MaxChannelWidth()
	var data [][]string
	for _, name := range names {
		channel := channels[name]
		busiest := ""
		if channel.DayWithMostMessages != nil {
			busiest = fmt.Sprintf("%s (%d)", channel.DayWithMostMessages.Day, channel.DayWithMostMessages.Count)
		}
		data = append(data, []string{
			truncate("#"+name, maxName),
			schema.FormatNumber(float64(channel.MessageCount)),
			busiest,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func (ow *OutWriter) writeGitFolders(folders map[string]*schema.GitFolderData) error {
	_, _ = contract.BoldColor.Fprintln(ow.w, "Repository folders")

	table := tablewriter.NewWriter(ow.w)
	table.Header([]string{"Folder", "Lines Changed", "Top Extensions"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	names := make([]string, 0, len(folders))
	for name := range folders {
		names = append(names, name)
	}
	sort.Strings(names)

	var data [][]string
	for _, name := range names {
		folder := folders[name]
		data = append(data, []string{
			name,
			schema.FormatNumber(float64(folder.LinesChanged)),
			formatExtensions(folder.ExtensionCounts),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// formatExtensions renders an extension histogram as "ext (n)" pairs,
// highest count first.
func formatExtensions(counts map[string]int) string {
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

	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("%s (%d)", e.ext, e.count))
	}
	return strings.Join(parts, " ")
}

// MaxChannelWidth calculates the space available for channel names based
// on terminal width.
func MaxChannelWidth() int {
	termWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || termWidth <= 0 {
		termWidth = 80 // Conservative default for narrow terminals and CI
	}

	// Reserve space for the count and busiest-day columns plus borders.
	available := termWidth - 45
	if available < 15 {
		return 15
	}
	if available > 40 {
		return 40
	}
	return available
}

func truncate(s string, maxWidth int) string {
	if len(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return s[:maxWidth]
	}
	return s[:maxWidth-3] + "..."
}

// PrintRunStatus prints run store status information.
func PrintRunStatus(status schema.RunStoreStatus) {
	fmt.Printf("Run Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		fmt.Printf("First Run: %s\n", status.FirstRunTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Last Run: %s\n", status.LastRunTime.Format("2006-01-02 15:04:05"))
	}
}
