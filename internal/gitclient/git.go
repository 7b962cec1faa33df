// Package gitclient executes the local 'git' binary to read repository
// history.
package gitclient

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/teamrecap/recap/internal/contract"
)

// CommitDelimiter separates commit bodies in CommitBodies output.
const CommitDelimiter = "--COMMIT--"

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ contract.GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(_ context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.Command("git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s. If this is not a Git repository, verify the path or run 'git init'", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// NumstatLog implements the GitClient interface.
func (c *LocalGitClient) NumstatLog(ctx context.Context, repoPath string, from, to time.Time, folder string, authors []string) ([]byte, error) {
	args := []string{
		"log",
		"--numstat",
		"--pretty=format:",
		"--since=" + from.Format(contract.DateTimeFormat),
		"--until=" + to.Format(contract.DateTimeFormat),
	}
	for _, author := range authors {
		args = append(args, "--author="+author)
	}
	if folder != "" {
		args = append(args, "--", folder)
	}
	return c.Run(ctx, repoPath, args...)
}

// CommitBefore implements the GitClient interface.
func (c *LocalGitClient) CommitBefore(ctx context.Context, repoPath string, date time.Time) (string, error) {
	args := []string{
		"log", "-n", "1",
		"--pretty=format:%h",
		"--before=" + date.Format(contract.DateTimeFormat),
	}
	out, err := c.Run(ctx, repoPath, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ActivityLog implements the GitClient interface.
func (c *LocalGitClient) ActivityLog(ctx context.Context, repoPath string, from, to time.Time) ([]byte, error) {
	args := []string{
		"log",
		"--pretty=format:%ad\t%an\t%s",
		"--date=iso-strict",
		"--since=" + from.Format(contract.DateTimeFormat),
		"--until=" + to.Format(contract.DateTimeFormat),
	}
	return c.Run(ctx, repoPath, args...)
}

// CommitBodies implements the GitClient interface.
func (c *LocalGitClient) CommitBodies(ctx context.Context, repoPath string, from, to time.Time, author string) ([]byte, error) {
	args := []string{
		"log",
		"--pretty=format:" + CommitDelimiter + "%n%B",
		"--since=" + from.Format(contract.DateTimeFormat),
		"--until=" + to.Format(contract.DateTimeFormat),
	}
	if author != "" {
		args = append(args, "--author="+author)
	}
	return c.Run(ctx, repoPath, args...)
}
