package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAverage(t *testing.T) {
	tests := []struct {
		name     string
		input    []int
		expected float64
	}{
		{
			name:     "empty slice",
			input:    []int{},
			expected: 0,
		},
		{
			name:     "single element",
			input:    []int{7},
			expected: 7,
		},
		{
			name:     "mixed values",
			input:    []int{1, 2, 3, 4},
			expected: 2.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Average(tt.input), 1e-9)
		})
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		input    []int
		expected float64
	}{
		{
			name:     "empty slice",
			input:    []int{},
			expected: 0,
		},
		{
			name:     "single element",
			input:    []int{5},
			expected: 5,
		},
		{
			name:     "odd length",
			input:    []int{1, 2, 3},
			expected: 2,
		},
		{
			name:     "even length",
			input:    []int{1, 2, 3, 4},
			expected: 2.5,
		},
		{
			name:     "unsorted input",
			input:    []int{9, 1, 5},
			expected: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Median(tt.input), 1e-9)
		})
	}
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	input := []int{3, 1, 2}
	Median(input)
	assert.Equal(t, []int{3, 1, 2}, input)
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 3, CountWords("fix the bug"))
	assert.Equal(t, 2, CountWords("  leading   spaces  "))
}

func TestCountImages(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{
			name:     "no images",
			input:    "just some text",
			expected: 0,
		},
		{
			name:     "markdown image",
			input:    "before ![screenshot](https://example.com/a.png) after",
			expected: 1,
		},
		{
			name:     "html image",
			input:    `<img width="100" src="https://example.com/b.png">`,
			expected: 1,
		},
		{
			name:     "both forms",
			input:    `![a](x.png) and <img src="y.png">`,
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CountImages(tt.input))
		})
	}
}

func TestParseTestTypes(t *testing.T) {
	body := "- [ ] Unit test\r\n- [ ] Client test\r\n- [x] Manual test"
	types := ParseTestTypes(body)

	assert.True(t, types.Manual)
	assert.False(t, types.Unit)
	assert.False(t, types.Client)
	assert.False(t, types.Integration)
	assert.False(t, types.Browser)
}

func TestParseTestTypesEmptyBody(t *testing.T) {
	types := ParseTestTypes("")
	assert.Equal(t, TestTypes{}, types)
}

func TestCoauthorPairKey(t *testing.T) {
	assert.Equal(t, CoauthorPairKey("Alice", "Bob"), CoauthorPairKey("Bob", "Alice"))
	assert.Equal(t, "Alice + Bob", CoauthorPairKey("Bob", "Alice"))
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"zero", 0, "0"},
		{"small", 999, "999"},
		{"thousands", 1234, "1,234"},
		{"millions rounded", 1234567.8, "1,234,568"},
		{"negative", -4321, "-4,321"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatNumber(tt.input))
		})
	}
}

func TestSnapshotEnsurePerson(t *testing.T) {
	snap := NewSnapshot()

	data := snap.EnsurePerson("Alice")
	assert.NotNil(t, data.Pulls)
	assert.NotNil(t, data.PullsReviewed)
	assert.NotNil(t, data.PullsCommentedOn)
	assert.False(t, data.PullsAllFetched)

	// A second call returns the same bucket.
	data.PullsAllFetched = true
	assert.True(t, snap.EnsurePerson("Alice").PullsAllFetched)
}
