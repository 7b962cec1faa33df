package schema

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Average returns the arithmetic mean of values, or 0 for an empty slice.
func Average(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0
	for _, v := range values {
		total += v
	}
	return float64(total) / float64(len(values))
}

// Median returns the middle value of a numerically sorted copy of values.
// For an even-length slice it is the mean of the two middle values; an
// empty slice yields 0.
func Median(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	half := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[half])
	}
	return float64(sorted[half-1]+sorted[half]) / 2.0
}

// Sum adds up all values.
func Sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

// CountWords returns the number of whitespace-separated words in input.
func CountWords(input string) int {
	return len(strings.Fields(input))
}

// Markdown images come in two forms: HTML img tags and ![alt](url).
var (
	htmlImageRe     = regexp.MustCompile(`<img[^>]+src="[^">]+"`)
	markdownImageRe = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
)

// CountImages returns the number of embedded images in a markdown body.
func CountImages(input string) int {
	return len(htmlImageRe.FindAllString(input, -1)) +
		len(markdownImageRe.FindAllString(input, -1))
}

// ParseTestTypes scans a pull body for checked test checkboxes of the form
// "- [x] Manual test" and reports which of the TestTypeNames were marked.
func ParseTestTypes(body string) TestTypes {
	checked := map[string]bool{}
	for _, name := range TestTypeNames {
		checked[name] = strings.Contains(body, "[x] "+name)
	}
	return TestTypes{
		Manual:      checked["Manual"],
		Unit:        checked["Unit"],
		Client:      checked["Client"],
		Integration: checked["Integration"],
		Browser:     checked["Browser"],
	}
}

// CoauthorPairKey builds an order-independent bucket key for a pair of
// author names, so {A,B} and {B,A} collapse into one bucket.
func CoauthorPairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + " + " + b
}

// FormatNumber renders a rounded number with thousands separators,
// e.g. 1234567.8 becomes "1,234,568".
func FormatNumber(num float64) string {
	n := int64(num + 0.5)
	if num < 0 {
		n = int64(num - 0.5)
	}

	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
