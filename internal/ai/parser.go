package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

const (
	maxSubtasks          = 7
	maxHeuristicSubtasks = 6
)

var listMarker = regexp.MustCompile(`^[\-\*\d\.]+\s*`)

// ParseSubtasks extracts subtask titles from a completion. The model
// is instructed to return a JSON array of strings but does not always
// comply, so a line-based heuristic recovers titles from
// conversational or malformed output. On success the result is never
// empty.
func ParseSubtasks(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)

	if titles := parseJSONArray(raw); len(titles) > 0 {
		return titles, nil
	}
	if titles := parseLines(raw); len(titles) > 0 {
		return titles, nil
	}
	return nil, ErrUnparsableResponse
}

func parseJSONArray(raw string) []string {
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}

	titles := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		titles = append(titles, s)
		if len(titles) == maxSubtasks {
			break
		}
	}
	return titles
}

func parseLines(raw string) []string {
	titles := make([]string, 0, maxHeuristicSubtasks)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "{") || strings.HasPrefix(line, "}") {
			continue
		}
		line = listMarker.ReplaceAllString(line, "")
		line = strings.TrimPrefix(line, `"`)
		line = strings.TrimSuffix(line, `"`)
		if len(line) <= 3 {
			continue
		}
		titles = append(titles, line)
		if len(titles) == maxHeuristicSubtasks {
			break
		}
	}
	return titles
}
