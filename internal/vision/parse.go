package vision

import (
	"strconv"
	"strings"
)

// ParseLine parses one "name | quantity | notes" line. It returns nil for
// blank lines, preamble and lines without a separator.
func ParseLine(line string) *DetectedItem {
	line = strings.TrimSpace(line)
	if line == "" || !strings.Contains(line, "|") {
		return nil
	}
	if strings.HasPrefix(line, "Here") || strings.HasPrefix(line, "I see") || strings.HasPrefix(line, "Based on") {
		return nil
	}

	parts := strings.Split(line, "|")
	item := DetectedItem{Name: strings.TrimSpace(parts[0])}
	if item.Name == "" {
		return nil
	}
	if len(parts) >= 2 {
		item.Quantity = strings.TrimSpace(parts[1])
	}
	if len(parts) >= 3 {
		item.Notes = strings.TrimSpace(parts[2])
	}
	return &item
}

// ParseResponse parses a whole model response, one item per line.
func ParseResponse(raw string) []DetectedItem {
	items := make([]DetectedItem, 0)
	for _, line := range strings.Split(raw, "\n") {
		if item := ParseLine(line); item != nil {
			items = append(items, *item)
		}
	}
	return items
}

// Amount splits a free-text quantity such as "2 liters" into its number and
// unit. ok is false when the text does not start with a number.
func (d DetectedItem) Amount() (value float64, unit string, ok bool) {
	fields := strings.Fields(d.Quantity)
	if len(fields) == 0 {
		return 0, "", false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || v < 0 {
		return 0, "", false
	}
	return v, strings.Join(fields[1:], " "), true
}
