package notification

import (
	"fmt"
	"strconv"
	"strings"
)

// Alert colours as sent in the webhook payload
var (
	ColorFailure  = mustParseHexColor("#ff0000")
	ColorSkip     = mustParseHexColor("#aaaaaa")
	ColorCheckIn  = mustParseHexColor("#00ff00")
	ColorCheckOut = mustParseHexColor("#ff9200")
)

// ParseHexColor converts "#rrggbb" (or "rrggbb") to its integer value
func ParseHexColor(hex string) (int, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return 0, fmt.Errorf("invalid hex colour %q", hex)
	}
	v, err := strconv.ParseInt(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex colour %q: %w", hex, err)
	}
	return int(v), nil
}

func mustParseHexColor(hex string) int {
	v, err := ParseHexColor(hex)
	if err != nil {
		panic(err)
	}
	return v
}
