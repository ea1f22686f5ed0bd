package payroll

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Month accepts either 1-12 or an English month name ("January", "jan").
// Unrecognised values decode to 0 and fail validation.
type Month int

func (m *Month) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = ParseMonth(s)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*m = Month(n)
	return nil
}

func (m Month) Valid() bool {
	return m >= 1 && m <= 12
}

// ParseMonth resolves a month number or name, returning 0 when unknown.
func ParseMonth(s string) Month {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return Month(n)
	}
	s = strings.ToLower(s)
	if len(s) < 3 {
		return 0
	}
	for i := time.January; i <= time.December; i++ {
		name := strings.ToLower(i.String())
		if s == name || s == name[:3] {
			return Month(i)
		}
	}
	return 0
}
