// Package rfctime serializes timestamps of API payloads in RFC3339.
package rfctime

import (
	"encoding/json"
	"time"
)

// Layout of formatted timestamps. The offset is always numeric, never "Z".
const Layout = "2006-01-02T15:04:05.999-07:00"

// RFC3339 is a time.Time marshalled as RFC3339 date-time in JSON.
type RFC3339 time.Time

func (t RFC3339) Time() time.Time {
	return time.Time(t)
}

func (t RFC3339) String() string {
	return time.Time(t).Format(Layout)
}

// Parse reads RFC3339 date-time. Fractional seconds and "Z" are accepted.
func Parse(s string) (RFC3339, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return RFC3339{}, err
	}
	return RFC3339(t), nil
}

func (t RFC3339) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON leaves t unchanged for null.
func (t *RFC3339) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil {
		return nil
	}
	parsed, err := Parse(*s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
