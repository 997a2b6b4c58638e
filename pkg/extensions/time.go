package extensions

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-pongoview/pkg/environment"
)

// timeLayouts are tried in order when a string is converted to a time.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// Time exposes date helpers.
type Time struct {
	now func() time.Time
}

// NewTime uses now as the clock for now(); nil means time.Now.
func NewTime(now func() time.Time) Time {
	if now == nil {
		now = time.Now
	}
	return Time{now: now}
}

// Name implements environment.Extension.
func (Time) Name() string { return "time" }

// Functions implements environment.Extension.
func (t Time) Functions(*environment.Environment) map[string]any {
	return map[string]any{
		"now": func() time.Time {
			return t.now()
		},
		"time": func(value ...any) (time.Time, error) {
			if len(value) == 0 || value[0] == nil {
				return t.now(), nil
			}
			return toTime(value[0])
		},
	}
}

// Filters implements environment.Extension.
func (Time) Filters() map[string]pongo2.FilterFunction {
	return map[string]pongo2.FilterFunction{
		"time_ago_in_words": timeFilter("time_ago_in_words", func(ts time.Time, _ *pongo2.Value) any {
			return humanize.Time(ts)
		}),
		"nice": timeFilter("nice", func(ts time.Time, param *pongo2.Value) any {
			return nice(ts, paramString(param, ""))
		}),
		"is_today": timeFilter("is_today", func(ts time.Time, _ *pongo2.Value) any {
			return sameDay(ts, time.Now().In(ts.Location()))
		}),
		"is_past": timeFilter("is_past", func(ts time.Time, _ *pongo2.Value) any {
			return ts.Before(time.Now())
		}),
		"is_future": timeFilter("is_future", func(ts time.Time, _ *pongo2.Value) any {
			return ts.After(time.Now())
		}),
		"to_unix": timeFilter("to_unix", func(ts time.Time, _ *pongo2.Value) any {
			return ts.Unix()
		}),
	}
}

func timeFilter(name string, fn func(ts time.Time, param *pongo2.Value) any) pongo2.FilterFunction {
	return filter(name, func(in, param *pongo2.Value) (any, error) {
		ts, err := toTime(in.Interface())
		if err != nil {
			return nil, err
		}
		return fn(ts, param), nil
	})
}

// nice renders "Tuesday, March 3rd 2026, 14:05". A non-empty layout overrides
// the default.
func nice(ts time.Time, layout string) string {
	if layout != "" {
		return ts.Format(layout)
	}
	return fmt.Sprintf("%s, %s %s %d, %s",
		ts.Weekday(), ts.Month(), humanize.Ordinal(ts.Day()), ts.Year(), ts.Format("15:04"))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// toTime accepts time values, unix seconds and the strings in timeLayouts.
func toTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v != nil {
			return *v, nil
		}
	case int:
		return time.Unix(int64(v), 0), nil
	case int64:
		return time.Unix(v, 0), nil
	case float64:
		return time.Unix(int64(v), 0), nil
	case string:
		s := strings.TrimSpace(v)
		if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(secs, 0), nil
		}
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("extensions: cannot convert %v (%T) to a time", value, value)
}
