package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// clock renders the console line prefix in local wall-clock time.
func clock(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format(time.TimeOnly)
}

// attrString renders v without quoting, for the console header fields.
func attrString(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return x.Error()
		case fmt.Stringer:
			// Geometries and ratios print in their WxH+X+Y / W:H forms.
			return x.String()
		default:
			return fmt.Sprint(x)
		}
	default:
		return v.String()
	}
}

// formatValue renders v as a key=value value, quoting when a reader could
// not otherwise tell where it ends.
func formatValue(v slog.Value) string {
	s := attrString(v)
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}
