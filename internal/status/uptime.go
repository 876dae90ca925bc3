// internal/status/uptime.go
package status

import (
	"strconv"
	"strings"
	"time"
)

// Uptime formats the span between start and now as "{d}d {h}h {m}m".
// Zero days and zero hours are left out; minutes are always present.
// now before start counts as zero.
func Uptime(nowMillis, startMillis int64) string {
	ms := nowMillis - startMillis
	if ms < 0 {
		ms = 0
	}

	d := time.Duration(ms) * time.Millisecond

	days := int64(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int64(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int64(d / time.Minute)

	var sb strings.Builder
	if days > 0 {
		sb.WriteString(strconv.FormatInt(days, 10))
		sb.WriteString("d ")
	}
	if hours > 0 {
		sb.WriteString(strconv.FormatInt(hours, 10))
		sb.WriteString("h ")
	}
	sb.WriteString(strconv.FormatInt(minutes, 10))
	sb.WriteString("m")
	return sb.String()
}
