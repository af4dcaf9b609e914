package techdash

import (
	"fmt"
	"time"
)

// RelativeTime renders how long ago captured happened, truncating toward zero
// within the sec/min/hr/days buckets. A zero captured time yields "".
func RelativeTime(now, captured time.Time) string {
	if captured.IsZero() {
		return ""
	}
	diff := now.Sub(captured)
	if diff < 0 {
		diff = 0
	}
	secs := int64(diff / time.Second)
	switch {
	case secs < 60:
		return fmt.Sprintf("%d sec ago", secs)
	case secs < 3600:
		return fmt.Sprintf("%d min ago", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%d hr ago", secs/3600)
	default:
		return fmt.Sprintf("%d days ago", secs/86400)
	}
}
