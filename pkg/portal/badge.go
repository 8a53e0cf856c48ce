package portal

import "strconv"

// FormatBadge renders an unread count for a badge: nothing for zero or
// less, "99+" above 99.
func FormatBadge(count int) string {
	switch {
	case count <= 0:
		return ""
	case count > 99:
		return "99+"
	}
	return strconv.Itoa(count)
}
