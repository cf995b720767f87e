package middleware

import "strings"

// Origins is an allow-list of browser origins. An entry ending in "://"
// matches every origin with that scheme; other entries match exactly.
// "*" matches anything.
type Origins []string

func (o Origins) Allowed(origin string) bool {
	if origin == "" {
		return false
	}
	for _, e := range o {
		switch {
		case e == "*":
			return true
		case strings.HasSuffix(e, "://"):
			if strings.HasPrefix(origin, e) && len(origin) > len(e) {
				return true
			}
		case strings.EqualFold(strings.TrimSuffix(e, "/"), origin):
			return true
		}
	}
	return false
}
