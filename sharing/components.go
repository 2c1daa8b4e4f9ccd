package sharing

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/emersion/go-ical"
)

// DefaultComponents is used for calendars created without a component set.
var DefaultComponents = []string{ical.CompEvent, ical.CompToDo}

var calendarComponents = map[string]bool{
	ical.CompEvent:    true,
	ical.CompToDo:     true,
	ical.CompJournal:  true,
	ical.CompFreeBusy: true,
}

// ParseComponents decodes the comma-separated form kept by calendar stores.
// An empty value yields an empty set.
func ParseComponents(stored string) []string {
	if strings.TrimSpace(stored) == "" {
		return []string{}
	}
	parts := strings.Split(stored, ",")
	comps := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			comps = append(comps, p)
		}
	}
	return comps
}

// FormatComponents is the inverse of ParseComponents.
func FormatComponents(comps []string) string {
	return strings.Join(comps, ",")
}

// ValidateComponents checks that every entry names an iCalendar component a
// calendar collection can hold.
func ValidateComponents(comps []string) error {
	for _, c := range comps {
		if !calendarComponents[strings.ToUpper(c)] {
			return InvalidInput("unsupported calendar component %q", c)
		}
	}
	return nil
}

// GenerateETag returns a quoted sha1 entity tag for data.
func GenerateETag(data []byte) string {
	hash := sha1.Sum(data)
	return `"` + hex.EncodeToString(hash[:]) + `"`
}
