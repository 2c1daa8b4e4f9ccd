package props

import (
	"github.com/beevik/etree"
)

// Property is a DAV property that can render itself as an XML element.
type Property interface {
	Encode() *etree.Element
}

// Namespace map for declaration
var NamespaceMap = map[string]string{
	"d":    "DAV:",
	"cal":  "urn:ietf:params:xml:ns:caldav",
	"cs":   "http://calendarserver.org/ns/",
	"ical": "http://apple.com/ns/ical/",
	"s":    "http://sabredav.org/ns",
}

// Prefix map for each property and child element
var PropPrefixMap = map[string]string{
	// WebDAV
	"displayname": "d",
	"href":        "d",

	// CalDAV
	"calendar-description":             "cal",
	"calendar-timezone":                "cal",
	"supported-calendar-component-set": "cal",
	"schedule-calendar-transp":         "cal",
	"comp":                             "cal",
	"opaque":                           "cal",
	"transparent":                      "cal",

	// Apple iCal
	"calendar-color": "ical",
	"calendar-order": "ical",

	// CalendarServer
	"getctag":             "cs",
	"shared-url":          "cs",
	"summary":             "cs",
	"notification":        "cs",
	"dtstamp":             "cs",
	"invite-notification": "cs",
	"invite-reply":        "cs",
	"systemstatus":        "cs",
	"uid":                 "cs",
	"hosturl":             "cs",
	"in-reply-to":         "cs",
	"access":              "cs",
	"read":                "cs",
	"read-write":          "cs",
	"organizer":           "cs",
	"common-name":         "cs",
	"first-name":          "cs",
	"last-name":           "cs",
	"description":         "cs",
	"invite-accepted":     "cs",
	"invite-declined":     "cs",
	"invite-deleted":      "cs",
	"invite-noresponse":   "cs",
	"invite-invalid":      "cs",

	// sabre/dav
	"sync-token":      "s",
	"owner-principal": "s",
	"read-only":       "s",
	"email-address":   "s",
}

// NewElement creates an element with the namespace prefix taken from PropPrefixMap.
// If the name is not found in the map, it defaults to "d".
func NewElement(name string) *etree.Element {
	prefix, exists := PropPrefixMap[name]
	if !exists {
		prefix = "d"
	}
	elem := etree.NewElement(name)
	elem.Space = prefix
	return elem
}

// NewHrefElement creates name wrapping a single d:href child holding href.
func NewHrefElement(name, href string) *etree.Element {
	elem := NewElement(name)
	elem.AddChild(NewTextElement("href", href))
	return elem
}

// NewTextElement creates name with text content.
func NewTextElement(name, text string) *etree.Element {
	elem := NewElement(name)
	elem.SetText(text)
	return elem
}

// ClarkName returns the {namespace}name form of a known property name.
func ClarkName(name string) string {
	prefix, ok := PropPrefixMap[name]
	if !ok {
		prefix = "d"
	}
	return "{" + NamespaceMap[prefix] + "}" + name
}

// Declare adds xmlns declarations for every prefix used below root.
func Declare(root *etree.Element) {
	used := map[string]bool{}
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		if e.Space != "" {
			used[e.Space] = true
		}
		for _, c := range e.ChildElements() {
			walk(c)
		}
	}
	walk(root)
	for _, prefix := range []string{"d", "cal", "cs", "ical", "s"} {
		if used[prefix] {
			root.CreateAttr("xmlns:"+prefix, NamespaceMap[prefix])
		}
	}
}

// ToString renders a property element as a standalone XML fragment.
func ToString(elem *etree.Element) (string, error) {
	doc := etree.NewDocument()
	doc.AddChild(elem)
	return doc.WriteToString()
}
