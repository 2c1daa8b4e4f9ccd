package props

import (
	"strconv"

	"github.com/beevik/etree"
)

type DisplayName struct {
	Value string
}

func (p DisplayName) Encode() *etree.Element {
	return NewTextElement("displayname", p.Value)
}

type CalendarDescription struct {
	Value string
}

func (p CalendarDescription) Encode() *etree.Element {
	return NewTextElement("calendar-description", p.Value)
}

type CalendarTimezone struct {
	Value string
}

func (p CalendarTimezone) Encode() *etree.Element {
	return NewTextElement("calendar-timezone", p.Value)
}

type CalendarColor struct {
	Value string
}

func (p CalendarColor) Encode() *etree.Element {
	return NewTextElement("calendar-color", p.Value)
}

type CalendarOrder struct {
	Value int
}

func (p CalendarOrder) Encode() *etree.Element {
	return NewTextElement("calendar-order", strconv.Itoa(p.Value))
}

type SupportedCalendarComponentSet struct {
	Components []string
}

func (p SupportedCalendarComponentSet) Encode() *etree.Element {
	elem := NewElement("supported-calendar-component-set")

	for _, component := range p.Components {
		compElem := NewElement("comp")
		compElem.CreateAttr("name", component)
		elem.AddChild(compElem)
	}

	return elem
}

// ScheduleCalendarTransp is opaque unless Transparent is set.
type ScheduleCalendarTransp struct {
	Transparent bool
}

func (p ScheduleCalendarTransp) Value() string {
	if p.Transparent {
		return "transparent"
	}
	return "opaque"
}

func (p ScheduleCalendarTransp) Encode() *etree.Element {
	elem := NewElement("schedule-calendar-transp")
	elem.AddChild(NewElement(p.Value()))
	return elem
}

type GetCTag struct {
	Value string
}

func (p GetCTag) Encode() *etree.Element {
	return NewTextElement("getctag", p.Value)
}

type SyncToken struct {
	Value string
}

func (p SyncToken) Encode() *etree.Element {
	return NewTextElement("sync-token", p.Value)
}
