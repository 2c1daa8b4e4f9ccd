package props

import (
	"strconv"

	"github.com/beevik/etree"
)

// Properties that only appear on calendars viewed through a share.

type SharedURL struct {
	Value string
}

func (p SharedURL) Encode() *etree.Element {
	return NewHrefElement("shared-url", p.Value)
}

type OwnerPrincipal struct {
	Value string
}

func (p OwnerPrincipal) Encode() *etree.Element {
	return NewHrefElement("owner-principal", p.Value)
}

type ReadOnly struct {
	Value bool
}

func (p ReadOnly) Encode() *etree.Element {
	return NewTextElement("read-only", strconv.FormatBool(p.Value))
}

type Summary struct {
	Value string
}

func (p Summary) Encode() *etree.Element {
	return NewTextElement("summary", p.Value)
}
