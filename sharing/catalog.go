package sharing

import (
	"context"
	"log/slog"
	"sort"
	"strconv"

	"github.com/samber/mo"

	"github.com/cyp0633/caldora-share/internal/logging"
	"github.com/cyp0633/caldora-share/internal/props"
)

// Properties maps a Clark-notation property name to its value.
type Properties map[string]props.Property

// CalendarView is one entry of a principal's calendar listing. Shared entries
// are addressed under the sharee, never under the owner.
type CalendarView struct {
	ID string
	// URI is the calendar's uri for owned calendars and <owner>:<uri> for
	// shared ones.
	URI string
	// PrincipalURI is the principal whose listing this entry belongs to.
	PrincipalURI string
	Shared       bool
	// Sharing metadata, zero for owned calendars.
	ReadOnly       bool
	Summary        mo.Option[string]
	OwnerPrincipal string
	Properties     Properties
}

// PropertyMapping fills one generic property from a calendar row.
type PropertyMapping struct {
	Name  string
	Value func(cal Calendar) props.Property
}

// DefaultPropertyMappings mirror the calendar table columns.
var DefaultPropertyMappings = []PropertyMapping{
	{props.ClarkName("displayname"), func(c Calendar) props.Property { return &props.DisplayName{Value: c.DisplayName} }},
	{props.ClarkName("calendar-description"), func(c Calendar) props.Property { return &props.CalendarDescription{Value: c.Description} }},
	{props.ClarkName("calendar-timezone"), func(c Calendar) props.Property { return &props.CalendarTimezone{Value: c.Timezone} }},
	{props.ClarkName("calendar-order"), func(c Calendar) props.Property { return &props.CalendarOrder{Value: c.Order} }},
	{props.ClarkName("calendar-color"), func(c Calendar) props.Property { return &props.CalendarColor{Value: c.Color} }},
}

// Catalog merges owned calendars with calendars shared to a principal.
type Catalog struct {
	calendars CalendarStore
	shares    ShareStore
	resolver  PrincipalResolver
	mappings  []PropertyMapping
	root      string
	logger    *slog.Logger
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithLogger sets the logger for the catalog
func WithLogger(logger *slog.Logger) CatalogOption {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPropertyMapping adds or replaces a generic property mapping.
func WithPropertyMapping(name string, value func(cal Calendar) props.Property) CatalogOption {
	return func(c *Catalog) {
		for i, m := range c.mappings {
			if m.Name == name {
				c.mappings[i].Value = value
				return
			}
		}
		c.mappings = append(c.mappings, PropertyMapping{Name: name, Value: value})
	}
}

// WithCalendarRoot sets the collection shared-url values are built under.
func WithCalendarRoot(root string) CatalogOption {
	return func(c *Catalog) {
		c.root = root
	}
}

// NewCatalog creates a catalog over a calendar store, a share store and the
// principal directory.
func NewCatalog(calendars CalendarStore, shares ShareStore, resolver PrincipalResolver, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		calendars: calendars,
		shares:    shares,
		resolver:  resolver,
		mappings:  append([]PropertyMapping(nil), DefaultPropertyMappings...),
		root:      DefaultCalendarRoot,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListCalendarsForPrincipal returns the owned calendars of principalURI
// followed by the calendars shared to it, the latter ascending by the owning
// calendar's order.
func (c *Catalog) ListCalendarsForPrincipal(ctx context.Context, principalURI string) ([]CalendarView, error) {
	log := logging.WithOperation(c.logger, "list_calendars").With(logging.Principal(principalURI))

	owned, err := c.calendars.ListOwnedCalendars(ctx, principalURI)
	if err != nil {
		log.Error("failed to list owned calendars", logging.Err(err))
		return nil, err
	}

	principal, err := c.resolver.GetByPath(ctx, principalURI)
	if err != nil {
		log.Warn("failed to resolve principal", logging.Err(err))
		return nil, err
	}

	shared, err := c.shares.SharedWith(ctx, principal.ID)
	if err != nil {
		log.Error("failed to list shared calendars", logging.Err(err))
		return nil, err
	}
	sort.SliceStable(shared, func(i, j int) bool {
		return shared[i].Calendar.Order < shared[j].Calendar.Order
	})

	views := make([]CalendarView, 0, len(owned)+len(shared))
	for _, cal := range owned {
		views = append(views, c.ownedView(cal))
	}
	for _, sc := range shared {
		views = append(views, c.sharedView(principalURI, sc))
	}

	log.Debug("listed calendars", slog.Int("owned", len(owned)), slog.Int("shared", len(shared)))
	return views, nil
}

func (c *Catalog) ownedView(cal Calendar) CalendarView {
	return CalendarView{
		ID:           cal.ID,
		URI:          cal.URI,
		PrincipalURI: cal.PrincipalURI,
		Properties:   c.baseProperties(cal),
	}
}

func (c *Catalog) sharedView(shareePath string, sc SharedCalendar) CalendarView {
	cal := sc.Calendar
	p := c.baseProperties(cal)
	p[props.ClarkName("shared-url")] = &props.SharedURL{Value: SharedHref(c.root, shareePath, cal)}
	p[props.ClarkName("owner-principal")] = &props.OwnerPrincipal{Value: cal.PrincipalURI}
	p[props.ClarkName("read-only")] = &props.ReadOnly{Value: sc.Share.ReadOnly}
	if s, ok := sc.Share.Summary.Get(); ok {
		p[props.ClarkName("summary")] = &props.Summary{Value: s}
	}

	return CalendarView{
		ID:             cal.ID,
		URI:            CompositeURI(cal.PrincipalURI, cal.URI),
		PrincipalURI:   shareePath,
		Shared:         true,
		ReadOnly:       sc.Share.ReadOnly,
		Summary:        sc.Share.Summary,
		OwnerPrincipal: cal.PrincipalURI,
		Properties:     p,
	}
}

// baseProperties are common to owned and shared presentations.
func (c *Catalog) baseProperties(cal Calendar) Properties {
	token := SyncTokenString(cal.SyncToken)
	comps := cal.Components
	if comps == nil {
		comps = []string{}
	}
	p := Properties{
		props.ClarkName("getctag"):                          &props.GetCTag{Value: "http://sabre.io/ns/sync/" + token},
		props.ClarkName("sync-token"):                       &props.SyncToken{Value: token},
		props.ClarkName("supported-calendar-component-set"): &props.SupportedCalendarComponentSet{Components: comps},
		props.ClarkName("schedule-calendar-transp"):         &props.ScheduleCalendarTransp{Transparent: cal.Transparent},
	}
	for _, m := range c.mappings {
		p[m.Name] = m.Value(cal)
	}
	return p
}

// SyncTokenString renders a sync token, "0" for calendars that never synced.
func SyncTokenString(token int64) string {
	if token <= 0 {
		return "0"
	}
	return strconv.FormatInt(token, 10)
}
