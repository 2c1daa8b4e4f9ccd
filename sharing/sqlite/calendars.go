package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/cyp0633/caldora-share/internal/logging"
	"github.com/cyp0633/caldora-share/sharing"
)

const calendarColumns = `c.id, c.principaluri, c.uri, c.displayname, c.description, c.calendarcolor,
	c.timezone, c.calendarorder, c.components, c.transparent, c.synctoken`

type scanner interface {
	Scan(dest ...any) error
}

// scanCalendar reads the calendarColumns prefix of a row; extra holds the
// destinations of any columns selected after it.
func scanCalendar(row scanner, extra ...any) (sharing.Calendar, error) {
	var (
		cal                                  sharing.Calendar
		display, desc, color, tz, components sql.NullString
	)
	dest := []any{
		&cal.ID, &cal.PrincipalURI, &cal.URI, &display, &desc, &color,
		&tz, &cal.Order, &components, &cal.Transparent, &cal.SyncToken,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return sharing.Calendar{}, err
	}
	cal.DisplayName = display.String
	cal.Description = desc.String
	cal.Color = color.String
	cal.Timezone = tz.String
	cal.Components = sharing.ParseComponents(components.String)
	return cal, nil
}

// CreateCalendar seeds a calendar. An empty ID is generated and a nil
// component list gets the default set.
func (b *Backend) CreateCalendar(ctx context.Context, cal sharing.Calendar) (sharing.Calendar, error) {
	cal.PrincipalURI = strings.Trim(cal.PrincipalURI, "/")
	if cal.PrincipalURI == "" || cal.URI == "" {
		return sharing.Calendar{}, sharing.InvalidInput("calendar needs an owner and a uri")
	}
	if cal.Components == nil {
		cal.Components = append([]string{}, sharing.DefaultComponents...)
	}
	if err := sharing.ValidateComponents(cal.Components); err != nil {
		return sharing.Calendar{}, err
	}
	cal.Components = sharing.ParseComponents(sharing.FormatComponents(cal.Components))
	if cal.ID == "" {
		cal.ID = uuid.NewString()
	}

	_, err := b.db.ExecContext(ctx, `INSERT INTO calendars
		(id, principaluri, uri, displayname, description, calendarcolor, timezone,
		 calendarorder, components, transparent, synctoken)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cal.ID, cal.PrincipalURI, cal.URI, cal.DisplayName, cal.Description, cal.Color, cal.Timezone,
		cal.Order, sharing.FormatComponents(cal.Components), cal.Transparent, cal.SyncToken)
	if isUniqueViolation(err) {
		return sharing.Calendar{}, sharing.Conflict("calendar %s already exists for %s", cal.URI, cal.PrincipalURI)
	}
	if err != nil {
		return sharing.Calendar{}, sharing.StoreUnavailable("create calendar", err)
	}

	b.opts.logger.Debug("calendar created",
		logging.Calendar(cal.ID), logging.Principal(cal.PrincipalURI))
	return cal, nil
}

// ListOwnedCalendars implements sharing.CalendarStore
func (b *Backend) ListOwnedCalendars(ctx context.Context, principalURI string) ([]sharing.Calendar, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT `+calendarColumns+`
		FROM calendars AS c
		WHERE c.principaluri = ?
		ORDER BY c.calendarorder ASC, c.id ASC`, principalURI)
	if err != nil {
		return nil, sharing.StoreUnavailable("list calendars", err)
	}
	defer rows.Close()

	calendars := []sharing.Calendar{}
	for rows.Next() {
		cal, err := scanCalendar(rows)
		if err != nil {
			return nil, sharing.StoreUnavailable("list calendars", err)
		}
		calendars = append(calendars, cal)
	}
	if err := rows.Err(); err != nil {
		return nil, sharing.StoreUnavailable("list calendars", err)
	}
	return calendars, nil
}

func getCalendar(ctx context.Context, q queryer, calendarID string) (sharing.Calendar, error) {
	row := q.QueryRowContext(ctx, `SELECT `+calendarColumns+` FROM calendars AS c WHERE c.id = ?`, calendarID)
	cal, err := scanCalendar(row)
	if errors.Is(err, sql.ErrNoRows) {
		return sharing.Calendar{}, sharing.NotFound("calendar %s", calendarID)
	}
	if err != nil {
		return sharing.Calendar{}, sharing.StoreUnavailable("get calendar", err)
	}
	return cal, nil
}

func findCalendar(ctx context.Context, q queryer, principalURI, uri string) (sharing.Calendar, error) {
	row := q.QueryRowContext(ctx, `SELECT `+calendarColumns+`
		FROM calendars AS c WHERE c.principaluri = ? AND c.uri = ?`, principalURI, uri)
	cal, err := scanCalendar(row)
	if errors.Is(err, sql.ErrNoRows) {
		return sharing.Calendar{}, sharing.NotFound("calendar %s of %s", uri, principalURI)
	}
	if err != nil {
		return sharing.Calendar{}, sharing.StoreUnavailable("find calendar", err)
	}
	return cal, nil
}
