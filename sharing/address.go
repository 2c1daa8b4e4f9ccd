package sharing

import (
	"context"
	"path"
	"strings"
)

// DefaultCalendarRoot is the collection under which calendar homes live.
const DefaultCalendarRoot = "calendars/"

// NormalizeAddress strips the mailto: scheme and lowercases the mailbox.
func NormalizeAddress(href string) string {
	addr := strings.TrimSpace(href)
	if len(addr) >= len("mailto:") && strings.EqualFold(addr[:len("mailto:")], "mailto:") {
		addr = addr[len("mailto:"):]
	}
	return strings.ToLower(addr)
}

// Basename returns the last segment of a principal path.
func Basename(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// CompositeURI is the segment a shared calendar gets under the sharee's home.
// Prefixing the owner keeps it apart from the sharee's own calendar URIs.
func CompositeURI(ownerPath, calendarURI string) string {
	return Basename(ownerPath) + ":" + calendarURI
}

// CalendarHref is the address of calendar uri in the home of principalPath.
func CalendarHref(root, principalPath, uri string) string {
	return normalizeRoot(root) + Basename(principalPath) + "/" + uri
}

// HostURL is the owner-side address of cal, as carried by invites.
func HostURL(root string, cal Calendar) string {
	return CalendarHref(root, cal.PrincipalURI, cal.URI)
}

// SharedHref is the sharee-side address of cal.
func SharedHref(root, shareePath string, cal Calendar) string {
	return CalendarHref(root, shareePath, CompositeURI(cal.PrincipalURI, cal.URI))
}

// ParseHostURL splits <root><owner>/<uri> into its owner basename and
// calendar uri. A leading slash and trailing slash are tolerated.
func ParseHostURL(root, hostURL string) (owner, uri string, ok bool) {
	rest := strings.Trim(hostURL, "/")
	prefix := strings.Trim(normalizeRoot(root), "/")
	if prefix != "" {
		if !strings.HasPrefix(rest, prefix+"/") {
			return "", "", false
		}
		rest = rest[len(prefix)+1:]
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func normalizeRoot(root string) string {
	if root == "" {
		return ""
	}
	return strings.TrimLeft(strings.TrimRight(root, "/")+"/", "/")
}

// ResolveAddress turns an invite address into a principal using the
// email-address attribute under namespace.
func ResolveAddress(ctx context.Context, r PrincipalResolver, namespace, href string) (*Principal, error) {
	addr := NormalizeAddress(href)
	if addr == "" {
		return nil, InvalidInput("empty address")
	}
	found, err := r.ResolveByAttribute(ctx, namespace, EmailAttribute, addr)
	if err != nil {
		return nil, err
	}
	p, ok := found.Get()
	if !ok {
		return nil, UnknownPrincipal(href)
	}
	return r.GetByPath(ctx, p)
}

// ResolvedInvite pairs an add-list entry with its principal.
type ResolvedInvite struct {
	Invite    InviteDescriptor
	Principal *Principal
}

// ResolveUpdate resolves every address of an UpdateShares call before any
// write happens. Adds whose principal is also being removed are dropped, and
// repeated invitees collapse onto the last descriptor.
func ResolveUpdate(ctx context.Context, r PrincipalResolver, namespace string, cal Calendar, add []InviteDescriptor, remove []string) ([]ResolvedInvite, []*Principal, error) {
	removals := make([]*Principal, 0, len(remove))
	removed := map[string]bool{}
	for _, addr := range remove {
		p, err := ResolveAddress(ctx, r, namespace, addr)
		if err != nil {
			return nil, nil, err
		}
		removals = append(removals, p)
		removed[p.ID] = true
	}

	invites := make([]ResolvedInvite, 0, len(add))
	index := map[string]int{}
	for _, inv := range add {
		p, err := ResolveAddress(ctx, r, namespace, inv.Href)
		if err != nil {
			return nil, nil, err
		}
		if p.Path == cal.PrincipalURI {
			return nil, nil, InvalidInput("calendar %s cannot be shared with its owner", cal.ID)
		}
		if removed[p.ID] {
			continue
		}
		if i, dup := index[p.ID]; dup {
			invites[i].Invite = inv
			continue
		}
		index[p.ID] = len(invites)
		invites = append(invites, ResolvedInvite{Invite: inv, Principal: p})
	}
	return invites, removals, nil
}

// MailtoHref is the address a ShareView reports for a principal email.
func MailtoHref(email string) string {
	if email == "" {
		return ""
	}
	return "mailto:" + email
}

// LookupOwner returns the owner principal of cal, or nil when the directory
// does not know it. Other resolver errors are returned.
func LookupOwner(ctx context.Context, r PrincipalResolver, cal Calendar) (*Principal, error) {
	owner, err := r.GetByPath(ctx, cal.PrincipalURI)
	if err != nil {
		if IsType(err, ErrTypeUnknownPrincipal) {
			return nil, nil
		}
		return nil, err
	}
	return owner, nil
}

// OwnerPath rebuilds an owner principal path from the basename carried by a
// host URL.
func OwnerPath(prefix, basename string) string {
	return strings.Trim(prefix, "/") + "/" + basename
}
