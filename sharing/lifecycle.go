package sharing

import (
	"github.com/samber/mo"
)

// InviteStatus decides the status of a share after it is (re)added.
// invite is true when the call issues a fresh invite that the invitee has to
// answer: new shares and shares that had been declined, deleted or marked
// invalid. Accepted and pending shares keep their status.
func InviteStatus(existing mo.Option[ShareStatus]) (status ShareStatus, invite bool) {
	cur, ok := existing.Get()
	if !ok {
		return StatusNoResponse, true
	}
	switch cur {
	case StatusAccepted, StatusNoResponse:
		return cur, false
	default:
		return StatusNoResponse, true
	}
}

// ReplyStatus validates a sharee reply against the current share status.
func ReplyStatus(current, reply ShareStatus) (ShareStatus, error) {
	if err := ValidateReply(ShareReply{Status: reply}); err != nil {
		return 0, err
	}
	switch current {
	case StatusNoResponse, StatusAccepted, StatusDeclined:
		return reply, nil
	default:
		return 0, Conflict("cannot reply to a share in state %s", current)
	}
}

// NewInvite builds the notification queued for an invitee. owner may be nil
// when the owner principal could not be looked up.
func NewInvite(root string, cal Calendar, owner *Principal, inv ResolvedInvite) *Invite {
	n := &Invite{
		Href:      mo.Some(inv.Invite.Href),
		Type:      mo.Some(StatusNoResponse),
		ReadOnly:  mo.Some(inv.Invite.ReadOnly),
		HostURL:   mo.Some(HostURL(root, cal)),
		Organizer: mo.Some(cal.PrincipalURI),
		Summary:   inv.Invite.Summary,
	}
	if owner != nil && owner.DisplayName != "" {
		n.CommonName = mo.Some(owner.DisplayName)
	}
	return n
}

// NewUninvite builds the notification queued for a sharee whose share was
// removed. It replaces any invite to the calendar still in their queue.
func NewUninvite(root string, cal Calendar, owner, sharee *Principal) *Invite {
	n := &Invite{
		Type:      mo.Some(StatusDeleted),
		HostURL:   mo.Some(HostURL(root, cal)),
		Organizer: mo.Some(cal.PrincipalURI),
	}
	if href := MailtoHref(sharee.Email); href != "" {
		n.Href = mo.Some(href)
	}
	if owner != nil && owner.DisplayName != "" {
		n.CommonName = mo.Some(owner.DisplayName)
	}
	return n
}

// IsInviteFor reports whether r is an invite to the calendar at hostURL.
// Removing a share withdraws these from the sharee's queue.
func IsInviteFor(r Record, hostURL string) bool {
	return r.Kind == KindInvite && r.HostURL.OrEmpty() == hostURL
}

// NewInviteReply builds the notification queued for the owner when a sharee
// answers an invite.
func NewInviteReply(root string, cal Calendar, reply ShareReply) *InviteReply {
	n := &InviteReply{
		Href:    mo.Some(reply.Href),
		Type:    mo.Some(reply.Status),
		HostURL: mo.Some(HostURL(root, cal)),
		Summary: reply.Summary,
	}
	if reply.InReplyTo != "" {
		n.InReplyTo = mo.Some(reply.InReplyTo)
	}
	return n
}

// AcceptedHref is the value ReplyToShare returns for a reply.
func AcceptedHref(root, shareePath string, cal Calendar, status ShareStatus) mo.Option[string] {
	if status != StatusAccepted {
		return mo.None[string]()
	}
	return mo.Some(SharedHref(root, shareePath, cal))
}

// ValidateReply rejects replies that neither accept nor decline.
func ValidateReply(reply ShareReply) error {
	if reply.Status != StatusAccepted && reply.Status != StatusDeclined {
		return InvalidInput("a reply must accept or decline, got %s", reply.Status)
	}
	return nil
}
