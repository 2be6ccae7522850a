package origination

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvitationExpired = errors.New("invitation has expired")
	ErrEmptyInvitee      = errors.New("invitee id is required")
	ErrSelfInvitation    = errors.New("cannot invite yourself")
	ErrNotApplicant      = errors.New("only the applicant may invite")
)

// InvitationStatus is the lifecycle state of a co-applicant invitation.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "PENDING"
	InvitationStatusAccepted InvitationStatus = "ACCEPTED"
	InvitationStatusRejected InvitationStatus = "REJECTED"
	InvitationStatusExpired  InvitationStatus = "EXPIRED"
)

// defaultInvitationTTL bounds how long an invitation stays answerable.
const defaultInvitationTTL = 7 * 24 * time.Hour

// Invitation asks a second party to join an application. All transitions
// are guarded: only PENDING invitations may move.
type Invitation struct {
	ID            uuid.UUID        `json:"id"`
	ApplicationID uuid.UUID        `json:"application_id"`
	InviterID     uuid.UUID        `json:"inviter_id"`
	InviteeID     uuid.UUID        `json:"invitee_id"`
	Status        InvitationStatus `json:"status"`
	ExpiresAt     time.Time        `json:"expires_at"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// NewInvitation creates a pending invitation with the default TTL.
func NewInvitation(applicationID, inviterID, inviteeID uuid.UUID) (*Invitation, error) {
	if inviteeID == uuid.Nil {
		return nil, ErrEmptyInvitee
	}
	if inviterID == inviteeID {
		return nil, ErrSelfInvitation
	}

	now := time.Now()
	return &Invitation{
		ID:            uuid.New(),
		ApplicationID: applicationID,
		InviterID:     inviterID,
		InviteeID:     inviteeID,
		Status:        InvitationStatusPending,
		ExpiresAt:     now.Add(defaultInvitationTTL),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Accept transitions PENDING -> ACCEPTED. An invitation past its deadline
// cannot be accepted.
func (i *Invitation) Accept(now time.Time) error {
	if i.Status != InvitationStatusPending {
		return ErrInvalidStateTransition
	}
	if now.After(i.ExpiresAt) {
		return ErrInvitationExpired
	}
	i.transition(InvitationStatusAccepted)
	return nil
}

// Reject transitions PENDING -> REJECTED.
func (i *Invitation) Reject() error {
	if i.Status != InvitationStatusPending {
		return ErrInvalidStateTransition
	}
	i.transition(InvitationStatusRejected)
	return nil
}

// Expire transitions PENDING -> EXPIRED.
func (i *Invitation) Expire() error {
	if i.Status != InvitationStatusPending {
		return ErrInvalidStateTransition
	}
	i.transition(InvitationStatusExpired)
	return nil
}

func (i *Invitation) transition(next InvitationStatus) {
	i.Status = next
	i.UpdatedAt = time.Now()
}
