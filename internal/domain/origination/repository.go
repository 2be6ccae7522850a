package origination

import (
	"context"

	"github.com/google/uuid"
)

// ApplicationRepository defines application persistence operations.
type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*Application, error)
	GetByApplicantID(ctx context.Context, applicantID uuid.UUID) ([]*Application, error)
	Update(ctx context.Context, app *Application) error
}

// InvitationRepository defines invitation persistence operations.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invitation, error)
	GetByInviteeID(ctx context.Context, inviteeID uuid.UUID) ([]*Invitation, error)
	Update(ctx context.Context, inv *Invitation) error
}

// ParticipantRepository defines participant persistence operations.
type ParticipantRepository interface {
	CreateBatch(ctx context.Context, participants []*Participant) error
	GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]*Participant, error)
}

// ErrApplicationNotFound indicates a missing application.
type ErrApplicationNotFound struct {
	ApplicationID uuid.UUID
}

func (e ErrApplicationNotFound) Error() string {
	return "application not found: " + e.ApplicationID.String()
}

// Is matches any ErrApplicationNotFound when the target carries the nil id.
func (e ErrApplicationNotFound) Is(target error) bool {
	t, ok := target.(ErrApplicationNotFound)
	if !ok {
		return false
	}
	if t.ApplicationID == uuid.Nil {
		return true
	}
	return e.ApplicationID == t.ApplicationID
}

// ErrInvitationNotFound indicates a missing invitation.
type ErrInvitationNotFound struct {
	InvitationID uuid.UUID
}

func (e ErrInvitationNotFound) Error() string {
	return "invitation not found: " + e.InvitationID.String()
}

// Is matches any ErrInvitationNotFound when the target carries the nil id.
func (e ErrInvitationNotFound) Is(target error) bool {
	t, ok := target.(ErrInvitationNotFound)
	if !ok {
		return false
	}
	if t.InvitationID == uuid.Nil {
		return true
	}
	return e.InvitationID == t.InvitationID
}
