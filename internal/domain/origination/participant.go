package origination

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidShare indicates contribution shares that do not sum to 100%.
var ErrInvalidShare = errors.New("participant shares must sum to 100")

// Participant links a user to an account with a fixed contribution share.
type Participant struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"account_id"`
	UserID    uuid.UUID       `json:"user_id"`
	SharePct  decimal.Decimal `json:"share_pct"`
	CreatedAt time.Time       `json:"created_at"`
}

var (
	fullShare = decimal.NewFromInt(100)
	halfShare = decimal.NewFromInt(50)
)

// NewParticipants registers the holders of an account with fixed splits:
// 100% for a sole holder, 50/50 for joint.
func NewParticipants(accountID, ownerID, coOwnerID uuid.UUID) []*Participant {
	now := time.Now()
	if coOwnerID == uuid.Nil {
		return []*Participant{{
			ID:        uuid.New(),
			AccountID: accountID,
			UserID:    ownerID,
			SharePct:  fullShare,
			CreatedAt: now,
		}}
	}
	return []*Participant{
		{ID: uuid.New(), AccountID: accountID, UserID: ownerID, SharePct: halfShare, CreatedAt: now},
		{ID: uuid.New(), AccountID: accountID, UserID: coOwnerID, SharePct: halfShare, CreatedAt: now},
	}
}

// ValidateShares checks the zero-sum discipline on contribution splits.
func ValidateShares(participants []*Participant) error {
	sum := decimal.Zero
	for _, p := range participants {
		sum = sum.Add(p.SharePct)
	}
	if !sum.Equal(fullShare) {
		return ErrInvalidShare
	}
	return nil
}
