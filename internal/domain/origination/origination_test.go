package origination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeplan-finance-core/internal/domain/account"
	"github.com/homeplan-finance-core/internal/domain/finance"
	"github.com/homeplan-finance-core/internal/domain/money"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	app, err := NewApplication(
		uuid.New(), uuid.New(), account.TypeLoan,
		money.NewFromInt(200_000_000, money.KRW),
		decimal.RequireFromString("4"), 120, finance.MethodEqualInstallment,
	)
	require.NoError(t, err)
	return app
}

func TestApplicationLifecycle(t *testing.T) {
	t.Run("HappyPath", func(t *testing.T) {
		app := newTestApplication(t)
		assert.Equal(t, ApplicationStatusPending, app.Status)

		require.NoError(t, app.StartReview())
		assert.Equal(t, ApplicationStatusUnderReview, app.Status)

		accountID := uuid.New()
		require.NoError(t, app.Approve(accountID, "within ratio ceiling"))
		assert.Equal(t, ApplicationStatusApproved, app.Status)
		assert.Equal(t, accountID, app.AccountID)

		require.NoError(t, app.MarkDisbursed())
		assert.Equal(t, ApplicationStatusDisbursed, app.Status)
	})

	t.Run("RejectFromPendingAndReview", func(t *testing.T) {
		app := newTestApplication(t)
		require.NoError(t, app.Reject("incomplete documents"))
		assert.Equal(t, ApplicationStatusRejected, app.Status)

		app = newTestApplication(t)
		require.NoError(t, app.StartReview())
		require.NoError(t, app.Reject("ratio exceeded"))
		assert.Equal(t, ApplicationStatusRejected, app.Status)
	})

	t.Run("JointAcceptedSideEntry", func(t *testing.T) {
		app := newTestApplication(t)
		co := uuid.New()
		require.NoError(t, app.AcceptJoint(co))
		assert.Equal(t, ApplicationStatusJointAccepted, app.Status)
		assert.True(t, app.Joint())

		// Joint-accepted applications can still be approved.
		require.NoError(t, app.Approve(uuid.New(), "joint approval"))
	})

	t.Run("Approvable", func(t *testing.T) {
		app := newTestApplication(t)
		assert.False(t, app.Approvable())

		require.NoError(t, app.StartReview())
		assert.True(t, app.Approvable())

		require.NoError(t, app.Approve(uuid.New(), "ok"))
		assert.False(t, app.Approvable())

		joint := newTestApplication(t)
		require.NoError(t, joint.AcceptJoint(uuid.New()))
		assert.True(t, joint.Approvable())
	})

	t.Run("GuardedTransitions", func(t *testing.T) {
		app := newTestApplication(t)
		assert.ErrorIs(t, app.MarkDisbursed(), ErrInvalidStateTransition)
		assert.ErrorIs(t, app.Approve(uuid.New(), "too early"), ErrInvalidStateTransition)

		require.NoError(t, app.StartReview())
		assert.ErrorIs(t, app.StartReview(), ErrInvalidStateTransition)
		assert.ErrorIs(t, app.AcceptJoint(uuid.New()), ErrInvalidStateTransition)

		require.NoError(t, app.Approve(uuid.New(), "ok"))
		assert.ErrorIs(t, app.Reject("late"), ErrInvalidStateTransition)
		require.NoError(t, app.MarkDisbursed())
		assert.ErrorIs(t, app.MarkDisbursed(), ErrInvalidStateTransition)
	})

	t.Run("Validation", func(t *testing.T) {
		_, err := NewApplication(uuid.Nil, uuid.New(), account.TypeLoan, money.NewFromInt(1, money.KRW), decimal.Zero, 12, finance.MethodBullet)
		assert.ErrorIs(t, err, ErrEmptyApplicant)

		_, err = NewApplication(uuid.New(), uuid.New(), account.TypeLoan, money.Zero(money.KRW), decimal.Zero, 12, finance.MethodBullet)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = NewApplication(uuid.New(), uuid.New(), account.TypeLoan, money.NewFromInt(1, money.KRW), decimal.Zero, 0, finance.MethodBullet)
		assert.ErrorIs(t, err, ErrInvalidTerm)
	})
}

func TestInvitationLifecycle(t *testing.T) {
	newInv := func(t *testing.T) *Invitation {
		t.Helper()
		inv, err := NewInvitation(uuid.New(), uuid.New(), uuid.New())
		require.NoError(t, err)
		return inv
	}

	t.Run("Accept", func(t *testing.T) {
		inv := newInv(t)
		require.NoError(t, inv.Accept(time.Now()))
		assert.Equal(t, InvitationStatusAccepted, inv.Status)
	})

	t.Run("AcceptAfterDeadline", func(t *testing.T) {
		inv := newInv(t)
		err := inv.Accept(inv.ExpiresAt.Add(time.Hour))
		assert.ErrorIs(t, err, ErrInvitationExpired)
		assert.Equal(t, InvitationStatusPending, inv.Status)
	})

	t.Run("OnlyPendingTransitions", func(t *testing.T) {
		inv := newInv(t)
		require.NoError(t, inv.Reject())
		assert.ErrorIs(t, inv.Accept(time.Now()), ErrInvalidStateTransition)
		assert.ErrorIs(t, inv.Expire(), ErrInvalidStateTransition)

		inv = newInv(t)
		require.NoError(t, inv.Expire())
		assert.Equal(t, InvitationStatusExpired, inv.Status)
	})

	t.Run("SelfInvitation", func(t *testing.T) {
		id := uuid.New()
		_, err := NewInvitation(uuid.New(), id, id)
		assert.ErrorIs(t, err, ErrSelfInvitation)
	})
}

func TestParticipants(t *testing.T) {
	t.Run("SoleHolder", func(t *testing.T) {
		ps := NewParticipants(uuid.New(), uuid.New(), uuid.Nil)
		require.Len(t, ps, 1)
		assert.True(t, ps[0].SharePct.Equal(decimal.NewFromInt(100)))
		assert.NoError(t, ValidateShares(ps))
	})

	t.Run("JointSplit", func(t *testing.T) {
		ps := NewParticipants(uuid.New(), uuid.New(), uuid.New())
		require.Len(t, ps, 2)
		for _, p := range ps {
			assert.True(t, p.SharePct.Equal(decimal.NewFromInt(50)))
		}
		assert.NoError(t, ValidateShares(ps))
	})

	t.Run("BrokenShares", func(t *testing.T) {
		ps := NewParticipants(uuid.New(), uuid.New(), uuid.New())
		ps[0].SharePct = decimal.NewFromInt(70)
		assert.ErrorIs(t, ValidateShares(ps), ErrInvalidShare)
	})
}
