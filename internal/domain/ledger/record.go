package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/homeplan-finance-core/internal/domain/money"
)

// Direction is the sign of a transaction record.
type Direction string

const (
	DirectionDebit  Direction = "DEBIT"
	DirectionCredit Direction = "CREDIT"
)

// Record is one side of a transfer in the append-only ledger. Records are
// never updated or deleted once committed. The two records of one transfer
// share a TransferID and their signed amounts sum to zero.
//
// Amount and BalanceAfter are decimal strings: exact, and free of driver
// float coercion on the way through BSON.
type Record struct {
	ID             uuid.UUID `json:"id" bson:"record_id"`
	TransferID     uuid.UUID `json:"transfer_id" bson:"transfer_id"`
	AccountID      uuid.UUID `json:"account_id" bson:"account_id"`
	Direction      Direction `json:"direction" bson:"direction"`
	Amount         string    `json:"amount" bson:"amount"` // Signed: negative on the source side
	Currency       string    `json:"currency" bson:"currency"`
	BalanceAfter   string    `json:"balance_after" bson:"balance_after"`
	Memo           string    `json:"memo,omitempty" bson:"memo,omitempty"`
	IdempotencyKey string    `json:"idempotency_key,omitempty" bson:"idempotency_key,omitempty"`
	CorrelationID  string    `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

// NewRecord builds one side of a transfer from settled money values.
// The signed amount is negative for debits.
func NewRecord(transferID, accountID uuid.UUID, dir Direction, amount, balanceAfter money.Money, memo string) *Record {
	signed := amount.Rounded()
	if dir == DirectionDebit {
		signed = signed.Neg()
	}
	return &Record{
		ID:           uuid.New(),
		TransferID:   transferID,
		AccountID:    accountID,
		Direction:    dir,
		Amount:       signed.Amount().String(),
		Currency:     amount.Currency().Code(),
		BalanceAfter: balanceAfter.Rounded().Amount().String(),
		Memo:         memo,
		CreatedAt:    time.Now().UTC(),
	}
}
