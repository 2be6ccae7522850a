package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidAmount   = errors.New("transfer amount must be positive")
	ErrInvalidCurrency = errors.New("invalid currency")
	ErrMissingDest     = errors.New("destination account number is required")
	ErrSameAccount     = errors.New("source and destination accounts must differ")
)

// TransferRequest is the Kafka message asking the processor to move funds
// between two accounts. An empty SourceNumber marks the documented
// single-sided deposit case: funding without a traceable counter-account,
// recorded on the destination only.
type TransferRequest struct {
	TransferID     uuid.UUID `json:"transfer_id"`
	SourceNumber   string    `json:"source_number,omitempty"`
	DestNumber     string    `json:"dest_number"`
	Amount         string    `json:"amount"` // Decimal string in major units
	Currency       string    `json:"currency"`
	Memo           string    `json:"memo,omitempty"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	CorrelationID  string    `json:"correlation_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// SingleSided reports whether the request is a deposit without a source
// counter-account.
func (r *TransferRequest) SingleSided() bool {
	return r.SourceNumber == ""
}
