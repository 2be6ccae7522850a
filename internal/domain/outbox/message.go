package outbox

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/homeplan-finance-core/internal/domain/ledger"
	"github.com/homeplan-finance-core/internal/domain/shared"
)

// Message stages the ledger records of one settled transfer for reliable
// publishing to the record store. Both sides of a transfer travel in a
// single message so they land in the ledger together.
type Message struct {
	ID            int64               `json:"id"`
	TransferID    uuid.UUID           `json:"transfer_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

// NewMessage serializes records into a pending message. All records must
// belong to the same transfer; the first one names it.
func NewMessage(records []*ledger.Record) (*Message, error) {
	if len(records) == 0 {
		return nil, errors.New("outbox message requires at least one ledger record")
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}

	return &Message{
		TransferID: records[0].TransferID,
		Payload:    payload,
		Status:     shared.OutboxStatusPending,
		CreatedAt:  time.Now(),
	}, nil
}

func (m *Message) touch() {
	now := time.Now()
	m.LastAttemptAt = &now
}

// IncrementAttempts records one more failed publish attempt.
func (m *Message) IncrementAttempts() {
	m.Attempts++
	m.touch()
}

// MarkAsProcessed flags the message as durably published.
func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	m.touch()
}

// MarkAsFailed parks the message after its retry budget is spent.
func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	m.touch()
}

// GetLedgerRecords decodes the staged ledger records.
func (m *Message) GetLedgerRecords() ([]*ledger.Record, error) {
	var records []*ledger.Record
	if err := json.Unmarshal(m.Payload, &records); err != nil {
		return nil, err
	}
	return records, nil
}
