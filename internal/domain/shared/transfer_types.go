package shared

// TransferStatus defines transfer processing states
type TransferStatus string

const (
	TransferStatusPending    TransferStatus = "PENDING"
	TransferStatusProcessing TransferStatus = "PROCESSING"
	TransferStatusCompleted  TransferStatus = "COMPLETED"
	TransferStatusFailed     TransferStatus = "FAILED"
)

// FailureReason defines transfer failure categories
type FailureReason string

const (
	FailureReasonAccountNotFound        FailureReason = "ACCOUNT_NOT_FOUND"
	FailureReasonAccountClosed          FailureReason = "ACCOUNT_CLOSED"
	FailureReasonCurrencyMismatchFormat FailureReason = "CURRENCY_MISMATCH:_REQUEST_%s_ACCOUNT_%s" // To be used with fmt.Sprintf
	FailureReasonInsufficientFunds      FailureReason = "INSUFFICIENT_FUNDS"
	FailureReasonInvalidAmount          FailureReason = "INVALID_AMOUNT"
	FailureReasonSameAccount            FailureReason = "SAME_ACCOUNT"
	FailureReasonCommitFailed           FailureReason = "TRANSFER_COMMIT_FAILED"
	FailureReasonUnknownError           FailureReason = "UNKNOWN_ERROR"
)

// OutboxStatus defines staged ledger-record publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
