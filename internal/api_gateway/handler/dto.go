package handler

// CreateAccountRequest represents a request to create a new account
type CreateAccountRequest struct {
	OwnerID        string `json:"owner_id" binding:"required,uuid"`
	Number         string `json:"number" binding:"required"`
	Type           string `json:"type" binding:"required,oneof=DEMAND SAVINGS LOAN JOINT_SAVINGS JOINT_LOAN"`
	OpeningBalance string `json:"opening_balance" binding:"required"`
	Currency       string `json:"currency" binding:"required,len=3"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Number    string `json:"number"`
	Type      string `json:"type"`
	Balance   string `json:"balance"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CreateTransferRequest represents a request to move funds between accounts.
// An empty source number submits a single-sided deposit.
type CreateTransferRequest struct {
	SourceNumber   string `json:"source_number,omitempty"`
	DestNumber     string `json:"dest_number" binding:"required"`
	Amount         string `json:"amount" binding:"required"`
	Currency       string `json:"currency" binding:"required,len=3"`
	Memo           string `json:"memo,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// TransferRecordResponse represents one ledger record in API responses
type TransferRecordResponse struct {
	ID           string `json:"id"`
	TransferID   string `json:"transfer_id"`
	AccountID    string `json:"account_id"`
	Direction    string `json:"direction"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	BalanceAfter string `json:"balance_after"`
	Memo         string `json:"memo,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// AffordabilityQuoteRequest represents a request for a maximum-principal quote
type AffordabilityQuoteRequest struct {
	Credential    string `json:"credential" binding:"required"`
	ProductID     string `json:"product_id" binding:"required"`
	Region        string `json:"region" binding:"required"`
	HousingStatus string `json:"housing_status" binding:"required"`
	TargetPrice   string `json:"target_price,omitempty"`
	Currency      string `json:"currency" binding:"required,len=3"`
}

// AffordabilityQuoteResponse represents a maximum-principal quote
type AffordabilityQuoteResponse struct {
	MaxPrincipal     string `json:"max_principal"`
	MonthlyPayment   string `json:"monthly_payment"`
	AchievedRatioPct string `json:"achieved_ratio_pct"`
	Currency         string `json:"currency"`
	Rejected         bool   `json:"rejected"`
}

// GeneratePlansRequest represents a request for a financing plan set
type GeneratePlansRequest struct {
	Credential           string `json:"credential" binding:"required"`
	ProductID            string `json:"product_id" binding:"required"`
	Region               string `json:"region" binding:"required"`
	HousingStatus        string `json:"housing_status" binding:"required"`
	TargetPrice          string `json:"target_price" binding:"required"`
	CurrentCash          string `json:"current_cash" binding:"required"`
	Currency             string `json:"currency" binding:"required,len=3"`
	DesiredMonthlySaving string `json:"desired_monthly_saving,omitempty"`
	SavingTermMonths     int    `json:"saving_term_months,omitempty" binding:"omitempty,min=1"`
}

// SubmitApplicationRequest represents a loan or savings application
type SubmitApplicationRequest struct {
	ApplicantID string `json:"applicant_id" binding:"required,uuid"`
	ProductID   string `json:"product_id" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Currency    string `json:"currency" binding:"required,len=3"`
}

// ApplicationResponse represents an application in API responses
type ApplicationResponse struct {
	ID              string `json:"id"`
	ApplicantID     string `json:"applicant_id"`
	CoApplicantID   string `json:"co_applicant_id,omitempty"`
	ProductID       string `json:"product_id"`
	AccountType     string `json:"account_type"`
	RequestedAmount string `json:"requested_amount"`
	Currency        string `json:"currency"`
	AnnualRatePct   string `json:"annual_rate_pct"`
	TermMonths      int    `json:"term_months"`
	Method          string `json:"method"`
	Status          string `json:"status"`
	DecisionReason  string `json:"decision_reason,omitempty"`
	AccountID       string `json:"account_id,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// DecisionRequest carries the reason for an approve or reject decision
type DecisionRequest struct {
	Reason string `json:"reason"`
}

// DisburseRequest names the account the principal is paid out to
type DisburseRequest struct {
	DestNumber string `json:"dest_number" binding:"required"`
}

// CreateInvitationRequest invites a co-applicant onto an application
type CreateInvitationRequest struct {
	InviterID string `json:"inviter_id" binding:"required,uuid"`
	InviteeID string `json:"invitee_id" binding:"required,uuid"`
}

// InvitationResponse represents an invitation in API responses
type InvitationResponse struct {
	ID            string `json:"id"`
	ApplicationID string `json:"application_id"`
	InviterID     string `json:"inviter_id"`
	InviteeID     string `json:"invitee_id"`
	Status        string `json:"status"`
	ExpiresAt     string `json:"expires_at"`
	CreatedAt     string `json:"created_at"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
