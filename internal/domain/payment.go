package domain

// Payment a rent payment recorded against one member.
type Payment struct {
	ID        string `json:"id"`
	MemberID  string `json:"memberId"`
	Amount    Money  `json:"amount"`
	Date      string `json:"date"`
	Method    string `json:"method,omitempty"`
	Status    string `json:"status,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// PaymentInput create payload; an empty Date means "now".
type PaymentInput struct {
	MemberID string `json:"memberId" validate:"required"`
	Amount   Money  `json:"amount" validate:"gt=0"`
	Date     string `json:"date,omitempty"`
	Method   string `json:"method,omitempty" validate:"omitempty,oneof=cash upi card bank cheque other"`
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=paid pending overdue"`
	Notes    string `json:"notes,omitempty"`
}

// PaymentPatch partial update; nil fields are left untouched. MemberID is fixed.
type PaymentPatch struct {
	Amount *Money  `json:"amount,omitempty"`
	Date   *string `json:"date,omitempty"`
	Method *string `json:"method,omitempty"`
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// Apply merges patch into p.
func (p *Payment) Apply(patch PaymentPatch) {
	if patch.Amount != nil {
		p.Amount = *patch.Amount
	}
	if patch.Date != nil {
		p.Date = *patch.Date
	}
	if patch.Method != nil {
		p.Method = *patch.Method
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Notes != nil {
		p.Notes = *patch.Notes
	}
}

// Input returns the create view of p, used to revalidate after a patch.
func (p Payment) Input() PaymentInput {
	return PaymentInput{
		MemberID: p.MemberID,
		Amount:   p.Amount,
		Date:     p.Date,
		Method:   p.Method,
		Status:   p.Status,
		Notes:    p.Notes,
	}
}
