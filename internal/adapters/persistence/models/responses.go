package models

import "time"

// Response DTOs. Monetary amounts are serialized as decimal strings with two
// fractional digits; dates as ISO-8601 in UTC.

const dateLayout = "2006-01-02"

// MemberResponse DTO
type MemberResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	IDNumber  string    `json:"id_number"`
	City      string    `json:"city,omitempty"`
	Country   string    `json:"country,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		IDNumber:  m.IDNumber,
		City:      m.City,
		Country:   m.Country,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
	}
}

// TierResponse DTO
type TierResponse struct {
	ID           string `json:"id"`
	Duration     string `json:"duration"`
	MonthlyPrice string `json:"monthly_price"`
	TotalPrice   string `json:"total_price"`
}

func (t *PricingTier) ToResponse() *TierResponse {
	return &TierResponse{
		ID:           t.ID,
		Duration:     string(t.Duration),
		MonthlyPrice: t.MonthlyPrice.StringFixed(2),
		TotalPrice:   t.TotalPrice.StringFixed(2),
	}
}

// PlanResponse DTO
type PlanResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	IsActive    bool            `json:"is_active"`
	Tiers       []*TierResponse `json:"pricing_tiers,omitempty"`
}

func (p *Plan) ToResponse() *PlanResponse {
	resp := &PlanResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		IsActive:    p.IsActive,
	}
	for i := range p.PricingTiers {
		resp.Tiers = append(resp.Tiers, p.PricingTiers[i].ToResponse())
	}
	return resp
}

// MembershipResponse DTO
type MembershipResponse struct {
	ID               string  `json:"id"`
	MemberID         string  `json:"member_id"`
	MemberName       string  `json:"member_name,omitempty"`
	PlanID           string  `json:"plan_id"`
	PlanName         string  `json:"plan_name,omitempty"`
	PricingTierID    string  `json:"pricing_tier_id"`
	Duration         string  `json:"duration,omitempty"`
	Status           string  `json:"status"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	BillingStartDate string  `json:"billing_start_date"`
	NextBillingDate  string  `json:"next_billing_date"`
	AutoRenew        bool    `json:"auto_renew"`
	PaidMonths       int     `json:"paid_months"`
	ProratedAmount   string  `json:"prorated_amount"`
	CancelReason     *string `json:"cancellation_reason,omitempty"`
}

func (m *Membership) ToResponse() *MembershipResponse {
	resp := &MembershipResponse{
		ID:               m.ID,
		MemberID:         m.MemberID,
		PlanID:           m.PlanID,
		PricingTierID:    m.PricingTierID,
		Status:           string(m.Status),
		StartDate:        m.StartDate.Format(dateLayout),
		EndDate:          m.EndDate.Format(dateLayout),
		BillingStartDate: m.BillingStartDate.Format(dateLayout),
		NextBillingDate:  m.NextBillingDate.Format(dateLayout),
		AutoRenew:        m.AutoRenew,
		PaidMonths:       m.PaidMonths,
		ProratedAmount:   m.ProratedAmount.StringFixed(2),
		CancelReason:     m.CancellationReason,
	}

	if m.Member != nil {
		resp.MemberName = m.Member.Name
	}
	if m.Plan != nil {
		resp.PlanName = m.Plan.Name
	}
	if m.PricingTier != nil {
		resp.Duration = string(m.PricingTier.Duration)
	}

	return resp
}

// InvoiceResponse DTO
type InvoiceResponse struct {
	ID            string             `json:"id"`
	InvoiceNumber string             `json:"invoice_number"`
	MemberID      string             `json:"member_id"`
	MemberName    string             `json:"member_name,omitempty"`
	MembershipID  string             `json:"membership_id"`
	Subtotal      string             `json:"subtotal"`
	Tax           string             `json:"tax"`
	Discount      string             `json:"discount"`
	Total         string             `json:"total"`
	Status        string             `json:"status"`
	IssueDate     string             `json:"issue_date"`
	DueDate       string             `json:"due_date"`
	PaidDate      *time.Time         `json:"paid_date,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	Payments      []*PaymentResponse `json:"payments,omitempty"`
}

func (i *Invoice) ToResponse() *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:            i.ID,
		InvoiceNumber: i.InvoiceNumber,
		MemberID:      i.MemberID,
		MembershipID:  i.MembershipID,
		Subtotal:      i.Subtotal.StringFixed(2),
		Tax:           i.Tax.StringFixed(2),
		Discount:      i.Discount.StringFixed(2),
		Total:         i.Total.StringFixed(2),
		Status:        string(i.Status),
		IssueDate:     i.IssueDate.Format(dateLayout),
		DueDate:       i.DueDate.Format(dateLayout),
		PaidDate:      i.PaidDate,
		Notes:         i.Notes,
	}

	if i.Member != nil {
		resp.MemberName = i.Member.Name
	}
	for j := range i.Payments {
		resp.Payments = append(resp.Payments, i.Payments[j].ToResponse())
	}

	return resp
}

// PaymentResponse DTO
type PaymentResponse struct {
	ID            string     `json:"id"`
	MemberID      string     `json:"member_id"`
	MembershipID  string     `json:"membership_id"`
	InvoiceID     *string    `json:"invoice_id,omitempty"`
	Amount        string     `json:"amount"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	PeriodStart   string     `json:"period_start"`
	PeriodEnd     string     `json:"period_end"`
	DueDate       string     `json:"due_date"`
	PaidDate      *time.Time `json:"paid_date,omitempty"`
	PaymentMethod *string    `json:"payment_method,omitempty"`
	TransactionID *string    `json:"transaction_id,omitempty"`
}

func (p *Payment) ToResponse() *PaymentResponse {
	return &PaymentResponse{
		ID:            p.ID,
		MemberID:      p.MemberID,
		MembershipID:  p.MembershipID,
		InvoiceID:     p.InvoiceID,
		Amount:        p.Amount.StringFixed(2),
		Currency:      p.Currency,
		Status:        string(p.Status),
		PeriodStart:   p.PeriodStart.Format(dateLayout),
		PeriodEnd:     p.PeriodEnd.Format(dateLayout),
		DueDate:       p.DueDate.Format(dateLayout),
		PaidDate:      p.PaidDate,
		PaymentMethod: p.PaymentMethod,
		TransactionID: p.TransactionID,
	}
}
