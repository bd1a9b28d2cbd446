package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"gympulse/internal/core/domain"
)

// ============================================================
// Staff & Members
// ============================================================

// StaffUser represents staff_users table (dashboard operators)
type StaffUser struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      domain.Role    `gorm:"size:20;default:'STAFF'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (StaffUser) TableName() string {
	return "staff_users"
}

// Member represents members table (the gym's customers)
type Member struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Name         string     `gorm:"size:100;not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Phone        string     `gorm:"size:30" json:"phone"`
	IDNumber     string     `gorm:"column:id_number;uniqueIndex;size:30;not null" json:"id_number"`
	AddressLine1 string     `gorm:"size:200" json:"address_line1"`
	AddressLine2 string     `gorm:"size:200" json:"address_line2"`
	City         string     `gorm:"size:100" json:"city"`
	State        string     `gorm:"size:100" json:"state"`
	PostalCode   string     `gorm:"size:20" json:"postal_code"`
	Country      string     `gorm:"size:100" json:"country"`
	Active       bool       `gorm:"default:false;index" json:"active"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Memberships []Membership `gorm:"foreignKey:MemberID" json:"memberships,omitempty"`
}

func (Member) TableName() string {
	return "members"
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// ============================================================
// Catalog
// ============================================================

// Plan represents plans table (catalog product)
type Plan struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Name        string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	PricingTiers []PricingTier `gorm:"foreignKey:PlanID" json:"pricing_tiers,omitempty"`
}

func (Plan) TableName() string {
	return "plans"
}

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// TierFor returns the plan's tier for a duration class, nil if absent
func (p *Plan) TierFor(d domain.Duration) *PricingTier {
	for i := range p.PricingTiers {
		if p.PricingTiers[i].Duration == d {
			return &p.PricingTiers[i]
		}
	}
	return nil
}

// PricingTier represents pricing_tiers table; one per (plan, duration)
type PricingTier struct {
	ID           string          `gorm:"primaryKey;size:36" json:"id"`
	PlanID       string          `gorm:"size:36;not null;uniqueIndex:idx_plan_duration" json:"plan_id"`
	Duration     domain.Duration `gorm:"size:20;not null;uniqueIndex:idx_plan_duration" json:"duration"`
	MonthlyPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"monthly_price"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Plan *Plan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

func (PricingTier) TableName() string {
	return "pricing_tiers"
}

func (t *PricingTier) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// ============================================================
// Membership
// ============================================================

// Membership represents memberships table; binds a member to a plan + tier
type Membership struct {
	ID               string                  `gorm:"primaryKey;size:36" json:"id"`
	MemberID         string                  `gorm:"size:36;not null;index" json:"member_id"`
	PlanID           string                  `gorm:"size:36;not null" json:"plan_id"`
	PricingTierID    string                  `gorm:"size:36;not null" json:"pricing_tier_id"`
	Status           domain.MembershipStatus `gorm:"size:20;not null;index" json:"status"`
	StartDate        time.Time               `gorm:"type:date;not null" json:"start_date"`
	EndDate          time.Time               `gorm:"type:date;not null" json:"end_date"`
	BillingStartDate time.Time               `gorm:"type:date;not null" json:"billing_start_date"`
	NextBillingDate  time.Time               `gorm:"type:date;not null;index" json:"next_billing_date"`
	AutoRenew        bool                    `gorm:"default:false" json:"auto_renew"`
	PaidMonths       int                     `gorm:"default:0" json:"paid_months"`
	ProratedAmount   decimal.Decimal         `gorm:"type:decimal(10,2)" json:"prorated_amount"`

	// Cancellation metadata, promoted out of the custom-fields blob so the
	// row stays auditable on its own.
	CancellationReason    *string    `gorm:"size:500" json:"cancellation_reason,omitempty"`
	CancelledAt           *time.Time `json:"cancelled_at,omitempty"`
	CancellationEffective *time.Time `gorm:"type:date" json:"cancellation_effective,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Member      *Member          `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Plan        *Plan            `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	PricingTier *PricingTier     `gorm:"foreignKey:PricingTierID" json:"pricing_tier,omitempty"`
	Invoices    []Invoice        `gorm:"foreignKey:MembershipID" json:"invoices,omitempty"`
	Payments    []Payment        `gorm:"foreignKey:MembershipID" json:"payments,omitempty"`
	Custom      *CustomFieldBlob `gorm:"foreignKey:MembershipID" json:"custom,omitempty"`
}

func (Membership) TableName() string {
	return "memberships"
}

func (m *Membership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// CustomFieldBlob represents custom_field_blobs table; an opaque append-only
// JSON map keyed by membership.
type CustomFieldBlob struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	MembershipID string            `gorm:"size:36;not null;uniqueIndex" json:"membership_id"`
	Data         datatypes.JSONMap `json:"data"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CustomFieldBlob) TableName() string {
	return "custom_field_blobs"
}

// ============================================================
// Invoices & Payments
// ============================================================

// Invoice represents invoices table
type Invoice struct {
	ID            string               `gorm:"primaryKey;size:36" json:"id"`
	MemberID      string               `gorm:"size:36;not null;index" json:"member_id"`
	MembershipID  string               `gorm:"size:36;not null;index" json:"membership_id"`
	InvoiceNumber string               `gorm:"uniqueIndex;size:30;not null" json:"invoice_number"`
	Subtotal      decimal.Decimal      `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Tax           decimal.Decimal      `gorm:"type:decimal(10,2);not null" json:"tax"`
	Discount      decimal.Decimal      `gorm:"type:decimal(10,2);not null" json:"discount"`
	Total         decimal.Decimal      `gorm:"type:decimal(10,2);not null" json:"total"`
	Status        domain.InvoiceStatus `gorm:"size:20;not null;index" json:"status"`
	IssueDate     time.Time            `gorm:"type:date;not null" json:"issue_date"`
	DueDate       time.Time            `gorm:"type:date;not null;index" json:"due_date"`
	PaidDate      *time.Time           `json:"paid_date,omitempty"`
	Notes         string               `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time            `gorm:"autoUpdateTime" json:"updated_at"`

	Member     *Member     `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Membership *Membership `gorm:"foreignKey:MembershipID" json:"membership,omitempty"`
	Payments   []Payment   `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
}

func (Invoice) TableName() string {
	return "invoices"
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Payment represents payments table. The unique (membership_id, period_start)
// index is what makes the recurring sweep idempotent.
type Payment struct {
	ID            string               `gorm:"primaryKey;size:36" json:"id"`
	MemberID      string               `gorm:"size:36;not null;index" json:"member_id"`
	MembershipID  string               `gorm:"size:36;not null;uniqueIndex:idx_membership_period" json:"membership_id"`
	InvoiceID     *string              `gorm:"size:36;index" json:"invoice_id,omitempty"`
	Amount        decimal.Decimal      `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency      string               `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Status        domain.PaymentStatus `gorm:"size:20;not null;index" json:"status"`
	PeriodStart   time.Time            `gorm:"type:date;not null;uniqueIndex:idx_membership_period" json:"period_start"`
	PeriodEnd     time.Time            `gorm:"type:date;not null" json:"period_end"`
	DueDate       time.Time            `gorm:"type:date;not null" json:"due_date"`
	PaidDate      *time.Time           `json:"paid_date,omitempty"`
	PaymentMethod *string              `gorm:"size:30" json:"payment_method,omitempty"`
	TransactionID *string              `gorm:"size:100" json:"transaction_id,omitempty"`
	CreatedAt     time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time            `gorm:"autoUpdateTime" json:"updated_at"`

	Member     *Member     `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Membership *Membership `gorm:"foreignKey:MembershipID" json:"membership,omitempty"`
	Invoice    *Invoice    `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all billing tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&StaffUser{},
		&Member{},
		&Plan{},
		&PricingTier{},
		&Membership{},
		&CustomFieldBlob{},
		&Invoice{},
		&Payment{},
	)
}
