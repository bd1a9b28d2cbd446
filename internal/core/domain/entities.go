package domain

// Role represents a staff user role in the system
type Role string

const (
	RoleStaff Role = "STAFF"
	RoleAdmin Role = "ADMIN"
)

// MembershipStatus represents the lifecycle state of a membership
type MembershipStatus string

const (
	MembershipPending   MembershipStatus = "PENDING"
	MembershipActive    MembershipStatus = "ACTIVE"
	MembershipFrozen    MembershipStatus = "FROZEN"
	MembershipPaused    MembershipStatus = "PAUSED"
	MembershipCancelled MembershipStatus = "CANCELLED"
	MembershipExpired   MembershipStatus = "EXPIRED"
)

// IsLive returns true for states that count as a current membership
func (s MembershipStatus) IsLive() bool {
	switch s {
	case MembershipPending, MembershipActive, MembershipFrozen, MembershipPaused:
		return true
	}
	return false
}

// IsTerminal returns true for states a membership can never leave
func (s MembershipStatus) IsTerminal() bool {
	return s == MembershipCancelled || s == MembershipExpired
}

// LiveStatuses lists every state that counts as a current membership
var LiveStatuses = []MembershipStatus{
	MembershipPending,
	MembershipActive,
	MembershipFrozen,
	MembershipPaused,
}

// InvoiceStatus represents invoice state
type InvoiceStatus string

const (
	InvoiceDraft         InvoiceStatus = "DRAFT"
	InvoiceIssued        InvoiceStatus = "ISSUED"
	InvoicePartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoicePaid          InvoiceStatus = "PAID"
	InvoiceOverdue       InvoiceStatus = "OVERDUE"
	InvoiceCancelled     InvoiceStatus = "CANCELLED"
)

// PaymentStatus represents payment state
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "PENDING"
	PaymentPaid              PaymentStatus = "PAID"
	PaymentFailed            PaymentStatus = "FAILED"
	PaymentRefunded          PaymentStatus = "REFUNDED"
	PaymentPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
	PaymentCancelled         PaymentStatus = "CANCELLED"
)

// PaymentOutcome is the externally supplied result of a payment authorization
type PaymentOutcome string

const (
	OutcomePaid      PaymentOutcome = "PAID"
	OutcomeFailed    PaymentOutcome = "FAILED"
	OutcomeCancelled PaymentOutcome = "CANCELLED"
)

// Valid reports whether the outcome is one the engine accepts
func (o PaymentOutcome) Valid() bool {
	return o == OutcomePaid || o == OutcomeFailed || o == OutcomeCancelled
}

// Duration is a pricing tier duration class
type Duration string

const (
	DurationMonthly    Duration = "MONTHLY"
	DurationThreeMonth Duration = "THREE_MONTH"
	DurationSixMonth   Duration = "SIX_MONTH"
	DurationAnnual     Duration = "ANNUAL"
)

// Durations lists every duration class in catalog order
var Durations = []Duration{
	DurationMonthly,
	DurationThreeMonth,
	DurationSixMonth,
	DurationAnnual,
}

// Months returns the commitment period implied by the duration class
func (d Duration) Months() int {
	switch d {
	case DurationMonthly:
		return 1
	case DurationThreeMonth:
		return 3
	case DurationSixMonth:
		return 6
	case DurationAnnual:
		return 12
	}
	return 1
}

// Valid reports whether d is a known duration class
func (d Duration) Valid() bool {
	switch d {
	case DurationMonthly, DurationThreeMonth, DurationSixMonth, DurationAnnual:
		return true
	}
	return false
}
