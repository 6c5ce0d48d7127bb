package domain

import "strings"

// TicketStatus is the closed set of ticket states. CANCELLED and USED are terminal.
type TicketStatus string

const (
	TicketActive    TicketStatus = "ACTIVE"
	TicketCancelled TicketStatus = "CANCELLED"
	TicketUsed      TicketStatus = "USED"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketActive, TicketCancelled, TicketUsed:
		return true
	}
	return false
}

func (s TicketStatus) Final() bool {
	return s == TicketCancelled || s == TicketUsed
}

// StatusFilter selects tickets by status in queries; StatusAny matches all.
type StatusFilter string

const StatusAny StatusFilter = "ANY"

// ParseStatusFilter accepts ACTIVE, CANCELLED, USED or ANY (case-insensitive).
// Empty input means ANY.
func ParseStatusFilter(raw string) (StatusFilter, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" || s == string(StatusAny) {
		return StatusAny, true
	}
	if TicketStatus(s).Valid() {
		return StatusFilter(s), true
	}
	return "", false
}

type PaymentStatus string

const (
	PaymentSuccessful PaymentStatus = "SUCCESSFUL"
	PaymentRefunded   PaymentStatus = "REFUNDED"
)

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
)

func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(raw)))
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentBankTransfer:
		return m, true
	}
	return "", false
}

// EntityKind names the soft-deletable catalog entities.
type EntityKind string

const (
	EntityTrip    EntityKind = "trip"
	EntityStation EntityKind = "station"
	EntityVehicle EntityKind = "vehicle"
	EntityCarrier EntityKind = "carrier"
)

// Pagination carries paging params.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Normalize clamps page to >= 1 and page size to 1..MaxPageSize.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// RequestContext carries the authenticated agent.
type RequestContext struct {
	AgentID  int64  `json:"agentId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
