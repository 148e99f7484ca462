package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStatus is the normalized reservation state coming out of the
// platform exports. Anything that is not cancelled or a no-show is VALID.
type BookingStatus string

const (
	StatusValid     BookingStatus = "VALID"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusNoShow    BookingStatus = "NO_SHOW"
)

// IsTaxable reports whether the status alone allows taxation.
func (s BookingStatus) IsTaxable() bool {
	return s == StatusValid
}

// Dataset groups the bookings of one imported platform export together with
// the tax parameters selected for it. OverrideRate, when nil, defers to the
// municipality default (or the custom rule default).
type Dataset struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string           `gorm:"type:varchar(255);not null" json:"name"`
	Municipality string           `gorm:"type:varchar(120)" json:"municipality"` // empty = custom rule
	OverrideRate *decimal.Decimal `gorm:"type:decimal(10,2)" json:"override_rate"`
	CreatedAt    time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// Booking is the canonical normalized reservation record. One row per raw
// platform row; immutable once imported, consumed by the tax engine.
type Booking struct {
	ID          uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DatasetID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"dataset_id"`
	GuestName   string        `gorm:"type:varchar(255);not null" json:"guest_name"`
	TotalGuests int           `gorm:"not null;default:1" json:"total_guests"`
	ChildCount  int           `gorm:"not null;default:0" json:"child_count"`
	ChildAges   []int         `gorm:"serializer:json" json:"child_ages"`
	Arrival     time.Time     `gorm:"type:date;not null;index" json:"arrival"`
	Departure   time.Time     `gorm:"type:date;not null" json:"departure"`
	Status      BookingStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CountryCode string        `gorm:"type:varchar(8)" json:"country_code"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

// ComputedBooking is a Booking plus everything the tax calculator derives
// from it. Never persisted: it is rebuilt from scratch on every recompute so
// rate or exemption changes can never leave stale per-field state behind.
type ComputedBooking struct {
	Booking

	Nights          int             `json:"nights"`
	TaxableNights   int             `json:"taxable_nights"`
	ExemptChildren  int             `json:"exempt_children"`
	TaxableChildren int             `json:"taxable_children"`
	TaxableAdults   int             `json:"taxable_adults"`
	ResolvedRate    decimal.Decimal `json:"resolved_rate"`
	ManuallyExempt  bool            `json:"manually_exempt"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
}

// ManualExemption forces a guest's tax to zero regardless of status or age.
// Toggled by the operator, keyed by the guest name exactly as imported.
type ManualExemption struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DatasetID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_exemption_dataset_guest" json:"dataset_id"`
	GuestName string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_exemption_dataset_guest" json:"guest_name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ExemptionSet is the caller-owned set of manually exempted guest names fed
// into every tax computation. The engine only reads it.
type ExemptionSet map[string]struct{}

// NewExemptionSet builds a set from guest names, ignoring blanks.
func NewExemptionSet(names ...string) ExemptionSet {
	set := make(ExemptionSet, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// Has reports whether the guest name is manually exempted.
func (e ExemptionSet) Has(guestName string) bool {
	_, ok := e[guestName]
	return ok
}
