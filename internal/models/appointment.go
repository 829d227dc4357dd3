package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Appointment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	TutorID       uuid.UUID `gorm:"type:uuid;index;not null" json:"tutor_id"`
	OriginChannel string    `gorm:"size:20;not null" json:"origin_channel"`

	StartTime time.Time `gorm:"index;not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	Status string `gorm:"size:20;index;not null" json:"status"`

	Items []LineItem `gorm:"foreignKey:AppointmentID;constraint:OnDelete:CASCADE;" json:"items"`

	FinalPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"final_price"`
	PaidAmount       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"paid_amount"`
	PaymentReference *string         `gorm:"size:80" json:"payment_reference,omitempty"`

	Notes        string `gorm:"size:255" json:"notes"`
	CancelReason string `gorm:"size:255" json:"cancel_reason,omitempty"`

	Version int `gorm:"not null;default:0" json:"version"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	LineItemActive            = "ACTIVE"
	LineItemCancelledClinical = "CANCELLED_CLINICAL"
)

type LineItem struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AppointmentID uuid.UUID  `gorm:"type:uuid;index;not null" json:"appointment_id"`
	ServiceID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"service_id"`
	PetID         *uuid.UUID `gorm:"type:uuid;index" json:"pet_id,omitempty"`
	Position      int        `gorm:"not null" json:"position"`

	ServiceName string `gorm:"size:120" json:"service_name"`
	DurationMin int    `gorm:"not null" json:"duration_min"`

	OriginalPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"original_price"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	DiscountApplied bool            `gorm:"not null" json:"discount_applied"`
	PriceNotes      string          `gorm:"type:text" json:"price_notes"`

	Status        string `gorm:"size:30;not null" json:"status"`
	CancelReason  string `gorm:"size:255" json:"cancel_reason,omitempty"`
	StockConsumed bool   `gorm:"not null" json:"stock_consumed"`
}

// Reference identifica as movimentações de estoque deste item.
func (l *LineItem) Reference() string {
	return "line_item:" + l.ID.String()
}

type ScheduleBlock struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StartTime time.Time `gorm:"index;not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	Reason    string    `gorm:"size:255" json:"reason"`
	CreatedBy uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
