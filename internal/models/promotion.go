package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Promotion struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	StartDate time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null" json:"end_date"`
	// Weekdays guarda os dias permitidos como "1,3,5" (0 = domingo). Vazio = todos.
	Weekdays string `gorm:"size:20" json:"weekdays"`
	Active   bool   `gorm:"not null" json:"active"`

	Triggers []PromotionTrigger `gorm:"foreignKey:PromotionID;constraint:OnDelete:CASCADE;" json:"triggers,omitempty"`
	Benefits []PromotionBenefit `gorm:"foreignKey:PromotionID;constraint:OnDelete:CASCADE;" json:"benefits,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WeekdaySet devolve os dias da semana permitidos; vazio significa sem restrição.
func (p *Promotion) WeekdaySet() []time.Weekday {
	var out []time.Weekday
	for _, part := range strings.Split(p.Weekdays, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			continue
		}
		out = append(out, time.Weekday(n))
	}
	return out
}

type PromotionTrigger struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PromotionID uuid.UUID `gorm:"type:uuid;index;not null" json:"promotion_id"`
	ServiceID   uuid.UUID `gorm:"type:uuid;not null" json:"service_id"`
}

type PromotionBenefit struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PromotionID uuid.UUID       `gorm:"type:uuid;index;not null" json:"promotion_id"`
	ServiceID   uuid.UUID       `gorm:"type:uuid;not null" json:"service_id"`
	Kind        string          `gorm:"size:20;not null" json:"kind"` // FIXED_PRICE | AMOUNT_OFF | PERCENT_OFF
	Value       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"value"`
}
