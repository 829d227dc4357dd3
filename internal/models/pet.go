package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Pet struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	TutorID    uuid.UUID        `gorm:"type:uuid;index;not null" json:"tutor_id"`
	Name       string           `gorm:"size:100;not null" json:"name"`
	Species    string           `gorm:"size:40" json:"species"`
	WeightKg   *decimal.Decimal `gorm:"type:numeric(8,3)" json:"weight_kg,omitempty"`
	Sterilized bool             `gorm:"not null" json:"sterilized"`

	Markers []PetClinicalMarker `gorm:"foreignKey:PetID;constraint:OnDelete:CASCADE;" json:"markers,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasMarker informa se a mascota já tem o marcador clínico registrado.
func (p *Pet) HasMarker(code string) bool {
	for _, m := range p.Markers {
		if m.Code == code {
			return true
		}
	}
	return false
}

type PetClinicalMarker struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PetID      uuid.UUID `gorm:"type:uuid;index;not null" json:"pet_id"`
	Code       string    `gorm:"size:60;not null" json:"code"`
	RecordedAt time.Time `json:"recorded_at"`
}
