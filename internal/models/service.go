package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service é um serviço médico ou produto vendável da clínica.
type Service struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:120;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Category    string    `gorm:"size:50" json:"category"`

	BasePrice       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"base_price"`
	WeightDependent bool            `gorm:"not null" json:"weight_dependent"`
	DurationMin     int             `gorm:"not null" json:"duration_min"`
	Active          bool            `gorm:"not null" json:"active"`

	RequiresPet         bool   `gorm:"not null" json:"requires_pet"`
	BlockedIfSterilized bool   `gorm:"not null" json:"blocked_if_sterilized"`
	AllowedSpecies      string `gorm:"size:120" json:"allowed_species"` // "canine,feline"; vazio = todas

	// Stock é o contador direto; nil quando o serviço não controla estoque próprio.
	Stock *decimal.Decimal `gorm:"type:numeric(14,3)" json:"stock,omitempty"`

	WeightPriceRules   []WeightPriceRule          `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE;" json:"weight_price_rules,omitempty"`
	SupplyRequirements []ServiceSupplyRequirement `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE;" json:"supply_requirements,omitempty"`
	Prerequisites      []ServicePrerequisite      `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE;" json:"prerequisites,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SpeciesAllowed indica se a espécie pode receber o serviço.
func (s *Service) SpeciesAllowed(species string) bool {
	if strings.TrimSpace(s.AllowedSpecies) == "" {
		return true
	}
	for _, sp := range strings.Split(s.AllowedSpecies, ",") {
		if strings.EqualFold(strings.TrimSpace(sp), strings.TrimSpace(species)) {
			return true
		}
	}
	return false
}

// WeightPriceRule define o preço para uma faixa de peso [min, max], inclusiva.
// Position preserva a ordem de cadastro: a primeira faixa que casa vence.
type WeightPriceRule struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ServiceID uuid.UUID       `gorm:"type:uuid;index;not null" json:"service_id"`
	MinWeight decimal.Decimal `gorm:"type:numeric(8,3);not null" json:"min_weight"`
	MaxWeight decimal.Decimal `gorm:"type:numeric(8,3);not null" json:"max_weight"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Position  int             `gorm:"not null" json:"position"`
}

// ServiceSupplyRequirement é um ingrediente da receita de um serviço.
type ServiceSupplyRequirement struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ServiceID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"service_id"`
	SupplyItemID uuid.UUID       `gorm:"type:uuid;index;not null" json:"supply_item_id"`
	Quantity     decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity"`
	Critical     bool            `gorm:"not null" json:"critical"`
}

// ServicePrerequisite é uma aresta ServiceID -> RequiredServiceID.
// SatisfiedByMarker, quando preenchido, é o marcador clínico da mascota
// que dispensa o serviço requerido (ex.: teste de retrovírus negativo).
type ServicePrerequisite struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ServiceID         uuid.UUID `gorm:"type:uuid;index;not null" json:"service_id"`
	RequiredServiceID uuid.UUID `gorm:"type:uuid;index;not null" json:"required_service_id"`
	SatisfiedByMarker string    `gorm:"size:60" json:"satisfied_by_marker,omitempty"`
}
