package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplyItem é um insumo controlado por lotes.
type SupplyItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string          `gorm:"size:120;not null" json:"name"`
	CurrentStock decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"current_stock"`
	MinimumStock decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"minimum_stock"`
	Unit         string          `gorm:"size:20" json:"unit"`
	Version      int             `gorm:"not null;default:0" json:"version"`

	Batches []Batch `gorm:"foreignKey:SupplyItemID;constraint:OnDelete:CASCADE;" json:"batches,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Batch é um lote com validade. 0 <= RemainingQty <= InitialQty.
type Batch struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SupplyItemID uuid.UUID       `gorm:"type:uuid;index;not null" json:"supply_item_id"`
	LotCode      string          `gorm:"size:60;not null" json:"lot_code"`
	ExpiresAt    time.Time       `gorm:"type:date;index;not null" json:"expires_at"`
	InitialQty   decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"initial_qty"`
	RemainingQty decimal.Decimal `gorm:"type:numeric(14,3);not null;check:chk_batches_remaining,remaining_qty >= 0 AND remaining_qty <= initial_qty" json:"remaining_qty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	MovementConsume = "consume"
	MovementReturn  = "return"
	MovementIntake  = "intake"
)

// StockMovement registra cada alteração de estoque, seja no contador direto
// de um serviço (SupplyItemID nil) ou num lote de insumo.
type StockMovement struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ServiceID    *uuid.UUID      `gorm:"type:uuid;index" json:"service_id,omitempty"`
	SupplyItemID *uuid.UUID      `gorm:"type:uuid;index" json:"supply_item_id,omitempty"`
	BatchID      *uuid.UUID      `gorm:"type:uuid" json:"batch_id,omitempty"`
	Kind         string          `gorm:"size:20;not null" json:"kind"`
	Quantity     decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity"`
	StockBefore  decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"stock_before"`
	StockAfter   decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"stock_after"`
	Reference    string          `gorm:"size:80;index" json:"reference"`

	CreatedAt time.Time `json:"created_at"`
}
