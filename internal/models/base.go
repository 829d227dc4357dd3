package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ensureID atribui um id novo quando o registro ainda não tem um.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (s *Service) BeforeCreate(*gorm.DB) error                  { ensureID(&s.ID); return nil }
func (r *WeightPriceRule) BeforeCreate(*gorm.DB) error          { ensureID(&r.ID); return nil }
func (r *ServiceSupplyRequirement) BeforeCreate(*gorm.DB) error { ensureID(&r.ID); return nil }
func (p *ServicePrerequisite) BeforeCreate(*gorm.DB) error      { ensureID(&p.ID); return nil }
func (p *Pet) BeforeCreate(*gorm.DB) error                      { ensureID(&p.ID); return nil }
func (m *PetClinicalMarker) BeforeCreate(*gorm.DB) error        { ensureID(&m.ID); return nil }
func (p *Promotion) BeforeCreate(*gorm.DB) error                { ensureID(&p.ID); return nil }
func (t *PromotionTrigger) BeforeCreate(*gorm.DB) error         { ensureID(&t.ID); return nil }
func (b *PromotionBenefit) BeforeCreate(*gorm.DB) error         { ensureID(&b.ID); return nil }
func (s *SupplyItem) BeforeCreate(*gorm.DB) error               { ensureID(&s.ID); return nil }
func (b *Batch) BeforeCreate(*gorm.DB) error                    { ensureID(&b.ID); return nil }
func (m *StockMovement) BeforeCreate(*gorm.DB) error            { ensureID(&m.ID); return nil }
func (a *Appointment) BeforeCreate(*gorm.DB) error              { ensureID(&a.ID); return nil }
func (l *LineItem) BeforeCreate(*gorm.DB) error                 { ensureID(&l.ID); return nil }
func (b *ScheduleBlock) BeforeCreate(*gorm.DB) error            { ensureID(&b.ID); return nil }
func (a *AuditLog) BeforeCreate(*gorm.DB) error                 { ensureID(&a.ID); return nil }

// EnsureID é usado pelos stores que não passam pelos hooks do gorm.
func EnsureID(id *uuid.UUID) { ensureID(id) }
