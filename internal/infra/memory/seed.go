package memory

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// ======================================================
// SEED
// ======================================================

func (s *Store) PutService(svc models.Service) models.Service {
	models.EnsureID(&svc.ID)
	for i := range svc.WeightPriceRules {
		models.EnsureID(&svc.WeightPriceRules[i].ID)
		svc.WeightPriceRules[i].ServiceID = svc.ID
	}
	for i := range svc.SupplyRequirements {
		models.EnsureID(&svc.SupplyRequirements[i].ID)
		svc.SupplyRequirements[i].ServiceID = svc.ID
	}
	for i := range svc.Prerequisites {
		models.EnsureID(&svc.Prerequisites[i].ID)
		svc.Prerequisites[i].ServiceID = svc.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.services[svc.ID] = cloneService(svc)
	return svc
}

func (s *Store) PutPet(p models.Pet) models.Pet {
	models.EnsureID(&p.ID)
	for i := range p.Markers {
		models.EnsureID(&p.Markers[i].ID)
		p.Markers[i].PetID = p.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.pets[p.ID] = clonePet(p)
	return p
}

func (s *Store) PutPromotion(p models.Promotion) models.Promotion {
	models.EnsureID(&p.ID)
	for i := range p.Triggers {
		models.EnsureID(&p.Triggers[i].ID)
		p.Triggers[i].PromotionID = p.ID
	}
	for i := range p.Benefits {
		models.EnsureID(&p.Benefits[i].ID)
		p.Benefits[i].PromotionID = p.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.promotions[p.ID] = clonePromotion(p)
	return p
}

// PutSupplyItem grava o insumo e seus lotes. CurrentStock é gravado como veio.
func (s *Store) PutSupplyItem(item models.SupplyItem) models.SupplyItem {
	models.EnsureID(&item.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range item.Batches {
		b := &item.Batches[i]
		models.EnsureID(&b.ID)
		b.SupplyItemID = item.ID
		s.data.batches[b.ID] = *b
	}
	stored := item
	stored.Batches = nil
	s.data.supplies[item.ID] = stored
	return item
}

func (s *Store) PutAppointment(ap models.Appointment) models.Appointment {
	models.EnsureID(&ap.ID)
	for i := range ap.Items {
		models.EnsureID(&ap.Items[i].ID)
		ap.Items[i].AppointmentID = ap.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.appointments[ap.ID] = cloneAppointment(ap)
	return ap
}

// ======================================================
// SNAPSHOTS (estado confirmado)
// ======================================================

func (s *Store) Service(id uuid.UUID) (models.Service, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.data.services[id]
	return cloneService(svc), ok
}

func (s *Store) SupplyItem(id uuid.UUID) (models.SupplyItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.data.supplies[id]
	return item, ok
}

// Batches devolve os lotes confirmados do insumo por validade.
func (s *Store) Batches(supplyItemID uuid.UUID) []models.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Batch
	for _, b := range s.data.batches {
		if b.SupplyItemID == supplyItemID {
			out = append(out, b)
		}
	}
	sortBatches(out)
	return out
}

func (s *Store) Appointment(id uuid.UUID) (models.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ap, ok := s.data.appointments[id]
	return cloneAppointment(ap), ok
}

func (s *Store) Movements() []models.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.StockMovement(nil), s.data.movements...)
}

func sortBatches(bs []models.Batch) {
	sort.SliceStable(bs, func(i, j int) bool {
		if !bs[i].ExpiresAt.Equal(bs[j].ExpiresAt) {
			return bs[i].ExpiresAt.Before(bs[j].ExpiresAt)
		}
		return bs[i].LotCode < bs[j].LotCode
	})
}

func stamp(created, updated *time.Time) {
	now := time.Now()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}
