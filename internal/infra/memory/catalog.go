package memory

import (
	"bytes"
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/vet-scheduler/internal/domain"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// serviceView aplica ao serviço confirmado o que a transação já alterou.
func (t *tx) serviceView(svc models.Service) models.Service {
	c := cloneService(svc)
	if stock, ok := t.serviceStock[svc.ID]; ok {
		v := stock
		c.Stock = &v
	}
	if edges, ok := t.prereqs[svc.ID]; ok {
		c.Prerequisites = append([]models.ServicePrerequisite(nil), edges...)
	}
	return c
}

func (t *tx) GetService(_ context.Context, id uuid.UUID) (*models.Service, error) {
	t.s.mu.Lock()
	svc, ok := t.s.data.services[id]
	t.s.mu.Unlock()

	if !ok {
		return nil, domain.ErrNotFound
	}
	v := t.serviceView(svc)
	return &v, nil
}

func (t *tx) ListActiveServices(_ context.Context) ([]models.Service, error) {
	t.s.mu.Lock()
	var out []models.Service
	for _, svc := range t.s.data.services {
		if svc.Active {
			out = append(out, svc)
		}
	}
	t.s.mu.Unlock()

	for i := range out {
		out[i] = t.serviceView(out[i])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (t *tx) ListActivePromotions(_ context.Context) ([]models.Promotion, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	var out []models.Promotion
	for _, p := range t.s.data.promotions {
		if p.Active {
			out = append(out, clonePromotion(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0 })
	return out, nil
}

func (t *tx) ListPrerequisites(_ context.Context) ([]models.ServicePrerequisite, error) {
	t.s.mu.Lock()
	var out []models.ServicePrerequisite
	for id, svc := range t.s.data.services {
		if _, staged := t.prereqs[id]; staged {
			continue
		}
		out = append(out, svc.Prerequisites...)
	}
	t.s.mu.Unlock()

	for _, edges := range t.prereqs {
		out = append(out, edges...)
	}
	return out, nil
}

func (t *tx) ReplacePrerequisites(ctx context.Context, serviceID uuid.UUID, edges []models.ServicePrerequisite) error {
	if _, err := t.GetService(ctx, serviceID); err != nil {
		return err
	}
	staged := make([]models.ServicePrerequisite, len(edges))
	for i, e := range edges {
		models.EnsureID(&e.ID)
		e.ServiceID = serviceID
		staged[i] = e
	}
	t.prereqs[serviceID] = staged
	return nil
}
