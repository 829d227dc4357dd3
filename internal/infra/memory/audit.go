package memory

import (
	"context"
	"sort"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

var _ audit.Store = (*Store)(nil)

func (s *Store) CreateAuditLog(_ context.Context, l *models.AuditLog) error {
	models.EnsureID(&l.ID)
	stamp(&l.CreatedAt, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.auditLogs = append(s.data.auditLogs, *l)
	return nil
}

// ListAuditLogs devolve os mais recentes primeiro.
func (s *Store) ListAuditLogs(_ context.Context, f audit.Filter) ([]models.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.AuditLog
	for _, l := range s.data.auditLogs {
		if f.Action != "" && l.Action != f.Action {
			continue
		}
		if f.Entity != "" && l.Entity != f.Entity {
			continue
		}
		if f.EntityID != nil && (l.EntityID == nil || *l.EntityID != *f.EntityID) {
			continue
		}
		out = append(out, l)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}
