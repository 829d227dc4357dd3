package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

func withRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("WeightPriceRules", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("SupplyRequirements").
		Preload("Prerequisites")
}

func (t *gormTx) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var svc models.Service
	if err := withRecipe(t.conn(ctx)).First(&svc, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &svc, nil
}

func (t *gormTx) ListActiveServices(ctx context.Context) ([]models.Service, error) {
	var list []models.Service
	if err := withRecipe(t.conn(ctx)).
		Where("active = ?", true).
		Order("name ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (t *gormTx) ListActivePromotions(ctx context.Context) ([]models.Promotion, error) {
	var list []models.Promotion
	if err := t.conn(ctx).
		Preload("Triggers").
		Preload("Benefits").
		Where("active = ?", true).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (t *gormTx) ListPrerequisites(ctx context.Context) ([]models.ServicePrerequisite, error) {
	var edges []models.ServicePrerequisite
	if err := t.conn(ctx).Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

func (t *gormTx) ReplacePrerequisites(
	ctx context.Context,
	serviceID uuid.UUID,
	edges []models.ServicePrerequisite,
) error {

	if err := t.conn(ctx).
		Where("service_id = ?", serviceID).
		Delete(&models.ServicePrerequisite{}).Error; err != nil {
		return err
	}
	if len(edges) == 0 {
		return nil
	}

	for i := range edges {
		edges[i].ServiceID = serviceID
	}
	return t.conn(ctx).Create(&edges).Error
}
