package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/vet-scheduler/internal/domain"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// --------------------------------------------------
// Pet
// --------------------------------------------------

func (t *gormTx) GetPet(
	ctx context.Context,
	id uuid.UUID,
) (*models.Pet, error) {

	var pet models.Pet
	if err := t.conn(ctx).
		Preload("Markers").
		First(&pet, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &pet, nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (t *gormTx) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return t.conn(ctx).Create(ap).Error
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (t *gormTx) GetAppointment(
	ctx context.Context,
	id uuid.UUID,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := t.conn(ctx).
		Preload("Items", orderedItems).
		First(&ap, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ap, nil
}

// UpdateAppointment grava só se a versão lida ainda é a atual.
func (t *gormTx) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {

	now := time.Now()
	res := t.conn(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND version = ?", ap.ID, ap.Version).
		Updates(map[string]any{
			"status":            ap.Status,
			"final_price":       ap.FinalPrice,
			"paid_amount":       ap.PaidAmount,
			"payment_reference": ap.PaymentReference,
			"cancel_reason":     ap.CancelReason,
			"confirmed_at":      ap.ConfirmedAt,
			"started_at":        ap.StartedAt,
			"finalized_at":      ap.FinalizedAt,
			"cancelled_at":      ap.CancelledAt,
			"version":           ap.Version + 1,
			"updated_at":        now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ConcurrentModification("appointment")
	}

	ap.Version++
	ap.UpdatedAt = now

	for i := range ap.Items {
		it := &ap.Items[i]
		if err := t.conn(ctx).
			Model(&models.LineItem{}).
			Where("id = ?", it.ID).
			Updates(map[string]any{
				"status":         it.Status,
				"cancel_reason":  it.CancelReason,
				"stock_consumed": it.StockConsumed,
			}).Error; err != nil {
			return err
		}
	}

	return nil
}

// --------------------------------------------------
// Listing
// --------------------------------------------------

func (t *gormTx) ListAppointmentsForPeriod(
	ctx context.Context,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var list []models.Appointment
	if err := t.conn(ctx).
		Preload("Items", orderedItems).
		Where("start_time < ? AND end_time > ?", end, start).
		Order("start_time ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (t *gormTx) ListAppointmentsByTutor(
	ctx context.Context,
	tutorID uuid.UUID,
) ([]models.Appointment, error) {

	var list []models.Appointment
	if err := t.conn(ctx).
		Preload("Items", orderedItems).
		Where("tutor_id = ?", tutorID).
		Order("start_time DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
