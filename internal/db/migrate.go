package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// Models lista as tabelas na ordem de criação.
func Models() []any {
	return []any{
		&models.Service{},
		&models.WeightPriceRule{},
		&models.ServiceSupplyRequirement{},
		&models.ServicePrerequisite{},
		&models.Pet{},
		&models.PetClinicalMarker{},
		&models.Promotion{},
		&models.PromotionTrigger{},
		&models.PromotionBenefit{},
		&models.SupplyItem{},
		&models.Batch{},
		&models.StockMovement{},
		&models.Appointment{},
		&models.LineItem{},
		&models.ScheduleBlock{},
		&models.AuditLog{},
	}
}

// Migrate cria o schema e a restrição de exclusão que impede dois
// agendamentos ativos de ocuparem o mesmo intervalo.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return fmt.Errorf("failed to enable btree_gist: %w", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	for _, stmt := range constraintStatements() {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to apply constraint: %w", err)
		}
	}
	return nil
}

func constraintStatements() []string {
	quoted := make([]string, 0, 4)
	for _, s := range domain.OccupyingStatuses() {
		quoted = append(quoted, "'"+s+"'")
	}

	return []string{
		`ALTER TABLE appointments DROP CONSTRAINT IF EXISTS appointments_no_overlap`,
		fmt.Sprintf(`ALTER TABLE appointments ADD CONSTRAINT appointments_no_overlap
			EXCLUDE USING gist (tstzrange(start_time, end_time, '[)') WITH &&)
			WHERE (status IN (%s))`, strings.Join(quoted, ", ")),
	}
}
