// Package domain holds the types shared by every bounded area of the clinic.
package domain

import (
	"errors"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
)

// ErrNotFound é devolvido pelos stores quando o registro não existe.
var ErrNotFound = errors.New("record not found")

const (
	RoleTutor = "tutor"
	RoleStaff = "staff"
)

// Actor é quem dispara uma operação: o tutor dono das mascotas ou alguém da equipe.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

func (a Actor) IsStaff() bool { return a.Role == RoleStaff }

// IDPtr devolve nil para o uuid zero.
func (a Actor) IDPtr() *uuid.UUID {
	if a.UserID == uuid.Nil {
		return nil
	}
	id := a.UserID
	return &id
}

// ConcurrentModification é devolvido quando uma gravação com versão perde a corrida.
func ConcurrentModification(entity string) error {
	return httperr.Conflict(
		"concurrent_modification",
		"El registro fue modificado por otra operación. Intente nuevamente.",
	).With("entity", entity)
}
