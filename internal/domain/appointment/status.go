package appointment

import (
	"fmt"

	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusConfirmed      Status = "CONFIRMED"
	StatusInAttention    Status = "IN_ATTENTION"
	StatusFinalized      Status = "FINALIZED"
	StatusCancelled      Status = "CANCELLED"
	StatusNoShow         Status = "NO_SHOW"
)

// transitions é a única fonte de verdade do ciclo de vida.
var transitions = map[Status][]Status{
	StatusPendingPayment: {StatusConfirmed},
	StatusConfirmed:      {StatusInAttention, StatusCancelled, StatusNoShow},
	StatusInAttention:    {StatusFinalized, StatusCancelled},
}

// ===============================
// Validations
// ===============================

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPendingPayment, StatusConfirmed, StatusInAttention,
		StatusFinalized, StatusCancelled, StatusNoShow:
		return st, nil
	}
	return "", httperr.Validation("invalid_status", fmt.Sprintf("Estado desconocido: %q.", s))
}

// CanTransition falha com invalid_transition para qualquer par fora da tabela.
func CanTransition(from, to Status) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return httperr.Conflict(
		"invalid_transition",
		fmt.Sprintf("No se puede pasar de %s a %s.", from, to),
	).With("from", string(from)).With("to", string(to))
}

func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

// Occupies indica se o agendamento segura o horário na agenda.
// Só cancelados e ausências liberam o intervalo.
func Occupies(s Status) bool {
	return s != StatusCancelled && s != StatusNoShow
}

// OccupyingStatuses lista os estados que ocupam a agenda, para filtros de consulta.
func OccupyingStatuses() []string {
	return []string{
		string(StatusPendingPayment),
		string(StatusConfirmed),
		string(StatusInAttention),
		string(StatusFinalized),
	}
}

func InitialStatus() Status {
	return StatusPendingPayment
}

func AllStatuses() []Status {
	return []Status{
		StatusPendingPayment, StatusConfirmed, StatusInAttention,
		StatusFinalized, StatusCancelled, StatusNoShow,
	}
}
