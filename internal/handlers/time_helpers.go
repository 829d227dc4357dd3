package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/timezone"
)

// parseDate lê YYYY-MM-DD no fuso da clínica.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, httperr.Validation("invalid_date", "Fecha requerida (YYYY-MM-DD).")
	}
	d, err := timezone.ParseDate(s, loc)
	if err != nil {
		return time.Time{}, httperr.Validation("invalid_date", "Fecha inválida (YYYY-MM-DD).").With("date", s)
	}
	return d, nil
}

func parseDateTime(s string, loc *time.Location) (time.Time, error) {
	t, err := timezone.ParseDateTime(s, loc)
	if err != nil {
		return time.Time{}, httperr.Validation("invalid_time", "Fecha y hora inválidas.").With("value", s)
	}
	return t, nil
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, httperr.Validation("invalid_request", "Identificador inválido.").With("param", name)
	}
	return id, nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return httperr.Validation("invalid_request", "Datos inválidos.")
	}
	return nil
}
