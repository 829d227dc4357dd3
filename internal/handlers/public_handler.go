package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/httpresp"
	ucAppointment "github.com/BruksfildServices01/vet-scheduler/internal/usecase/appointment"
	ucCatalog "github.com/BruksfildServices01/vet-scheduler/internal/usecase/catalog"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler atende as consultas sem autenticação: horários, slots e catálogo.
type PublicHandler struct {
	schedule     calendar.Schedule
	availability *ucAppointment.GetAvailability
	services     *ucCatalog.ListOfferableServices
}

func NewPublicHandler(
	schedule calendar.Schedule,
	availability *ucAppointment.GetAvailability,
	services *ucCatalog.ListOfferableServices,
) *PublicHandler {
	return &PublicHandler{
		schedule:     schedule,
		availability: availability,
		services:     services,
	}
}

////////////////////////////////////////////////////////
// CLINIC HOURS
////////////////////////////////////////////////////////

func (h *PublicHandler) ClinicHours(c *gin.Context) {
	httpresp.OK(c, gin.H{
		"timezone":            h.schedule.Location().String(),
		"granularity_minutes": int(h.schedule.Granularity().Minutes()),
		"hours":               h.schedule.Hours(),
	})
}

////////////////////////////////////////////////////////
// SLOTS
////////////////////////////////////////////////////////

func (h *PublicHandler) Slots(c *gin.Context) {
	date, err := parseDate(c.Query("date"), h.schedule.Location())
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	duration, err := strconv.Atoi(c.Query("duration"))
	if err != nil {
		httperr.Write(c, http.StatusBadRequest, "invalid_duration", "Duración inválida (minutos).")
		return
	}

	slots, err := h.availability.Execute(c.Request.Context(), domain.AvailabilityInput{
		Date:        date,
		DurationMin: duration,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, slots)
}

////////////////////////////////////////////////////////
// SERVICES
////////////////////////////////////////////////////////

func (h *PublicHandler) Services(c *gin.Context) {
	species := strings.TrimSpace(strings.ToLower(c.Query("species")))

	services, err := h.services.Execute(c.Request.Context(), species)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, services)
}
