package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/vet-scheduler/internal/middleware"
	ucSchedule "github.com/BruksfildServices01/vet-scheduler/internal/usecase/schedule"
)

// ScheduleHandler administra os bloqueios da agenda (feriados, cirurgias longas).
type ScheduleHandler struct {
	loc    *time.Location
	blocks *ucSchedule.Blocks
}

func NewScheduleHandler(loc *time.Location, blocks *ucSchedule.Blocks) *ScheduleHandler {
	return &ScheduleHandler{loc: loc, blocks: blocks}
}

type CreateBlockRequest struct {
	Start  string `json:"start" binding:"required"`
	End    string `json:"end" binding:"required"`
	Reason string `json:"reason"`
}

func (h *ScheduleHandler) CreateBlock(c *gin.Context) {
	var req CreateBlockRequest
	if err := bindJSON(c, &req); err != nil {
		httperr.Respond(c, err)
		return
	}

	start, err := parseDateTime(req.Start, h.loc)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	end, err := parseDateTime(req.End, h.loc)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	b, err := h.blocks.Create(c.Request.Context(), ucSchedule.CreateBlockInput{
		Actor:  middleware.ActorFrom(c),
		Start:  start,
		End:    end,
		Reason: req.Reason,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, b)
}

// ListBlocks aceita from/to (YYYY-MM-DD, to inclusivo). Sem from, lista a partir de hoje.
func (h *ScheduleHandler) ListBlocks(c *gin.Context) {
	from := time.Now().In(h.loc)
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, h.loc)
	if s := c.Query("from"); s != "" {
		d, err := parseDate(s, h.loc)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		from = d
	}

	to := from.AddDate(0, 0, 30)
	if s := c.Query("to"); s != "" {
		d, err := parseDate(s, h.loc)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		to = d.AddDate(0, 0, 1)
	}

	list, err := h.blocks.List(c.Request.Context(), from, to)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, list)
}

func (h *ScheduleHandler) DeleteBlock(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	if err := h.blocks.Delete(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		httperr.Respond(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
