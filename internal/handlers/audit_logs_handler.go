package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/httpresp"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	logger *audit.Logger
}

func NewAuditLogsHandler(logger *audit.Logger) *AuditLogsHandler {
	return &AuditLogsHandler{logger: logger}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	f := audit.Filter{
		Action: c.Query("action"),
		Entity: c.Query("entity"),
	}

	if s := c.Query("entity_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			httperr.BadRequest(c, "invalid_request", "entity_id inválido.")
			return
		}
		f.EntityID = &id
	}

	// Logger.List limita a 500 e usa 100 como padrão
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))

	logs, err := h.logger.List(c.Request.Context(), f)
	if err != nil {
		httperr.Internal(c, "audit_list_failed", "Error al listar los registros de auditoría.")
		return
	}

	httpresp.List(c, logs)
}
