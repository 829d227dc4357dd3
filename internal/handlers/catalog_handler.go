package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/vet-scheduler/internal/middleware"
	ucCatalog "github.com/BruksfildServices01/vet-scheduler/internal/usecase/catalog"
)

type CatalogHandler struct {
	prerequisites *ucCatalog.UpdatePrerequisites
}

func NewCatalogHandler(prerequisites *ucCatalog.UpdatePrerequisites) *CatalogHandler {
	return &CatalogHandler{prerequisites: prerequisites}
}

type UpdatePrerequisitesRequest struct {
	Prerequisites []ucCatalog.PrerequisiteInput `json:"prerequisites"`
}

// UpdatePrerequisites substitui a lista inteira; lista vazia remove todas.
func (h *CatalogHandler) UpdatePrerequisites(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	var req UpdatePrerequisitesRequest
	if err := bindJSON(c, &req); err != nil {
		httperr.Respond(c, err)
		return
	}

	edges, err := h.prerequisites.Execute(c.Request.Context(), middleware.ActorFrom(c), id, req.Prerequisites)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, edges)
}
