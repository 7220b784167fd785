package handler

import (
	"net/http"

	"aguaya/internal/service"

	"github.com/gin-gonic/gin"
)

type AlertasHandler struct{ svc service.AlertaService }

func NewAlertasHandler(svc service.AlertaService) *AlertasHandler { return &AlertasHandler{svc: svc} }

// AlertasAdmin godoc
// @Summary      Alertas del panel de administracion
// @Description  Vales por vencer o vencidos, preferencias por vencer y el resumen de saldo activo.
// @Tags         alertas
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.AlertasAdminResponse
// @Router       /v1/admin/alertas [get]
func (h *AlertasHandler) AlertasAdmin(c *gin.Context) {
	resp, err := h.svc.AlertasAdmin(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
