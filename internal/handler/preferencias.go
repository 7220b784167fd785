package handler

import (
	"net/http"

	"aguaya/internal/dto"
	"aguaya/internal/service"

	"github.com/gin-gonic/gin"
)

type PreferenciasHandler struct{ svc service.PreferenciaService }

func NewPreferenciasHandler(svc service.PreferenciaService) *PreferenciasHandler {
	return &PreferenciasHandler{svc: svc}
}

// Obtener godoc
// @Summary      Preferencia de pago activa del cliente
// @Tags         preferencias
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "UUID del cliente"
// @Success      200 {object} dto.PreferenciaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/clientes/{id}/preferencia [get]
func (h *PreferenciasHandler) Obtener(c *gin.Context) {
	clienteID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), clienteID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Guardar godoc
// @Summary      Reemplazar la preferencia de pago
// @Description  Desactiva la preferencia vigente y crea la nueva en la misma transaccion.
// @Tags         preferencias
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                        true "UUID del cliente"
// @Param        body body     dto.GuardarPreferenciaRequest true "Preferencia"
// @Success      201  {object} dto.PreferenciaResponse
// @Router       /v1/clientes/{id}/preferencia [post]
func (h *PreferenciasHandler) Guardar(c *gin.Context) {
	clienteID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.GuardarPreferenciaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Guardar(c.Request.Context(), clienteID, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
