package handler

import (
	"net/http"

	"aguaya/internal/dto"
	"aguaya/internal/service"

	"github.com/gin-gonic/gin"
)

type ValesHandler struct{ svc service.ValeService }

func NewValesHandler(svc service.ValeService) *ValesHandler { return &ValesHandler{svc: svc} }

// Crear godoc
// @Summary      Emitir un vale
// @Description  Crea un vale de credito activo; monto_restante se deriva de monto.
// @Tags         vales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearValeRequest true "Datos del vale"
// @Success      201  {object} dto.ValeResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/vales [post]
func (h *ValesHandler) Crear(c *gin.Context) {
	var req dto.CrearValeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Actualizar godoc
// @Summary      Actualizar vale
// @Description  Aplica solo los campos presentes. El saldo se recalcula en el servidor.
// @Tags         vales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                    true "UUID del vale"
// @Param        body body     dto.ActualizarValeRequest true "Cambios"
// @Success      200  {object} dto.ValeResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/vales/{id} [put]
func (h *ValesHandler) Actualizar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarValeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Usar godoc
// @Summary      Consumir saldo de un vale
// @Tags         vales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string              true "UUID del vale"
// @Param        body body     dto.UsarValeRequest true "Monto a consumir"
// @Success      200  {object} dto.ValeResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/vales/{id}/usar [post]
func (h *ValesHandler) Usar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UsarValeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Usar(c.Request.Context(), id, req.Monto)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProcesarPago godoc
// @Summary      Liquidar todos los vales activos de un cliente
// @Description  Todo o nada: el pago debe cubrir el saldo total. Devuelve el vuelto.
// @Tags         vales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ProcesarPagoValesRequest true "Pago"
// @Success      200  {object} dto.ProcesarPagoValesResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/vales/pago [post]
func (h *ValesHandler) ProcesarPago(c *gin.Context) {
	var req dto.ProcesarPagoValesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ProcesarPago(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResumenPago godoc
// @Summary      Vista previa del pago de vales
// @Tags         vales
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "UUID del cliente"
// @Success      200 {object} dto.ResumenPagoValesResponse
// @Router       /v1/clientes/{id}/vales/resumen-pago [get]
func (h *ValesHandler) ResumenPago(c *gin.Context) {
	clienteID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ResumenPago(c.Request.Context(), clienteID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Estadisticas godoc
// @Summary      Totales de vales por estado
// @Tags         vales
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.EstadisticasValesResponse
// @Router       /v1/vales/estadisticas [get]
func (h *ValesHandler) Estadisticas(c *gin.Context) {
	resp, err := h.svc.Estadisticas(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ValesHandler) ObtenerPorID(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarPorCliente accepts an optional ?estado= filter.
func (h *ValesHandler) ListarPorCliente(c *gin.Context) {
	clienteID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarPorCliente(c.Request.Context(), clienteID, c.Query("estado"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
