package handler

import (
	"net/http"

	"aguaya/internal/dto"
	"aguaya/internal/service"

	"github.com/gin-gonic/gin"
)

type VouchersHandler struct{ svc service.VoucherService }

func NewVouchersHandler(svc service.VoucherService) *VouchersHandler {
	return &VouchersHandler{svc: svc}
}

// Crear godoc
// @Summary      Registrar voucher de entrega
// @Description  El total se calcula como precio_unitario * cantidad y el pedido se suma al cliente.
// @Tags         vouchers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearVoucherRequest true "Voucher"
// @Success      201  {object} dto.VoucherResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/vouchers [post]
func (h *VouchersHandler) Crear(c *gin.Context) {
	var req dto.CrearVoucherRequest
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

// ActualizarEstado godoc
// @Summary      Avanzar el estado de un voucher
// @Description  pendiente -> entregado -> pagado. Saltar o retroceder devuelve 409.
// @Tags         vouchers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                             true "UUID del voucher"
// @Param        body body     dto.ActualizarEstadoVoucherRequest true "Nuevo estado"
// @Success      200  {object} dto.VoucherResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/vouchers/{id}/estado [put]
func (h *VouchersHandler) ActualizarEstado(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarEstadoVoucherRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarEstado(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VouchersHandler) ObtenerPorID(c *gin.Context) {
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

func (h *VouchersHandler) ListarPorCliente(c *gin.Context) {
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
