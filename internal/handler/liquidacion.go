package handler

import (
	"fmt"
	"net/http"

	"aguaya/internal/dto"
	"aguaya/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type LiquidacionHandler struct{ svc service.LiquidacionService }

func NewLiquidacionHandler(svc service.LiquidacionService) *LiquidacionHandler {
	return &LiquidacionHandler{svc: svc}
}

// ResumenMensual godoc
// @Summary      Resumen mensual de vouchers
// @Description  Agrupa los vouchers del mes por estado y suma la tarifa de delivery del distrito.
// @Tags         liquidacion
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string true  "UUID del cliente"
// @Param        mes  query int    false "Mes (1-12), por defecto el actual"
// @Param        anio query int    false "Anio, por defecto el actual"
// @Success      200  {object} dto.ResumenMensualResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/clientes/{id}/resumen-mensual [get]
func (h *LiquidacionHandler) ResumenMensual(c *gin.Context) {
	clienteID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var q dto.PeriodoQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.ResumenMensual(c.Request.Context(), clienteID, q)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProcesarPagoMensual godoc
// @Summary      Pagar el mes de un cliente
// @Description  Marca como pagados todos los vouchers entregados del mes y encola el estado de cuenta.
// @Tags         liquidacion
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ProcesarPagoMensualRequest true "Pago mensual"
// @Success      200  {object} dto.PagoMensualResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/pagos-mensuales [post]
func (h *LiquidacionHandler) ProcesarPagoMensual(c *gin.Context) {
	var req dto.ProcesarPagoMensualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ProcesarPagoMensual(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HistorialPagos godoc
// @Summary      Historial de pagos mensuales
// @Tags         liquidacion
// @Produce      json
// @Security     BearerAuth
// @Param        id     path  string true  "UUID del cliente"
// @Param        limite query int    false "Cantidad de meses"
// @Success      200    {array} dto.PagoMensualHistorial
// @Router       /v1/clientes/{id}/historial-pagos [get]
func (h *LiquidacionHandler) HistorialPagos(c *gin.Context) {
	clienteID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	limite, ok := queryInt(c, "limite", 0)
	if !ok {
		return
	}
	resp, err := h.svc.HistorialPagos(c.Request.Context(), clienteID, limite)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportarHistorial streams the payment history as an xlsx attachment.
func (h *LiquidacionHandler) ExportarHistorial(c *gin.Context) {
	clienteID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	limite, ok := queryInt(c, "limite", 0)
	if !ok {
		return
	}
	data, err := h.svc.ExportarHistorial(c.Request.Context(), clienteID, limite)
	if err != nil {
		responderError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="historial-%s.xlsx"`, clienteID))
	c.Data(http.StatusOK, xlsxContentType, data)
}
