package handler

import (
	"context"
	"net/http"

	"aguaya/internal/dto"
	"aguaya/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SuscripcionesHandler struct{ svc service.SuscripcionService }

func NewSuscripcionesHandler(svc service.SuscripcionService) *SuscripcionesHandler {
	return &SuscripcionesHandler{svc: svc}
}

func (h *SuscripcionesHandler) CrearPlan(c *gin.Context) {
	var req dto.CrearPlanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearPlan(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SuscripcionesHandler) ListarPlanes(c *gin.Context) {
	resp, err := h.svc.ListarPlanes(c.Request.Context(), c.Query("todos") != "true")
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Suscribir godoc
// @Summary      Suscribir un cliente a un plan
// @Description  Un cliente solo puede tener una suscripcion activa o pausada.
// @Tags         suscripciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.SuscribirRequest true "Suscripcion"
// @Success      201  {object} dto.SuscripcionResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/suscripciones [post]
func (h *SuscripcionesHandler) Suscribir(c *gin.Context) {
	var req dto.SuscribirRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Suscribir(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RegistrarEntrega godoc
// @Summary      Descontar botellas entregadas
// @Tags         suscripciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                      true "UUID de la suscripcion"
// @Param        body body     dto.RegistrarEntregaRequest true "Cantidad"
// @Success      200  {object} dto.SuscripcionResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/suscripciones/{id}/entregas [post]
func (h *SuscripcionesHandler) RegistrarEntrega(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.RegistrarEntregaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarEntrega(c.Request.Context(), id, req.Cantidad)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SuscripcionesHandler) Pausar(c *gin.Context)   { h.cambiarEstado(c, h.svc.Pausar) }
func (h *SuscripcionesHandler) Reanudar(c *gin.Context) { h.cambiarEstado(c, h.svc.Reanudar) }
func (h *SuscripcionesHandler) Cancelar(c *gin.Context) { h.cambiarEstado(c, h.svc.Cancelar) }

func (h *SuscripcionesHandler) cambiarEstado(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*dto.SuscripcionResponse, error)) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := op(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SuscripcionesHandler) ObtenerPorID(c *gin.Context) {
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

func (h *SuscripcionesHandler) ListarPorCliente(c *gin.Context) {
	clienteID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarPorCliente(c.Request.Context(), clienteID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
