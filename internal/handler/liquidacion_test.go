package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"aguaya/internal/apierror"
	"aguaya/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockLiquidacion struct{ mock.Mock }

func (m *mockLiquidacion) ResumenMensual(ctx context.Context, clienteID uuid.UUID, q dto.PeriodoQuery) (*dto.ResumenMensualResponse, error) {
	args := m.Called(ctx, clienteID, q)
	resp, _ := args.Get(0).(*dto.ResumenMensualResponse)
	return resp, args.Error(1)
}

func (m *mockLiquidacion) ProcesarPagoMensual(ctx context.Context, req dto.ProcesarPagoMensualRequest) (*dto.PagoMensualResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.PagoMensualResponse)
	return resp, args.Error(1)
}

func (m *mockLiquidacion) HistorialPagos(ctx context.Context, clienteID uuid.UUID, limite int) ([]dto.PagoMensualHistorial, error) {
	args := m.Called(ctx, clienteID, limite)
	resp, _ := args.Get(0).([]dto.PagoMensualHistorial)
	return resp, args.Error(1)
}

func (m *mockLiquidacion) ExportarHistorial(ctx context.Context, clienteID uuid.UUID, limite int) ([]byte, error) {
	args := m.Called(ctx, clienteID, limite)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func liquidacionEngine(svc *mockLiquidacion) *gin.Engine {
	h := NewLiquidacionHandler(svc)
	r := gin.New()
	r.GET("/clientes/:id/resumen-mensual", h.ResumenMensual)
	r.GET("/clientes/:id/historial-pagos", h.HistorialPagos)
	r.GET("/clientes/:id/historial-pagos/export", h.ExportarHistorial)
	return r
}

func TestResumenMensualBindsPeriodo(t *testing.T) {
	svc := &mockLiquidacion{}
	id := uuid.New()
	svc.On("ResumenMensual", mock.Anything, id, dto.PeriodoQuery{Mes: 2, Anio: 2025}).
		Return(&dto.ResumenMensualResponse{Resumen: dto.ResumenMensual{ClienteID: id.String()}}, nil)

	w := httptest.NewRecorder()
	liquidacionEngine(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clientes/"+id.String()+"/resumen-mensual?mes=2&anio=2025", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestResumenMensualRejectsBadMonth(t *testing.T) {
	svc := &mockLiquidacion{}
	w := httptest.NewRecorder()
	liquidacionEngine(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clientes/"+uuid.NewString()+"/resumen-mensual?mes=0&anio=1999", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ResumenMensual", mock.Anything, mock.Anything, mock.Anything)
}

func TestHistorialPassesLimite(t *testing.T) {
	svc := &mockLiquidacion{}
	id := uuid.New()
	svc.On("HistorialPagos", mock.Anything, id, 3).Return([]dto.PagoMensualHistorial{{Mes: 1, Anio: 2025}}, nil)

	w := httptest.NewRecorder()
	liquidacionEngine(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clientes/"+id.String()+"/historial-pagos?limite=3", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestExportarHistorialWritesAttachment(t *testing.T) {
	svc := &mockLiquidacion{}
	id := uuid.New()
	svc.On("ExportarHistorial", mock.Anything, id, 0).Return([]byte("PK\x03\x04"), nil)

	w := httptest.NewRecorder()
	liquidacionEngine(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clientes/"+id.String()+"/historial-pagos/export", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "historial-"+id.String()+".xlsx")
	assert.Equal(t, "PK\x03\x04", w.Body.String())
}

func TestExportarHistorialClienteInexistente(t *testing.T) {
	svc := &mockLiquidacion{}
	id := uuid.New()
	svc.On("ExportarHistorial", mock.Anything, id, 0).Return(nil, apierror.NotFound("cliente %s no encontrado", id))

	w := httptest.NewRecorder()
	liquidacionEngine(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clientes/"+id.String()+"/historial-pagos/export", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"not_found"`)
}
