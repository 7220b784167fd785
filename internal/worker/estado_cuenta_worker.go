package worker

// estado_cuenta_worker.go: renders the monthly statement PDF after a monthly
// payment commits and, when the client has an email, queues its delivery.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aguaya/internal/infra"
	"aguaya/internal/model"
	"aguaya/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EstadoCuentaJobPayload identifies one settled month of one client.
type EstadoCuentaJobPayload struct {
	ClienteID      string          `json:"cliente_id"`
	Mes            int             `json:"mes"`
	Anio           int             `json:"anio"`
	Desde          time.Time       `json:"desde"`
	Hasta          time.Time       `json:"hasta"`
	TarifaDelivery decimal.Decimal `json:"tarifa_delivery"`
	MetodoPago     string          `json:"metodo_pago"`
	Referencia     string          `json:"referencia"`
	PagadoAt       time.Time       `json:"pagado_at"`
}

// EmailEnqueuer is satisfied by *Dispatcher.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type EstadoCuentaWorker struct {
	clientes    repository.ClienteRepository
	vouchers    repository.VoucherRepository
	emails      EmailEnqueuer
	storagePath string
	negocio     string
}

func NewEstadoCuentaWorker(
	clientes repository.ClienteRepository,
	vouchers repository.VoucherRepository,
	emails EmailEnqueuer,
	storagePath string,
	negocio string,
) *EstadoCuentaWorker {
	return &EstadoCuentaWorker{
		clientes:    clientes,
		vouchers:    vouchers,
		emails:      emails,
		storagePath: storagePath,
		negocio:     negocio,
	}
}

// Process handles one statement job:
//  1. Load the client and the vouchers paid in the window
//  2. Render the PDF (fpdf)
//  3. Queue the email when the client has an address
func (w *EstadoCuentaWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var p EstadoCuentaJobPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("estado_cuenta_worker: invalid payload: %v: %w", err, ErrPermanent)
	}
	clienteID, err := uuid.Parse(p.ClienteID)
	if err != nil {
		return fmt.Errorf("estado_cuenta_worker: cliente_id %q: %w", p.ClienteID, ErrPermanent)
	}

	cliente, err := w.clientes.FindByID(ctx, nil, clienteID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("estado_cuenta_worker: cliente %s no existe: %w", p.ClienteID, ErrPermanent)
	}
	if err != nil {
		return err
	}

	vouchers, err := w.vouchers.ListEnVentana(ctx, nil, clienteID, p.Desde, p.Hasta, model.VoucherPagado, false)
	if err != nil {
		return err
	}

	ec := infra.EstadoCuenta{
		Negocio:        w.negocio,
		ClienteNombre:  cliente.Nombre,
		Documento:      cliente.Documento,
		Distrito:       cliente.Distrito,
		Mes:            p.Mes,
		Anio:           p.Anio,
		TarifaDelivery: p.TarifaDelivery,
		MetodoPago:     p.MetodoPago,
		Referencia:     p.Referencia,
		PagadoAt:       p.PagadoAt,
	}
	for _, v := range vouchers {
		ec.Lineas = append(ec.Lineas, infra.LineaEstadoCuenta{
			Fecha:      v.CreatedAt,
			ProductoID: v.ProductoID,
			Cantidad:   v.Cantidad,
			Precio:     v.PrecioUnitario,
			Total:      v.Total,
		})
		ec.Subtotal = ec.Subtotal.Add(v.Total)
	}
	ec.Total = ec.Subtotal.Add(ec.TarifaDelivery)

	pdfPath, err := infra.GenerateEstadoCuentaPDF(ec, w.storagePath)
	if err != nil {
		return err
	}
	log.Info().Str("cliente_id", p.ClienteID).Str("pdf", pdfPath).Msg("estado_cuenta_worker: PDF generado")

	if cliente.Email == nil || *cliente.Email == "" {
		return nil
	}
	return w.emails.EnqueueEmail(ctx, EmailJobPayload{
		ToEmail: *cliente.Email,
		Subject: fmt.Sprintf("%s: estado de cuenta %02d/%04d", w.negocio, p.Mes, p.Anio),
		Body: fmt.Sprintf("Hola %s,\n\nAdjuntamos el estado de cuenta del periodo %02d/%04d por S/ %s.\n\nGracias por su preferencia.",
			cliente.Nombre, p.Mes, p.Anio, ec.Total.StringFixed(2)),
		PDFPath: pdfPath,
	})
}
