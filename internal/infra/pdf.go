package infra

// pdf.go renders the monthly statement ("estado de cuenta") handed to a client
// after a monthly payment. Layout: business header, client and period block,
// one row per settled voucher, subtotal + delivery fee + total, payment footer.
// The file is written to storagePath/estado_{documento}_{anio}{mes}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// LineaEstadoCuenta is one settled voucher on the statement.
type LineaEstadoCuenta struct {
	Fecha      time.Time
	ProductoID string
	Cantidad   int
	Precio     decimal.Decimal
	Total      decimal.Decimal
}

// EstadoCuenta carries everything the statement prints; no model types leak in here.
type EstadoCuenta struct {
	Negocio        string
	ClienteNombre  string
	Documento      string
	Distrito       string
	Mes            int
	Anio           int
	Lineas         []LineaEstadoCuenta
	Subtotal       decimal.Decimal
	TarifaDelivery decimal.Decimal
	Total          decimal.Decimal
	MetodoPago     string
	Referencia     string
	PagadoAt       time.Time
}

// GenerateEstadoCuentaPDF writes the statement and returns its path.
// storagePath is created if needed.
func GenerateEstadoCuentaPDF(ec EstadoCuenta, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("estado_%s_%04d%02d.pdf", ec.Documento, ec.Anio, ec.Mes)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(ec.Negocio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Estado de cuenta %02d/%04d", ec.Mes, ec.Anio), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Cliente ──────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 5, tr(ec.ClienteNombre), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Documento: "+ec.Documento, "", 1, "L", false, 0, "")
	if ec.Distrito != "" {
		pdf.CellFormat(contentW, 5, tr("Distrito: "+ec.Distrito), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Detalle ──────────────────────────────────────────────────────────────
	colFecha := contentW * 0.20
	colProd := contentW * 0.35
	colCant := contentW * 0.12
	colPrecio := contentW * 0.16
	colTotal := contentW * 0.17

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(colFecha, 6, "Fecha", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colProd, 6, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colCant, 6, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(colPrecio, 6, "P. unit", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 6, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, l := range ec.Lineas {
		pdf.CellFormat(colFecha, 5, l.Fecha.Format("02/01/2006"), "", 0, "L", false, 0, "")
		pdf.CellFormat(colProd, 5, tr(l.ProductoID), "", 0, "L", false, 0, "")
		pdf.CellFormat(colCant, 5, fmt.Sprintf("%d", l.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(colPrecio, 5, "S/ "+l.Precio.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, 5, "S/ "+l.Total.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totales ──────────────────────────────────────────────────────────────
	labelW := contentW - colTotal
	pdf.CellFormat(labelW, 5, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 5, "S/ "+ec.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(labelW, 5, "Delivery:", "", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 5, "S/ "+ec.TarifaDelivery.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelW, 7, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 7, "S/ "+ec.Total.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Pago ─────────────────────────────────────────────────────────────────
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 8)
	pago := fmt.Sprintf("Pagado el %s vía %s", ec.PagadoAt.Format("02/01/2006 15:04"), ec.MetodoPago)
	if ec.Referencia != "" {
		pago += " (ref. " + ec.Referencia + ")"
	}
	pdf.CellFormat(contentW, 4, tr(pago), "", 1, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
