package infra

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// FilaHistorial is one month of settled vouchers in the payment history export.
type FilaHistorial struct {
	Mes            int
	Anio           int
	Vouchers       int
	Subtotal       decimal.Decimal
	TarifaDelivery decimal.Decimal
	Total          decimal.Decimal
	UltimoPago     time.Time
}

const hojaHistorial = "Historial"

// HistorialXLSX renders the payment history workbook and returns its bytes.
func HistorialXLSX(cliente string, filas []FilaHistorial) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", hojaHistorial); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	_ = f.SetCellValue(hojaHistorial, "A1", "Historial de pagos: "+cliente)
	_ = f.SetCellStyle(hojaHistorial, "A1", "A1", bold)

	headers := []string{"Periodo", "Vouchers", "Subtotal", "Delivery", "Total", "Último pago"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		_ = f.SetCellValue(hojaHistorial, cell, h)
	}
	_ = f.SetCellStyle(hojaHistorial, "A3", "F3", bold)

	for i, fila := range filas {
		row := i + 4
		subtotal, _ := fila.Subtotal.Float64()
		tarifa, _ := fila.TarifaDelivery.Float64()
		total, _ := fila.Total.Float64()
		values := []interface{}{
			fmt.Sprintf("%04d-%02d", fila.Anio, fila.Mes),
			fila.Vouchers,
			subtotal,
			tarifa,
			total,
			fila.UltimoPago.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(hojaHistorial, cell, v); err != nil {
				return nil, err
			}
		}
		from, _ := excelize.CoordinatesToCellName(3, row)
		to, _ := excelize.CoordinatesToCellName(5, row)
		_ = f.SetCellStyle(hojaHistorial, from, to, money)
	}
	_ = f.SetColWidth(hojaHistorial, "A", "F", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
