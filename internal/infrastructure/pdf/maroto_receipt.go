// Package pdf implementa el comprobante imprimible (struk) de una venta.
//
// Layout de rollo de 80 mm:
//
//	┌──────────────────────────────┐
//	│  Nombre del negocio          │
//	│  Dirección / Tel             │
//	│  ──────────────────────────  │
//	│  N° transacción + fecha      │
//	│  Kasir                       │
//	│  ──────────────────────────  │
//	│  Ítem x qty      Subtotal    │
//	│  ──────────────────────────  │
//	│  TOTAL / Bayar / Kembali     │
//	│  QR con el N° transacción    │
//	└──────────────────────────────┘
package pdf

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/aikasir-api/internal/application/terminal"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/money"
)

const (
	receiptWidth  = 80.0
	receiptHeight = 200.0
)

var (
	colorGray = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed  = &props.Color{Red: 180, Green: 30, Blue: 30}
)

var _ terminal.ReceiptRenderer = (*MarotoReceiptRenderer)(nil)

// MarotoReceiptRenderer implementa terminal.ReceiptRenderer usando Maroto v2.
type MarotoReceiptRenderer struct {
	loc *time.Location
}

// NewMarotoReceiptRenderer construye el renderer; loc es la zona horaria de la tienda.
func NewMarotoReceiptRenderer(loc *time.Location) *MarotoReceiptRenderer {
	if loc == nil {
		loc = time.UTC
	}
	return &MarotoReceiptRenderer{loc: loc}
}

// Render genera el PDF del comprobante y devuelve sus bytes.
func (r *MarotoReceiptRenderer) Render(t *entity.Transaction, tenant *entity.Tenant) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("pdf: transacción nil")
	}
	businessName := "Toko"
	if tenant != nil && tenant.Name != "" {
		businessName = tenant.Name
	}

	cfg := config.NewBuilder().
		WithDimensions(receiptWidth, receiptHeight).
		WithLeftMargin(4).WithRightMargin(4).
		WithTopMargin(4).WithBottomMargin(4).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Struk "+t.Number, true).
		WithAuthor(businessName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRows(businessName, tenant)...)
	m.AddRows(line.NewRow(2, props.Line{Color: colorGray, Thickness: 0.2}))
	m.AddRows(metaRows(t, r.loc)...)
	m.AddRows(line.NewRow(2, props.Line{Color: colorGray, Thickness: 0.2}))
	m.AddRows(lineRows(t.Lines)...)
	m.AddRows(line.NewRow(2, props.Line{Color: colorGray, Thickness: 0.2}))
	m.AddRows(totalRows(t)...)
	m.AddRows(footerRows(t)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar struk %s: %w", t.Number, err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRows(name string, tenant *entity.Tenant) []core.Row {
	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(text.New(name, props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Center, Top: 1,
		}))),
	}
	if tenant == nil {
		return rows
	}
	if tenant.Address != "" {
		rows = append(rows, row.New(4).Add(col.New(12).Add(text.New(tenant.Address, props.Text{
			Size: 7, Align: align.Center, Color: colorGray,
		}))))
	}
	if tenant.Phone != "" {
		rows = append(rows, row.New(4).Add(col.New(12).Add(text.New("Telp. "+tenant.Phone, props.Text{
			Size: 7, Align: align.Center, Color: colorGray,
		}))))
	}
	return rows
}

func metaRows(t *entity.Transaction, loc *time.Location) []core.Row {
	kv := func(k, v string) core.Row {
		return row.New(4).Add(
			col.New(4).Add(text.New(k, props.Text{Size: 7, Color: colorGray})),
			col.New(8).Add(text.New(v, props.Text{Size: 7, Align: align.Right})),
		)
	}
	rows := []core.Row{
		kv("No.", t.Number),
		kv("Tanggal", t.CreatedAt.In(loc).Format("02/01/2006 15:04")),
		kv("Kasir", t.CashierName),
	}
	if t.IsVoided() {
		rows = append(rows, row.New(6).Add(col.New(12).Add(text.New("DIBATALKAN", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Center, Color: colorRed, Top: 1,
		}))))
	}
	return rows
}

// lineRows: nombre en una fila, "qty x precio" y subtotal en la siguiente.
func lineRows(lines []entity.TransactionLine) []core.Row {
	rows := make([]core.Row, 0, len(lines)*2)
	for _, l := range lines {
		rows = append(rows,
			row.New(4).Add(col.New(12).Add(text.New(l.Name, props.Text{Size: 8}))),
			row.New(4).Add(
				col.New(6).Add(text.New(fmt.Sprintf("%d x %s", l.Qty, money.Format(l.Price)), props.Text{Size: 7, Color: colorGray, Left: 2})),
				col.New(6).Add(text.New(money.Format(l.Subtotal), props.Text{Size: 8, Align: align.Right})),
			),
		)
	}
	return rows
}

func totalRows(t *entity.Transaction) []core.Row {
	kv := func(k, v string, bold bool) core.Row {
		style, size := fontstyle.Normal, 8.0
		if bold {
			style, size = fontstyle.Bold, 10
		}
		return row.New(5).Add(
			col.New(5).Add(text.New(k, props.Text{Style: style, Size: size})),
			col.New(7).Add(text.New(v, props.Text{Style: style, Size: size, Align: align.Right})),
		)
	}
	rows := []core.Row{
		kv("TOTAL", money.Format(t.Total), true),
		kv("Bayar ("+methodLabel(t.PaymentMethod)+")", money.Format(t.PaymentAmount), false),
	}
	if t.PaymentMethod == entity.PaymentCash {
		rows = append(rows, kv("Kembali", money.Format(t.Change), false))
	}
	if t.PaymentReference != "" {
		rows = append(rows, kv("Ref.", t.PaymentReference, false))
	}
	return rows
}

func footerRows(t *entity.Transaction) []core.Row {
	return []core.Row{
		row.New(3),
		row.New(28).Add(
			col.New(3),
			col.New(6).Add(code.NewQr(t.Number, props.Rect{Percent: 95, Center: true})),
			col.New(3),
		),
		row.New(6).Add(col.New(12).Add(text.New("Terima kasih atas kunjungan Anda", props.Text{
			Size: 7, Align: align.Center, Color: colorGray, Top: 2,
		}))),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func methodLabel(m string) string {
	switch m {
	case entity.PaymentCash:
		return "Tunai"
	case entity.PaymentQRIS:
		return "QRIS"
	case entity.PaymentTransfer:
		return "Transfer"
	default:
		return m
	}
}
