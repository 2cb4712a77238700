package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/money"
)

// Formatos de exportación.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ExportRow fila aplanada de una transacción.
type ExportRow struct {
	TransactionNumber string       `json:"transaction_number"`
	Date              string       `json:"date"`
	Time              string       `json:"time"`
	Items             string       `json:"items"`
	Total             money.Amount `json:"total"`
	PaymentMethod     string       `json:"payment_method"`
	Status            string       `json:"status"`
	Cashier           string       `json:"cashier"`
}

// Document base común de ambos formatos de exportación.
// Summary se calcula sobre las mismas transacciones que generan Rows.
type Document struct {
	Period  Period
	Summary Summary
	Rows    []ExportRow
}

// BuildDocument arma el documento con todas las transacciones del periodo (incluidas las anuladas),
// de la más antigua a la más reciente.
func BuildDocument(p Period, txs []entity.Transaction) Document {
	inPeriod := make([]entity.Transaction, 0, len(txs))
	for _, t := range txs {
		if p.Contains(t.CreatedAt) {
			inPeriod = append(inPeriod, t)
		}
	}
	sort.SliceStable(inPeriod, func(a, b int) bool {
		return inPeriod[a].CreatedAt.Before(inPeriod[b].CreatedAt)
	})

	doc := Document{Period: p, Summary: Summarize(Completed(p, inPeriod))}
	doc.Rows = make([]ExportRow, 0, len(inPeriod))
	for _, t := range inPeriod {
		local := t.CreatedAt.In(p.Loc)
		doc.Rows = append(doc.Rows, ExportRow{
			TransactionNumber: t.Number,
			Date:              local.Format(DateLayout),
			Time:              local.Format("15:04:05"),
			Items:             itemsLabel(t.Lines),
			Total:             t.Total,
			PaymentMethod:     t.PaymentMethod,
			Status:            t.Status,
			Cashier:           t.CashierName,
		})
	}
	return doc
}

func itemsLabel(lines []entity.TransactionLine) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%s x%d", l.Name, l.Qty))
	}
	return strings.Join(parts, ", ")
}

// Filename nombre sugerido para la descarga.
func (d Document) Filename(format string) string {
	return fmt.Sprintf("laporan_%s_to_%s.%s", d.Period.Start.Format(DateLayout), d.Period.End.Format(DateLayout), format)
}

type jsonSummary struct {
	TotalSales        money.Amount `json:"total_sales"`
	TotalTransactions int          `json:"total_transactions"`
	TotalItemsSold    int          `json:"total_items_sold"`
	AvgTransaction    money.Amount `json:"avg_transaction"`
}

type jsonDocument struct {
	Period struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"period"`
	Summary jsonSummary `json:"summary"`
	Data    []ExportRow `json:"data"`
}

// EncodeJSON escribe el documento estructurado.
func EncodeJSON(w io.Writer, d Document) error {
	var out jsonDocument
	out.Period.Start = d.Period.Start.Format(DateLayout)
	out.Period.End = d.Period.End.Format(DateLayout)
	out.Summary = jsonSummary{
		TotalSales:        d.Summary.TotalSales,
		TotalTransactions: d.Summary.TotalTransactions,
		TotalItemsSold:    d.Summary.TotalItemsSold,
		AvgTransaction:    d.Summary.AvgTransaction,
	}
	out.Data = d.Rows
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

var csvHeader = []string{
	"transaction_number", "date", "time", "items", "total", "payment_method", "status", "cashier",
}

// EncodeCSV escribe el documento aplanado: cabecera más una fila por transacción.
func EncodeCSV(w io.Writer, d Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for _, r := range d.Rows {
		rec := []string{
			r.TransactionNumber, r.Date, r.Time, r.Items,
			strconv.FormatInt(int64(r.Total), 10), r.PaymentMethod, r.Status, r.Cashier,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("csv row %s: %w", r.TransactionNumber, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
