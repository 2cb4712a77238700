// Package report agrega transacciones en resúmenes, desgloses y series diarias.
// Todas las funciones son puras: reciben las transacciones ya cargadas.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/money"
)

// DateLayout formato de fecha calendario usado en filtros y series.
const DateLayout = "2006-01-02"

// maxPeriodDays límite del rango de un reporte.
const maxPeriodDays = 366

// Period rango inclusivo de fechas calendario en la zona horaria de la tienda.
type Period struct {
	Start time.Time // 00:00 del primer día
	End   time.Time // 00:00 del último día
	Loc   *time.Location
}

// NewPeriod interpreta start/end (YYYY-MM-DD) en loc.
func NewPeriod(start, end string, loc *time.Location) (Period, error) {
	if loc == nil {
		loc = time.UTC
	}
	s, err := time.ParseInLocation(DateLayout, start, loc)
	if err != nil {
		return Period{}, domain.Invalid("Format tanggal awal tidak valid (YYYY-MM-DD)")
	}
	e, err := time.ParseInLocation(DateLayout, end, loc)
	if err != nil {
		return Period{}, domain.Invalid("Format tanggal akhir tidak valid (YYYY-MM-DD)")
	}
	if e.Before(s) {
		return Period{}, domain.Invalid("Tanggal akhir tidak boleh sebelum tanggal awal")
	}
	if e.Sub(s) > maxPeriodDays*24*time.Hour {
		return Period{}, domain.Invalid("Rentang laporan maksimal %d hari", maxPeriodDays)
	}
	return Period{Start: s, End: e, Loc: loc}, nil
}

// Resolve interpreta el rango pedido por el usuario: vacío = el día de now,
// un extremo vacío toma el valor del otro.
func Resolve(start, end string, now time.Time, loc *time.Location) (Period, error) {
	if start == "" && end == "" {
		return DayPeriod(now, loc), nil
	}
	if start == "" {
		start = end
	}
	if end == "" {
		end = start
	}
	return NewPeriod(start, end, loc)
}

// DayPeriod periodo de un único día que contiene t.
func DayPeriod(t time.Time, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return Period{Start: day, End: day, Loc: loc}
}

// From instante inicial (inclusive).
func (p Period) From() time.Time { return p.Start }

// Until instante final (exclusivo): 00:00 del día siguiente al último.
func (p Period) Until() time.Time { return p.End.AddDate(0, 0, 1) }

// Contains indica si t cae dentro del rango.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From()) && t.Before(p.Until())
}

// Days todas las fechas del rango, ascendente.
func (p Period) Days() []string {
	var out []string
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(DateLayout))
	}
	return out
}

// Summary totales de las transacciones completadas.
type Summary struct {
	TotalSales        money.Amount
	TotalTransactions int
	TotalItemsSold    int
	AvgTransaction    money.Amount
}

// MethodStat desglose por método de pago.
type MethodStat struct {
	Method string
	Count  int
	Amount money.Amount
	Share  decimal.Decimal // porcentaje del total de ventas, 2 decimales
}

// TopItem ítem más vendido.
type TopItem struct {
	ItemID  string
	Name    string
	Qty     int
	Revenue money.Amount
}

// DaySales ventas de un día.
type DaySales struct {
	Date         string
	Transactions int
	Amount       money.Amount
}

// Report resultado completo de la agregación.
type Report struct {
	Period           Period
	Summary          Summary
	PaymentBreakdown []MethodStat
	TopItems         []TopItem
	DailySales       []DaySales
}

// Completed filtra las transacciones completadas dentro del periodo.
func Completed(p Period, txs []entity.Transaction) []entity.Transaction {
	out := make([]entity.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Status == entity.TxStatusCompleted && p.Contains(t.CreatedAt) {
			out = append(out, t)
		}
	}
	return out
}

// Summarize calcula el resumen; avg es división entera y 0 si no hay transacciones.
func Summarize(completed []entity.Transaction) Summary {
	var s Summary
	for _, t := range completed {
		s.TotalSales += t.Total
		s.TotalTransactions++
		s.TotalItemsSold += t.ItemCount()
	}
	if s.TotalTransactions > 0 {
		s.AvgTransaction = s.TotalSales / money.Amount(s.TotalTransactions)
	}
	return s
}

var methodOrder = []string{entity.PaymentCash, entity.PaymentQRIS, entity.PaymentTransfer}

// Breakdown agrupa por método de pago. Los tres métodos siempre aparecen, en orden fijo.
func Breakdown(completed []entity.Transaction) []MethodStat {
	stats := map[string]*MethodStat{}
	var total money.Amount
	for _, m := range methodOrder {
		stats[m] = &MethodStat{Method: m}
	}
	order := append([]string(nil), methodOrder...)
	for _, t := range completed {
		st, ok := stats[t.PaymentMethod]
		if !ok {
			st = &MethodStat{Method: t.PaymentMethod}
			stats[t.PaymentMethod] = st
			order = append(order, t.PaymentMethod)
		}
		st.Count++
		st.Amount += t.Total
		total += t.Total
	}
	out := make([]MethodStat, 0, len(order))
	hundred := decimal.NewFromInt(100)
	for _, m := range order {
		st := stats[m]
		st.Share = decimal.Zero
		if total > 0 {
			st.Share = decimal.NewFromInt(int64(st.Amount)).Mul(hundred).Div(decimal.NewFromInt(int64(total))).Round(2)
		}
		out = append(out, *st)
	}
	return out
}

// Top agrupa líneas por item_id; ordena por qty desc, luego ingresos desc, luego primera aparición.
// n ≤ 0 devuelve todos.
func Top(completed []entity.Transaction, n int) []TopItem {
	idx := map[string]int{}
	var items []TopItem
	for _, t := range completed {
		for _, l := range t.Lines {
			i, ok := idx[l.ItemID]
			if !ok {
				i = len(items)
				idx[l.ItemID] = i
				items = append(items, TopItem{ItemID: l.ItemID, Name: l.Name})
			}
			items[i].Qty += l.Qty
			items[i].Revenue += l.Subtotal
		}
	}
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].Qty != items[b].Qty {
			return items[a].Qty > items[b].Qty
		}
		return items[a].Revenue > items[b].Revenue
	})
	if n > 0 && len(items) > n {
		items = items[:n]
	}
	return items
}

// Daily serie por fecha calendario; incluye días sin ventas.
func Daily(p Period, completed []entity.Transaction) []DaySales {
	days := p.Days()
	pos := make(map[string]int, len(days))
	out := make([]DaySales, len(days))
	for i, d := range days {
		pos[d] = i
		out[i] = DaySales{Date: d}
	}
	for _, t := range completed {
		i, ok := pos[t.CreatedAt.In(p.Loc).Format(DateLayout)]
		if !ok {
			continue
		}
		out[i].Transactions++
		out[i].Amount += t.Total
	}
	return out
}

// Aggregate arma el reporte completo del periodo.
func Aggregate(p Period, txs []entity.Transaction, topN int) Report {
	completed := Completed(p, txs)
	return Report{
		Period:           p,
		Summary:          Summarize(completed),
		PaymentBreakdown: Breakdown(completed),
		TopItems:         Top(completed, topN),
		DailySales:       Daily(p, completed),
	}
}

// DayReport cierre del día: completadas frente a anuladas.
type DayReport struct {
	Date              string
	TotalSales        money.Amount
	TotalTransactions int
	TotalVoided       int
	VoidedAmount      money.Amount
	Transactions      []entity.Transaction
}

// DailyClose resume un día incluyendo las anuladas; la lista queda de la más reciente a la más antigua.
func DailyClose(p Period, txs []entity.Transaction) DayReport {
	r := DayReport{Date: p.Start.Format(DateLayout)}
	for _, t := range txs {
		if !p.Contains(t.CreatedAt) {
			continue
		}
		r.Transactions = append(r.Transactions, t)
		switch t.Status {
		case entity.TxStatusCompleted:
			r.TotalSales += t.Total
			r.TotalTransactions++
		case entity.TxStatusVoided:
			r.TotalVoided++
			r.VoidedAmount += t.Total
		}
	}
	sort.SliceStable(r.Transactions, func(a, b int) bool {
		return r.Transactions[a].CreatedAt.After(r.Transactions[b].CreatedAt)
	})
	return r
}

// Dashboard resumen del día para el tablero.
type Dashboard struct {
	Date            string
	Summary         Summary
	TopItems        []TopItem
	LowStockCount   int
	OutOfStockCount int
}
