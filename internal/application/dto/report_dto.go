package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/aikasir-api/internal/domain/money"
	"github.com/jhoicas/aikasir-api/internal/domain/report"
)

// ReportQuery rango de fechas inclusivo (YYYY-MM-DD). Vacío = hoy.
type ReportQuery struct {
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
	Format    string `query:"format" validate:"omitempty,oneof=json csv"`
}

// PeriodResponse periodo del reporte.
type PeriodResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// SummaryResponse totales de ventas completadas.
type SummaryResponse struct {
	TotalSales          money.Amount `json:"total_sales"`
	TotalSalesFormatted string       `json:"total_sales_formatted"`
	TotalTransactions   int          `json:"total_transactions"`
	TotalItemsSold      int          `json:"total_items_sold"`
	AvgTransaction      money.Amount `json:"avg_transaction"`
}

// PaymentBreakdownResponse desglose por método.
type PaymentBreakdownResponse struct {
	Method string          `json:"method"`
	Count  int             `json:"count"`
	Amount money.Amount    `json:"amount"`
	Share  decimal.Decimal `json:"share"`
}

// TopItemResponse ítem más vendido.
type TopItemResponse struct {
	ItemID  string       `json:"item_id"`
	Name    string       `json:"name"`
	Qty     int          `json:"qty"`
	Revenue money.Amount `json:"revenue"`
}

// DailySalesResponse punto de la serie diaria.
type DailySalesResponse struct {
	Date         string       `json:"date"`
	Transactions int          `json:"transactions"`
	Amount       money.Amount `json:"amount"`
}

// ReportSummaryResponse reporte del periodo.
type ReportSummaryResponse struct {
	Period           PeriodResponse             `json:"period"`
	Summary          SummaryResponse            `json:"summary"`
	PaymentBreakdown []PaymentBreakdownResponse `json:"payment_breakdown"`
	TopItems         []TopItemResponse          `json:"top_items"`
	DailySales       []DailySalesResponse       `json:"daily_sales"`
}

// DailySummaryResponse cierre del día.
type DailySummaryResponse struct {
	TotalSales          money.Amount `json:"total_sales"`
	TotalSalesFormatted string       `json:"total_sales_formatted"`
	TotalTransactions   int          `json:"total_transactions"`
	TotalVoided         int          `json:"total_voided"`
	VoidedAmount        money.Amount `json:"voided_amount"`
}

// DailyReportResponse reporte de un día con sus transacciones.
type DailyReportResponse struct {
	Date         string                `json:"date"`
	Summary      DailySummaryResponse  `json:"summary"`
	Transactions []TransactionResponse `json:"transactions"`
}

// DashboardResponse resumen del día para el tablero.
type DashboardResponse struct {
	Date                string            `json:"date"`
	TotalSales          money.Amount      `json:"total_sales"`
	TotalSalesFormatted string            `json:"total_sales_formatted"`
	TotalTransactions   int               `json:"total_transactions"`
	TotalItemsSold      int               `json:"total_items_sold"`
	AvgTransaction      money.Amount      `json:"avg_transaction"`
	TopItems            []TopItemResponse `json:"top_items"`
	LowStockCount       int               `json:"low_stock_count"`
	OutOfStockCount     int               `json:"out_of_stock_count"`
}

// ExportResponse documento estructurado de exportación (mismo formato que report.EncodeJSON).
type ExportResponse struct {
	Period struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"period"`
	Summary struct {
		TotalSales        money.Amount `json:"total_sales"`
		TotalTransactions int          `json:"total_transactions"`
		TotalItemsSold    int          `json:"total_items_sold"`
		AvgTransaction    money.Amount `json:"avg_transaction"`
	} `json:"summary"`
	Data []report.ExportRow `json:"data"`
}

// ToSummaryResponse mapea el resumen.
func ToSummaryResponse(s report.Summary) SummaryResponse {
	return SummaryResponse{
		TotalSales:          s.TotalSales,
		TotalSalesFormatted: money.Format(s.TotalSales),
		TotalTransactions:   s.TotalTransactions,
		TotalItemsSold:      s.TotalItemsSold,
		AvgTransaction:      s.AvgTransaction,
	}
}

// ToTopItems mapea los más vendidos.
func ToTopItems(items []report.TopItem) []TopItemResponse {
	out := make([]TopItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, TopItemResponse{ItemID: it.ItemID, Name: it.Name, Qty: it.Qty, Revenue: it.Revenue})
	}
	return out
}

// ToReportSummary mapea el reporte completo.
func ToReportSummary(r *report.Report) ReportSummaryResponse {
	out := ReportSummaryResponse{
		Period: PeriodResponse{
			StartDate: r.Period.Start.Format(report.DateLayout),
			EndDate:   r.Period.End.Format(report.DateLayout),
		},
		Summary:          ToSummaryResponse(r.Summary),
		PaymentBreakdown: make([]PaymentBreakdownResponse, 0, len(r.PaymentBreakdown)),
		TopItems:         ToTopItems(r.TopItems),
		DailySales:       make([]DailySalesResponse, 0, len(r.DailySales)),
	}
	for _, b := range r.PaymentBreakdown {
		out.PaymentBreakdown = append(out.PaymentBreakdown, PaymentBreakdownResponse{Method: b.Method, Count: b.Count, Amount: b.Amount, Share: b.Share})
	}
	for _, d := range r.DailySales {
		out.DailySales = append(out.DailySales, DailySalesResponse{Date: d.Date, Transactions: d.Transactions, Amount: d.Amount})
	}
	return out
}

// FromReportSummary reconstruye el reporte (cliente remoto). p es el periodo ya validado localmente.
func FromReportSummary(r ReportSummaryResponse, p report.Period) *report.Report {
	out := &report.Report{
		Period: p,
		Summary: report.Summary{
			TotalSales:        r.Summary.TotalSales,
			TotalTransactions: r.Summary.TotalTransactions,
			TotalItemsSold:    r.Summary.TotalItemsSold,
			AvgTransaction:    r.Summary.AvgTransaction,
		},
	}
	for _, b := range r.PaymentBreakdown {
		out.PaymentBreakdown = append(out.PaymentBreakdown, report.MethodStat{Method: b.Method, Count: b.Count, Amount: b.Amount, Share: b.Share})
	}
	for _, it := range r.TopItems {
		out.TopItems = append(out.TopItems, report.TopItem{ItemID: it.ItemID, Name: it.Name, Qty: it.Qty, Revenue: it.Revenue})
	}
	for _, d := range r.DailySales {
		out.DailySales = append(out.DailySales, report.DaySales{Date: d.Date, Transactions: d.Transactions, Amount: d.Amount})
	}
	return out
}

// ToDailyReport mapea el cierre del día.
func ToDailyReport(d *report.DayReport) DailyReportResponse {
	out := DailyReportResponse{
		Date: d.Date,
		Summary: DailySummaryResponse{
			TotalSales:          d.TotalSales,
			TotalSalesFormatted: money.Format(d.TotalSales),
			TotalTransactions:   d.TotalTransactions,
			TotalVoided:         d.TotalVoided,
			VoidedAmount:        d.VoidedAmount,
		},
		Transactions: make([]TransactionResponse, 0, len(d.Transactions)),
	}
	for i := range d.Transactions {
		out.Transactions = append(out.Transactions, ToTransactionResponse(&d.Transactions[i]))
	}
	return out
}

// FromDailyReport reconstruye el cierre del día (cliente remoto).
func FromDailyReport(r DailyReportResponse, tenantID string) *report.DayReport {
	out := &report.DayReport{
		Date:              r.Date,
		TotalSales:        r.Summary.TotalSales,
		TotalTransactions: r.Summary.TotalTransactions,
		TotalVoided:       r.Summary.TotalVoided,
		VoidedAmount:      r.Summary.VoidedAmount,
	}
	for _, t := range r.Transactions {
		out.Transactions = append(out.Transactions, FromTransactionResponse(t, tenantID))
	}
	return out
}

// ToDashboard mapea el tablero del día.
func ToDashboard(d *report.Dashboard) DashboardResponse {
	return DashboardResponse{
		Date:                d.Date,
		TotalSales:          d.Summary.TotalSales,
		TotalSalesFormatted: money.Format(d.Summary.TotalSales),
		TotalTransactions:   d.Summary.TotalTransactions,
		TotalItemsSold:      d.Summary.TotalItemsSold,
		AvgTransaction:      d.Summary.AvgTransaction,
		TopItems:            ToTopItems(d.TopItems),
		LowStockCount:       d.LowStockCount,
		OutOfStockCount:     d.OutOfStockCount,
	}
}

// FromDashboard reconstruye el tablero (cliente remoto).
func FromDashboard(r DashboardResponse) *report.Dashboard {
	out := &report.Dashboard{
		Date: r.Date,
		Summary: report.Summary{
			TotalSales:        r.TotalSales,
			TotalTransactions: r.TotalTransactions,
			TotalItemsSold:    r.TotalItemsSold,
			AvgTransaction:    r.AvgTransaction,
		},
		LowStockCount:   r.LowStockCount,
		OutOfStockCount: r.OutOfStockCount,
	}
	for _, it := range r.TopItems {
		out.TopItems = append(out.TopItems, report.TopItem{ItemID: it.ItemID, Name: it.Name, Qty: it.Qty, Revenue: it.Revenue})
	}
	return out
}

// FromExportResponse reconstruye el documento de exportación (cliente remoto).
func FromExportResponse(r ExportResponse, p report.Period) report.Document {
	return report.Document{
		Period: p,
		Summary: report.Summary{
			TotalSales:        r.Summary.TotalSales,
			TotalTransactions: r.Summary.TotalTransactions,
			TotalItemsSold:    r.Summary.TotalItemsSold,
			AvgTransaction:    r.Summary.AvgTransaction,
		},
		Rows: r.Data,
	}
}
