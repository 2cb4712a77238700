package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jhoicas/aikasir-api/internal/application/dto"
	"github.com/jhoicas/aikasir-api/internal/application/terminal"
	"github.com/jhoicas/aikasir-api/internal/domain/access"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/report"
	"github.com/jhoicas/aikasir-api/internal/domain/stock"
)

// Verificar en tiempo de compilación que Client implementa terminal.Backend.
var _ terminal.Backend = (*Client)(nil)

// ── Auth ─────────────────────────────────────────────────────────────────────

func (c *Client) Login(ctx context.Context, email, password string) (access.Principal, *entity.Tenant, error) {
	var out dto.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", nil, dto.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return access.Principal{}, nil, err
	}
	role, err := access.ParseRole(out.User.Role)
	if err != nil {
		return access.Principal{}, nil, err
	}
	p := access.Principal{
		UserID:   out.User.ID,
		Name:     out.User.Name,
		Email:    out.User.Email,
		TenantID: out.User.TenantID,
		Role:     role,
		Token:    out.Token,
	}
	return p, toTenant(out.Tenant), nil
}

func (c *Client) Tenant(ctx context.Context, p access.Principal) (*entity.Tenant, error) {
	var out dto.MeResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", p.Token, nil, nil, &out); err != nil {
		return nil, err
	}
	return toTenant(out.Tenant), nil
}

func toTenant(t dto.TenantResponse) *entity.Tenant {
	return &entity.Tenant{ID: t.ID, Name: t.Name, Address: t.Address, Phone: t.Phone}
}

func (c *Client) UpdateTenant(ctx context.Context, p access.Principal, in dto.UpdateSettingsRequest) (*entity.Tenant, error) {
	var out dto.TenantResponse
	if err := c.do(ctx, http.MethodPut, "/settings", p.Token, nil, in, &out); err != nil {
		return nil, err
	}
	return toTenant(out), nil
}

func (c *Client) ChangePassword(ctx context.Context, p access.Principal, current, next string) error {
	in := dto.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
	return c.do(ctx, http.MethodPut, "/auth/password", p.Token, nil, in, nil)
}

// ── Karyawan ─────────────────────────────────────────────────────────────────

func (c *Client) ListUsers(ctx context.Context, p access.Principal) ([]entity.User, error) {
	var out dto.StaffListResponse
	if err := c.do(ctx, http.MethodGet, "/users", p.Token, nil, nil, &out); err != nil {
		return nil, err
	}
	users := make([]entity.User, 0, len(out.Users))
	for _, r := range out.Users {
		users = append(users, dto.FromStaffResponse(r, p.TenantID))
	}
	return users, nil
}

func (c *Client) userCall(ctx context.Context, p access.Principal, method, path string, body any) (*entity.User, error) {
	var out dto.StaffResponse
	if err := c.do(ctx, method, path, p.Token, nil, body, &out); err != nil {
		return nil, err
	}
	u := dto.FromStaffResponse(out, p.TenantID)
	return &u, nil
}

func (c *Client) CreateUser(ctx context.Context, p access.Principal, in dto.CreateUserRequest) (*entity.User, error) {
	return c.userCall(ctx, p, http.MethodPost, "/users", in)
}

func (c *Client) UpdateUser(ctx context.Context, p access.Principal, id string, in dto.UpdateUserRequest) (*entity.User, error) {
	return c.userCall(ctx, p, http.MethodPut, "/users"+seg(id), in)
}

func (c *Client) DeactivateUser(ctx context.Context, p access.Principal, id string) error {
	return c.do(ctx, http.MethodDelete, "/users"+seg(id), p.Token, nil, nil, nil)
}

// ── Catálogo ─────────────────────────────────────────────────────────────────

func (c *Client) ListItems(ctx context.Context, p access.Principal, q dto.ItemQuery) ([]entity.Item, error) {
	query := url.Values{}
	if q.ActiveOnly != nil {
		query.Set("active_only", strconv.FormatBool(*q.ActiveOnly))
	}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	var out dto.ItemListResponse
	if err := c.do(ctx, http.MethodGet, "/items", p.Token, query, nil, &out); err != nil {
		return nil, err
	}
	items := make([]entity.Item, 0, len(out.Items))
	for _, r := range out.Items {
		items = append(items, dto.FromItemResponse(r, p.TenantID))
	}
	return items, nil
}

func (c *Client) itemCall(ctx context.Context, p access.Principal, method, path string, body any) (*entity.Item, error) {
	var out dto.ItemResponse
	if err := c.do(ctx, method, path, p.Token, nil, body, &out); err != nil {
		return nil, err
	}
	item := dto.FromItemResponse(out, p.TenantID)
	return &item, nil
}

func (c *Client) GetItem(ctx context.Context, p access.Principal, id string) (*entity.Item, error) {
	return c.itemCall(ctx, p, http.MethodGet, "/items"+seg(id), nil)
}

func (c *Client) CreateItem(ctx context.Context, p access.Principal, in dto.CreateItemRequest) (*entity.Item, error) {
	return c.itemCall(ctx, p, http.MethodPost, "/items", in)
}

func (c *Client) UpdateItem(ctx context.Context, p access.Principal, id string, in dto.UpdateItemRequest) (*entity.Item, error) {
	return c.itemCall(ctx, p, http.MethodPut, "/items"+seg(id), in)
}

func (c *Client) DeleteItem(ctx context.Context, p access.Principal, id string) error {
	return c.do(ctx, http.MethodDelete, "/items"+seg(id), p.Token, nil, nil, nil)
}

// ── Ventas ───────────────────────────────────────────────────────────────────

func (c *Client) txCall(ctx context.Context, p access.Principal, method, path string, body any) (*entity.Transaction, error) {
	var out dto.TransactionResponse
	if err := c.do(ctx, method, path, p.Token, nil, body, &out); err != nil {
		return nil, err
	}
	t := dto.FromTransactionResponse(out, p.TenantID)
	return &t, nil
}

func (c *Client) CreateTransaction(ctx context.Context, p access.Principal, in dto.CreateTransactionRequest) (*entity.Transaction, error) {
	return c.txCall(ctx, p, http.MethodPost, "/transactions", in)
}

func (c *Client) VoidTransaction(ctx context.Context, p access.Principal, id, reason string) (*entity.Transaction, error) {
	return c.txCall(ctx, p, http.MethodPost, "/transactions"+seg(id)+"/void", dto.VoidTransactionRequest{Reason: reason})
}

func (c *Client) GetTransaction(ctx context.Context, p access.Principal, id string) (*entity.Transaction, error) {
	return c.txCall(ctx, p, http.MethodGet, "/transactions"+seg(id), nil)
}

func (c *Client) ListTransactions(ctx context.Context, p access.Principal, q dto.TransactionQuery) ([]entity.Transaction, int, error) {
	query := url.Values{}
	for k, v := range map[string]string{"date": q.Date, "start_date": q.StartDate, "end_date": q.EndDate, "status": q.Status} {
		if v != "" {
			query.Set(k, v)
		}
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		query.Set("offset", strconv.Itoa(q.Offset))
	}
	var out dto.TransactionListResponse
	if err := c.do(ctx, http.MethodGet, "/transactions", p.Token, query, nil, &out); err != nil {
		return nil, 0, err
	}
	txs := make([]entity.Transaction, 0, len(out.Transactions))
	for _, r := range out.Transactions {
		txs = append(txs, dto.FromTransactionResponse(r, p.TenantID))
	}
	return txs, out.Page.Total, nil
}

// ── Stock ────────────────────────────────────────────────────────────────────

func (c *Client) AdjustStock(ctx context.Context, p access.Principal, itemID string, in dto.AdjustStockRequest) (*entity.StockAdjustment, error) {
	var out dto.StockAdjustmentResponse
	if err := c.do(ctx, http.MethodPost, "/stock"+seg(itemID)+"/adjust", p.Token, nil, in, &out); err != nil {
		return nil, err
	}
	adj := dto.FromStockAdjustmentResponse(out, p.TenantID)
	return &adj, nil
}

func (c *Client) StockHistory(ctx context.Context, p access.Principal, itemID string, limit, offset int) ([]entity.StockAdjustment, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}, "offset": {strconv.Itoa(offset)}}
	var out dto.StockHistoryResponse
	if err := c.do(ctx, http.MethodGet, "/stock"+seg(itemID)+"/history", p.Token, query, nil, &out); err != nil {
		return nil, err
	}
	entries := make([]entity.StockAdjustment, 0, len(out.History))
	for _, r := range out.History {
		entries = append(entries, dto.FromStockAdjustmentResponse(r, p.TenantID))
	}
	return entries, nil
}

func (c *Client) StockAlerts(ctx context.Context, p access.Principal) ([]stock.Alert, error) {
	var out dto.StockAlertsResponse
	if err := c.do(ctx, http.MethodGet, "/stock/alerts", p.Token, nil, nil, &out); err != nil {
		return nil, err
	}
	alerts := make([]stock.Alert, 0, len(out.Alerts))
	for _, a := range out.Alerts {
		alerts = append(alerts, stock.Alert{
			Item: entity.Item{
				ID:                a.ItemID,
				TenantID:          p.TenantID,
				Name:              a.Name,
				IsActive:          true,
				TrackStock:        true,
				Stock:             a.Stock,
				LowStockThreshold: a.LowStockThreshold,
			},
			Status:   a.Status,
			Severity: a.Severity,
		})
	}
	return alerts, nil
}

func (c *Client) StockSummary(ctx context.Context, p access.Principal, lowOnly bool) (stock.Summary, []entity.Item, error) {
	query := url.Values{"low_only": {strconv.FormatBool(lowOnly)}}
	var out dto.StockSummaryResponse
	if err := c.do(ctx, http.MethodGet, "/stock/summary", p.Token, query, nil, &out); err != nil {
		return stock.Summary{}, nil, err
	}
	items := make([]entity.Item, 0, len(out.Items))
	for _, r := range out.Items {
		items = append(items, dto.FromItemResponse(r, p.TenantID))
	}
	return stock.Summary{
		TotalTracked: out.Summary.TotalTrackedItems,
		LowStock:     out.Summary.LowStockCount,
		OutOfStock:   out.Summary.OutOfStockCount,
	}, items, nil
}

// ── Reportes ─────────────────────────────────────────────────────────────────

// period valida el rango localmente antes de la llamada y lo devuelve en la zona de la tienda.
func (c *Client) period(start, end string) (report.Period, url.Values, error) {
	pr, err := report.Resolve(start, end, c.now(), c.loc)
	if err != nil {
		return report.Period{}, nil, err
	}
	query := url.Values{
		"start_date": {pr.Start.Format(report.DateLayout)},
		"end_date":   {pr.End.Format(report.DateLayout)},
	}
	return pr, query, nil
}

func (c *Client) ReportSummary(ctx context.Context, p access.Principal, start, end string) (*report.Report, error) {
	pr, query, err := c.period(start, end)
	if err != nil {
		return nil, err
	}
	var out dto.ReportSummaryResponse
	if err := c.do(ctx, http.MethodGet, "/reports/summary", p.Token, query, nil, &out); err != nil {
		return nil, err
	}
	return dto.FromReportSummary(out, pr), nil
}

func (c *Client) DailyReport(ctx context.Context, p access.Principal, date string) (*report.DayReport, error) {
	pr, _, err := c.period(date, date)
	if err != nil {
		return nil, err
	}
	query := url.Values{"date": {pr.Start.Format(report.DateLayout)}}
	var out dto.DailyReportResponse
	if err := c.do(ctx, http.MethodGet, "/reports/daily", p.Token, query, nil, &out); err != nil {
		return nil, err
	}
	return dto.FromDailyReport(out, p.TenantID), nil
}

func (c *Client) ExportReport(ctx context.Context, p access.Principal, start, end string) (report.Document, error) {
	pr, query, err := c.period(start, end)
	if err != nil {
		return report.Document{}, err
	}
	query.Set("format", report.FormatJSON)
	var out dto.ExportResponse
	if err := c.do(ctx, http.MethodGet, "/reports/export", p.Token, query, nil, &out); err != nil {
		return report.Document{}, err
	}
	return dto.FromExportResponse(out, pr), nil
}

func (c *Client) Dashboard(ctx context.Context, p access.Principal) (*report.Dashboard, error) {
	var out dto.DashboardResponse
	if err := c.do(ctx, http.MethodGet, "/dashboard/today", p.Token, nil, nil, &out); err != nil {
		return nil, err
	}
	return dto.FromDashboard(out), nil
}
