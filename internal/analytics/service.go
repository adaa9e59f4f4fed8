package analytics

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"devboma/internal/caching"
	"devboma/internal/repositories"
)

// Revenue figures count settled orders only: processing, shipped or
// delivered. Pending carts and cancelled/refunded orders never count.
// All amounts are minor units.

// DashboardData is the tenant overview the admin UI renders, scoped to the
// trailing period.
type DashboardData struct {
	TenantID        uuid.UUID      `json:"tenant_id"`
	PeriodDays      int            `json:"period_days"`
	TotalRevenue    int64          `json:"total_revenue"`
	OrderCount      int            `json:"order_count"`
	AvgOrderValue   int64          `json:"avg_order_value"`
	UniqueCustomers int            `json:"unique_customers"`
	OrdersByState   map[string]int `json:"orders_by_status"`
	ProductCount    int            `json:"product_count"`
	CustomerCount   int            `json:"customer_count"`
	LowStockCount   int            `json:"low_stock_count"`
	TopProducts     []TopProduct   `json:"top_products"`
	LastUpdated     time.Time      `json:"last_updated"`
}

// TopProduct is a best-seller row ranked by revenue.
type TopProduct struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitsSold int       `json:"units_sold"`
	Revenue   int64     `json:"revenue"`
}

// SalesTrend is one day's order volume and revenue.
type SalesTrend struct {
	Date       time.Time `json:"date"`
	OrderCount int       `json:"order_count"`
	Revenue    int64     `json:"revenue"`
}

// PlatformStats is the cross-tenant view for platform admins.
type PlatformStats struct {
	TenantCount  int   `json:"tenant_count"`
	ActiveShops  int   `json:"active_shops"`
	OrderCount   int   `json:"order_count"`
	TotalRevenue int64 `json:"total_revenue"`
}

const (
	lowStockThreshold = 5
	dashboardCacheTTL = 5 * time.Minute

	// DefaultPeriodDays is the dashboard window when the caller names none.
	DefaultPeriodDays = 30
)

const settledStatuses = `('processing','shipped','delivered')`

// AnalyticsService computes tenant aggregates straight from the database
// and caches the dashboard in Redis.
type AnalyticsService struct {
	db           repositories.Database
	cacheService caching.CacheService
}

func NewAnalyticsService(db repositories.Database, cacheService caching.CacheService) *AnalyticsService {
	return &AnalyticsService{db: db, cacheService: cacheService}
}

// Dashboard returns the cached overview when fresh and computed for the
// same period, otherwise recomputes it.
func (a *AnalyticsService) Dashboard(ctx context.Context, tenantID uuid.UUID, periodDays int) (*DashboardData, error) {
	if periodDays <= 0 {
		periodDays = DefaultPeriodDays
	}
	if cached, err := a.cacheService.GetDashboard(ctx, tenantID); err == nil && cached != nil {
		if data, ok := dashboardFromMap(tenantID, cached); ok && data.PeriodDays == periodDays {
			return data, nil
		}
	}
	return a.Refresh(ctx, tenantID, periodDays)
}

// Refresh recomputes the dashboard over the trailing period and rewrites
// the cache.
func (a *AnalyticsService) Refresh(ctx context.Context, tenantID uuid.UUID, periodDays int) (*DashboardData, error) {
	if periodDays <= 0 {
		periodDays = DefaultPeriodDays
	}
	since := time.Now().UTC().AddDate(0, 0, -periodDays)
	data := &DashboardData{
		TenantID:      tenantID,
		PeriodDays:    periodDays,
		OrdersByState: map[string]int{},
		LastUpdated:   time.Now().UTC(),
	}

	err := a.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount) FILTER (WHERE status IN `+settledStatuses+`), 0),
			COUNT(*) FILTER (WHERE status IN `+settledStatuses+`),
			COUNT(DISTINCT customer_id) FILTER (WHERE status IN `+settledStatuses+`),
			COALESCE(AVG(total_amount) FILTER (WHERE status IN `+settledStatuses+`), 0)::BIGINT
		FROM orders WHERE tenant_id = $1 AND created_at >= $2`,
		tenantID, since).Scan(&data.TotalRevenue, &data.OrderCount,
		&data.UniqueCustomers, &data.AvgOrderValue)
	if err != nil {
		return nil, fmt.Errorf("failed to compute revenue: %w", err)
	}

	rows, err := a.db.Query(ctx,
		`SELECT status, COUNT(*) FROM orders WHERE tenant_id = $1 AND created_at >= $2 GROUP BY status`,
		tenantID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to compute order breakdown: %w", err)
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan order breakdown: %w", err)
		}
		data.OrdersByState[status] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to compute order breakdown: %w", err)
	}

	err = a.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE inventory <= $2)
		FROM products WHERE tenant_id = $1`,
		tenantID, lowStockThreshold).Scan(&data.ProductCount, &data.LowStockCount)
	if err != nil {
		return nil, fmt.Errorf("failed to compute product counts: %w", err)
	}

	err = a.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM customers WHERE tenant_id = $1`,
		tenantID).Scan(&data.CustomerCount)
	if err != nil {
		return nil, fmt.Errorf("failed to compute customer count: %w", err)
	}

	top, err := a.TopProducts(ctx, tenantID, since, 5)
	if err != nil {
		return nil, err
	}
	data.TopProducts = top

	if err := a.cacheService.SetDashboard(ctx, tenantID, dashboardToMap(data), dashboardCacheTTL); err != nil {
		log.Printf("WARN: failed to cache dashboard for tenant %s: %v", tenantID, err)
	}
	return data, nil
}

// TopProducts ranks products by revenue across settled orders in the period.
func (a *AnalyticsService) TopProducts(ctx context.Context, tenantID uuid.UUID, since time.Time, limit int) ([]TopProduct, error) {
	rows, err := a.db.Query(ctx, `
		SELECT oi.product_id, p.name, SUM(oi.quantity), SUM(oi.line_total)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.tenant_id = $1 AND o.status IN `+settledStatuses+` AND o.created_at >= $2
		GROUP BY oi.product_id, p.name
		ORDER BY SUM(oi.line_total) DESC
		LIMIT $3`,
		tenantID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to compute top products: %w", err)
	}
	defer rows.Close()

	var top []TopProduct
	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.Name, &tp.UnitsSold, &tp.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan top product: %w", err)
		}
		top = append(top, tp)
	}
	return top, rows.Err()
}

// SalesTrends buckets order volume and revenue per day over [from, to].
func (a *AnalyticsService) SalesTrends(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]SalesTrend, error) {
	rows, err := a.db.Query(ctx, `
		SELECT DATE_TRUNC('day', created_at) AS day, COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE tenant_id = $1 AND status NOT IN ('cancelled','refunded')
			AND created_at >= $2 AND created_at < $3
		GROUP BY day
		ORDER BY day`,
		tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to compute sales trends: %w", err)
	}
	defer rows.Close()

	var trends []SalesTrend
	for rows.Next() {
		var t SalesTrend
		if err := rows.Scan(&t.Date, &t.OrderCount, &t.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan sales trend: %w", err)
		}
		trends = append(trends, t)
	}
	return trends, rows.Err()
}

// Platform aggregates across every tenant. Admin-only, never cached: the
// query is cheap and the numbers should be live.
func (a *AnalyticsService) Platform(ctx context.Context) (*PlatformStats, error) {
	stats := &PlatformStats{}

	err := a.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM tenants`).Scan(&stats.TenantCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count tenants: %w", err)
	}

	err = a.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM shops WHERE status = 'active'`).Scan(&stats.ActiveShops)
	if err != nil {
		return nil, fmt.Errorf("failed to count shops: %w", err)
	}

	err = a.db.QueryRow(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(total_amount) FILTER (WHERE status NOT IN ('cancelled','refunded')), 0)
		FROM orders`).Scan(&stats.OrderCount, &stats.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("failed to compute platform totals: %w", err)
	}
	return stats, nil
}

func dashboardToMap(data *DashboardData) map[string]interface{} {
	byStatus := make(map[string]interface{}, len(data.OrdersByState))
	for k, v := range data.OrdersByState {
		byStatus[k] = v
	}
	top := make([]interface{}, 0, len(data.TopProducts))
	for _, tp := range data.TopProducts {
		top = append(top, map[string]interface{}{
			"product_id": tp.ProductID.String(),
			"name":       tp.Name,
			"units_sold": tp.UnitsSold,
			"revenue":    tp.Revenue,
		})
	}
	return map[string]interface{}{
		"period_days":      data.PeriodDays,
		"total_revenue":    data.TotalRevenue,
		"order_count":      data.OrderCount,
		"avg_order_value":  data.AvgOrderValue,
		"unique_customers": data.UniqueCustomers,
		"orders_by_status": byStatus,
		"product_count":    data.ProductCount,
		"customer_count":   data.CustomerCount,
		"low_stock_count":  data.LowStockCount,
		"top_products":     top,
		"last_updated":     data.LastUpdated.Format(time.RFC3339),
	}
}

func dashboardFromMap(tenantID uuid.UUID, m map[string]interface{}) (*DashboardData, bool) {
	updatedStr, ok := m["last_updated"].(string)
	if !ok {
		return nil, false
	}
	updated, err := time.Parse(time.RFC3339, updatedStr)
	if err != nil {
		return nil, false
	}

	data := &DashboardData{
		TenantID:        tenantID,
		PeriodDays:      int(asInt64(m["period_days"])),
		TotalRevenue:    asInt64(m["total_revenue"]),
		OrderCount:      int(asInt64(m["order_count"])),
		AvgOrderValue:   asInt64(m["avg_order_value"]),
		UniqueCustomers: int(asInt64(m["unique_customers"])),
		OrdersByState:   map[string]int{},
		ProductCount:    int(asInt64(m["product_count"])),
		CustomerCount:   int(asInt64(m["customer_count"])),
		LowStockCount:   int(asInt64(m["low_stock_count"])),
		LastUpdated:     updated,
	}
	if byStatus, ok := m["orders_by_status"].(map[string]interface{}); ok {
		for k, v := range byStatus {
			data.OrdersByState[k] = int(asInt64(v))
		}
	}
	if top, ok := m["top_products"].([]interface{}); ok {
		for _, raw := range top {
			entry, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			id, err := uuid.Parse(fmt.Sprint(entry["product_id"]))
			if err != nil {
				continue
			}
			data.TopProducts = append(data.TopProducts, TopProduct{
				ProductID: id,
				Name:      fmt.Sprint(entry["name"]),
				UnitsSold: int(asInt64(entry["units_sold"])),
				Revenue:   asInt64(entry["revenue"]),
			})
		}
	}
	return data, true
}

// asInt64 tolerates the float64 that JSON round-tripping produces.
func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
