package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"

	"devboma/internal/models"
)

// stubCache keeps the last dashboard in memory so cache behavior can be
// exercised without Redis.
type stubCache struct {
	dashboard map[string]interface{}
}

func (s *stubCache) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	return nil, nil
}
func (s *stubCache) SetProduct(ctx context.Context, tenantID uuid.UUID, product *models.Product, ttl time.Duration) error {
	return nil
}
func (s *stubCache) DeleteProduct(ctx context.Context, tenantID, productID uuid.UUID) error {
	return nil
}
func (s *stubCache) GetDashboard(ctx context.Context, tenantID uuid.UUID) (map[string]interface{}, error) {
	return s.dashboard, nil
}
func (s *stubCache) SetDashboard(ctx context.Context, tenantID uuid.UUID, dashboard map[string]interface{}, ttl time.Duration) error {
	s.dashboard = dashboard
	return nil
}
func (s *stubCache) DeleteDashboard(ctx context.Context, tenantID uuid.UUID) error {
	s.dashboard = nil
	return nil
}
func (s *stubCache) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	s.dashboard = nil
	return nil
}
func (s *stubCache) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return false, nil
}
func (s *stubCache) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return nil
}
func (s *stubCache) GetString(ctx context.Context, key string) (string, error) { return "", nil }
func (s *stubCache) Delete(ctx context.Context, key string) error              { return nil }

func expectDashboardQueries(mock pgxmock.PgxPoolIface, tenantID uuid.UUID) {
	mock.ExpectQuery(`FROM orders`).
		WithArgs(tenantID, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"revenue", "orders", "customers", "aov"}).
			AddRow(int64(84800), 100, 40, int64(848)))
	mock.ExpectQuery(`GROUP BY status`).
		WithArgs(tenantID, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow("processing", 60).
			AddRow("delivered", 40).
			AddRow("pending", 25))
	mock.ExpectQuery(`FROM products`).
		WithArgs(tenantID, lowStockThreshold).
		WillReturnRows(pgxmock.NewRows([]string{"products", "low_stock"}).AddRow(12, 3))
	mock.ExpectQuery(`FROM customers`).
		WithArgs(tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"customers"}).AddRow(55))
	mock.ExpectQuery(`ORDER BY SUM\(oi\.line_total\) DESC`).
		WithArgs(tenantID, pgxmock.AnyArg(), 5).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "name", "units", "revenue"}).
			AddRow(uuid.New(), "Kenyan Tea 500g", 90, int64(60000)).
			AddRow(uuid.New(), "Ceramic Mug", 120, int64(24800)))
}

func TestRefresh_ComputesPeriodAggregates(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	tenantID := uuid.New()
	cache := &stubCache{}
	service := NewAnalyticsService(mock, cache)

	expectDashboardQueries(mock, tenantID)

	data, err := service.Refresh(context.Background(), tenantID, 7)
	assert.NoError(t, err)
	assert.Equal(t, 7, data.PeriodDays)
	assert.Equal(t, int64(84800), data.TotalRevenue)
	assert.Equal(t, 100, data.OrderCount)
	assert.Equal(t, int64(848), data.AvgOrderValue)
	assert.Equal(t, 40, data.UniqueCustomers)
	assert.Equal(t, 60, data.OrdersByState["processing"])
	assert.Equal(t, 3, data.LowStockCount)
	assert.Equal(t, "Kenyan Tea 500g", data.TopProducts[0].Name)
	assert.Equal(t, int64(60000), data.TopProducts[0].Revenue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboard_CachedPeriodMismatchRecomputes(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	tenantID := uuid.New()
	cache := &stubCache{}
	service := NewAnalyticsService(mock, cache)

	expectDashboardQueries(mock, tenantID)
	_, err = service.Refresh(context.Background(), tenantID, 30)
	assert.NoError(t, err)

	// Same period served from cache, no further queries.
	data, err := service.Dashboard(context.Background(), tenantID, 30)
	assert.NoError(t, err)
	assert.Equal(t, 30, data.PeriodDays)
	assert.Equal(t, int64(84800), data.TotalRevenue)

	// Different period misses and recomputes.
	expectDashboardQueries(mock, tenantID)
	data, err = service.Dashboard(context.Background(), tenantID, 90)
	assert.NoError(t, err)
	assert.Equal(t, 90, data.PeriodDays)
	assert.NoError(t, mock.ExpectationsWereMet())
}
