package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"devboma/internal/common"
	"devboma/internal/models"
	"devboma/internal/repositories"
)

type OrderServiceTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	service  OrderService
	tenantID uuid.UUID
	shopID   uuid.UUID
	ctx      context.Context
}

func (suite *OrderServiceTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	orderRepo := repositories.NewOrderRepository(mock)
	productRepo := repositories.NewProductRepository(mock)
	shopRepo := repositories.NewShopRepository(mock)
	customerRepo := repositories.NewCustomerRepository(mock)

	suite.service = NewOrderService(orderRepo, productRepo, shopRepo, customerRepo,
		Pricing{ShippingFlatFee: 500, TaxRateBasisPts: 1600}, 10*time.Second)
	suite.tenantID = uuid.New()
	suite.shopID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *OrderServiceTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

var productCols = []string{"id", "tenant_id", "shop_id", "name", "description", "price",
	"compare_price", "cost", "sku", "inventory", "images", "category", "status",
	"created_at", "updated_at"}

var shopCols = []string{"id", "tenant_id", "name", "slug", "description", "currency",
	"status", "created_at", "updated_at"}

func (suite *OrderServiceTestSuite) expectActiveShop() {
	now := time.Now()
	suite.mock.ExpectQuery(`FROM shops`).
		WithArgs(suite.tenantID, suite.shopID).
		WillReturnRows(pgxmock.NewRows(shopCols).
			AddRow(suite.shopID, suite.tenantID, "Main Store", "main-store", nil, "KES", "active", now, now))
}

func (suite *OrderServiceTestSuite) expectProduct(productID uuid.UUID, price int64, inventory int) {
	now := time.Now()
	suite.mock.ExpectQuery(`FROM products`).
		WithArgs(suite.tenantID, productID).
		WillReturnRows(pgxmock.NewRows(productCols).
			AddRow(productID, suite.tenantID, suite.shopID, "Kenyan Tea 500g", nil, price,
				nil, nil, nil, inventory, []string{}, nil, "active", now, now))
}

func (suite *OrderServiceTestSuite) TestCreate_ComputesIntegerTotals() {
	productID := uuid.New()
	now := time.Now()

	suite.expectActiveShop()
	suite.expectProduct(productID, 150, 10)

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE products`).
		WithArgs(suite.tenantID, productID, 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs(pgxmock.AnyArg(), suite.tenantID, suite.shopID, pgxmock.AnyArg(),
			int64(300), int64(500), int64(48), int64(848), models.OrderStatusPending,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	suite.mock.ExpectExec(`INSERT INTO order_items`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), productID, 2, int64(150), int64(300)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	order, err := suite.service.Create(suite.ctx, suite.tenantID, CreateOrderInput{
		ShopID: suite.shopID,
		Items:  []OrderItemInput{{ProductID: productID, Quantity: 2}},
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(300), order.Subtotal)
	assert.Equal(suite.T(), int64(500), order.ShippingCost)
	assert.Equal(suite.T(), int64(48), order.TaxAmount)
	assert.Equal(suite.T(), int64(848), order.TotalAmount)
	assert.Equal(suite.T(), models.OrderStatusPending, order.Status)
	assert.Len(suite.T(), order.Items, 1)
	assert.Equal(suite.T(), int64(150), order.Items[0].UnitPrice)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderServiceTestSuite) TestCreate_EmptyCartRejected() {
	_, err := suite.service.Create(suite.ctx, suite.tenantID, CreateOrderInput{
		ShopID: suite.shopID,
	})

	var validationErr *common.ValidationError
	assert.ErrorAs(suite.T(), err, &validationErr)
	assert.Equal(suite.T(), "items", validationErr.Field)
}

func (suite *OrderServiceTestSuite) TestCreate_ZeroQuantityRejected() {
	_, err := suite.service.Create(suite.ctx, suite.tenantID, CreateOrderInput{
		ShopID: suite.shopID,
		Items:  []OrderItemInput{{ProductID: uuid.New(), Quantity: 0}},
	})

	var validationErr *common.ValidationError
	assert.ErrorAs(suite.T(), err, &validationErr)
}

func (suite *OrderServiceTestSuite) TestCreate_DuplicateProductRejected() {
	productID := uuid.New()

	_, err := suite.service.Create(suite.ctx, suite.tenantID, CreateOrderInput{
		ShopID: suite.shopID,
		Items: []OrderItemInput{
			{ProductID: productID, Quantity: 1},
			{ProductID: productID, Quantity: 2},
		},
	})

	var validationErr *common.ValidationError
	assert.ErrorAs(suite.T(), err, &validationErr)
}

func (suite *OrderServiceTestSuite) TestCreate_UnknownShopRejected() {
	suite.mock.ExpectQuery(`FROM shops`).
		WithArgs(suite.tenantID, suite.shopID).
		WillReturnError(pgx.ErrNoRows)

	_, err := suite.service.Create(suite.ctx, suite.tenantID, CreateOrderInput{
		ShopID: suite.shopID,
		Items:  []OrderItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})

	var validationErr *common.ValidationError
	assert.ErrorAs(suite.T(), err, &validationErr)
	assert.Equal(suite.T(), "shop_id", validationErr.Field)
}

func (suite *OrderServiceTestSuite) TestCreate_ProductFromAnotherShopRejected() {
	productID := uuid.New()
	otherShop := uuid.New()
	now := time.Now()

	suite.expectActiveShop()
	suite.mock.ExpectQuery(`FROM products`).
		WithArgs(suite.tenantID, productID).
		WillReturnRows(pgxmock.NewRows(productCols).
			AddRow(productID, suite.tenantID, otherShop, "Foreign Item", nil, int64(100),
				nil, nil, nil, 5, []string{}, nil, "active", now, now))

	_, err := suite.service.Create(suite.ctx, suite.tenantID, CreateOrderInput{
		ShopID: suite.shopID,
		Items:  []OrderItemInput{{ProductID: productID, Quantity: 1}},
	})

	assert.ErrorIs(suite.T(), err, common.ErrProductNotFound)
}

func (suite *OrderServiceTestSuite) TestCreate_InsufficientInventorySurfacesCounts() {
	productID := uuid.New()

	suite.expectActiveShop()
	suite.expectProduct(productID, 150, 5)

	// Rejected at validation time; no transaction is opened.
	_, err := suite.service.Create(suite.ctx, suite.tenantID, CreateOrderInput{
		ShopID: suite.shopID,
		Items:  []OrderItemInput{{ProductID: productID, Quantity: 8}},
	})

	var inventoryErr *common.InsufficientInventoryError
	assert.ErrorAs(suite.T(), err, &inventoryErr)
	assert.Equal(suite.T(), 5, inventoryErr.Available)
	assert.Equal(suite.T(), 8, inventoryErr.Requested)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderServiceTestSuite) TestCreate_FirstLineShortfallWinsOverLaterMissingProduct() {
	shortID := uuid.New()

	suite.expectActiveShop()
	suite.expectProduct(shortID, 150, 1)

	// The second line would be a missing product, but items are checked in
	// input order so the first line's shortfall is what comes back.
	_, err := suite.service.Create(suite.ctx, suite.tenantID, CreateOrderInput{
		ShopID: suite.shopID,
		Items: []OrderItemInput{
			{ProductID: shortID, Quantity: 5},
			{ProductID: uuid.New(), Quantity: 1},
		},
	})

	var inventoryErr *common.InsufficientInventoryError
	assert.ErrorAs(suite.T(), err, &inventoryErr)
	assert.Equal(suite.T(), shortID, inventoryErr.ProductID)
	assert.Equal(suite.T(), 1, inventoryErr.Available)
	assert.Equal(suite.T(), 5, inventoryErr.Requested)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderServiceTestSuite) TestCreate_DecrementRaceSurfacesCounts() {
	productID := uuid.New()

	suite.expectActiveShop()
	suite.expectProduct(productID, 150, 10)

	// Validation saw enough stock, but a concurrent order drained it before
	// the decrement ran.
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE products`).
		WithArgs(suite.tenantID, productID, 8).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectQuery(`SELECT name, inventory FROM products`).
		WithArgs(suite.tenantID, productID).
		WillReturnRows(pgxmock.NewRows([]string{"name", "inventory"}).AddRow("Kenyan Tea 500g", 5))
	suite.mock.ExpectRollback()

	_, err := suite.service.Create(suite.ctx, suite.tenantID, CreateOrderInput{
		ShopID: suite.shopID,
		Items:  []OrderItemInput{{ProductID: productID, Quantity: 8}},
	})

	var inventoryErr *common.InsufficientInventoryError
	assert.ErrorAs(suite.T(), err, &inventoryErr)
	assert.Equal(suite.T(), 5, inventoryErr.Available)
	assert.Equal(suite.T(), 8, inventoryErr.Requested)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderServiceTestSuite) TestCreate_InfraFailureMapsToStoreUnavailable() {
	productID := uuid.New()

	suite.expectActiveShop()
	suite.expectProduct(productID, 150, 10)

	suite.mock.ExpectBegin().WillReturnError(assert.AnError)

	_, err := suite.service.Create(suite.ctx, suite.tenantID, CreateOrderInput{
		ShopID: suite.shopID,
		Items:  []OrderItemInput{{ProductID: productID, Quantity: 1}},
	})

	assert.ErrorIs(suite.T(), err, common.ErrStoreUnavailable)
}

func (suite *OrderServiceTestSuite) TestUpdateStatus_IllegalTransitionRejected() {
	orderID := uuid.New()
	now := time.Now()

	orderCols := []string{"id", "tenant_id", "shop_id", "customer_id", "subtotal",
		"shipping_cost", "tax_amount", "total_amount", "status", "shipping_address",
		"billing_address", "payment_method", "tracking_number", "notes", "created_at", "updated_at"}

	suite.mock.ExpectQuery(`FROM orders`).
		WithArgs(suite.tenantID, orderID).
		WillReturnRows(pgxmock.NewRows(orderCols).
			AddRow(orderID, suite.tenantID, suite.shopID, nil, int64(300), int64(500),
				int64(48), int64(848), models.OrderStatusPending, nil, nil, nil, nil, nil, now, now))
	suite.mock.ExpectQuery(`FROM order_items`).
		WithArgs(orderID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "product_id", "quantity",
			"unit_price", "line_total"}))

	_, err := suite.service.UpdateStatus(suite.ctx, suite.tenantID, orderID,
		models.OrderStatusDelivered, nil)

	var validationErr *common.ValidationError
	assert.ErrorAs(suite.T(), err, &validationErr)
	assert.Equal(suite.T(), "status", validationErr.Field)
}

func (suite *OrderServiceTestSuite) TestUpdateStatus_CancelledViaStatusRejected() {
	_, err := suite.service.UpdateStatus(suite.ctx, suite.tenantID, uuid.New(),
		models.OrderStatusCancelled, nil)

	var validationErr *common.ValidationError
	assert.ErrorAs(suite.T(), err, &validationErr)
}
