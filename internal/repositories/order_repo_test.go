package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"devboma/internal/common"
	"devboma/internal/models"
)

type OrderRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	repo     *OrderRepository
	tenantID uuid.UUID
	shopID   uuid.UUID
	ctx      context.Context
}

func (suite *OrderRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewOrderRepository(mock)
	suite.tenantID = uuid.New()
	suite.shopID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *OrderRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestOrderRepoTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepoTestSuite))
}

func (suite *OrderRepoTestSuite) buildOrder(quantities ...int) *models.Order {
	order := &models.Order{
		ID:       uuid.New(),
		TenantID: suite.tenantID,
		ShopID:   suite.shopID,
		Status:   models.OrderStatusPending,
	}
	var subtotal int64
	for _, qty := range quantities {
		unitPrice := int64(150)
		lineTotal := unitPrice * int64(qty)
		subtotal += lineTotal
		order.Items = append(order.Items, &models.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: uuid.New(),
			Quantity:  qty,
			UnitPrice: unitPrice,
			LineTotal: lineTotal,
		})
	}
	order.Subtotal = subtotal
	order.ShippingCost = 500
	order.TaxAmount = subtotal * 1600 / 10000
	order.TotalAmount = order.Subtotal + order.ShippingCost + order.TaxAmount
	return order
}

func (suite *OrderRepoTestSuite) TestCreateWithItems_Success() {
	order := suite.buildOrder(2, 1)
	now := time.Now()

	suite.mock.ExpectBegin()
	for _, item := range order.Items {
		suite.mock.ExpectExec(`UPDATE products`).
			WithArgs(suite.tenantID, item.ProductID, item.Quantity).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	}
	suite.mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs(order.ID, order.TenantID, order.ShopID, order.CustomerID,
			order.Subtotal, order.ShippingCost, order.TaxAmount, order.TotalAmount,
			order.Status, order.ShippingAddress, order.BillingAddress,
			order.PaymentMethod, order.Notes).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	for _, item := range order.Items {
		suite.mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(item.ID, order.ID, item.ProductID, item.Quantity, item.UnitPrice, item.LineTotal).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	suite.mock.ExpectCommit()

	err := suite.repo.CreateWithItems(suite.ctx, order)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderRepoTestSuite) TestCreateWithItems_InsufficientInventoryRollsBack() {
	order := suite.buildOrder(4)
	item := order.Items[0]

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE products`).
		WithArgs(suite.tenantID, item.ProductID, 4).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectQuery(`SELECT name, inventory FROM products`).
		WithArgs(suite.tenantID, item.ProductID).
		WillReturnRows(pgxmock.NewRows([]string{"name", "inventory"}).AddRow("Ceramic Mug", 1))
	suite.mock.ExpectRollback()

	err := suite.repo.CreateWithItems(suite.ctx, order)

	var inventoryErr *common.InsufficientInventoryError
	assert.ErrorAs(suite.T(), err, &inventoryErr)
	assert.Equal(suite.T(), "Ceramic Mug", inventoryErr.ProductName)
	assert.Equal(suite.T(), 1, inventoryErr.Available)
	assert.Equal(suite.T(), 4, inventoryErr.Requested)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderRepoTestSuite) TestCreateWithItems_SecondLineFailureAbortsWholeOrder() {
	order := suite.buildOrder(1, 3)
	first, second := order.Items[0], order.Items[1]

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE products`).
		WithArgs(suite.tenantID, first.ProductID, 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE products`).
		WithArgs(suite.tenantID, second.ProductID, 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectQuery(`SELECT name, inventory FROM products`).
		WithArgs(suite.tenantID, second.ProductID).
		WillReturnRows(pgxmock.NewRows([]string{"name", "inventory"}).AddRow("Tea Sampler", 2))
	suite.mock.ExpectRollback()

	err := suite.repo.CreateWithItems(suite.ctx, order)

	var inventoryErr *common.InsufficientInventoryError
	assert.ErrorAs(suite.T(), err, &inventoryErr)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderRepoTestSuite) TestCreateWithItems_UnknownProduct() {
	order := suite.buildOrder(2)
	item := order.Items[0]

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE products`).
		WithArgs(suite.tenantID, item.ProductID, 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectQuery(`SELECT name, inventory FROM products`).
		WithArgs(suite.tenantID, item.ProductID).
		WillReturnError(pgx.ErrNoRows)
	suite.mock.ExpectRollback()

	err := suite.repo.CreateWithItems(suite.ctx, order)
	assert.ErrorIs(suite.T(), err, common.ErrProductNotFound)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderRepoTestSuite) TestCreateWithItems_BeginFailure() {
	order := suite.buildOrder(1)

	suite.mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := suite.repo.CreateWithItems(suite.ctx, order)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "connection refused")
}

func (suite *OrderRepoTestSuite) TestCancel_RestocksAndMarksCancelled() {
	orderID := uuid.New()
	productA := uuid.New()
	productB := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT status FROM orders`).
		WithArgs(suite.tenantID, orderID).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(models.OrderStatusPending))
	suite.mock.ExpectQuery(`SELECT product_id, quantity FROM order_items`).
		WithArgs(orderID).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "quantity"}).
			AddRow(productA, 2).
			AddRow(productB, 1))
	suite.mock.ExpectExec(`UPDATE products`).
		WithArgs(suite.tenantID, productA, 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE products`).
		WithArgs(suite.tenantID, productB, 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE orders SET status`).
		WithArgs(suite.tenantID, orderID, models.OrderStatusCancelled).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.Cancel(suite.ctx, suite.tenantID, orderID)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderRepoTestSuite) TestCancel_ShippedOrderRejected() {
	orderID := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT status FROM orders`).
		WithArgs(suite.tenantID, orderID).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(models.OrderStatusShipped))
	suite.mock.ExpectRollback()

	err := suite.repo.Cancel(suite.ctx, suite.tenantID, orderID)

	var validationErr *common.ValidationError
	assert.ErrorAs(suite.T(), err, &validationErr)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderRepoTestSuite) TestCancel_UnknownOrder() {
	orderID := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT status FROM orders`).
		WithArgs(suite.tenantID, orderID).
		WillReturnError(pgx.ErrNoRows)
	suite.mock.ExpectRollback()

	err := suite.repo.Cancel(suite.ctx, suite.tenantID, orderID)
	assert.ErrorIs(suite.T(), err, common.ErrOrderNotFound)
}

func (suite *OrderRepoTestSuite) TestUpdateStatus_WrongTenant() {
	orderID := uuid.New()
	otherTenant := uuid.New()

	suite.mock.ExpectExec(`UPDATE orders`).
		WithArgs(otherTenant, orderID, models.OrderStatusShipped, (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.UpdateStatus(suite.ctx, otherTenant, orderID, models.OrderStatusShipped, nil)
	assert.ErrorIs(suite.T(), err, common.ErrOrderNotFound)
}
