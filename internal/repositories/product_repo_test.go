package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"

	"devboma/internal/common"
)

func newProductRepoMock(t *testing.T) (pgxmock.PgxPoolIface, *ProductRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	return mock, NewProductRepository(mock)
}

func TestSetInventory_ReturnsNewLevel(t *testing.T) {
	mock, repo := newProductRepoMock(t)
	defer mock.Close()

	tenantID, productID := uuid.New(), uuid.New()
	mock.ExpectQuery(`UPDATE products`).
		WithArgs(tenantID, productID, 25).
		WillReturnRows(pgxmock.NewRows([]string{"inventory"}).AddRow(25))

	inventory, err := repo.SetInventory(context.Background(), tenantID, productID, 25)
	assert.NoError(t, err)
	assert.Equal(t, 25, inventory)
}

func TestAddInventory_UnderflowRejected(t *testing.T) {
	mock, repo := newProductRepoMock(t)
	defer mock.Close()

	tenantID, productID := uuid.New(), uuid.New()
	mock.ExpectQuery(`UPDATE products`).
		WithArgs(tenantID, productID, -10).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT name, inventory FROM products`).
		WithArgs(tenantID, productID).
		WillReturnRows(pgxmock.NewRows([]string{"name", "inventory"}).AddRow("Ceramic Mug", 3))

	_, err := repo.AddInventory(context.Background(), tenantID, productID, -10)

	var inventoryErr *common.InsufficientInventoryError
	assert.ErrorAs(t, err, &inventoryErr)
	assert.Equal(t, 3, inventoryErr.Available)
	assert.Equal(t, 10, inventoryErr.Requested)
}

func TestAddInventory_UnknownProduct(t *testing.T) {
	mock, repo := newProductRepoMock(t)
	defer mock.Close()

	tenantID, productID := uuid.New(), uuid.New()
	mock.ExpectQuery(`UPDATE products`).
		WithArgs(tenantID, productID, 5).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT name, inventory FROM products`).
		WithArgs(tenantID, productID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.AddInventory(context.Background(), tenantID, productID, 5)
	assert.ErrorIs(t, err, common.ErrProductNotFound)
}

func TestDeleteProduct_WrongTenant(t *testing.T) {
	mock, repo := newProductRepoMock(t)
	defer mock.Close()

	tenantID, productID := uuid.New(), uuid.New()
	mock.ExpectExec(`DELETE FROM products`).
		WithArgs(tenantID, productID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), tenantID, productID)
	assert.ErrorIs(t, err, common.ErrProductNotFound)
}
