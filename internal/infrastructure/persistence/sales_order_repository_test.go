package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/erp/shipping/internal/domain/order"
	"github.com/erp/shipping/internal/domain/shared"
)

func newMockSalesOrderRepository(t *testing.T) (*GormSalesOrderRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormSalesOrderRepository(gormDB), mock, mockDB
}

func TestGormSalesOrderRepository_FindByIDForTenant(t *testing.T) {
	t.Run("loads order with items", func(t *testing.T) {
		repo, mock, mockDB := newMockSalesOrderRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		orderID := uuid.New()

		orderRows := sqlmock.NewRows([]string{"id", "tenant_id", "order_number", "status"}).
			AddRow(orderID, tenantID, "SO-1001", "CONFIRMED")
		mock.ExpectQuery(`SELECT \* FROM "sales_orders" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, orderID, 1).
			WillReturnRows(orderRows)

		itemRows := sqlmock.NewRows([]string{"id", "sales_order_id", "sku", "quantity"}).
			AddRow(uuid.New(), orderID, "KUR-M-BLU", 2)
		mock.ExpectQuery(`SELECT \* FROM "sales_order_items" WHERE "sales_order_items"\."sales_order_id" = \$1`).
			WithArgs(orderID).
			WillReturnRows(itemRows)

		ord, err := repo.FindByIDForTenant(context.Background(), tenantID, orderID)

		assert.NoError(t, err)
		assert.Equal(t, "SO-1001", ord.OrderNumber)
		assert.Len(t, ord.Items, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found", func(t *testing.T) {
		repo, mock, mockDB := newMockSalesOrderRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		orderID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "sales_orders" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, orderID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		ord, err := repo.FindByIDForTenant(context.Background(), tenantID, orderID)

		assert.Nil(t, ord)
		assert.Equal(t, shared.ErrNotFound, err)
	})
}

func TestGormSalesOrderRepository_UpdateStatus(t *testing.T) {
	t.Run("updates status and fulfillment", func(t *testing.T) {
		repo, mock, mockDB := newMockSalesOrderRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "sales_orders" SET "fulfillment_status"=\$1,"status"=\$2,"updated_at"=\$3 WHERE id = \$4`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(context.Background(), uuid.New(), order.StatusDelivered, order.FulfillmentFulfilled)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("leaves fulfillment alone when empty", func(t *testing.T) {
		repo, mock, mockDB := newMockSalesOrderRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "sales_orders" SET "status"=\$1,"updated_at"=\$2 WHERE id = \$3`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(context.Background(), uuid.New(), order.StatusShipped, order.FulfillmentStatus(""))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing order reported as not found", func(t *testing.T) {
		repo, mock, mockDB := newMockSalesOrderRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "sales_orders" SET .* WHERE id = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(context.Background(), uuid.New(), order.StatusShipped, "")

		assert.Equal(t, shared.ErrNotFound, err)
	})
}
