package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/calculation/backend/internal/domain/partner"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockCustomerRepository creates a GormCustomerRepository with a mocked SQL connection
func newMockCustomerRepository(t *testing.T) (*GormCustomerRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormCustomerRepository(gormDB), mock, mockDB
}

func TestNewGormCustomerRepository(t *testing.T) {
	t.Run("creates repository with valid DB", func(t *testing.T) {
		repo, _, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		assert.NotNil(t, repo)
		assert.NotNil(t, repo.db)
	})
}

func TestGormCustomerRepository_FindByID(t *testing.T) {
	t.Run("finds existing customer", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "version", "first_name", "last_name", "company", "city", "phone"}).
			AddRow(customerID, 1, "Ada", "Lovelace", "Analytical", "London", "+41211234567")

		mock.ExpectQuery(`SELECT \* FROM "sy_customer" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(customerID, 1).
			WillReturnRows(rows)

		customer, err := repo.FindByID(context.Background(), customerID)

		assert.NoError(t, err)
		require.NotNil(t, customer)
		assert.Equal(t, customerID, customer.ID)
		assert.Equal(t, "Ada Lovelace", customer.FullName())
		assert.Equal(t, "+41211234567", customer.Phone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent customer", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "sy_customer" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(customerID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		customer, err := repo.FindByID(context.Background(), customerID)

		assert.Error(t, err)
		assert.Nil(t, customer)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_FindAll(t *testing.T) {
	t.Run("searches names, company, city and email", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "sy_customer" WHERE \(LOWER\(first_name\) LIKE \$1 OR LOWER\(last_name\) LIKE \$2 OR LOWER\(company\) LIKE \$3 OR LOWER\(city\) LIKE \$4 OR LOWER\(email\) LIKE \$5\) ORDER BY last_name ASC, first_name ASC, company ASC LIMIT \$6`).
			WithArgs("%acme%", "%acme%", "%acme%", "%acme%", "%acme%", 10).
			WillReturnRows(sqlmock.NewRows([]string{"id", "company"}).AddRow(uuid.New(), "ACME"))

		customers, err := repo.FindAll(context.Background(), shared.Filter{Search: " ACME ", Page: 1, PageSize: 10})

		require.NoError(t, err)
		require.Len(t, customers, 1)
		assert.Equal(t, "ACME", customers[0].Company)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("orders by a whitelisted field", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "sy_customer" WHERE city = \$1 ORDER BY company DESC`).
			WithArgs("Bern").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		customers, err := repo.FindAll(context.Background(), shared.Filter{
			OrderBy:  "company",
			OrderDir: "desc",
			Filters:  map[string]interface{}{"city": "Bern"},
		})

		require.NoError(t, err)
		assert.Empty(t, customers)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_Delete(t *testing.T) {
	t.Run("returns ErrNotFound when nothing was deleted", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()
		mock.ExpectExec(`DELETE FROM "sy_customer" WHERE id = \$1`).
			WithArgs(customerID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), customerID)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_SQLite(t *testing.T) {
	db := newSQLiteDatabase(t)
	repo := NewGormCustomerRepository(db.DB)
	ctx := context.Background()

	customer, err := partner.NewCustomer(partner.CustomerName{FirstName: "Ada", LastName: "Lovelace", Company: "Analytical"})
	require.NoError(t, err)
	customer.SetAddress("Main street 1", "1000", "Lausanne")
	require.NoError(t, repo.Save(ctx, customer))

	loaded, err := repo.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lausanne", loaded.City)
	assert.Equal(t, "Analytical", loaded.Company)

	count, err := repo.Count(ctx, shared.Filter{Search: "lausanne"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
