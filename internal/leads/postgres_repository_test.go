package leads

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var leadColumnNames = []string{"id", "name", "email", "phone", "source", "product_format", "flavor", "quantity", "type", "created_at"}

func TestPostgresRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	createdAt := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO leads").
		WithArgs(pgxmock.AnyArg(), "A", "a@x.com", "", "website", "husk", "orange", 2, "cart").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	repo := NewPostgresRepository(mock)
	lead, err := repo.Create(context.Background(), &Lead{
		Name:          "A",
		Email:         "a@x.com",
		ProductFormat: FormatHusk,
		Flavor:        FlavorOrange,
		Quantity:      2,
		Type:          TypeCart,
		Source:        SourceWebsite,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, createdAt, lead.CreatedAt)
	assert.Equal(t, TypeCart, lead.Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateSchemaViolationSkipsInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	_, err = repo.Create(context.Background(), &Lead{Name: "No Product"})
	require.ErrorIs(t, err, ErrSchemaViolation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateInsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO leads").WillReturnError(errors.New("connection reset"))

	repo := NewPostgresRepository(mock)
	_, err = repo.Create(context.Background(), testLead("a@x.com"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leads: insert failed")
}

func TestPostgresRepository_FindOne(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	createdAt := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	query := regexp.QuoteMeta("FROM leads WHERE type = $1 AND email = $2 AND product_format = $3 AND flavor = $4 LIMIT 1")
	mock.ExpectQuery(query).
		WithArgs("cart", "a@x.com", "husk", "orange").
		WillReturnRows(pgxmock.NewRows(leadColumnNames).
			AddRow("id-1", "A", "a@x.com", "", "website", "husk", "orange", 2, "cart", createdAt))

	repo := NewPostgresRepository(mock)
	lead, err := repo.FindOne(context.Background(), Filter{
		Type:          TypeCart,
		Email:         "a@x.com",
		ProductFormat: FormatHusk,
		Flavor:        FlavorOrange,
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", lead.ID)
	assert.Equal(t, FormatHusk, lead.ProductFormat)
	assert.Equal(t, FlavorOrange, lead.Flavor)
	assert.Equal(t, TypeCart, lead.Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_FindOneNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM leads WHERE email").
		WithArgs("missing@x.com").
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepository(mock)
	_, err = repo.FindOne(context.Background(), Filter{Email: "missing@x.com"})
	require.ErrorIs(t, err, ErrLeadNotFound)
}

func TestPostgresRepository_ListAll(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	newer := time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("FROM leads ORDER BY created_at DESC")).
		WillReturnRows(pgxmock.NewRows(leadColumnNames).
			AddRow("id-2", "B", "b@x.com", "", "website", "tablets", "unflavoured", 1, "cart", newer).
			AddRow("id-1", "", "", "555", "general", "husk", "orange", 1, "contact", older))

	repo := NewPostgresRepository(mock)
	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "id-2", all[0].ID)
	assert.Equal(t, TypeContact, all[1].Type)
	assert.Equal(t, "555", all[1].Phone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListAllEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM leads ORDER BY").WillReturnRows(pgxmock.NewRows(leadColumnNames))

	repo := NewPostgresRepository(mock)
	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestPostgresRepository_DeleteAll(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM leads").WillReturnResult(pgxmock.NewResult("DELETE", 3))

	repo := NewPostgresRepository(mock)
	n, err := repo.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterClause(t *testing.T) {
	where, args := filterClause(Filter{Email: "a@x.com", Flavor: FlavorOrange})
	assert.Equal(t, " WHERE email = $1 AND flavor = $2", where)
	assert.Equal(t, []any{"a@x.com", "orange"}, args)

	where, args = filterClause(Filter{})
	assert.Empty(t, where)
	assert.Nil(t, args)
}
