package crud

import (
	"context"
	"fmt"
	"testing"

	"github.com/junaidrashid-git/shop-api/apperr"
	"github.com/junaidrashid-git/shop-api/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Manufacturer{}))
	return db
}

func manufacturerRepo(db *gorm.DB) *Repository[models.Manufacturer] {
	return NewRepository(db, Schema[models.Manufacturer]{
		Name:         "manufacturer",
		SearchFields: []string{"name", "country"},
		Filters:      []Filter{{Param: "country", Column: "country"}, {Param: "ids", Column: "id", Kind: FilterIDSet}},
		Validate: func(ctx context.Context, check *Checker, m *models.Manufacturer, id uint) {
			check.Unique("name", &models.Manufacturer{}, "name", m.Name, id)
		},
	})
}

func TestCreateValidates(t *testing.T) {
	repo := manufacturerRepo(setupTestDB(t))
	ctx := context.Background()

	err := repo.Create(ctx, &models.Manufacturer{})
	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "name")
	assert.Contains(t, ve.Fields, "country")

	require.NoError(t, repo.Create(ctx, &models.Manufacturer{Name: "Acme", Country: "US"}))
	err = repo.Create(ctx, &models.Manufacturer{Name: "Acme", Country: "DE"})
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "name")
}

func TestUpdateAndDelete(t *testing.T) {
	repo := manufacturerRepo(setupTestDB(t))
	ctx := context.Background()

	m := &models.Manufacturer{Name: "Acme", Country: "US"}
	require.NoError(t, repo.Create(ctx, m))

	// updating a record with its own name must not trip the unique check
	require.NoError(t, repo.Update(ctx, m.ID, &models.Manufacturer{Name: "Acme", Country: "CA"}))
	got, err := repo.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, "CA", got.Country)

	err = repo.Update(ctx, 999, &models.Manufacturer{Name: "X", Country: "Y"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	require.NoError(t, repo.Delete(ctx, m.ID))
	assert.True(t, errors.Is(repo.Delete(ctx, m.ID), apperr.ErrNotFound))
	_, err = repo.Get(ctx, m.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestListSearchFilterAndPaging(t *testing.T) {
	repo := manufacturerRepo(setupTestDB(t))
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		country := "US"
		if i%2 == 0 {
			country = "DE"
		}
		require.NoError(t, repo.Create(ctx, &models.Manufacturer{Name: fmt.Sprintf("Maker %d", i), Country: country}))
	}

	page, err := repo.List(ctx, ListParams{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "Maker 1", page.Results[0].Name)
	assert.True(t, page.HasNext())
	assert.False(t, page.HasPrevious())

	page, err = repo.List(ctx, ListParams{Page: 3, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.False(t, page.HasNext())
	assert.True(t, page.HasPrevious())

	_, err = repo.List(ctx, ListParams{Page: 4, PageSize: 2})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	page, err = repo.List(ctx, ListParams{Search: "MAKER 3"})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)

	page, err = repo.List(ctx, ListParams{Filters: map[string]string{"country": "DE"}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Count)

	page, err = repo.List(ctx, ListParams{Filters: map[string]string{"ids": "1, 3,5"}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Count)

	_, err = repo.List(ctx, ListParams{Filters: map[string]string{"ids": "1,x"}})
	var ve *apperr.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestParseIDs(t *testing.T) {
	ids, err := ParseIDs("4, 2,,9")
	require.NoError(t, err)
	assert.Equal(t, []uint{4, 2, 9}, ids)

	_, err = ParseIDs("1,-2")
	assert.Error(t, err)
}

func TestCreateIgnoresClientID(t *testing.T) {
	repo := manufacturerRepo(setupTestDB(t))
	ctx := context.Background()

	m := &models.Manufacturer{ID: 500, Name: "Acme", Country: "US"}
	require.NoError(t, repo.Create(ctx, m))
	assert.Equal(t, uint(1), m.ID)
}
