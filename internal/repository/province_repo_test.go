package repository

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

func seedProvince(t *testing.T, repo *ProvinceRepository, code, name string) *models.Province {
	t.Helper()
	p := &models.Province{Code: code, Name: name, CreatedBy: 1}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestProvinceRepository_CreateAndFind(t *testing.T) {
	db := freshDB(t)
	repo := NewProvinceRepository(db)
	ctx := context.Background()

	p := seedProvince(t, repo, "32", "Jawa Barat")
	assert.NotZero(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jawa Barat", got.Name)
	assert.Equal(t, 0, got.RegencyCount)

	_, err = repo.GetByID(ctx, p.ID+100)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestProvinceRepository_UniqueViolationIsPersistenceError(t *testing.T) {
	db := freshDB(t)
	repo := NewProvinceRepository(db)

	seedProvince(t, repo, "32", "Jawa Barat")
	err := repo.Create(context.Background(), &models.Province{Code: "33", Name: "Jawa Barat", CreatedBy: 1})

	var pe *utils.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.True(t, IsUniqueViolation(err))
	assert.Equal(t, "operation failed", err.Error())
}

func TestProvinceRepository_NameUniqueIgnoresCase(t *testing.T) {
	db := freshDB(t)
	repo := NewProvinceRepository(db)

	seedProvince(t, repo, "32", "Jawa Barat")
	err := repo.Create(context.Background(), &models.Province{Code: "33", Name: "jawa barat", CreatedBy: 1})

	var pe *utils.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.True(t, IsUniqueViolation(err))
}

func TestProvinceRepository_PartialUpdate(t *testing.T) {
	db := freshDB(t)
	repo := NewProvinceRepository(db)
	ctx := context.Background()

	p := seedProvince(t, repo, "32", "Jawa Barat")
	name := "Jawa Barat Raya"

	ok, err := repo.Update(ctx, p.ID, models.ProvinceUpdate{Name: &name})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jawa Barat Raya", got.Name)
	assert.Equal(t, "32", got.Code)
	assert.False(t, got.UpdatedAt.Before(p.UpdatedAt))

	ok, err = repo.Update(ctx, p.ID+100, models.ProvinceUpdate{Name: &name})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProvinceRepository_RegencyCountAndDelete(t *testing.T) {
	db := freshDB(t)
	provinces := NewProvinceRepository(db)
	regencies := NewRegencyRepository(db)
	ctx := context.Background()

	p := seedProvince(t, provinces, "32", "Jawa Barat")
	require.NoError(t, regencies.Create(ctx, &models.Regency{
		ProvinceID: p.ID, Code: "3201", Name: "Kabupaten Bogor", Type: models.RegencyTypeKabupaten, CreatedBy: 1,
	}))

	got, err := provinces.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.RegencyCount)

	count, err := provinces.CountRegencies(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Still referenced: nothing is removed.
	ok, err := provinces.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	count, err = provinces.CountRegencies(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = db.ExecContext(ctx, `DELETE FROM regencies WHERE province_id = $1`, p.ID)
	require.NoError(t, err)

	ok, err = provinces.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = provinces.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProvinceRepository_ExistsProbes(t *testing.T) {
	db := freshDB(t)
	repo := NewProvinceRepository(db)
	ctx := context.Background()

	p := seedProvince(t, repo, "32", "Jawa Barat")

	exists, err := repo.ExistsByName(ctx, "jawa barat", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByName(ctx, "Jawa Barat", p.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByCode(ctx, "32", 0)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestProvinceRepository_ListPage(t *testing.T) {
	db := freshDB(t)
	repo := NewProvinceRepository(db)
	ctx := context.Background()

	for i := 11; i <= 35; i++ {
		seedProvince(t, repo, fmt.Sprintf("%02d", i), fmt.Sprintf("Provinsi %02d", i))
	}
	seedProvince(t, repo, "91", "Papua_Barat")

	page, err := repo.ListPage(ctx, models.PageQuery{Offset: 0, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 26, page.Total)
	assert.Equal(t, 26, page.Filtered)
	assert.Len(t, page.Data, 10)

	next, err := repo.ListPage(ctx, models.PageQuery{Offset: 10, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "Papua_Barat", page.Data[0].Name)
	assert.Equal(t, "Provinsi 19", page.Data[9].Name)
	assert.Equal(t, "Provinsi 20", next.Data[0].Name)

	filtered, err := repo.ListPage(ctx, models.PageQuery{Limit: 10, Search: "provinsi 1"})
	require.NoError(t, err)
	assert.Equal(t, 26, filtered.Total)
	assert.Equal(t, 9, filtered.Filtered)
	assert.LessOrEqual(t, filtered.Filtered, filtered.Total)

	literal, err := repo.ListPage(ctx, models.PageQuery{Limit: 10, Search: "_"})
	require.NoError(t, err)
	require.Equal(t, 1, literal.Filtered)
	assert.Equal(t, "Papua_Barat", literal.Data[0].Name)

	desc, err := repo.ListPage(ctx, models.PageQuery{Limit: 1, SortColumn: "name", SortDirection: "desc"})
	require.NoError(t, err)
	assert.Equal(t, "Provinsi 35", desc.Data[0].Name)
}

func TestProvinceRepository_WithTxRollsBack(t *testing.T) {
	db := freshDB(t)
	repo := NewProvinceRepository(db)
	ctx := context.Background()

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.WithTx(tx).Create(ctx, &models.Province{Code: "11", Name: "Aceh", CreatedBy: 1}))
	require.NoError(t, tx.Rollback())

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
