package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

func seedRegency(t *testing.T, repo *RegencyRepository, provinceID int, code, name string, typ models.RegencyType) *models.Regency {
	t.Helper()
	r := &models.Regency{ProvinceID: provinceID, Code: code, Name: name, Type: typ, CreatedBy: 1}
	require.NoError(t, repo.Create(context.Background(), r))
	return r
}

func TestRegencyRepository_CreateFindUpdateDelete(t *testing.T) {
	db := freshDB(t)
	provinces := NewProvinceRepository(db)
	repo := NewRegencyRepository(db)
	ctx := context.Background()

	p := seedProvince(t, provinces, "32", "Jawa Barat")
	r := seedRegency(t, repo, p.ID, "3201", "Kabupaten Bogor", models.RegencyTypeKabupaten)

	got, err := repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jawa Barat", got.ProvinceName)
	assert.Equal(t, models.RegencyTypeKabupaten, got.Type)

	kota := models.RegencyTypeKota
	ok, err := repo.Update(ctx, r.ID, models.RegencyUpdate{Type: &kota})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RegencyTypeKota, got.Type)
	assert.Equal(t, "Kabupaten Bogor", got.Name)
	assert.Equal(t, p.ID, got.ProvinceID)

	ok, err = repo.Delete(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.GetByID(ctx, r.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRegencyRepository_MissingProvince(t *testing.T) {
	db := freshDB(t)
	repo := NewRegencyRepository(db)

	err := repo.Create(context.Background(), &models.Regency{
		ProvinceID: 999, Code: "9901", Name: "Nowhere", Type: models.RegencyTypeKota, CreatedBy: 1,
	})

	var pe *utils.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.True(t, IsForeignKeyViolation(err))
}

func TestRegencyRepository_UniquenessProbes(t *testing.T) {
	db := freshDB(t)
	provinces := NewProvinceRepository(db)
	repo := NewRegencyRepository(db)
	ctx := context.Background()

	jabar := seedProvince(t, provinces, "32", "Jawa Barat")
	jateng := seedProvince(t, provinces, "33", "Jawa Tengah")
	r := seedRegency(t, repo, jabar.ID, "3201", "Kabupaten Bogor", models.RegencyTypeKabupaten)

	exists, err := repo.ExistsByCode(ctx, "3201", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByCode(ctx, "3201", r.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByNameInProvince(ctx, "kabupaten bogor", jabar.ID, 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByNameInProvince(ctx, "Kabupaten Bogor", jateng.ID, 0)
	require.NoError(t, err)
	assert.False(t, exists)

	err = repo.Create(ctx, &models.Regency{ProvinceID: jateng.ID, Code: "3201", Name: "Kota Duplikat", Type: models.RegencyTypeKota, CreatedBy: 1})
	assert.True(t, IsUniqueViolation(err))

	// Same name in another case under the same province, skipping the probe.
	err = repo.Create(ctx, &models.Regency{ProvinceID: jabar.ID, Code: "3202", Name: "KABUPATEN BOGOR", Type: models.RegencyTypeKabupaten, CreatedBy: 1})
	var pe *utils.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.True(t, IsUniqueViolation(err))

	// Other provinces may reuse it.
	seedRegency(t, repo, jateng.ID, "3301", "kabupaten bogor", models.RegencyTypeKabupaten)
}

func TestRegencyRepository_ListPageScopedToProvince(t *testing.T) {
	db := freshDB(t)
	provinces := NewProvinceRepository(db)
	repo := NewRegencyRepository(db)
	ctx := context.Background()

	jabar := seedProvince(t, provinces, "32", "Jawa Barat")
	jateng := seedProvince(t, provinces, "33", "Jawa Tengah")
	seedRegency(t, repo, jabar.ID, "3201", "Kabupaten Bogor", models.RegencyTypeKabupaten)
	seedRegency(t, repo, jabar.ID, "3271", "Kota Bogor", models.RegencyTypeKota)
	seedRegency(t, repo, jabar.ID, "3273", "Kota Bandung", models.RegencyTypeKota)
	seedRegency(t, repo, jateng.ID, "3374", "Kota Semarang", models.RegencyTypeKota)

	page, err := repo.ListPage(ctx, jabar.ID, models.PageQuery{Limit: 2, SortColumn: "code"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 3, page.Filtered)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "3201", page.Data[0].Code)
	assert.Equal(t, "3271", page.Data[1].Code)

	filtered, err := repo.ListPage(ctx, jabar.ID, models.PageQuery{Limit: 10, Search: "bogor"})
	require.NoError(t, err)
	assert.Equal(t, 3, filtered.Total)
	assert.Equal(t, 2, filtered.Filtered)

	all, err := repo.ListByProvince(ctx, jateng.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Kota Semarang", all[0].Name)

	// The repository refuses while regencies remain; the foreign key cascades
	// when the parent row goes anyway.
	ok, err := provinces.Delete(ctx, jateng.ID)
	require.NoError(t, err)
	require.False(t, ok)
	_, err = db.ExecContext(ctx, `DELETE FROM provinces WHERE id = $1`, jateng.ID)
	require.NoError(t, err)
	all, err = repo.ListByProvince(ctx, jateng.ID)
	require.NoError(t, err)
	assert.Empty(t, all)
}
