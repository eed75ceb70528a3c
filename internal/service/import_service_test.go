package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/GTDGit/wilayah_api/internal/utils"
)

func TestImportService_ImportProvinces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewImportService(f.territory.Provinces(), f.validator, f.reads)

	_, err := f.provinces.Create(ctx, admin, ProvinceInput{Code: "11", Name: "Aceh"})
	require.NoError(t, err)

	result, err := svc.ImportProvinces(ctx, admin, []ProvinceRow{
		{Code: "11", Name: "Aceh Lagi"},
		{Code: "12", Name: "Sumatera Utara"},
		{Code: "", Name: "Tanpa Kode"},
		{Code: "13", Name: "  "},
		{Code: "12", Name: "Sumatera Utara Dua"},
		{Code: "1x", Name: "Salah Kode"},
		{Code: " 14 ", Name: "Riau"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, ImportRowError{Row: 1, Code: "11", Message: "a province with this code already exists"}, result.Errors[0])
	assert.Equal(t, 5, result.Errors[1].Row)
	assert.Equal(t, ImportRowError{Row: 6, Code: "1x", Message: "code must be exactly 2 digits"}, result.Errors[2])
	assert.Equal(t, 1, f.store.Flushes())

	all, err := f.provinces.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestImportService_NothingImportedKeepsCache(t *testing.T) {
	f := newFixture(t)
	svc := NewImportService(f.territory.Provinces(), f.validator, f.reads)

	result, err := svc.ImportProvinces(context.Background(), admin, []ProvinceRow{{Code: "", Name: ""}})
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	assert.Empty(t, result.Errors)
	assert.Zero(t, f.store.Flushes())
}

func TestImportService_RequiresImportPermission(t *testing.T) {
	f := newFixture(t)
	svc := NewImportService(f.territory.Provinces(), f.validator, f.reads)

	_, err := svc.ImportProvinces(context.Background(), operator, []ProvinceRow{{Code: "11", Name: "Aceh"}})
	var perr *utils.PermissionError
	assert.ErrorAs(t, err, &perr)
}

func TestReadProvinceRows(t *testing.T) {
	wb := excelize.NewFile()
	for i, row := range [][]interface{}{
		{"Code", "Name"},
		{"11", "Aceh"},
		{"12"},
		{"13", "Sumatera Barat"},
	} {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	require.NoError(t, wb.Close())

	rows, err := ReadProvinceRows(&buf)
	require.NoError(t, err)
	assert.Equal(t, []ProvinceRow{
		{Code: "11", Name: "Aceh"},
		{Code: "12"},
		{Code: "13", Name: "Sumatera Barat"},
	}, rows)

	_, err = ReadProvinceRows(strings.NewReader("not a workbook"))
	assert.Error(t, err)
}
