package service

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/GTDGit/wilayah_api/internal/models"
)

// ExportService renders territory listings as xlsx workbooks.
type ExportService struct {
	provinces *ProvinceService
	regencies *RegencyService
	validator *Validator
}

// NewExportService creates a new ExportService.
func NewExportService(provinces *ProvinceService, regencies *RegencyService, validator *Validator) *ExportService {
	return &ExportService{provinces: provinces, regencies: regencies, validator: validator}
}

// Provinces writes every province to w.
func (s *ExportService) Provinces(ctx context.Context, actor models.Actor, w io.Writer) error {
	if err := s.validator.Authorize(actor, ActionViewList, 0); err != nil {
		return err
	}
	provinces, err := s.provinces.ListAll(ctx)
	if err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(provinces))
	for _, p := range provinces {
		rows = append(rows, []interface{}{p.Code, p.Name, p.RegencyCount})
	}
	return writeWorkbook(w, "Provinces", []interface{}{"Code", "Name", "Regencies"}, rows)
}

// Regencies writes every regency of provinceID to w.
func (s *ExportService) Regencies(ctx context.Context, actor models.Actor, provinceID int, w io.Writer) error {
	if err := s.validator.Authorize(actor, ActionViewList, 0); err != nil {
		return err
	}
	regencies, err := s.regencies.ListByProvince(ctx, provinceID)
	if err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(regencies))
	for _, r := range regencies {
		rows = append(rows, []interface{}{r.Code, r.Name, string(r.Type), r.ProvinceName})
	}
	return writeWorkbook(w, "Regencies", []interface{}{"Code", "Name", "Type", "Province"}, rows)
}

func writeWorkbook(w io.Writer, sheet string, header []interface{}, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 24); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
