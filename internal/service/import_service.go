package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/GTDGit/wilayah_api/internal/cache"
	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

// ProvinceRow is one pre-parsed line of a province import file.
type ProvinceRow struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ImportRowError explains why a row was not imported. Row is 1-based.
type ImportRowError struct {
	Row     int    `json:"row"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Imported int              `json:"importedCount"`
	Skipped  int              `json:"skippedCount"`
	Errors   []ImportRowError `json:"errors"`
}

// ImportService loads provinces in bulk. Rows are written one by one, so a
// bad row never blocks the rest of the file.
type ImportService struct {
	provinces  ProvinceRepo
	validator  *Validator
	invalidate *cache.Invalidator
}

// NewImportService creates a new ImportService.
func NewImportService(provinces ProvinceRepo, validator *Validator, reads *cache.ReadThrough) *ImportService {
	return &ImportService{provinces: provinces, validator: validator, invalidate: reads.Invalidator()}
}

// ImportProvinces imports rows in order. Rows missing a code or name are
// skipped silently; rows that fail validation (duplicate code included) are
// reported in the result.
func (s *ImportService) ImportProvinces(ctx context.Context, actor models.Actor, rows []ProvinceRow) (*ImportResult, error) {
	if err := s.validator.Authorize(actor, ActionImport, 0); err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: []ImportRowError{}}
	defer func() {
		if result.Imported > 0 {
			s.invalidate.All(ctx)
		}
	}()

	for i, row := range rows {
		in := ProvinceInput{Code: row.Code, Name: row.Name}.normalized()
		if in.Code == "" || in.Name == "" {
			result.Skipped++
			continue
		}

		if err := s.validator.provinceFields(ctx, in, 0); err != nil {
			var verr *utils.ValidationError
			if !errors.As(err, &verr) {
				return result, err
			}
			result.Errors = append(result.Errors, ImportRowError{Row: i + 1, Code: in.Code, Message: fieldSummary(verr)})
			continue
		}

		p := &models.Province{Code: in.Code, Name: in.Name, CreatedBy: actor.ID}
		if err := s.provinces.Create(ctx, p); err != nil {
			result.Errors = append(result.Errors, ImportRowError{Row: i + 1, Code: in.Code, Message: err.Error()})
			continue
		}
		result.Imported++
	}

	log.Info().
		Int("actor_id", actor.ID).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("failed", len(result.Errors)).
		Msg("Province import finished")
	return result, nil
}

func fieldSummary(verr *utils.ValidationError) string {
	fields := make([]string, 0, len(verr.Fields))
	for f := range verr.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, verr.Fields[f])
	}
	return strings.Join(msgs, "; ")
}

// ReadProvinceRows parses the first sheet of an xlsx workbook into import
// rows. Column A is the code and column B the name; a leading header row
// whose first cell reads "code" is dropped.
func ReadProvinceRows(r io.Reader) ([]ProvinceRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	rows := make([]ProvinceRow, 0, len(cells))
	for i, line := range cells {
		var row ProvinceRow
		if len(line) > 0 {
			row.Code = line[0]
		}
		if len(line) > 1 {
			row.Name = line[1]
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row.Code), "code") {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
