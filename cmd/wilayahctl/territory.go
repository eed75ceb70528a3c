package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GTDGit/wilayah_api/internal/service"
)

func newSeedDemoCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "seed-demo",
		Short: "Load the bundled demo provinces and regencies",
		Long:  "Load the bundled demo provinces and regencies in one transaction. Refuses to run on a non-empty database unless --reset is given, which deletes every province first.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := cmd.Context()
			actor, err := e.systemActor(ctx)
			if err != nil {
				return err
			}
			result, err := e.svc.Demo.Load(ctx, actor, reset)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d provinces and %d regencies (deleted %d)\n",
				result.Provinces, result.Regencies, result.Deleted)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "delete all existing provinces and regencies first")
	return cmd
}

func newImportProvincesCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import-provinces",
		Short: "Import provinces from a .json or .xlsx file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := readRows(file)
			if err != nil {
				return err
			}

			e, err := openEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			return importRows(cmd, e, rows)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "JSON array of {code, name} or xlsx workbook (required)")
	if err := cmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark flag as required: %v", err))
	}
	return cmd
}

func importRows(cmd *cobra.Command, e *env, rows []service.ProvinceRow) error {
	ctx := cmd.Context()
	actor, err := e.systemActor(ctx)
	if err != nil {
		return err
	}
	result, err := e.svc.Imports.ImportProvinces(ctx, actor, rows)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "imported %d, skipped %d, failed %d\n", result.Imported, result.Skipped, len(result.Errors))
	for _, re := range result.Errors {
		fmt.Fprintf(out, "  row %d (%s): %s\n", re.Row, re.Code, re.Message)
	}
	return nil
}

func readRows(path string) ([]service.ProvinceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return service.ReadProvinceRows(f)
	case ".json":
		var rows []service.ProvinceRow
		if err := json.NewDecoder(f).Decode(&rows); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported file type %q: use .json or .xlsx", filepath.Ext(path))
	}
}
