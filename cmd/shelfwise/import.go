// cmd/shelfwise/import.go
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vasujain275/shelfwise-sub000/internal/api"
	"github.com/vasujain275/shelfwise-sub000/internal/importer"
)

func newImportCmd(a *app) *cobra.Command {
	var previewOnly, yes bool
	var failedOut string

	cmd := &cobra.Command{
		Use:   "import {books|users|transactions} <file.csv>",
		Short: "Bulk-import records from a CSV file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := api.ImportKind(args[0])
			switch kind {
			case api.ImportBooks, api.ImportUsers, api.ImportTransactions:
			default:
				return fmt.Errorf("unknown import target %q", args[0])
			}

			if len(args) == 1 {
				// No file prints the expected CSV template.
				fmt.Print(importer.SampleCSV(kind))
				return nil
			}

			if err := a.requireLending(cmd); err != nil {
				return err
			}

			path := args[1]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			pipeline := importer.New(a.client, kind)
			preview, err := pipeline.SelectFile(path, f)
			if err != nil {
				return err
			}

			fmt.Printf("Preview of %s (first %d rows):\n\n", path, importer.PreviewRows)
			printPreview(preview)

			if previewOnly {
				return nil
			}
			if !yes {
				answer, err := readLine(fmt.Sprintf("Import these %s? [y/N] ", kind))
				if err != nil {
					return err
				}
				if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
					pipeline.Reset()
					fmt.Println("Cancelled. Nothing was imported.")
					return nil
				}
			}

			result, err := pipeline.Import(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s", pipeline.FailureMessage())
			}

			fmt.Println(result.Message)
			fmt.Printf("Succeeded: %d   Failed: %d\n", result.SuccessfulImports, result.FailedImports)
			if len(result.FailedRecordIdentifiers) > 0 {
				if failedOut != "" {
					out, err := os.Create(failedOut)
					if err != nil {
						return err
					}
					defer out.Close()
					if err := pipeline.WriteFailedRecords(out); err != nil {
						return err
					}
					fmt.Printf("Failed record identifiers written to %s\n", failedOut)
				} else {
					fmt.Println("Failed records:")
					for _, id := range result.FailedRecordIdentifiers {
						fmt.Printf("  %s\n", id)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&previewOnly, "preview", false, "show the preview and stop")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().StringVar(&failedOut, "failed-out", "", "write failed record identifiers to this file")
	return cmd
}

func printPreview(p *importer.Preview) {
	fmt.Println(strings.Join(p.Headers, " | "))
	for _, row := range p.Rows {
		fmt.Println(strings.Join(row, " | "))
	}
	fmt.Println()
}
