package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mohammadpnp/household-import/internal/application/importer"
	"github.com/mohammadpnp/household-import/internal/config"
	domain "github.com/mohammadpnp/household-import/internal/domain/household"
	"github.com/mohammadpnp/household-import/internal/infrastructure/file"
	"github.com/mohammadpnp/household-import/internal/infrastructure/progress"
	"github.com/mohammadpnp/household-import/internal/infrastructure/repository"
)

func newRunCmd(envFiles *[]string) *cobra.Command {
	var (
		path       string
		userID     string
		mappingRaw string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Import a spreadsheet synchronously for one user",
		Long: "Reads an .xlsx or .csv file, reconciles every row against the database and prints the final progress.\n" +
			"Without --mapping, columns are matched by header name (for example firstName, lastName, dob).",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*envFiles...)
			if err != nil {
				return err
			}
			logger := cfg.Logger()

			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			sheet, err := file.NewSpreadsheetSource(filepath.Dir(abs)).Read(cmd.Context(), abs)
			if err != nil {
				return err
			}

			mapping, err := resolveMapping(mappingRaw, sheet.Header)
			if err != nil {
				return err
			}

			db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}

			channel := progress.NewChannel(progress.NewMemoryStore(), &logBroadcaster{logger: logger})
			driver := importer.NewDriver(
				repository.NewHouseholdRepository(db),
				channel,
				repository.NewImportRunRepository(db),
				logger,
				importer.DriverConfig{},
			)

			final, err := driver.Execute(cmd.Context(), importer.Run{
				ID:      uuid.NewString(),
				OwnerID: userID,
				Mapping: mapping,
				Rows:    sheet.Rows,
			})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(final)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(),
				"processed %d/%d: created %d, updated %d, failed %d, duplicates %d\n",
				final.ProcessedRecords, final.TotalRecords,
				final.CreatedCount, final.UpdatedCount, final.FailedCount, final.DuplicateCount)
			for _, d := range final.FailedRecordsDetail {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  row %d %s %s: %s\n", d.RowNumber, d.FirstName, d.LastName, d.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "file", "", "Path to the .xlsx or .csv file")
	cmd.Flags().StringVar(&userID, "user", "", "Owner user id the records belong to")
	cmd.Flags().StringVar(&mappingRaw, "mapping", "", `Column mapping as JSON, e.g. {"firstName":0,"lastName":1}`)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the final progress as JSON")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func resolveMapping(raw string, header []string) (domain.ColumnMapping, error) {
	if strings.TrimSpace(raw) == "" {
		return mappingFromHeader(header)
	}

	var parsed map[string]int
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse --mapping: %w", err)
	}
	return domain.ParseColumnMapping(parsed)
}

func mappingFromHeader(header []string) (domain.ColumnMapping, error) {
	byName := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := byName[key]; !seen {
			byName[key] = i
		}
	}

	parsed := make(map[string]int)
	for _, field := range domain.AllFields {
		if i, ok := byName[strings.ToLower(string(field))]; ok {
			parsed[string(field)] = i
		}
	}
	return domain.ParseColumnMapping(parsed)
}

type logBroadcaster struct {
	logger *logrus.Logger
}

func (b *logBroadcaster) Broadcast(_ string, event string, p domain.ImportProgress) {
	entry := b.logger.WithFields(logrus.Fields{
		"run_id":     p.RunID,
		"processed":  p.ProcessedRecords,
		"total":      p.TotalRecords,
		"percentage": p.Percentage,
		"eta":        p.EstimatedTimeRemaining,
	})
	if event == domain.EventImportComplete {
		entry.WithField("status", p.Status).Info("import finished")
		return
	}
	entry.Debug("import progress")
}
