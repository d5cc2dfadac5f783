package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cardfill/internal/core/domain"
)

var sourcesDisable []string

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List and prioritise image sources",
	RunE:  runSourcesList,
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered sources with their priority",
	RunE:  runSourcesList,
}

var sourcesOrderCmd = &cobra.Command{
	Use:   "order",
	Short: "Show the order enabled sources are searched in",
	RunE:  runSourcesOrder,
}

var sourcesSetCmd = &cobra.Command{
	Use:   "set [key...]",
	Short: "Set the source priority list",
	Long: `Sets the search priority to the given source keys, highest first.
Registered sources that are not listed keep their relative order after the
listed ones. Use --disable to exclude sources from searches.`,
	RunE: runSourcesSet,
}

func init() {
	sourcesSetCmd.Flags().StringSliceVar(&sourcesDisable, "disable", nil, "source keys to disable")
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesOrderCmd)
	sourcesCmd.AddCommand(sourcesSetCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	if sourceService == nil || searchService == nil {
		return errors.New("source service not configured")
	}
	ctx := commandContext(cmd)

	sources, err := sourceService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}
	if len(sources) == 0 {
		cmd.Println("No sources registered. Import a catalog with 'cardfill catalog import'.")
		return nil
	}

	byKey := make(map[string]domain.SourceDocument, len(sources))
	for _, src := range sources {
		byKey[src.Key] = src
	}

	settings := searchService.Settings()
	rows := make([][]string, 0, len(settings.Sources.Sources))
	for i, row := range settings.Sources.Sources {
		src := byKey[row.Key]
		state := "enabled"
		if !row.Enabled {
			state = "disabled"
		}
		if settings.Sources.IsRequired(row.Key) {
			state += ", required"
		}
		rows = append(rows, []string{fmt.Sprint(i + 1), row.Key, src.Type.Description(), state, src.Name})
	}
	cmd.Print(table([]string{"#", "KEY", "TYPE", "STATE", "NAME"}, rows, terminalWidth(cmd.OutOrStdout())))
	return nil
}

func runSourcesOrder(cmd *cobra.Command, _ []string) error {
	if sourceService == nil || searchService == nil {
		return errors.New("source service not configured")
	}
	order, err := sourceService.Order(commandContext(cmd), searchService.Settings().Sources.Sources)
	if err != nil {
		return fmt.Errorf("invalid source order: %w", err)
	}
	if len(order) == 0 {
		cmd.Println("No sources enabled.")
		return nil
	}
	for i, key := range order {
		cmd.Printf("%d. %s\n", i+1, key)
	}
	return nil
}

func runSourcesSet(cmd *cobra.Command, args []string) error {
	if sourceService == nil || settingsService == nil {
		return errors.New("source service not configured")
	}
	ctx := commandContext(cmd)

	disabled := make(map[string]bool, len(sourcesDisable))
	for _, key := range sourcesDisable {
		disabled[key] = true
	}

	sources, err := sourceService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}
	known := make(map[string]bool, len(sources))
	for _, src := range sources {
		known[src.Key] = true
	}

	rows := make([]domain.SourceRow, 0, len(sources))
	for _, key := range args {
		if !known[key] {
			return fmt.Errorf("%w: unknown source %q", domain.ErrConfig, key)
		}
		rows = append(rows, domain.SourceRow{Key: key, Enabled: !disabled[key]})
	}
	for key := range disabled {
		if !known[key] {
			return fmt.Errorf("%w: unknown source %q", domain.ErrConfig, key)
		}
	}
	for _, src := range sources {
		if !containsRow(rows, src.Key) {
			rows = append(rows, domain.SourceRow{Key: src.Key, Enabled: !disabled[src.Key]})
		}
	}

	if err := settingsService.SetSources(rows); err != nil {
		return fmt.Errorf("failed to save source order: %w", err)
	}
	order, err := sourceService.Order(ctx, rows)
	if err != nil {
		return err
	}
	cmd.Printf("Searching %d of %d sources: %v\n", len(order), len(rows), order)
	return nil
}

func containsRow(rows []domain.SourceRow, key string) bool {
	for _, row := range rows {
		if row.Key == key {
			return true
		}
	}
	return false
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
