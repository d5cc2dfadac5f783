package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cardfill/internal/adapters/driven/storage/sqlite"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local card catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import [file.json]",
	Short: "Replace the local catalog with a JSON snapshot",
	Long: `Loads sources, card images and double-faced card pairs from a JSON file
with the keys "sources", "cards" and "dfc_pairs". Sources missing from the
snapshot are removed together with their cards.`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogImport,
}

func init() {
	catalogCmd.AddCommand(catalogImportCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	if catalogStore == nil {
		return errors.New("catalog import needs the local catalog (do not use --server)")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	var catalog sqlite.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("failed to parse catalog: %w", err)
	}

	if err := catalogStore.ImportCatalog(commandContext(cmd), &catalog); err != nil {
		return fmt.Errorf("failed to import catalog: %w", err)
	}
	cmd.Printf("Imported %d sources, %d cards and %d DFC pairs\n",
		len(catalog.Sources), len(catalog.Cards), len(catalog.DFCPairs))
	return nil
}
