package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/cardfill/internal/adapters/driven/config/file"
	"github.com/custodia-labs/cardfill/internal/core/domain"
	"github.com/custodia-labs/cardfill/internal/logger"
)

var (
	searchType  string
	searchJSON  bool
	searchWatch bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Resolve a card query",
	Long: `Searches every enabled source for images matching the query.
Results are ordered by source priority, then by each source's own ranking,
and filtered by the current settings.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchType, "type", "t", string(domain.CardTypeCard),
		"card type to search (CARD, CARDBACK or TOKEN)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVarP(&searchWatch, "watch", "w", false,
		"keep running and search again whenever the config file changes")
	rootCmd.AddCommand(searchCmd)
}

// searchOutput is the JSON form of a resolution.
type searchOutput struct {
	Query         domain.SearchQuery    `json:"query"`
	Identifiers   []string              `json:"identifiers"`
	Cards         []domain.CardDocument `json:"cards,omitempty"`
	FailedSources []string              `json:"failed_sources,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	cardType, err := domain.ParseCardType(searchType)
	if err != nil {
		return err
	}
	query := domain.SearchQuery{Query: args[0], CardType: cardType}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := searchOnce(ctx, cmd, query); err != nil {
		return err
	}
	if !searchWatch {
		return nil
	}
	return watchSearch(ctx, cmd, query)
}

func searchOnce(ctx context.Context, cmd *cobra.Command, query domain.SearchQuery) error {
	res, err := searchService.Resolve(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var cards []domain.CardDocument
	if cardStore != nil && len(res.Identifiers) > 0 {
		cards, err = cardStore.GetCards(ctx, res.Identifiers)
		if err != nil {
			logger.Warn("Showing identifiers only, card details unavailable: %v", err)
			cards = nil
		}
	}

	if searchJSON {
		return outputSearchJSON(cmd, searchOutput{
			Query:         query,
			Identifiers:   nonNilStrings(res.Identifiers),
			Cards:         cards,
			FailedSources: res.FailedSources,
		})
	}
	outputSearchTable(cmd, res, cards)
	return nil
}

// watchSearch re-runs the query each time the settings file is edited,
// until interrupted.
func watchSearch(ctx context.Context, cmd *cobra.Command, query domain.SearchQuery) error {
	if fileConfig == nil {
		return errors.New("--watch needs a config file")
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cmd.Println(mutedStyle.Render(fmt.Sprintf("Watching %s, press Ctrl+C to stop.", fileConfig.Path())))
	watcher := file.NewWatcher(fileConfig, func() {
		if err := reloadSettings(ctx); err != nil {
			logger.Error("Settings not applied: %v", err)
			return
		}
		cmd.Println()
		if err := searchOnce(ctx, cmd, query); err != nil {
			logger.Error("%v", err)
		}
	})
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func outputSearchJSON(cmd *cobra.Command, out any) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, res domain.Resolution, cards []domain.CardDocument) {
	for _, key := range res.FailedSources {
		cmd.Println(warnStyle.Render(fmt.Sprintf("Warning: source %s did not respond, results may be incomplete.", key)))
	}
	if len(res.Identifiers) == 0 {
		cmd.Println("No results found.")
		return
	}

	byID := make(map[string]domain.CardDocument, len(cards))
	for i := range cards {
		byID[cards[i].Identifier] = cards[i]
	}

	rows := make([][]string, 0, len(res.Identifiers))
	for i, id := range res.Identifiers {
		card, ok := byID[id]
		if !ok {
			rows = append(rows, []string{fmt.Sprint(i + 1), id, "", "", "", ""})
			continue
		}
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			id,
			card.SourceName,
			fmt.Sprint(card.DPI),
			humanize.IBytes(uint64(max(card.Size, 0))),
			card.Name,
		})
	}

	cmd.Printf("Results for %s %q:\n\n", strings.ToLower(string(res.Query.CardType)), res.Query.Query)
	cmd.Print(table([]string{"#", "IDENTIFIER", "SOURCE", "DPI", "SIZE", "NAME"}, rows, terminalWidth(cmd.OutOrStdout())))
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
