package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage search settings",
	Long: `View and change the search settings: fuzzy matching, image filters and
the source priority list. Settings are stored in config.toml and can also be
edited by hand.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsMinDPICmd = &cobra.Command{
	Use:   "set-min-dpi [dpi]",
	Short: "Set the minimum image DPI",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsMinDPI,
}

var settingsMaxSizeCmd = &cobra.Command{
	Use:   "set-max-size [megabytes]",
	Short: "Set the maximum image file size",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsMaxSize,
}

var settingsFuzzyCmd = &cobra.Command{
	Use:       "fuzzy [on|off]",
	Short:     "Turn fuzzy name matching on or off",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE:      runSettingsFuzzy,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsMinDPICmd)
	settingsCmd.AddCommand(settingsMaxSizeCmd)
	settingsCmd.AddCommand(settingsFuzzyCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(headerStyle.Render("Current Settings"))
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Fuzzy search: %s\n", onOff(settings.SearchType.FuzzySearch))
	cmd.Printf("  Filter cardbacks: %s\n", onOff(settings.SearchType.FilterCardbacks))
	cmd.Println()

	cmd.Println("[Filters]")
	f := settings.Filters
	cmd.Printf("  DPI: %d - %d\n", f.MinimumDPI, f.MaximumDPI)
	cmd.Printf("  Maximum size: %d MB\n", f.MaximumSize)
	if f.MaxResultsPerQuery > 0 {
		cmd.Printf("  Max results per query: %d\n", f.MaxResultsPerQuery)
	}
	cmd.Printf("  Languages: %s\n", listOrAny(f.Languages))
	types := make([]string, 0, len(f.SourceTypes))
	for _, t := range f.SourceTypes {
		types = append(types, t.Description())
	}
	cmd.Printf("  Source types: %s\n", listOrAny(types))
	if len(f.IncludesTags) > 0 {
		cmd.Printf("  Include tags: %s\n", strings.Join(f.IncludesTags, ", "))
	}
	if len(f.ExcludesTags) > 0 {
		cmd.Printf("  Exclude tags: %s\n", strings.Join(f.ExcludesTags, ", "))
	}
	if !f.CreatedAfter.IsZero() {
		cmd.Printf("  Created after: %s\n", f.CreatedAfter.Format(time.DateOnly))
	}
	if !f.CreatedBefore.IsZero() {
		cmd.Printf("  Created before: %s\n", f.CreatedBefore.Format(time.DateOnly))
	}
	cmd.Println()

	cmd.Println("[Sources]")
	if len(settings.Sources.Sources) == 0 {
		cmd.Println("  All sources, in catalog order")
	}
	for i, row := range settings.Sources.Sources {
		state := okStyle.Render("enabled")
		if !row.Enabled {
			state = mutedStyle.Render("disabled")
		}
		required := ""
		if settings.Sources.IsRequired(row.Key) {
			required = " (required)"
		}
		cmd.Printf("  %d. %s %s%s\n", i+1, row.Key, state, required)
	}
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Println(warnStyle.Render(fmt.Sprintf("Warning: %v", err)))
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsMinDPI(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	dpi, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid DPI %q: %w", args[0], err)
	}
	if err := settingsService.SetMinimumDPI(dpi); err != nil {
		return fmt.Errorf("failed to set minimum DPI: %w", err)
	}
	cmd.Printf("Minimum DPI set to %d\n", dpi)
	return nil
}

func runSettingsMaxSize(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	mb, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", args[0], err)
	}
	if err := settingsService.SetMaximumSize(mb); err != nil {
		return fmt.Errorf("failed to set maximum size: %w", err)
	}
	cmd.Printf("Maximum size set to %d MB\n", mb)
	return nil
}

func runSettingsFuzzy(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	var enabled bool
	switch strings.ToLower(args[0]) {
	case "on", "true", "yes":
		enabled = true
	case "off", "false", "no":
		enabled = false
	default:
		return fmt.Errorf("expected on or off, got %q", args[0])
	}
	if err := settingsService.SetFuzzySearch(enabled); err != nil {
		return fmt.Errorf("failed to set fuzzy search: %w", err)
	}
	cmd.Printf("Fuzzy search %s\n", onOff(enabled))
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func listOrAny(values []string) string {
	if len(values) == 0 {
		return "any"
	}
	return strings.Join(values, ", ")
}
