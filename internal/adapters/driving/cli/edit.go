package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/cardfill/internal/adapters/driving/tui"
)

var editCardback string

var projectEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Pick images interactively",
	Long: `Open a saved project in the interactive editor.

Controls:
  ↑/k, ↓/j - Move between slots or results
  Tab      - Switch between front and back
  Enter    - Show results for the face / choose the highlighted image
  c        - Pick the cardback from the --cardback query
  x        - Clear the face's selection
  s        - Save
  Esc      - Leave the result list
  q        - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectEdit,
}

func init() {
	projectEditCmd.Flags().StringVar(&editCardback, "cardback", "", "cardback query offered by the c key")
	projectCmd.AddCommand(projectEditCmd)
}

func runProjectEdit(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in editor: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("editor crashed: %v", r)
		}
	}()

	if projectService == nil {
		return errors.New("project service not configured")
	}
	ctx := commandContext(cmd)
	project, err := projectService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}

	editor, err := tui.NewEditor(&tui.Ports{
		Projects: projectService,
		Search:   searchService,
		Cards:    cardStore,
	}, project)
	if err != nil {
		return err
	}
	editor.WithContext(ctx)
	editor.SetCardbackQuery(editCardback)

	final, err := tea.NewProgram(editor, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("editor error: %w", err)
	}
	if e, ok := final.(*tui.Editor); ok && e.Dirty() {
		cmd.Println(warnStyle.Render("Quit with unsaved changes."))
	}
	return nil
}
