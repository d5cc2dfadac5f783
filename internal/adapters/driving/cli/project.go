package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cardfill/internal/core/domain"
)

var (
	projectName  string
	projectSave  bool
	projectJSON  bool
	projectStock string
	projectFoil  bool
	projectType  string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Build and edit print projects",
}

var projectBuildCmd = &cobra.Command{
	Use:   "build [file]",
	Short: "Build a project from a card list",
	Long: `Reads a card list (use - for stdin) with one entry per line:

  [qty[x]] front [| back]

Prefix a face with b: for a cardback or t: for a token. Double-faced cards
get their back face automatically when no back is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectBuild,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved projects",
	RunE:  runProjectList,
}

var projectShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a saved project and its order details",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectShow,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a saved project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDelete,
}

var projectSelectCmd = &cobra.Command{
	Use:   "select [id] [slot] [front|back] [identifier]",
	Short: "Choose the image for one face of a slot",
	Long:  `Slots are numbered from 1. An empty identifier ("") clears the selection.`,
	Args:  cobra.ExactArgs(4),
	RunE:  runProjectSelect,
}

var projectQueryCmd = &cobra.Command{
	Use:   "query [id] [slot] [front|back] [query]",
	Short: "Change the query of one face of a slot",
	Long:  `An empty back query ("") removes the slot's back face.`,
	Args:  cobra.ExactArgs(4),
	RunE:  runProjectQuery,
}

var projectCardbackCmd = &cobra.Command{
	Use:   "cardback [id] [query] [identifier]",
	Short: "Set the shared cardback from a cardback query's results",
	Args:  cobra.ExactArgs(3),
	RunE:  runProjectCardback,
}

var projectInsertCmd = &cobra.Command{
	Use:   "insert [id] [position] [query]",
	Short: "Insert a slot before position (1 to slots+1)",
	Args:  cobra.ExactArgs(3),
	RunE:  runProjectInsert,
}

var projectRemoveCmd = &cobra.Command{
	Use:   "remove [id] [slot]",
	Short: "Remove a slot",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectRemove,
}

var projectExportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Export a project grouped by image, as JSON",
	Long: `Export a saved project as a card order: each distinct front and back
image with the slots it fills, plus the order details. Faces without a
selection use their first search result. Slots without a back use the
project cardback.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectExport,
}

var projectMoveCmd = &cobra.Command{
	Use:   "move [id] [from] [to]",
	Short: "Move a slot",
	Args:  cobra.ExactArgs(3),
	RunE:  runProjectMove,
}

func init() {
	projectBuildCmd.Flags().StringVar(&projectName, "name", "", "project name")
	projectBuildCmd.Flags().BoolVar(&projectSave, "save", false, "save the project")
	projectBuildCmd.Flags().BoolVar(&projectJSON, "json", false, "output the project as JSON")
	projectShowCmd.Flags().BoolVar(&projectJSON, "json", false, "output the project as JSON")
	projectShowCmd.Flags().StringVar(&projectStock, "stock", "S30", "card stock (S30, S33, M31 or P10)")
	projectShowCmd.Flags().BoolVar(&projectFoil, "foil", false, "foil finish")
	projectExportCmd.Flags().StringVar(&projectStock, "stock", "S30", "card stock (S30, S33, M31 or P10)")
	projectExportCmd.Flags().BoolVar(&projectFoil, "foil", false, "foil finish")
	projectQueryCmd.Flags().StringVarP(&projectType, "type", "t", string(domain.CardTypeCard), "card type of the query")
	projectInsertCmd.Flags().StringVarP(&projectType, "type", "t", string(domain.CardTypeCard), "card type of the query")

	projectCmd.AddCommand(projectBuildCmd, projectListCmd, projectShowCmd, projectDeleteCmd,
		projectSelectCmd, projectQueryCmd, projectCardbackCmd, projectInsertCmd,
		projectRemoveCmd, projectMoveCmd, projectExportCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectBuild(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open card list: %w", err)
		}
		defer f.Close()
		r = f
	}
	lines, err := parseLines(r)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	project, err := projectService.Build(ctx, projectName, lines)
	if err != nil {
		return err
	}
	if projectSave {
		if err := projectService.Save(ctx, project); err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}
	}

	if projectJSON {
		return outputSearchJSON(cmd, project)
	}
	printProject(cmd, project)
	if projectSave {
		cmd.Printf("\nSaved as %s\n", project.ID)
	}
	return nil
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}
	projects, err := projectService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	if len(projects) == 0 {
		cmd.Println("No saved projects.")
		return nil
	}
	rows := make([][]string, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		rows = append(rows, []string{p.ID, fmt.Sprint(p.Len()), p.UpdatedAt.Local().Format("2006-01-02 15:04"), p.Name})
	}
	cmd.Print(table([]string{"ID", "SLOTS", "UPDATED", "NAME"}, rows, terminalWidth(cmd.OutOrStdout())))
	return nil
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}
	stock, err := parseStock(projectStock)
	if err != nil {
		return err
	}
	project, err := projectService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}
	details, err := projectService.OrderDetails(project, stock, projectFoil)
	if err != nil {
		return err
	}

	if projectJSON {
		return outputSearchJSON(cmd, struct {
			*domain.Project
			Order domain.OrderDetails `json:"order"`
		}{project, details})
	}
	printProject(cmd, project)
	cmd.Println()
	finish := "non-foil"
	if details.Foil {
		finish = "foil"
	}
	cmd.Printf("Order: %d cards in the %d bracket, %s, %s\n", details.Quantity, details.Bracket, details.Stock, finish)
	return nil
}

func runProjectExport(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}
	stock, err := parseStock(projectStock)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	project, err := projectService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}
	order, err := projectService.Export(ctx, project, stock, projectFoil)
	if err != nil {
		return fmt.Errorf("failed to export project: %w", err)
	}
	return outputSearchJSON(cmd, order)
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}
	if err := projectService.Delete(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	cmd.Printf("Deleted project %s\n", args[0])
	return nil
}

func runProjectSelect(cmd *cobra.Command, args []string) error {
	return editProject(cmd, args[0], func(p *domain.Project) error {
		slot, err := parseSlot(args[1])
		if err != nil {
			return err
		}
		return projectService.SelectImage(commandContext(cmd), p, slot, domain.Face(strings.ToLower(args[2])), args[3])
	})
}

func runProjectQuery(cmd *cobra.Command, args []string) error {
	return editProject(cmd, args[0], func(p *domain.Project) error {
		slot, err := parseSlot(args[1])
		if err != nil {
			return err
		}
		cardType, err := domain.ParseCardType(projectType)
		if err != nil {
			return err
		}
		query := domain.SearchQuery{Query: args[3], CardType: cardType}
		return projectService.SetQuery(commandContext(cmd), p, slot, domain.Face(strings.ToLower(args[2])), query)
	})
}

func runProjectCardback(cmd *cobra.Command, args []string) error {
	return editProject(cmd, args[0], func(p *domain.Project) error {
		return projectService.SetCardback(commandContext(cmd), p, args[1], args[2])
	})
}

func runProjectInsert(cmd *cobra.Command, args []string) error {
	return editProject(cmd, args[0], func(p *domain.Project) error {
		pos, err := parseSlot(args[1])
		if err != nil {
			return err
		}
		cardType, err := domain.ParseCardType(projectType)
		if err != nil {
			return err
		}
		return projectService.InsertSlot(commandContext(cmd), p, pos, domain.SearchQuery{Query: args[2], CardType: cardType})
	})
}

func runProjectRemove(cmd *cobra.Command, args []string) error {
	return editProject(cmd, args[0], func(p *domain.Project) error {
		slot, err := parseSlot(args[1])
		if err != nil {
			return err
		}
		return projectService.RemoveSlot(p, slot)
	})
}

func runProjectMove(cmd *cobra.Command, args []string) error {
	return editProject(cmd, args[0], func(p *domain.Project) error {
		from, err := parseSlot(args[1])
		if err != nil {
			return err
		}
		to, err := parseSlot(args[2])
		if err != nil {
			return err
		}
		return projectService.MoveSlot(p, from, to)
	})
}

// editProject loads a saved project, applies edit and saves it back.
func editProject(cmd *cobra.Command, id string, edit func(p *domain.Project) error) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}
	ctx := commandContext(cmd)
	project, err := projectService.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}
	if err := edit(project); err != nil {
		return err
	}
	if err := projectService.Save(ctx, project); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	printProject(cmd, project)
	return nil
}

func printProject(cmd *cobra.Command, project *domain.Project) {
	cmd.Println(headerStyle.Render(project.Name) + mutedStyle.Render(fmt.Sprintf("  %d slots", project.Len())))
	if project.Cardback != "" {
		cmd.Printf("Cardback: %s\n", project.Cardback)
	}
	cmd.Println()

	rows := make([][]string, 0, project.Len())
	for i, slot := range project.Members {
		rows = append(rows, []string{fmt.Sprint(i + 1), describeMember(slot.Front), describeMember(slot.Back)})
	}
	cmd.Print(table([]string{"#", "FRONT", "BACK"}, rows, terminalWidth(cmd.OutOrStdout())))
}

func describeMember(m *domain.ProjectMember) string {
	if m == nil {
		return "-"
	}
	text := m.Query.Query
	if text == "" {
		text = "(empty)"
	}
	if m.Query.CardType != domain.CardTypeCard {
		text = strings.ToLower(string(m.Query.CardType)) + ": " + text
	}
	if m.SelectedImage != "" {
		text += " [" + m.SelectedImage + "]"
	}
	return text
}

// parseSlot converts a 1-based slot number to an index.
func parseSlot(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: slot %q must be a positive number", domain.ErrValidation, s)
	}
	return n - 1, nil
}

// parseStock accepts a stock code such as "S30" or the full stock name.
func parseStock(s string) (domain.Stock, error) {
	all := []domain.Stock{
		domain.StockStandardSmooth, domain.StockSuperiorSmooth, domain.StockLinen, domain.StockPlastic,
	}
	for _, stock := range all {
		if strings.EqualFold(string(stock), s) || strings.HasPrefix(string(stock), "("+strings.ToUpper(s)+")") {
			return stock, nil
		}
	}
	return "", fmt.Errorf("%w: unknown stock %q", domain.ErrValidation, s)
}
