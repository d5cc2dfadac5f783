package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/cardfill/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/cardfill/internal/adapters/driving/tui/list"
	"github.com/custodia-labs/cardfill/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/cardfill/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/cardfill/internal/core/domain"
	"github.com/custodia-labs/cardfill/internal/logger"
)

// Mode is what the editor's keys currently act on.
type Mode int

const (
	// ModeSlots moves between slots and faces.
	ModeSlots Mode = iota
	// ModeLoading waits for a query's results.
	ModeLoading
	// ModePicker chooses an image from a query's results.
	ModePicker
)

// Editor edits the image selections of one project.
// It implements tea.Model.
type Editor struct {
	ports   *Ports
	ctx     context.Context
	project *domain.Project

	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model
	list   *list.CardList

	cardbackQuery string

	mode   Mode
	cursor int
	face   domain.Face
	target messages.Target

	dirty       bool
	confirmQuit bool
	status      string
	err         error

	width  int
	height int
}

// Ensure Editor implements tea.Model.
var _ tea.Model = (*Editor)(nil)

// NewEditor creates an editor for project.
func NewEditor(ports *Ports, project *domain.Project) (*Editor, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating editor: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("%w: nil project", domain.ErrValidation)
	}

	s := styles.DefaultStyles()
	return &Editor{
		ports:   ports,
		ctx:     context.Background(),
		project: project,
		styles:  s,
		keymap:  keymap.DefaultKeyMap(),
		help:    help.New(),
		list:    list.NewCardList(s),
		face:    domain.FaceFront,
		width:   80,
		height:  24,
	}, nil
}

// WithContext sets the context used for searches and saves.
func (e *Editor) WithContext(ctx context.Context) *Editor {
	e.ctx = ctx
	return e
}

// SetCardbackQuery sets the CARDBACK query offered when picking the cardback.
func (e *Editor) SetCardbackQuery(query string) {
	e.cardbackQuery = query
}

// Init implements tea.Model.
func (e *Editor) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (e *Editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.setDimensions(msg.Width, msg.Height)
		return e, nil

	case tea.KeyMsg:
		if e.mode == ModePicker {
			return e.handlePickerKey(msg)
		}
		return e.handleSlotsKey(msg)

	case messages.ResultsLoaded:
		e.handleResultsLoaded(msg)
		return e, nil

	case messages.ProjectSaved:
		if msg.Err != nil {
			e.setError(fmt.Errorf("save failed: %w", msg.Err))
			return e, nil
		}
		e.dirty = false
		e.setStatus("Saved " + e.project.Name)
		return e, nil
	}
	return e, nil
}

func (e *Editor) handleSlotsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, e.keymap.Quit) {
		if e.dirty && !e.confirmQuit {
			e.confirmQuit = true
			e.setStatus("Unsaved changes. Press q again to quit, s to save.")
			return e, nil
		}
		return e, tea.Quit
	}
	e.confirmQuit = false

	if e.mode == ModeLoading {
		return e, nil
	}

	switch {
	case key.Matches(msg, e.keymap.Up):
		if e.cursor > 0 {
			e.cursor--
		}
	case key.Matches(msg, e.keymap.Down):
		if e.cursor < e.project.Len()-1 {
			e.cursor++
		}
	case key.Matches(msg, e.keymap.Face):
		if e.face == domain.FaceFront {
			e.face = domain.FaceBack
		} else {
			e.face = domain.FaceFront
		}
	case key.Matches(msg, e.keymap.Pick):
		return e, e.openMember()
	case key.Matches(msg, e.keymap.Cardback):
		return e, e.openCardback()
	case key.Matches(msg, e.keymap.Clear):
		e.clearSelection()
	case key.Matches(msg, e.keymap.Save):
		e.setStatus("Saving...")
		return e, e.save()
	}
	return e, nil
}

func (e *Editor) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, e.keymap.Up):
		e.list.MoveUp()
	case key.Matches(msg, e.keymap.Down):
		e.list.MoveDown()
	case key.Matches(msg, e.keymap.Back):
		e.mode = ModeSlots
		e.setStatus("")
	case key.Matches(msg, e.keymap.Pick):
		e.choose()
	case msg.Type == tea.KeyCtrlC:
		return e, tea.Quit
	}
	return e, nil
}

// openMember starts loading the results of the face under the cursor.
func (e *Editor) openMember() tea.Cmd {
	slot, err := e.project.Slot(e.cursor)
	if err != nil {
		e.setError(err)
		return nil
	}
	member := slot.Member(e.face)
	if member == nil {
		e.setStatus(fmt.Sprintf("Slot %d has no back. Press c to pick the cardback.", e.cursor+1))
		return nil
	}
	return e.load(messages.Target{Slot: e.cursor, Face: e.face, Query: member.Query})
}

// openCardback starts loading the cardback query's results.
func (e *Editor) openCardback() tea.Cmd {
	if e.cardbackQuery == "" {
		e.setStatus("No cardback query. Start the editor with --cardback.")
		return nil
	}
	query := domain.SearchQuery{Query: e.cardbackQuery, CardType: domain.CardTypeCardback}
	return e.load(messages.Target{Cardback: true, Query: query})
}

func (e *Editor) load(target messages.Target) tea.Cmd {
	e.mode = ModeLoading
	e.target = target
	e.setStatus(fmt.Sprintf("Searching %q...", target.Query.Query))

	ports, ctx := e.ports, e.ctx
	return func() tea.Msg {
		res, err := ports.Search.Resolve(ctx, target.Query)
		if err != nil {
			return messages.ResultsLoaded{Target: target, Err: err}
		}
		return messages.ResultsLoaded{Target: target, Cards: hydrate(ctx, ports, res.Identifiers)}
	}
}

// hydrate returns a document per identifier, bare when the card store
// cannot describe it.
func hydrate(ctx context.Context, ports *Ports, ids []string) []domain.CardDocument {
	known := make(map[string]domain.CardDocument, len(ids))
	if ports.Cards != nil && len(ids) > 0 {
		docs, err := ports.Cards.GetCards(ctx, ids)
		if err != nil {
			logger.Warn("Listing identifiers only, card details unavailable: %v", err)
		}
		for _, doc := range docs {
			known[doc.Identifier] = doc
		}
	}
	cards := make([]domain.CardDocument, len(ids))
	for i, id := range ids {
		doc, ok := known[id]
		if !ok {
			doc = domain.CardDocument{Identifier: id}
		}
		cards[i] = doc
	}
	return cards
}

func (e *Editor) handleResultsLoaded(msg messages.ResultsLoaded) {
	if e.mode != ModeLoading || msg.Target != e.target {
		return
	}
	if msg.Err != nil {
		e.mode = ModeSlots
		e.setError(msg.Err)
		return
	}
	e.list.SetCards(msg.Cards, e.currentImage(msg.Target))
	e.mode = ModePicker
	e.setStatus("")
}

// currentImage is the image already chosen for target.
func (e *Editor) currentImage(target messages.Target) string {
	if target.Cardback {
		return e.project.Cardback
	}
	slot, err := e.project.Slot(target.Slot)
	if err != nil {
		return ""
	}
	if member := slot.Member(target.Face); member != nil {
		return member.SelectedImage
	}
	return ""
}

// choose applies the highlighted image to the picker target.
func (e *Editor) choose() {
	card := e.list.SelectedCard()
	if card == nil {
		e.mode = ModeSlots
		return
	}

	var err error
	if e.target.Cardback {
		err = e.ports.Projects.SetCardback(e.ctx, e.project, e.target.Query.Query, card.Identifier)
	} else {
		err = e.ports.Projects.SelectImage(e.ctx, e.project, e.target.Slot, e.target.Face, card.Identifier)
	}
	e.mode = ModeSlots
	if err != nil {
		e.setError(err)
		return
	}
	e.dirty = true
	if e.target.Cardback {
		e.setStatus("Cardback set to " + card.Identifier)
	} else {
		e.setStatus(fmt.Sprintf("Slot %d %s set to %s", e.target.Slot+1, e.target.Face, card.Identifier))
	}
}

func (e *Editor) clearSelection() {
	slot, err := e.project.Slot(e.cursor)
	if err != nil {
		e.setError(err)
		return
	}
	member := slot.Member(e.face)
	if member == nil || member.SelectedImage == "" {
		return
	}
	if err := e.ports.Projects.SelectImage(e.ctx, e.project, e.cursor, e.face, ""); err != nil {
		e.setError(err)
		return
	}
	e.dirty = true
	e.setStatus(fmt.Sprintf("Slot %d %s cleared", e.cursor+1, e.face))
}

func (e *Editor) save() tea.Cmd {
	projects, ctx, project := e.ports.Projects, e.ctx, e.project
	return func() tea.Msg {
		return messages.ProjectSaved{Err: projects.Save(ctx, project)}
	}
}

func (e *Editor) setStatus(status string) {
	e.status = status
	e.err = nil
}

func (e *Editor) setError(err error) {
	e.status = ""
	e.err = err
}

func (e *Editor) setDimensions(width, height int) {
	e.width = width
	e.height = height
	e.help.Width = width
	e.list.SetDimensions(width, height-6)
}

// View implements tea.Model.
func (e *Editor) View() string {
	sections := make([]string, 0, 8)
	header := e.styles.Title.Render(e.project.Name) +
		e.styles.Muted.Render(fmt.Sprintf("  %d slots", e.project.Len()))
	if e.project.Cardback != "" {
		header += e.styles.Muted.Render("  cardback " + e.project.Cardback)
	}
	sections = append(sections, header, "")

	var bindings []key.Binding
	if e.mode == ModePicker {
		sections = append(sections, e.styles.Subtitle.Render(e.targetLabel()), e.list.View())
		bindings = e.keymap.PickerHelp()
	} else {
		sections = append(sections, e.slotsView())
		bindings = e.keymap.SlotsHelp()
	}

	sections = append(sections, "")
	switch {
	case e.err != nil:
		sections = append(sections, e.styles.Error.Render("Error: "+e.err.Error()))
	case e.status != "":
		sections = append(sections, e.styles.Warning.Render(e.status))
	}
	sections = append(sections, e.help.ShortHelpView(bindings))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (e *Editor) targetLabel() string {
	if e.target.Cardback {
		return fmt.Sprintf("Cardback from %q", e.target.Query.Query)
	}
	return fmt.Sprintf("Slot %d %s: %s", e.target.Slot+1, e.target.Face, e.target.Query.Query)
}

// slotsView renders the window of slots around the cursor.
func (e *Editor) slotsView() string {
	if e.project.Len() == 0 {
		return e.styles.Muted.Render("Project has no slots")
	}

	visible := e.height - 6
	if visible < 1 {
		visible = 1
	}
	start := 0
	if e.cursor >= visible {
		start = e.cursor - visible + 1
	}
	end := start + visible
	if end > e.project.Len() {
		end = e.project.Len()
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		slot := &e.project.Members[i]
		front := e.describe(slot.Front, "")
		back := e.describe(slot.Back, e.project.Cardback)
		if i == e.cursor {
			if e.face == domain.FaceFront {
				front = e.styles.Face.Render(front)
			} else {
				back = e.styles.Face.Render(back)
			}
			lines = append(lines, e.styles.Selected.Render(fmt.Sprintf("> %3d  ", i+1))+front+"  |  "+back)
			continue
		}
		lines = append(lines, e.styles.Normal.Render(fmt.Sprintf("  %3d  ", i+1))+front+"  |  "+e.styles.Muted.Render(back))
	}
	return strings.Join(lines, "\n")
}

func (e *Editor) describe(m *domain.ProjectMember, cardback string) string {
	if m == nil {
		if cardback == "" {
			return "(cardback)"
		}
		return "(cardback " + cardback + ")"
	}
	text := m.Query.Query
	if text == "" {
		text = "(empty)"
	}
	if m.SelectedImage != "" {
		text += " [" + m.SelectedImage + "]"
	}
	return text
}

// Project returns the project being edited.
func (e *Editor) Project() *domain.Project {
	return e.project
}

// Mode returns the current mode.
func (e *Editor) Mode() Mode {
	return e.mode
}

// Cursor returns the slot index and face under the cursor.
func (e *Editor) Cursor() (int, domain.Face) {
	return e.cursor, e.face
}

// Dirty reports whether the project has unsaved changes.
func (e *Editor) Dirty() bool {
	return e.dirty
}

// Status returns the status line, or the error text when one is shown.
func (e *Editor) Status() string {
	if e.err != nil {
		return e.err.Error()
	}
	return e.status
}

// Results returns the cards listed in the picker.
func (e *Editor) Results() []domain.CardDocument {
	return e.list.Cards()
}
