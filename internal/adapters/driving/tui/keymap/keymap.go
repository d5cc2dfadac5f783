// Package keymap defines the project editor keybindings.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds every editor binding.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	// Pick opens the image picker for the face under the cursor, and in the
	// picker confirms the highlighted image.
	Pick key.Binding

	// Face switches the cursor between the front and back of a slot.
	Face key.Binding

	// Cardback opens the picker for the shared cardback.
	Cardback key.Binding

	// Clear removes the selection of the face under the cursor.
	Clear key.Binding

	Save key.Binding
	Back key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Pick: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "pick image"),
		),
		Face: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "front/back"),
		),
		Cardback: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cardback"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// SlotsHelp returns the bindings shown while moving between slots.
func (k *KeyMap) SlotsHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Face, k.Pick, k.Cardback, k.Clear, k.Save, k.Quit}
}

// PickerHelp returns the bindings shown while choosing an image.
func (k *KeyMap) PickerHelp() []key.Binding {
	pick := k.Pick
	pick.SetHelp("enter", "choose")
	return []key.Binding{k.Up, k.Down, pick, k.Back}
}
