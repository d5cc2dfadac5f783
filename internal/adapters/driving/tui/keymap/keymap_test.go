package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap_Matches(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
	}{
		{"up arrow", tea.KeyMsg{Type: tea.KeyUp}, km.Up},
		{"k", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}, km.Up},
		{"j", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}, km.Down},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, km.Pick},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, km.Face},
		{"c", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")}, km.Cardback},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, km.Back},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, km.Quit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, key.Matches(tt.msg, tt.binding))
		})
	}
}

func TestKeyMap_PickerHelpRelabelsPick(t *testing.T) {
	km := DefaultKeyMap()

	help := km.PickerHelp()

	assert.Equal(t, "choose", help[2].Help().Desc)
	assert.Equal(t, "pick image", km.Pick.Help().Desc)
	assert.Len(t, km.SlotsHelp(), 8)
}
