package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotFor(name string) SlotProjectMembers {
	return SlotProjectMembers{Front: &ProjectMember{Query: SearchQuery{Query: name, CardType: CardTypeCard}}}
}

func frontNames(p *Project) []string {
	names := make([]string, 0, p.Len())
	for i := range p.Members {
		names = append(names, p.Members[i].Front.Query.Query)
	}
	return names
}

func TestProject_InsertSlot(t *testing.T) {
	p := &Project{}

	require.NoError(t, p.InsertSlot(0, slotFor("b")))
	require.NoError(t, p.InsertSlot(0, slotFor("a")))
	require.NoError(t, p.InsertSlot(2, slotFor("c")))

	assert.Equal(t, []string{"a", "b", "c"}, frontNames(p))
}

func TestProject_InsertSlot_Invalid(t *testing.T) {
	p := &Project{}

	assert.ErrorIs(t, p.InsertSlot(1, slotFor("a")), ErrValidation)
	assert.ErrorIs(t, p.InsertSlot(0, SlotProjectMembers{}), ErrValidation)
	assert.Equal(t, 0, p.Len())
}

func TestProject_RemoveSlot(t *testing.T) {
	p := &Project{Members: []SlotProjectMembers{slotFor("a"), slotFor("b"), slotFor("c")}}

	require.NoError(t, p.RemoveSlot(1))
	assert.Equal(t, []string{"a", "c"}, frontNames(p))
	assert.ErrorIs(t, p.RemoveSlot(5), ErrValidation)
}

func TestProject_MoveSlot(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		expected []string
	}{
		{"forward", 0, 2, []string{"b", "c", "a", "d"}},
		{"backward", 3, 1, []string{"a", "d", "b", "c"}},
		{"same place", 1, 1, []string{"a", "b", "c", "d"}},
		{"to end", 0, 3, []string{"b", "c", "d", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Project{Members: []SlotProjectMembers{slotFor("a"), slotFor("b"), slotFor("c"), slotFor("d")}}
			require.NoError(t, p.MoveSlot(tt.from, tt.to))
			assert.Equal(t, tt.expected, frontNames(p))
		})
	}
}

func TestProject_MoveSlot_OutOfRange(t *testing.T) {
	p := &Project{Members: []SlotProjectMembers{slotFor("a")}}

	assert.ErrorIs(t, p.MoveSlot(0, 1), ErrValidation)
	assert.ErrorIs(t, p.MoveSlot(-1, 0), ErrValidation)
}

func TestProject_Queries(t *testing.T) {
	swamp := &ProjectMember{Query: SearchQuery{Query: "Swamp", CardType: CardTypeCard}}
	p := &Project{Members: []SlotProjectMembers{
		slotFor("Forest"),
		slotFor("Forest"),
		{Front: &ProjectMember{Query: SearchQuery{Query: "Island", CardType: CardTypeCard}}, Back: swamp},
		{Front: &ProjectMember{Query: SearchQuery{CardType: CardTypeCard}}},
	}}

	assert.Equal(t, []SearchQuery{
		{Query: "Forest", CardType: CardTypeCard},
		{Query: "Island", CardType: CardTypeCard},
		{Query: "Swamp", CardType: CardTypeCard},
	}, p.Queries())
}

func TestSlotProjectMembers_Member(t *testing.T) {
	slot := slotFor("a")

	assert.Equal(t, slot.Front, slot.Member(FaceFront))
	assert.Nil(t, slot.Member(FaceBack))
}

func TestDFCPairs_BackFor(t *testing.T) {
	pairs := DFCPairs{"Delver of Secrets": "Insectile Aberration"}

	back, ok := pairs.BackFor("Delver of Secrets")
	assert.True(t, ok)
	assert.Equal(t, "Insectile Aberration", back)

	_, ok = pairs.BackFor("delver of secrets")
	assert.False(t, ok, "lookup is case-sensitive")

	var none DFCPairs
	_, ok = none.BackFor("Delver of Secrets")
	assert.False(t, ok)
}

func TestBracketFor(t *testing.T) {
	tests := []struct {
		n        int
		expected int
	}{
		{0, 18},
		{1, 18},
		{18, 18},
		{19, 36},
		{235, 396},
		{612, 612},
	}

	for _, tt := range tests {
		b, err := BracketFor(tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, b, "n=%d", tt.n)
	}

	_, err := BracketFor(613)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStock_IsValid(t *testing.T) {
	assert.True(t, StockStandardSmooth.IsValid())
	assert.True(t, StockPlastic.IsValid())
	assert.False(t, Stock("cardboard").IsValid())
}
