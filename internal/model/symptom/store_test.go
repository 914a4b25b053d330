package symptom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIsComplete(t *testing.T) {
	items := Seed()
	require.Len(t, items, 8)
	seen := map[string]bool{}
	for _, item := range items {
		assert.NotEmpty(t, item.ID)
		assert.False(t, seen[item.ID], "duplicate id %s", item.ID)
		seen[item.ID] = true
		assert.NotEmpty(t, item.Keywords, item.ID)
		assert.NotEmpty(t, item.Conditions, item.ID)
		assert.NotEmpty(t, item.SeekDoctor, item.ID)
		assert.NotEmpty(t, item.Remedies, item.ID)
		assert.NotEmpty(t, item.DietTips, item.ID)
	}
	for _, id := range []string{"fever", "cold", "headache", "insomnia", "anxiety", "skin-rash"} {
		assert.True(t, seen[id], id)
	}
}

func TestMatch(t *testing.T) {
	s := NewMemoryStore(Seed())

	got, ok := s.Match("I think I have a FEVER since yesterday")
	require.True(t, ok)
	assert.Equal(t, "fever", got.ID)

	got, ok = s.Match("my nose is runny and I keep sneezing")
	require.True(t, ok)
	assert.Equal(t, "cold", got.ID)

	got, ok = s.Match("what causes a skin rash?")
	require.True(t, ok)
	assert.Equal(t, "skin-rash", got.ID)

	_, ok = s.Match("tell me about doshas")
	assert.False(t, ok)

	_, ok = s.Match("   ")
	assert.False(t, ok)
}

func TestFindByID(t *testing.T) {
	s := NewMemoryStore(Seed())
	got, ok := s.FindByID("insomnia")
	require.True(t, ok)
	assert.Equal(t, "insomnia", got.Name)

	_, ok = s.FindByID("nope")
	assert.False(t, ok)

	list := s.List()
	list[0].ID = "mutated"
	_, ok = s.FindByID("fever")
	assert.True(t, ok, "List returns a copy")
}
