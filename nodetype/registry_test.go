package nodetype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/flow"
)

func TestNewDefault(t *testing.T) {
	r := NewDefault()

	for _, typ := range flow.Types {
		m, err := r.Resolve(typ)
		require.NoError(t, err, typ)
		assert.Equal(t, typ, m.Type)
		assert.Equal(t, typ, m.NewPayload().Kind())
	}

	start, _ := r.Resolve(flow.TypeStart)
	end, _ := r.Resolve(flow.TypeEnd)
	assert.False(t, start.Deletable)
	assert.False(t, end.Deletable)
}

func TestResolveUnknown(t *testing.T) {
	_, err := NewDefault().Resolve("carousel")
	assert.ErrorIs(t, err, flow.ErrUnknownType)
}

func TestRegisterFirstWins(t *testing.T) {
	r := New()

	first := Metadata{Type: flow.TypeInstruction, Title: "first", Placeable: true, Default: &flow.InstructionData{Channel: "sms"}}
	second := Metadata{Type: flow.TypeInstruction, Title: "second", Placeable: false}

	assert.True(t, r.Register(first))
	assert.False(t, r.Register(second))

	m, err := r.Resolve(flow.TypeInstruction)
	require.NoError(t, err)
	assert.Equal(t, "first", m.Title)
	assert.Len(t, r.List(), 1)
}

func TestListPlaceable(t *testing.T) {
	placeable := NewDefault().ListPlaceable()

	var types []flow.NodeType
	for _, m := range placeable {
		types = append(types, m.Type)
	}
	assert.Equal(t, []flow.NodeType{flow.TypeConditional, flow.TypeInstruction}, types)
}

func TestNewPayloadIsDeepCopy(t *testing.T) {
	m, err := NewDefault().Resolve(flow.TypeConditional)
	require.NoError(t, err)

	a := m.NewPayload().(*flow.ConditionalData)
	a.Paths = append(a.Paths, flow.Path{ID: "p", Value: "v"})

	b := m.NewPayload().(*flow.ConditionalData)
	assert.Empty(t, b.Paths)
	assert.Empty(t, m.Default.(*flow.ConditionalData).Paths)
}

func TestNewPayloadWithoutDefault(t *testing.T) {
	m := Metadata{Type: flow.TypeEnd}
	assert.Equal(t, &flow.EndData{}, m.NewPayload())
}

func TestCatalogAvailable(t *testing.T) {
	c := DefaultCatalog()

	cond, ok := c.Lookup("return_warranty")
	require.True(t, ok)
	assert.Equal(t, &flow.ConditionRef{ID: "return_warranty", Label: cond.Label}, cond.Ref())

	got := c.Available("return_warranty", []string{"Other inquiries"})
	assert.Equal(t, []string{"Customer wants to return an item", "Customer has a warranty question"}, got)

	assert.Nil(t, c.Available("missing", nil))
	assert.Len(t, c.All(), 2)
}

func TestChannels(t *testing.T) {
	ch := Channels()
	require.Len(t, ch, 1)
	assert.Equal(t, ChannelSMS, ch[0].ID)
}
