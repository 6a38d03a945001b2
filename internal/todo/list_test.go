package todo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqGenerator() *Generator {
	n := 0
	return NewGenerator(IDFunc(func(int) (string, error) {
		n++
		return "id-" + string(rune('0'+n)), nil
	}))
}

func TestListAdd(t *testing.T) {
	g := seqGenerator()
	var l List

	l, err := l.Add(g, "  buy milk ", High)
	require.NoError(t, err)
	require.Len(t, l, 1)
	assert.Equal(t, "buy milk", l[0].Name)
	assert.Equal(t, High, l[0].Priority)
	assert.Equal(t, "id-1", l[0].ID)

	_, err = l.Add(g, "   ", Low)
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestListAdd_DoesNotAliasReceiver(t *testing.T) {
	g := seqGenerator()
	base := make(List, 1, 4)
	base[0] = Task{ID: "a", Name: "a"}

	first, err := base.Add(g, "first", Low)
	require.NoError(t, err)
	second, err := base.Add(g, "second", Low)
	require.NoError(t, err)

	assert.Equal(t, "first", first[1].Name)
	assert.Equal(t, "second", second[1].Name)
	assert.Len(t, base, 1)
}

func TestListEdit(t *testing.T) {
	l := List{{ID: "a", Name: "one", Priority: Low}, {ID: "b", Name: "two", Priority: Low}}

	edited, err := l.Edit("b", "deux", High)
	require.NoError(t, err)
	assert.Equal(t, Task{ID: "b", Name: "deux", Priority: High}, edited[1])
	assert.Equal(t, "two", l[1].Name, "receiver untouched")

	_, err = l.Edit("zzz", "x", Low)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = l.Edit("a", "", Low)
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestListRemove(t *testing.T) {
	l := List{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	out, err := l.Remove("b")
	require.NoError(t, err)
	assert.Equal(t, List{{ID: "a"}, {ID: "c"}}, out)
	assert.Len(t, l, 3)

	_, err = l.Remove("b2")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestListFind(t *testing.T) {
	l := List{{ID: "a", Name: "one"}}

	got, ok := l.Find("a")
	assert.True(t, ok)
	assert.Equal(t, "one", got.Name)

	_, ok = l.Find("b")
	assert.False(t, ok)
}
