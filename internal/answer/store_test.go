package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetSet(t *testing.T) {
	s := NewStore()

	_, ok := s.Get("skin.skin_type")
	assert.False(t, ok, "absent means unanswered")

	s.Set("skin.skin_type", Text("oily"))
	v, ok := s.Get("skin.skin_type")
	require.True(t, ok)
	assert.Equal(t, Text("oily"), v)
	assert.Equal(t, 1, s.Len())
}

func TestStore_SetNilDeletes(t *testing.T) {
	s := NewStore()
	s.Set("a", Text("x"))
	s.Set("a", nil)

	_, ok := s.Get("a")
	assert.False(t, ok)
	assert.Empty(t, s.IDs())
}

func TestStore_EmptyValueIsKept(t *testing.T) {
	s := NewStore()
	s.Set("a", List{})

	v, ok := s.Get("a")
	require.True(t, ok, "an emptied answer is still an answer")
	assert.True(t, v.IsEmpty())
}

func TestStore_IsolatedFromCaller(t *testing.T) {
	s := NewStore()
	in := List{"a"}
	s.Set("q", in)
	in[0] = "mutated"

	v, _ := s.Get("q")
	assert.Equal(t, List{"a"}, v)

	out := v.(List)
	out[0] = "mutated"
	again, _ := s.Get("q")
	assert.Equal(t, List{"a"}, again)
}

func TestStore_MergeAndOrder(t *testing.T) {
	s := NewStore()
	s.Set("b", Text("1"))
	s.Merge([]string{"a", "b", "c"}, map[string]Value{
		"a": Text("2"),
		"b": Text("3"),
		"x": Text("ignored"),
	})

	assert.Equal(t, []string{"b", "a"}, s.IDs())
	v, _ := s.Get("b")
	assert.Equal(t, Text("3"), v)
	_, ok := s.Get("x")
	assert.False(t, ok)
}

func TestStore_Snapshot(t *testing.T) {
	s := NewStore()
	s.Set("a", List{"x"})

	snap := s.Snapshot()
	snap["a"].(List)[0] = "y"
	delete(snap, "a")

	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, List{"x"}, v)
}
