package ordered

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_UnmarshalKeepsOrder(t *testing.T) {
	var m Map
	require.NoError(t, json.Unmarshal([]byte(`{"zeta":1,"alpha":"a","mid":true,"zeta":2}`), &m))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, m.Keys())
	v, ok := m.Get("zeta")
	require.True(t, ok)
	assert.Equal(t, json.Number("2"), v)
}

func TestMap_RoundTrip(t *testing.T) {
	in := `{"name":"Ann","age":41.50,"vip":false,"note":null}`
	var m Map
	require.NoError(t, json.Unmarshal([]byte(in), &m))
	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestMap_NullAndNonObject(t *testing.T) {
	var m Map
	require.NoError(t, json.Unmarshal([]byte(`null`), &m))
	assert.Equal(t, 0, m.Len())
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &m))
}

func TestMap_SetDelete(t *testing.T) {
	m := New(Pair{"a", 1}, Pair{"b", 2}, Pair{"c", 3})
	m.Set("a", 10)
	m.Delete("b")
	assert.Equal(t, []string{"a", "c"}, m.Keys())
	m.Set("b", 4)
	assert.Equal(t, []string{"a", "c", "b"}, m.Keys())
	v, _ := m.Get("a")
	assert.Equal(t, 10, v)
	_, ok := m.Get("missing")
	assert.False(t, ok)

	var nilMap *Map
	assert.Equal(t, 0, nilMap.Len())
	assert.Nil(t, nilMap.Keys())
}

func TestString(t *testing.T) {
	assert.Equal(t, "Ann", String("Ann"))
	assert.Equal(t, "7", String(json.Number("7")))
	assert.Equal(t, "1.5", String(1.5))
	assert.Equal(t, "3", String(float64(3)))
	assert.Equal(t, "true", String(true))
	assert.Equal(t, "null", String(nil))
	assert.Equal(t, `["a"]`, String([]any{"a"}))
}

func TestMap_UnmarshalKeepsEscapesAndNesting(t *testing.T) {
	var m Map
	require.NoError(t, json.Unmarshal([]byte(`{"q":"say \"hi\"","n":{"a":1},"l":[2]}`), &m))
	assert.Equal(t, []string{"q", "n", "l"}, m.Keys())
	q, _ := m.Get("q")
	assert.Equal(t, `say "hi"`, q)
	n, _ := m.Get("n")
	assert.Equal(t, map[string]any{"a": json.Number("1")}, n)
}
