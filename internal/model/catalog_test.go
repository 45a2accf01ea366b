package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogMarshalKeepsSheetOrder(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	c.Add("航海王", []Item{{Name: "魯夫"}, {Name: "索隆"}})
	c.Add("火影", []Item{{Name: "漩渦鳴人"}})
	c.Add("空分类", nil)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `{"航海王":[{"name":"魯夫"},{"name":"索隆"}],"火影":[{"name":"漩渦鳴人"}],"空分类":[]}`, string(data))
}

func TestCatalogRoundTripPreservesOrder(t *testing.T) {
	t.Parallel()

	raw := `{"z":[{"name":"1"}],"a":[{"name":"2"},{"name":"2"}],"m":[]}`

	var c Catalog
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	assert.Equal(t, []string{"z", "a", "m"}, c.Names())
	assert.Equal(t, 3, c.ItemCount())

	items, ok := c.Get("a")
	require.True(t, ok)
	assert.Len(t, items, 2, "duplicates are kept")

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, raw, string(out))
}

func TestCatalogUnmarshalRejectsNonObject(t *testing.T) {
	t.Parallel()

	var c Catalog
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &c))
	assert.Error(t, json.Unmarshal([]byte(`{"a":"b"}`), &c))
}

func TestCatalogUnmarshalNull(t *testing.T) {
	t.Parallel()

	var c Catalog
	require.NoError(t, json.Unmarshal([]byte(`null`), &c))
	assert.Equal(t, 0, c.Len())
}

func TestCatalogAddReplacesInPlace(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	c.Add("a", []Item{{Name: "x"}})
	c.Add("b", nil)
	c.Add("a", []Item{{Name: "y"}})

	assert.Equal(t, []string{"a", "b"}, c.Names())
	items, _ := c.Get("a")
	assert.Equal(t, []Item{{Name: "y"}}, items)
}

func TestCatalogRoundTripKeepsCachedValuesVerbatim(t *testing.T) {
	t.Parallel()

	raw := `{"火影":[{"name":"鳴人","url":"https://x"}],"空":null}`

	var c Catalog
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	assert.Equal(t, 1, c.ItemCount())

	items, ok := c.Get("空")
	require.True(t, ok)
	assert.Empty(t, items)

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, raw, string(out))

	c.Add("火影", []Item{{Name: "佐助"}})
	out, err = json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `{"火影":[{"name":"佐助"}],"空":null}`, string(out), "replaced category drops the cached value")
}
