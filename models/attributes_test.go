package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestAttributes_UnmarshalJSONKeepsOrder(t *testing.T) {
	var a Attributes
	require.NoError(t, json.Unmarshal([]byte(`{"zeta":1,"alpha":"x","mid":{"b":2,"a":1},"list":[1,2],"none":null}`), &a))

	assert.Equal(t, []string{"zeta", "alpha", "mid", "list", "none"}, a.Keys())
	v, ok := a.Get("zeta")
	require.True(t, ok)
	assert.Equal(t, json.Number("1"), v)
	v, ok = a.Get("none")
	assert.True(t, ok)
	assert.Nil(t, v)
	_, ok = a.Get("missing")
	assert.False(t, ok)
}

func TestAttributes_UnmarshalJSONDuplicateKeys(t *testing.T) {
	var a Attributes
	require.NoError(t, json.Unmarshal([]byte(`{"a":1,"b":2,"a":3}`), &a))
	assert.Equal(t, []string{"a", "b"}, a.Keys())
	v, _ := a.Get("a")
	assert.Equal(t, json.Number("3"), v)
}

func TestAttributes_UnmarshalLargeDocument(t *testing.T) {
	const n = 50000

	var doc strings.Builder
	var yamlDoc strings.Builder
	doc.WriteByte('{')
	for i := 0; i < n; i++ {
		fmt.Fprintf(&doc, `"attribute_%d":%d,`, i, i)
		fmt.Fprintf(&yamlDoc, "attribute_%d: %d\n", i, i)
	}
	doc.WriteString(`"attribute_0":"last"}`)

	start := time.Now()
	var a Attributes
	require.NoError(t, json.Unmarshal([]byte(doc.String()), &a))
	assert.Less(t, time.Since(start), 5*time.Second)
	require.Len(t, a, n)
	assert.Equal(t, Attribute{Key: "attribute_0", Value: "last"}, a[0])
	assert.Equal(t, "attribute_49999", a[n-1].Key)

	start = time.Now()
	var y Attributes
	require.NoError(t, yaml.Unmarshal([]byte(yamlDoc.String()), &y))
	assert.Less(t, time.Since(start), 5*time.Second)
	require.Len(t, y, n)
	assert.Equal(t, Attribute{Key: "attribute_1", Value: 1}, y[1])
}

func TestAttributes_UnmarshalJSONInvalid(t *testing.T) {
	var a Attributes
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &a))
	assert.Error(t, json.Unmarshal([]byte(`"x"`), &a))

	a = Attributes{{Key: "k"}}
	require.NoError(t, json.Unmarshal([]byte(`null`), &a))
	assert.Nil(t, a)

	require.NoError(t, json.Unmarshal([]byte(`{}`), &a))
	assert.NotNil(t, a)
	assert.Empty(t, a)
}

func TestAttributes_MarshalJSON(t *testing.T) {
	a := Attributes{{Key: "z", Value: 1}, {Key: "a", Value: "x"}, {Key: "n", Value: nil}}
	b, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"x","n":null}`, string(b))

	b, err = json.Marshal(Attributes{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(b))
}

func TestAttributes_YAML(t *testing.T) {
	var a Attributes
	require.NoError(t, yaml.Unmarshal([]byte("zeta: 1\nalpha: x\nflag: true\n"), &a))
	assert.Equal(t, []string{"zeta", "alpha", "flag"}, a.Keys())
	v, _ := a.Get("zeta")
	assert.Equal(t, 1, v)

	assert.Error(t, yaml.Unmarshal([]byte("- a\n- b\n"), &a))

	out, err := yaml.Marshal(Attributes{{Key: "b", Value: json.Number("2.5")}, {Key: "a", Value: "x"}})
	require.NoError(t, err)
	assert.Equal(t, "b: 2.5\na: x\n", string(out))
}

func TestAttributes_SetAndIntersect(t *testing.T) {
	var a Attributes
	a.Set("id", 1)
	a.Set("title", "x")
	a.Set("id", 2)
	assert.Equal(t, Attributes{{Key: "id", Value: 2}, {Key: "title", Value: "x"}}, a)

	other := Attributes{{Key: "title", Value: "ignored"}, {Key: "missing", Value: 0}}
	assert.Equal(t, Attributes{{Key: "title", Value: "x"}}, a.Intersect(other))
	assert.Empty(t, a.Intersect(nil))
}

func TestModel_DetectableAttributes(t *testing.T) {
	m := Model{Name: "product", Attributes: Attributes{{Key: "a", Value: 1}, {Key: "b", Value: 2}}}
	assert.Equal(t, m.Attributes, m.DetectableAttributes())
	assert.Equal(t, "product", m.IndexName())

	m.Searchable = Attributes{}
	assert.Empty(t, m.DetectableAttributes())

	m.Searchable = Attributes{{Key: "b"}}
	m.Index = "products"
	assert.Equal(t, Attributes{{Key: "b", Value: 2}}, m.DetectableAttributes())
	assert.Equal(t, "products", m.IndexName())
}
