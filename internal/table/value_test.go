package table

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

func TestValueString(t *testing.T) {
	assert.Equal(t, "", Empty().String())
	assert.Equal(t, "30", Number(30).String())
	assert.Equal(t, "2.5", Number(2.5).String())
	assert.Equal(t, "TRUE", Bool(true).String())
	assert.Equal(t, "FALSE", Bool(false).String())
	assert.Equal(t, "x", Text("x").String())
	assert.True(t, Text("").IsEmpty())
}

func TestValueFloat(t *testing.T) {
	f, ok := Number(3).Float()
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	f, ok = Text(" 4.5 ").Float()
	assert.True(t, ok)
	assert.Equal(t, 4.5, f)

	_, ok = Text("12abc").Float()
	assert.False(t, ok)
	_, ok = Empty().Float()
	assert.False(t, ok)
	_, ok = Bool(true).Float()
	assert.False(t, ok)

	for _, s := range []string{"nan", "NaN", "Nan", "inf", "-Inf", "Infinity", "+infinity"} {
		_, ok = Text(s).Float()
		assert.False(t, ok, s)
	}
}

func TestValueJSON(t *testing.T) {
	data, err := json.Marshal(Row{"a": Number(1), "b": Text("x"), "c": Empty(), "d": Bool(true)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1,"b":"x","c":"","d":true}`, string(data))
}

func TestCompare(t *testing.T) {
	col := collate.New(language.Und)
	assert.Equal(t, -1, Compare(col, Number(2), Text("10")))
	assert.Equal(t, 1, Compare(col, Text("b"), Text("A")))
	assert.Equal(t, 0, Compare(col, Number(2), Text("2")))
	assert.Equal(t, -1, Compare(col, Empty(), Text("a")))
	assert.Equal(t, 1, Compare(col, Text("nan"), Number(10)))
	assert.Equal(t, -1, Compare(col, Number(10), Text("nan")))
}
