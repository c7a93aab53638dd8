package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klytics/sheetkit/internal/table"
)

func row() table.Row {
	return table.Row{
		"Name":       table.Text("Al"),
		"Age":        table.Number(30),
		"Unit price": table.Text("12.5"),
		"Active":     table.Bool(true),
		"Note":       table.Empty(),
	}
}

func TestMatch(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{`Age > 26`, true},
		{`Age < 26`, false},
		{`Name == "Al" && Active`, true},
		{`row["Unit price"] >= 10`, true},
		{`Note == ""`, true},
		{`Name startsWith "A"`, true},
		{`Missing == nil`, true},
	}
	for _, tc := range cases {
		p, err := Compile(tc.src)
		require.NoError(t, err, tc.src)
		assert.Equal(t, tc.want, p.Match(row()), tc.src)
	}
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile("")
	assert.Error(t, err)

	_, err = Compile("Age >")
	assert.Error(t, err)

	_, err = Compile(`"just a string"`)
	assert.Error(t, err)
}

func TestEvalErrorIsNoMatch(t *testing.T) {
	p, err := Compile(`Name > 3`)
	require.NoError(t, err)

	_, evalErr := p.Eval(row())
	assert.Error(t, evalErr)
	assert.False(t, p.Match(row()))
}

func TestCompileCaches(t *testing.T) {
	a, err := Compile(" Age > 1 ")
	require.NoError(t, err)
	b, err := Compile("Age > 1")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, "Age > 1", a.String())
}

func TestEnv(t *testing.T) {
	env := Env(row())
	assert.Equal(t, 30.0, env["Age"])
	assert.Equal(t, 12.5, env["Unit price"])
	assert.Equal(t, true, env["Active"])
	assert.Equal(t, "", env["Note"])
	assert.Contains(t, env, "row")
}

func TestEnvKeepsColumnNamedRow(t *testing.T) {
	r := table.Row{"row": table.Number(7), "Age": table.Number(30)}
	assert.Equal(t, 7.0, Env(r)["row"])

	p, err := Compile("row == 7 && Age > 1")
	require.NoError(t, err)
	assert.True(t, p.Match(r))
}
