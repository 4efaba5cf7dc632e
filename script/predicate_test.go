package script

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playerVars() Vars {
	return Vars{"move": 0.0, "run_held": false, "stamina": 0.0, "state": ""}
}

func TestPredicateEval(t *testing.T) {
	tests := []struct {
		name string
		expr string
		vars Vars
		want bool
	}{
		{name: "moving", expr: "move > 0", vars: Vars{"move": 0.5}, want: true},
		{name: "still", expr: "move > 0", vars: Vars{"move": 0.0}, want: false},
		{name: "run_gate", expr: "run_held && stamina > 0", vars: Vars{"run_held": true, "stamina": 50.0}, want: true},
		{name: "run_exhausted", expr: "run_held && stamina > 0", vars: Vars{"run_held": true, "stamina": 0.0}, want: false},
		{name: "string_compare", expr: `state == "Crouch"`, vars: Vars{"state": "Crouch"}, want: true},
		{name: "math_module", expr: `import("math").abs(move) > 0.25`, vars: Vars{"move": -0.5}, want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Compile(tc.expr, playerVars())
			require.NoError(t, err)
			got, err := p.Eval(tc.vars)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile("   ", playerVars())
	assert.ErrorIs(t, err, ErrEmptyExpression)

	_, err = Compile("move >", playerVars())
	assert.Error(t, err)

	_, err = Compile("undeclared > 1", playerVars())
	assert.Error(t, err)
}

func TestPredicateFunc(t *testing.T) {
	p, err := Compile("move > 0", playerVars())
	require.NoError(t, err)

	move := 0.0
	nop := zerolog.Nop()
	when := p.Func(func() Vars { return Vars{"move": move} }, &nop)
	assert.False(t, when())
	move = 1
	assert.True(t, when())
	assert.Equal(t, "move > 0", p.Expr())
}

func TestPredicateRuntimeErrorReadsFalse(t *testing.T) {
	p, err := Compile("stamina / 0 > 1", Vars{"stamina": 1})
	require.NoError(t, err)
	when := p.Func(func() Vars { return Vars{"stamina": 1} }, nil)
	assert.NotPanics(t, func() { assert.False(t, when()) })
}

func TestPredicateRecoversAfterDivideByZero(t *testing.T) {
	p, err := Compile("10 / d > 1", Vars{"d": 1})
	require.NoError(t, err)

	ok, err := p.Eval(Vars{"d": 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "10 / d > 1")
	assert.False(t, ok)

	ok, err = p.Eval(Vars{"d": 5})
	require.NoError(t, err)
	assert.True(t, ok)
}
