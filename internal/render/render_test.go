package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// stubDir returns a get_dir style helper backed by a fixed map.
func stubDir(dirs map[string]string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "repository", Type: cty.String}},
		Type:   function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			name := args[0].AsString()
			dir, ok := dirs[name]
			if !ok {
				return cty.NilVal, assert.AnError
			}
			return cty.StringVal(dir), nil
		},
	})
}

func TestNewEngine(t *testing.T) {
	t.Run("valid delimiters", func(t *testing.T) {
		e, err := NewEngine(DefaultDelimiters)
		require.NoError(t, err)
		require.NotNil(t, e)
	})

	t.Run("empty delimiter rejected", func(t *testing.T) {
		_, err := NewEngine(Delimiters{Start: "", End: "%]"})
		assert.Error(t, err)
	})

	t.Run("identical delimiters rejected", func(t *testing.T) {
		_, err := NewEngine(Delimiters{Start: "%%", End: "%%"})
		assert.Error(t, err)
	})
}

func TestRenderPassthrough(t *testing.T) {
	e, err := NewEngine(DefaultDelimiters)
	require.NoError(t, err)

	text := "plain: yaml\nwith: [no expressions]\n"
	out, err := e.Render(text, NewContext())
	require.NoError(t, err)
	assert.Equal(t, text, out)
}

func TestRenderPipeFilter(t *testing.T) {
	e, err := NewEngine(DefaultDelimiters)
	require.NoError(t, err)

	rctx := NewContext()
	rctx.Functions["get_dir"] = stubDir(map[string]string{
		"asdf": "/home/user/.unfurl/asdf",
	})

	out, err := e.Render(`before [% "asdf" | get_dir %] after`, rctx)
	require.NoError(t, err)
	assert.Equal(t, "before /home/user/.unfurl/asdf after", out)
}

func TestRenderFunctionCallForm(t *testing.T) {
	e, err := NewEngine(DefaultDelimiters)
	require.NoError(t, err)

	rctx := NewContext()
	rctx.Functions["get_dir"] = stubDir(map[string]string{"asdf": "/tmp/asdf"})

	out, err := e.Render(`[% get_dir("asdf") %]`, rctx)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/asdf", out)
}

func TestRenderVariables(t *testing.T) {
	e, err := NewEngine(DefaultDelimiters)
	require.NoError(t, err)

	rctx := NewContext()
	rctx.Variables["version"] = cty.StringVal("1.2.3")

	out, err := e.Render("tool-[% version %]", rctx)
	require.NoError(t, err)
	assert.Equal(t, "tool-1.2.3", out)
}

func TestRenderUnresolvedReference(t *testing.T) {
	e, err := NewEngine(DefaultDelimiters)
	require.NoError(t, err)

	t.Run("missing variable names the symbol", func(t *testing.T) {
		out, err := e.Render("[% missing_var %]", NewContext())
		assert.Empty(t, out)

		var unresolved *UnresolvedReferenceError
		require.ErrorAs(t, err, &unresolved)
		assert.Equal(t, "missing_var", unresolved.Symbol)
	})

	t.Run("missing helper names the symbol", func(t *testing.T) {
		out, err := e.Render(`[% "asdf" | get_dir %]`, NewContext())
		assert.Empty(t, out)

		var unresolved *UnresolvedReferenceError
		require.ErrorAs(t, err, &unresolved)
		assert.Equal(t, "get_dir", unresolved.Symbol)
	})
}

func TestRenderAllOrNothing(t *testing.T) {
	e, err := NewEngine(DefaultDelimiters)
	require.NoError(t, err)

	rctx := NewContext()
	rctx.Variables["known"] = cty.StringVal("x")

	// The first expression resolves, the second does not. The output must
	// be empty, not the partially substituted prefix.
	out, err := e.Render("[% known %] then [% unknown %]", rctx)
	assert.Error(t, err)
	assert.Empty(t, out)
}

func TestRenderIdempotent(t *testing.T) {
	e, err := NewEngine(DefaultDelimiters)
	require.NoError(t, err)

	rctx := NewContext()
	rctx.Variables["name"] = cty.StringVal("localhost")

	first, err := e.Render("instance: [% name %]\n", rctx)
	require.NoError(t, err)

	// Rendering the rendered output with an empty context is the identity.
	second, err := e.Render(first, NewContext())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderDeterministic(t *testing.T) {
	e, err := NewEngine(DefaultDelimiters)
	require.NoError(t, err)

	rctx := NewContext()
	rctx.Functions["get_dir"] = stubDir(map[string]string{"a": "/d/a", "b": "/d/b"})

	text := `[% "a" | get_dir %]:[% "b" | get_dir %]`
	first, err := e.Render(text, rctx)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := e.Render(text, rctx)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRenderCustomDelimiters(t *testing.T) {
	e, err := NewEngine(Delimiters{Start: "<<", End: ">>"})
	require.NoError(t, err)

	rctx := NewContext()
	rctx.Variables["v"] = cty.StringVal("ok")

	out, err := e.Render("value=<< v >>", rctx)
	require.NoError(t, err)
	assert.Equal(t, "value=ok", out)
}

func TestRenderUnterminatedExpression(t *testing.T) {
	e, err := NewEngine(DefaultDelimiters)
	require.NoError(t, err)

	out, err := e.Render("broken [% v", NewContext())
	assert.Empty(t, out)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestRenderHelperFailure(t *testing.T) {
	e, err := NewEngine(DefaultDelimiters)
	require.NoError(t, err)

	rctx := NewContext()
	rctx.Functions["get_dir"] = stubDir(map[string]string{})

	out, err := e.Render(`[% "nope" | get_dir %]`, rctx)
	assert.Empty(t, out)

	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
}
