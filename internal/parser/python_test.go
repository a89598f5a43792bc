package parser

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bserrors "github.com/standardbeagle/blockscan/internal/errors"
	"github.com/standardbeagle/blockscan/internal/pyast"
)

func mustParse(t *testing.T, src string) *pyast.Module {
	t.Helper()
	mod, err := ParsePython(src)
	require.NoError(t, err)
	require.NotNil(t, mod)
	return mod
}

func TestParse_FunctionShape(t *testing.T) {
	src := `import os

@decorator
async def fetch(a, b=1, *args, c, d: int = 2, **kw) -> str:
    """Fetch things."""
    x = a
    return x
`
	mod := mustParse(t, src)

	fns := pyast.Walk[*pyast.FunctionDef](mod)
	require.Len(t, fns, 1)
	fn := fns[0]

	assert.Equal(t, "fetch", fn.Name)
	assert.True(t, fn.Async)
	assert.Equal(t, 4, fn.Line, "line is the def line, not the decorator")
	assert.Equal(t, 7, fn.EndLine)
	assert.NotNil(t, fn.Returns)
	assert.Len(t, fn.Decorators, 1)

	assert.Len(t, fn.Params.Positional, 2)
	assert.Len(t, fn.Params.KeywordOnly, 2)
	require.NotNil(t, fn.Params.VarArg)
	assert.Equal(t, "args", fn.Params.VarArg.Name)
	require.NotNil(t, fn.Params.KwArg)
	assert.Equal(t, "kw", fn.Params.KwArg.Name)
	assert.Equal(t, 4, fn.Params.Count())

	doc, ok := fn.Docstring()
	assert.True(t, ok)
	assert.Equal(t, "Fetch things.", doc)
}

func TestParse_PositionalOnly(t *testing.T) {
	mod := mustParse(t, "def g(a, b, /, c, *, d):\n    pass\n")
	fn := pyast.Walk[*pyast.FunctionDef](mod)[0]

	assert.Len(t, fn.Params.PositionalOnly, 2)
	assert.Len(t, fn.Params.Positional, 1)
	assert.Len(t, fn.Params.KeywordOnly, 1)
	assert.Nil(t, fn.Params.VarArg)
	assert.Equal(t, 4, fn.Params.Count())
	assert.Nil(t, fn.Returns)
}

func TestParse_ElifChain(t *testing.T) {
	src := `if a:
    pass
elif b:
    pass
elif c:
    pass
else:
    pass
`
	mod := mustParse(t, src)
	require.Len(t, mod.Body, 1)

	ifs := pyast.Walk[*pyast.If](mod)
	assert.Len(t, ifs, 3)

	top := mod.Body[0].(*pyast.If)
	require.Len(t, top.Orelse, 1)
	second, ok := top.Orelse[0].(*pyast.If)
	require.True(t, ok)
	require.Len(t, second.Orelse, 1)
	third, ok := second.Orelse[0].(*pyast.If)
	require.True(t, ok)
	assert.Len(t, third.Orelse, 1)
	assert.Equal(t, 8, top.EndLine)
}

func TestParse_ExceptHandlers(t *testing.T) {
	src := `try:
    run()
except ValueError as err:
    pass
except:
    pass
finally:
    done()
`
	mod := mustParse(t, src)
	handlers := pyast.Walk[*pyast.ExceptHandler](mod)
	require.Len(t, handlers, 2)

	assert.False(t, handlers[0].Bare())
	assert.Equal(t, "err", handlers[0].Name)
	assert.True(t, handlers[1].Bare())
	assert.Equal(t, 5, handlers[1].Line)

	try := mod.Body[0].(*pyast.Try)
	assert.Len(t, try.Finalbody, 1)
}

func TestParse_Assignments(t *testing.T) {
	mod := mustParse(t, "a = b = 'value'\ncount: int = 3\ntotal += 1\n")
	require.Len(t, mod.Body, 3)

	assign, ok := mod.Body[0].(*pyast.Assign)
	require.True(t, ok)
	require.Len(t, assign.Targets, 2)
	assert.Equal(t, "a", assign.Targets[0].(*pyast.Name).ID)
	assert.Equal(t, "b", assign.Targets[1].(*pyast.Name).ID)
	c, ok := assign.Value.(*pyast.Constant)
	require.True(t, ok)
	assert.Equal(t, pyast.ConstStr, c.Kind)
	assert.Equal(t, "value", c.Value)

	_, ok = mod.Body[1].(*pyast.AnnAssign)
	assert.True(t, ok)

	aug, ok := mod.Body[2].(*pyast.AugAssign)
	require.True(t, ok)
	assert.Equal(t, "+=", aug.Op)
}

func TestParse_StringLiterals(t *testing.T) {
	mod := mustParse(t, `a = "x\ty"
b = b"raw bytes"
c = f"hello {name}"
d = r"\d+"
e = "ab" "cd"
`)
	values := make([]pyast.Expr, 0, 5)
	for _, s := range mod.Body {
		values = append(values, s.(*pyast.Assign).Value)
	}

	assert.Equal(t, "x\ty", values[0].(*pyast.Constant).Value)
	assert.Equal(t, pyast.ConstBytes, values[1].(*pyast.Constant).Kind)

	js, ok := values[2].(*pyast.JoinedStr)
	require.True(t, ok)
	require.Len(t, js.Values, 1)
	assert.Equal(t, "name", js.Values[0].(*pyast.Name).ID)

	assert.Equal(t, `\d+`, values[3].(*pyast.Constant).Value)
	assert.Equal(t, "abcd", values[4].(*pyast.Constant).Value)
}

func TestParse_CallsAndOperators(t *testing.T) {
	mod := mustParse(t, `subprocess.run(cmd, shell=True, **opts)
ok = a and b and c or d
flag = x if y else z
if __name__ == "__main__":
    main()
`)
	calls := pyast.Walk[*pyast.Call](mod)
	require.Len(t, calls, 2)

	run := calls[0]
	attr, ok := run.Func.(*pyast.Attribute)
	require.True(t, ok)
	assert.Equal(t, "run", attr.Attr)
	assert.Equal(t, "subprocess", attr.Value.(*pyast.Name).ID)
	require.Len(t, run.Keywords, 2)
	assert.Equal(t, "shell", run.Keywords[0].Arg)
	assert.Equal(t, pyast.ConstTrue, run.Keywords[0].Value.(*pyast.Constant).Kind)
	assert.Equal(t, "", run.Keywords[1].Arg)

	ops := pyast.Walk[*pyast.BoolOp](mod)
	require.Len(t, ops, 2)
	assert.Equal(t, "or", ops[0].Op)
	require.Len(t, ops[0].Values, 2)
	assert.Equal(t, "and", ops[1].Op)
	assert.Len(t, ops[1].Values, 3)

	assert.Len(t, pyast.Walk[*pyast.IfExp](mod), 1)

	guard := mod.Body[3].(*pyast.If)
	cmp, ok := guard.Test.(*pyast.Compare)
	require.True(t, ok)
	assert.Equal(t, []string{"=="}, cmp.Ops)
	assert.Equal(t, "__name__", cmp.Left.(*pyast.Name).ID)
	assert.Equal(t, "__main__", cmp.Comparators[0].(*pyast.Constant).Value)
}

func TestParse_WildcardImport(t *testing.T) {
	mod := mustParse(t, "from os.path import *\nfrom sys import argv, path as p\n")
	require.Len(t, mod.Body, 2)

	wild := mod.Body[0].(*pyast.ImportFrom)
	assert.True(t, wild.Wildcard)
	assert.Equal(t, "os.path", wild.Module)

	named := mod.Body[1].(*pyast.ImportFrom)
	assert.False(t, named.Wildcard)
	assert.Equal(t, []string{"argv", "path"}, named.Names)
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
	}{
		{"unbalanced paren", "x = 1\ndef f(:\n    pass\n", ""},
		{"python2 print", "print 'hello'\n", "Missing parentheses in call to 'print'"},
		{"python2 exec", "exec code\n", "Missing parentheses in call to 'exec'"},
		{"unindented function body", "def f():\nreturn 1\n", "expected an indented block after function definition on line 1"},
		{"unindented if body", "if x:\npass\n", "expected an indented block after 'if' statement on line 1"},
		{"class without body", "class A:\n", "expected an indented block after class definition on line 1"},
		{"comment-only body", "def f():\n    # later\n", "expected an indented block"},
		{"unexpected indent", "x = 1\n    y = 2\n", "unexpected indent"},
		{"indented first line", "    x = 1\n", "unexpected indent"},
		{"unindent to no outer level", "for x in y:\n    pass\n  z = 1\n", "unindent does not match any outer indentation level"},
		{"python2 except", "try:\n    pass\nexcept Exception, e:\n    pass\n", "multiple exception types must be parenthesized"},
		{"backtick repr", "x = `1`\n", "invalid syntax"},
		{"diamond operator", "x = 1 <> 2\n", "invalid syntax"},
		{"python2 raise", "raise ValueError, 'bad'\n", "invalid syntax"},
		{"leading zero integer", "x = 0777\n", "leading zeros in decimal integer literals"},
		{"python2 long", "x = 10L\n", "invalid decimal literal"},
		{"ur prefix", "x = ur'abc'\n", "invalid syntax"},
		{"default before plain parameter", "def f(a=1, b):\n    pass\n", "parameter without a default follows parameter with a default"},
		{"lambda default order", "g = lambda a=1, b: a\n", "parameter without a default follows parameter with a default"},
		{"bare generator beside argument", "f(x for x in y, 1)\n", "Generator expression must be parenthesized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod, err := ParsePython(tt.src)
			require.Error(t, err)
			assert.Nil(t, mod)

			var perr *bserrors.ParseError
			require.True(t, errors.As(err, &perr))
			assert.GreaterOrEqual(t, perr.Line, 1)
			if tt.message != "" {
				assert.Contains(t, perr.Message(), tt.message)
			}
		})
	}
}

func TestParse_SyntaxErrorLines(t *testing.T) {
	tests := []struct {
		src  string
		line int
	}{
		{"print 'hello'\n", 1},
		{"def f():\nreturn 1\n", 2},
		{"x = 1\n    y = 2\n", 2},
		{"for x in y:\n    pass\n  z = 1\n", 3},
		{"try:\n    pass\nexcept Exception, e:\n    pass\n", 3},
		{"a = 1\nb = 0777\nc = 0888\n", 2},
	}

	for _, tt := range tests {
		_, err := ParsePython(tt.src)
		var perr *bserrors.ParseError
		require.True(t, errors.As(err, &perr), "source %q", tt.src)
		assert.Equal(t, tt.line, perr.Line, "source %q", tt.src)
	}
}

func TestParse_ValidPython3Constructs(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"parenthesized generator beside argument", "f((x for x in y), 1)\n"},
		{"sole generator argument", "sum(x for x in y)\n"},
		{"comprehension over tuple", "r = [x for x in (1, 2)]\n"},
		{"tuple of exception types", "try:\n    pass\nexcept (KeyError, ValueError) as err:\n    pass\n"},
		{"octal and zero literals", "a = 0o777\nb = 00\nc = 0_0\nd = 0x1F\ne = 0777j\nf = 10\n"},
		{"valid prefixes", "a = rb'x'\nb = Rb'x'\nc = f'{a}'\nd = u'x'\ne = b''\n"},
		{"parameter order", "def f(a, b=1, *args, c, d=2, **kw):\n    pass\n"},
		{"keyword-only after default", "def f(a=1, *, b):\n    pass\n"},
		{"parenthesized raise", "raise ValueError('bad') from None\n"},
		{"inline suite", "if x: y = 1\nelse: y = 2\n"},
		{"semicolons", "a = 1; b = 2\n"},
		{"nested dedent", "if a:\n    if b:\n        pass\nz = 1\n"},
		{"comment at odd indent", "def f():\n    x = 1\n  # note\n    return x\n"},
		{"diamond in string and comment", "s = '<>'  # a <> b\nt = '`'\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePython(tt.src)
			assert.NoError(t, err)
		})
	}
}

func TestParse_Python3CallsAreNotStatements(t *testing.T) {
	mod := mustParse(t, "print('hello')\nexec(code)\n")
	calls := pyast.Walk[*pyast.Call](mod)
	require.Len(t, calls, 2)
	assert.Equal(t, "print", calls[0].Func.(*pyast.Name).ID)
	assert.Equal(t, "exec", calls[1].Func.(*pyast.Name).ID)
}

func TestParse_Empty(t *testing.T) {
	mod := mustParse(t, "")
	assert.Empty(t, mod.Body)
}

func TestParse_Concurrent(t *testing.T) {
	p := NewPythonParser()
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mod, err := p.Parse("def f(x):\n    return x * 2\n")
			if err != nil {
				errs <- err
				return
			}
			if len(pyast.Walk[*pyast.FunctionDef](mod)) != 1 {
				errs <- errors.New("expected one function")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestDecodeEscapes(t *testing.T) {
	tests := map[string]string{
		`plain`:     "plain",
		`a\nb`:      "a\nb",
		`quote\'s`:  "quote's",
		`dq\"`:      `dq"`,
		`\x41\101`:  "AA",
		`é`:         "é",
		`\d`:        `\d`,
		`\N{DASH}`:  `\N{DASH}`,
		`trailing\`: `trailing\`,
		`\0`:        "\x00",
	}
	for in, expected := range tests {
		assert.Equal(t, expected, decodeEscapes(in), in)
	}
}
