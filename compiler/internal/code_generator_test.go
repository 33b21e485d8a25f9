package internal

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileSource(t *testing.T, content string) string {
	t.Helper()
	buf := &bytes.Buffer{}
	_, err := CompileSource(strings.NewReader(content), buf)
	require.NoError(t, err, content)
	return buf.String()
}

func TestCodeGenerator_Seven(t *testing.T) {
	content := `
// File name: projects/11/Seven/Main.jack

/**
 * Computes the value of 1 + (2 * 3) and prints the result
 * at the top-left of the screen.
 */
class Main
        {

            function void main()
            {
                do Output.printInt(1 + (2 * 3));
      return;
            }

        }
`
	expect := lines(
		"function Main.main 0",
		"push constant 1",
		"push constant 2",
		"push constant 3",
		"call Math.multiply 2",
		"add",
		"call Output.printInt 1",
		"pop temp 0",
		"push constant 0",
		"return",
	)
	assert.Equal(t, expect, compileSource(t, content))
}

func TestCodeGenerator_Generate(t *testing.T) {
	testData := []struct {
		Name    string
		Content string
		Expect  string
	}{
		{
			Name: "constructor and method",
			Content: `
class Point {
    static int count;
    field int x, y;
    constructor Point new(int ax, int ay) {
        let x = ax;
        let y = ay;
        return this;
    }
    method int getX() { return x; }
}`,
			Expect: lines(
				"function Point.new 0",
				"push constant 2",
				"call Memory.alloc 1",
				"pop pointer 0",
				"push argument 0",
				"pop this 0",
				"push argument 1",
				"pop this 1",
				"push pointer 0",
				"return",
				"function Point.getX 0",
				"push argument 0",
				"pop pointer 0",
				"push this 0",
				"return",
			),
		},
		{
			Name: "labels restart per subroutine",
			Content: `
class Main {
    function void a() {
        var int i;
        while (i < 3) { let i = i + 1; }
        return;
    }
    function int b(int n) {
        while (n) { let n = n - 1; }
        if (n) { return 1; }
        return 0;
    }
}`,
			Expect: lines(
				"function Main.a 1",
				"label WHILE_EXP0",
				"push local 0",
				"push constant 3",
				"lt",
				"not",
				"if-goto WHILE_END0",
				"push local 0",
				"push constant 1",
				"add",
				"pop local 0",
				"goto WHILE_EXP0",
				"label WHILE_END0",
				"push constant 0",
				"return",
				"function Main.b 0",
				"label WHILE_EXP0",
				"push argument 0",
				"not",
				"if-goto WHILE_END0",
				"push argument 0",
				"push constant 1",
				"sub",
				"pop argument 0",
				"goto WHILE_EXP0",
				"label WHILE_END0",
				"push argument 0",
				"if-goto IF_TRUE0",
				"goto IF_FALSE0",
				"label IF_TRUE0",
				"push constant 1",
				"return",
				"label IF_FALSE0",
				"push constant 0",
				"return",
			),
		},
		{
			Name: "if else",
			Content: `
class Main {
    function int max(int a, int b) {
        if (a > b) { return a; } else { return b; }
    }
}`,
			Expect: lines(
				"function Main.max 0",
				"push argument 0",
				"push argument 1",
				"gt",
				"if-goto IF_TRUE0",
				"goto IF_FALSE0",
				"label IF_TRUE0",
				"push argument 0",
				"return",
				"goto IF_END0",
				"label IF_FALSE0",
				"push argument 1",
				"return",
				"label IF_END0",
			),
		},
		{
			Name: "nested if",
			Content: `
class Main {
    function void f(boolean a, boolean b) {
        if (a) { if (b) { } }
        return;
    }
}`,
			Expect: lines(
				"function Main.f 0",
				"push argument 0",
				"if-goto IF_TRUE0",
				"goto IF_FALSE0",
				"label IF_TRUE0",
				"push argument 1",
				"if-goto IF_TRUE1",
				"goto IF_FALSE1",
				"label IF_TRUE1",
				"label IF_FALSE1",
				"label IF_FALSE0",
				"push constant 0",
				"return",
			),
		},
		{
			Name: "arrays",
			Content: `
class Main {
    function void f() {
        var Array a;
        var int i;
        let a[i] = a[i + 1];
        return;
    }
}`,
			Expect: lines(
				"function Main.f 2",
				"push local 1",
				"push local 0",
				"add",
				"push local 0",
				"push local 1",
				"push constant 1",
				"add",
				"add",
				"pop pointer 1",
				"push that 0",
				"pop temp 0",
				"pop pointer 1",
				"push temp 0",
				"pop that 0",
				"push constant 0",
				"return",
			),
		},
		{
			Name: "constants",
			Content: `
class Main {
    function void f() {
        var boolean b;
        let b = true;
        let b = false;
        let b = null;
        do Output.printString("ok");
        return;
    }
}`,
			Expect: lines(
				"function Main.f 1",
				"push constant 0",
				"not",
				"pop local 0",
				"push constant 0",
				"pop local 0",
				"push constant 0",
				"pop local 0",
				"push constant 2",
				"call String.new 1",
				"push constant 111",
				"call String.appendChar 2",
				"push constant 107",
				"call String.appendChar 2",
				"call Output.printString 1",
				"pop temp 0",
				"push constant 0",
				"return",
			),
		},
		{
			Name: "operators fold left to right",
			Content: `
class Main {
    function int f(int x, int y) {
        let x = 1 + 2 * 3 - 4;
        return -x / ~y;
    }
}`,
			Expect: lines(
				"function Main.f 0",
				"push constant 1",
				"push constant 2",
				"add",
				"push constant 3",
				"call Math.multiply 2",
				"push constant 4",
				"sub",
				"pop argument 0",
				"push argument 0",
				"neg",
				"push argument 1",
				"not",
				"call Math.divide 2",
				"return",
			),
		},
		{
			Name: "calls",
			Content: `
class Game {
    static int count;
    field Ball ball;
    method void run(int speed) {
        do ball.move(speed, count);
        do draw();
        let count = Game.total(this);
        return;
    }
}`,
			Expect: lines(
				"function Game.run 0",
				"push argument 0",
				"pop pointer 0",
				"push this 0",
				"push argument 1",
				"push static 0",
				"call Ball.move 3",
				"pop temp 0",
				"push pointer 0",
				"call Game.draw 1",
				"pop temp 0",
				"push pointer 0",
				"call Game.total 1",
				"pop static 0",
				"push constant 0",
				"return",
			),
		},
		{
			Name: "call through a local",
			Content: `
class Main {
    function void main() {
        var Point p, q;
        let q = Point.new(1, 2);
        let p = q.plus(q);
        return;
    }
}`,
			Expect: lines(
				"function Main.main 2",
				"push constant 1",
				"push constant 2",
				"call Point.new 2",
				"pop local 1",
				"push local 1",
				"push local 1",
				"call Point.plus 2",
				"pop local 0",
				"push constant 0",
				"return",
			),
		},
	}
	for _, data := range testData {
		assert.Equal(t, data.Expect, compileSource(t, data.Content), data.Name)
	}
}

func TestCodeGenerator_Repeatable(t *testing.T) {
	content := `
class Main {
    function void main() {
        var int i;
        while (i < 10) { if (i = 5) { do Output.printInt(i); } let i = i + 1; }
        return;
    }
}`
	first := compileSource(t, content)
	assert.Equal(t, first, compileSource(t, content))

	// A tree can be generated more than once as well.
	class := parseClass(t, content)
	a, b := &bytes.Buffer{}, &bytes.Buffer{}
	require.NoError(t, NewCodeGenerator(NewVMWriter(a), zerolog.Nop()).Generate(class))
	require.NoError(t, NewCodeGenerator(NewVMWriter(b), zerolog.Nop()).Generate(class))
	assert.Equal(t, first, a.String())
	assert.Equal(t, first, b.String())
}

func TestCodeGenerator_Errors(t *testing.T) {
	testData := []struct {
		Content string
		Msg     string
	}{
		{
			Content: "class Main { function void f() { var int n; do n.foo(); return; } }",
			Msg:     "cannot generate subroutine call: n is not an object\nVM generated so far:\nfunction Main.f 1\n",
		},
		{
			Content: "class Main { function void f() { let g = 1; return; } }",
			Msg:     "cannot generate let statement: subroutine g is not a variable\nVM generated so far:\nfunction Main.f 0\npush constant 1\n",
		},
		{
			Content: "class Main { function void f() { do Main.g(h); return; } }",
			Msg:     "cannot generate term: subroutine h is not a variable\nVM generated so far:\nfunction Main.f 0\n",
		},
	}
	for _, data := range testData {
		buf := &bytes.Buffer{}
		_, err := CompileSource(strings.NewReader(data.Content), buf)
		require.Error(t, err, data.Content)
		var genErr *CodeGenError
		require.True(t, errors.As(err, &genErr), data.Content)
		assert.Equal(t, data.Msg, err.Error(), data.Content)
	}

	generator := NewCodeGenerator(NewVMWriter(&bytes.Buffer{}), zerolog.Nop())
	err := generator.Generate(newNode(StatementsNode))
	assert.EqualError(t, err, "cannot generate class: expected a class node\nVM generated so far:\n")
}

func TestCodeGenerator_WriteError(t *testing.T) {
	class := parseClass(t, "class Main { function void f() { return; } }")
	generator := NewCodeGenerator(NewVMWriter(&failingWriter{}), zerolog.Nop())
	assert.EqualError(t, generator.Generate(class), "disk full")
}

func TestCodeGenerator_Logging(t *testing.T) {
	logs := &bytes.Buffer{}
	logger := zerolog.New(logs).Level(zerolog.DebugLevel)
	class := parseClass(t, "class Main { function void f() { var int a, b; return; } }")
	generator := NewCodeGenerator(NewVMWriter(&bytes.Buffer{}), logger)
	require.NoError(t, generator.Generate(class))
	assert.Equal(t, "Main", generator.ClassName())
	assert.Contains(t, logs.String(), `"subroutine":"f"`)
	assert.Contains(t, logs.String(), `"locals":2`)
	assert.Contains(t, logs.String(), `"message":"generating subroutine"`)
}
