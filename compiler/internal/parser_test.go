package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseClass(t *testing.T, content string) *Node {
	t.Helper()
	class, err := NewParser(tokenize(t, content)).ParseClassDeclaration()
	require.NoError(t, err, content)
	return class
}

func collectIdentifiers(node *Node) []*Identifier {
	var ret []*Identifier
	for _, child := range node.children {
		switch c := child.(type) {
		case *Identifier:
			ret = append(ret, c)
		case *Node:
			ret = append(ret, collectIdentifiers(c)...)
		}
	}
	return ret
}

func TestParser_ParseClassDeclaration(t *testing.T) {
	class := parseClass(t, `
class Main {
    field int x;
    method void set(int v) {
        let x = v;
        return;
    }
}`)
	expect := `class
  class
  class Main
  {
  classVarDec
    field
    int
    field x#0
    ;
  subroutineDec
    method
    void
    subroutine set
    (
    parameterList
      int
      argument v#1
    )
    subroutineBody
      {
      statements
        letStatement
          let
          field x#0
          =
          expression
            term
              argument v#1
          ;
        returnStatement
          return
          ;
      }
  }
`
	assert.Equal(t, expect, class.String())
}

func TestParser_ParseExpression(t *testing.T) {
	testData := []struct {
		Content string
		Expect  string
	}{
		{
			Content: "1 + 2 * 3",
			Expect: `expression
  term
    1
  +
  term
    2
  *
  term
    3
`,
		},
		{
			Content: "-(a)",
			Expect: `expression
  term
    -
    term
      (
      expression
        term
          subroutine a
      )
`,
		},
		{
			Content: `Output.printString("x")`,
			Expect: `expression
  term
    class Output
    .
    subroutine printString
    (
    expressionList
      expression
        term
          x
    )
`,
		},
		{
			Content: "~true & null",
			Expect: `expression
  term
    ~
    term
      true
  &
  term
    null
`,
		},
	}
	parser := &Parser{}
	for _, data := range testData {
		parser.reset(tokenize(t, data.Content))
		expression, err := parser.parseExpression()
		require.NoError(t, err, data.Content)
		assert.False(t, parser.hasRemainTokens(), data.Content)
		assert.Equal(t, data.Expect, expression.String(), data.Content)
	}
}

func TestParser_ParseStatements(t *testing.T) {
	testData := []struct {
		Content string
		Types   []NodeType
	}{
		{Content: "", Types: nil},
		{Content: "let a = 1; do f(); return;", Types: []NodeType{LetStatementNode, DoStatementNode, ReturnStatementNode}},
		{Content: "while (x) { let x = x - 1; } if (x) { } else { return 1; }", Types: []NodeType{WhileStatementNode, IfStatementNode}},
		{Content: "let a[i + 1] = b[2]; return a;", Types: []NodeType{LetStatementNode, ReturnStatementNode}},
	}
	parser := &Parser{}
	for _, data := range testData {
		parser.reset(tokenize(t, data.Content))
		statements, err := parser.parseStatements()
		require.NoError(t, err, data.Content)
		var types []NodeType
		for _, child := range statements.children {
			types = append(types, child.(*Node).tp)
		}
		assert.Equal(t, data.Types, types, data.Content)
	}
}

func TestParser_ParseIfStatement(t *testing.T) {
	parser := &Parser{}
	parser.reset(tokenize(t, "if (a) { let b = 1; } else { let b = 2; let c = 3; }"))
	statement, err := parser.parseIfStatement()
	require.NoError(t, err)
	blocks := statement.childNodes(StatementsNode)
	require.Len(t, blocks, 2)
	assert.Len(t, blocks[0].children, 1)
	assert.Len(t, blocks[1].children, 2)

	parser.reset(tokenize(t, "if (a) { }"))
	statement, err = parser.parseIfStatement()
	require.NoError(t, err)
	blocks = statement.childNodes(StatementsNode)
	require.Len(t, blocks, 1)
	assert.Empty(t, blocks[0].children)
}

func TestParser_Numbering(t *testing.T) {
	class := parseClass(t, `
class Point {
    field int x, y;
    static int count;
    static Point origin;
    method int dist(Point other, int scale) {
        var int dx, dy;
        var Array buf;
        return dx;
    }
    function void reset(int n) {
        var boolean done;
        return;
    }
}`)
	type slot struct {
		Kind      SymbolKind
		Index     int
		ClassType string
	}
	definitions := map[string]slot{}
	for _, id := range collectIdentifiers(class) {
		if !id.IsDefinition() || !id.Kind().IsStorage() {
			continue
		}
		index, ok := id.Index()
		require.True(t, ok, id.Name())
		definitions[id.Name()] = slot{Kind: id.Kind(), Index: index, ClassType: id.ClassType()}
	}
	expect := map[string]slot{
		"x":      {Kind: FieldSymbol, Index: 0},
		"y":      {Kind: FieldSymbol, Index: 1},
		"count":  {Kind: StaticSymbol, Index: 0},
		"origin": {Kind: StaticSymbol, Index: 1, ClassType: "Point"},
		"other":  {Kind: ArgumentSymbol, Index: 1, ClassType: "Point"},
		"scale":  {Kind: ArgumentSymbol, Index: 2},
		"dx":     {Kind: VarSymbol, Index: 0},
		"dy":     {Kind: VarSymbol, Index: 1},
		"buf":    {Kind: VarSymbol, Index: 2, ClassType: "Array"},
		"n":      {Kind: ArgumentSymbol, Index: 0},
		"done":   {Kind: VarSymbol, Index: 0},
	}
	assert.Equal(t, expect, definitions)
}

func TestParser_ResolveUsage(t *testing.T) {
	class := parseClass(t, `
class Game {
    field Ball ball;
    method void run() {
        var int ball2;
        do ball.move();
        do Screen.clear();
        do draw();
        let ball2 = Math.abs(ball2);
        return;
    }
}`)
	var usages []string
	for _, id := range collectIdentifiers(class) {
		if !id.IsDefinition() {
			usages = append(usages, id.String())
		}
	}
	expect := []string{
		"class Ball",
		"field ball#0", "subroutine move",
		"class Screen", "subroutine clear",
		"subroutine draw",
		"var ball2#0", "class Math", "subroutine abs", "var ball2#0",
	}
	assert.Equal(t, expect, usages)

	for _, id := range collectIdentifiers(class) {
		if id.Name() == "ball" && !id.IsDefinition() {
			assert.Equal(t, "Ball", id.ClassType())
		}
	}
}

func TestParser_SubroutineScopeReset(t *testing.T) {
	class := parseClass(t, `
class Main {
    function void a(int x) { var int y; return; }
    function void b() { let y = x; return; }
}`)
	subroutines := class.childNodes(SubroutineDeclarationNode)
	require.Len(t, subroutines, 2)
	for _, id := range collectIdentifiers(subroutines[1]) {
		if id.Name() == "x" || id.Name() == "y" {
			// Names of the previous subroutine are unknown here.
			assert.Equal(t, SubroutineSymbol, id.Kind(), id.Name())
		}
	}
}

func TestParser_Errors(t *testing.T) {
	testData := []struct {
		Content string
		Msg     string
	}{
		{
			Content: "class { }",
			Msg:     "class expected a class name identifier, got Symbol '{' instead at line 1",
		},
		{
			Content: "class Main {",
			Msg:     "class expected symbol '}', reached end of input instead",
		},
		{
			Content: "class Main { } x",
			Msg:     "class expected end of input, got Identifier 'x' instead at line 1",
		},
		{
			Content: "class Main { field void x; }",
			Msg:     "class variable declaration expected a type, got Keyword 'void' instead at line 1",
		},
		{
			Content: "class Main { field x; }",
			Msg:     "class variable declaration expected a variable name, got Symbol ';' instead at line 1",
		},
		{
			Content: "class Main { function void f() { let x 1; } }",
			Msg:     "let statement expected symbol '=', got IntegerConstant '1' instead at line 1",
		},
		{
			Content: "class Main { function void f() {\n let x = 1;\n var int y; } }",
			Msg:     "statements expected a statement keyword, got Keyword 'var' instead at line 3",
		},
		{
			Content: "class Main { function void f() { let x = ; } }",
			Msg:     "term expected an expression term, got Symbol ';' instead at line 1",
		},
		{
			Content: "class Main { function void f() { let x = let; } }",
			Msg:     "term expected a keyword constant, got Keyword 'let' instead at line 1",
		},
		{
			Content: "class Main { function void f() { do 1; } }",
			Msg:     "do statement expected a subroutine call, got IntegerConstant '1' instead at line 1",
		},
		{
			Content: "class Main { function void f() { do g; } }",
			Msg:     "do statement expected symbol '(' or '.', got Symbol ';' instead at line 1",
		},
		{
			Content: "class Main { function void f() { while (1) { } ",
			Msg:     "subroutine body expected symbol '}', reached end of input instead",
		},
		{
			Content: "class Main { static int s; function f() { } }",
			Msg:     "subroutine declaration expected a subroutine name, got Symbol '(' instead at line 1",
		},
	}
	for _, data := range testData {
		_, err := NewParser(tokenize(t, data.Content)).ParseClassDeclaration()
		require.Error(t, err, data.Content)
		var syntaxErr *SyntaxError
		require.True(t, errors.As(err, &syntaxErr), data.Content)
		assert.Equal(t, data.Msg, err.Error(), data.Content)
	}
}

func TestParser_DuplicateDeclaration(t *testing.T) {
	testData := []string{
		"class Main { field int x; static int x; }",
		"class Main { function void f(int a, int a) { return; } }",
		"class Main { function void f(int a) { var int a; return; } }",
	}
	for _, content := range testData {
		_, err := NewParser(tokenize(t, content)).ParseClassDeclaration()
		require.Error(t, err, content)
		assert.True(t, errors.Is(err, ErrDuplicateDeclaration), content)
	}

	// A local may shadow a field.
	parseClass(t, "class Main { field int x; method void f() { var int x; return; } }")
}
