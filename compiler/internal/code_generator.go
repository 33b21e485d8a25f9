package internal

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
)

// CodeGenerator walks the tree of one class and writes its vm code. The tree must come
// from the Parser: every storage identifier is already resolved to a slot.
type CodeGenerator struct {
	writer     *VMWriter
	logger     zerolog.Logger
	className  string
	fieldCount int
}

func NewCodeGenerator(writer *VMWriter, logger zerolog.Logger) *CodeGenerator {
	return &CodeGenerator{writer: writer, logger: logger}
}

// ClassName is the name of the last class passed to Generate.
func (generator *CodeGenerator) ClassName() string {
	return generator.className
}

// Generate writes every subroutine of class in declaration order. Generation stops at
// the first error, a *CodeGenError or the writer's error.
func (generator *CodeGenerator) Generate(class *Node) error {
	err := generator.generateClass(class)
	if err != nil {
		return err
	}
	return generator.writer.Err()
}

func (generator *CodeGenerator) generateClass(class *Node) error {
	if class == nil || class.tp != ClassNode {
		return generator.makeError("class", "expected a class node")
	}
	name, ok := identifierAt(class.children, 1)
	if !ok {
		return generator.makeError("class", "missing class name")
	}
	generator.className = name.Name()
	generator.fieldCount = 0
	for _, classVarDec := range class.childNodes(ClassVariableDeclarationNode) {
		generator.fieldCount += countDefinitions(classVarDec, FieldSymbol)
	}
	for _, subroutineDec := range class.childNodes(SubroutineDeclarationNode) {
		err := generator.generateSubroutine(subroutineDec)
		if err != nil {
			return err
		}
	}
	return nil
}

// countDefinitions counts the names of kind declared in a declaration node, every comma
// separated name included.
func countDefinitions(node *Node, kind SymbolKind) int {
	ret := 0
	for _, child := range node.children {
		if id, ok := child.(*Identifier); ok && id.isDefinition && id.kind == kind {
			ret++
		}
	}
	return ret
}

// function className.subroutineName nLocals
// followed by the prologue:
// * constructor: allocate the fields and bind this.
// * method: bind this to argument 0.
// * function: nothing.
func (generator *CodeGenerator) generateSubroutine(subroutineDec *Node) error {
	const construct = "subroutine declaration"
	subroutineTP, ok := tokenAt(subroutineDec.children, 0)
	if !ok {
		return generator.makeError(construct, "missing subroutine keyword")
	}
	name, ok := identifierAt(subroutineDec.children, 2)
	if !ok {
		return generator.makeError(construct, "missing subroutine name")
	}
	bodies := subroutineDec.childNodes(SubroutineBodyNode)
	if len(bodies) != 1 {
		return generator.makeError(construct, "missing subroutine body")
	}
	body := bodies[0]
	nLocals := 0
	for _, varDec := range body.childNodes(VariableDeclarationNode) {
		nLocals += countDefinitions(varDec, VarSymbol)
	}

	generator.writer.StartSubroutine()
	generator.writer.WriteFunction(generator.className+"."+name.Name(), nLocals)
	switch subroutineTP.content {
	case "constructor":
		generator.writer.WriteAlloc(generator.fieldCount)
	case "method":
		generator.writer.WriteBindReceiver()
	case "function":
	default:
		return generator.makeError(construct, fmt.Sprintf("unknown subroutine kind %q", subroutineTP.content))
	}
	generator.logger.Debug().
		Str("class", generator.className).
		Str("subroutine", name.Name()).
		Str("kind", subroutineTP.content).
		Int("locals", nLocals).
		Msg("generating subroutine")

	statements := body.childNodes(StatementsNode)
	if len(statements) != 1 {
		return generator.makeError(construct, "missing statements")
	}
	return generator.generateStatements(statements[0])
}

func (generator *CodeGenerator) generateStatements(statements *Node) error {
	for _, child := range statements.children {
		statement, ok := child.(*Node)
		if !ok {
			return generator.makeError("statements", "expected a statement node")
		}
		var err error
		switch statement.tp {
		case LetStatementNode:
			err = generator.generateLetStatement(statement)
		case IfStatementNode:
			err = generator.generateIfStatement(statement)
		case WhileStatementNode:
			err = generator.generateWhileStatement(statement)
		case DoStatementNode:
			err = generator.generateDoStatement(statement)
		case ReturnStatementNode:
			err = generator.generateReturnStatement(statement)
		default:
			err = generator.makeError("statements", fmt.Sprintf("unexpected %s node", statement.tp))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// let varName = expression ;
//   expression, pop varName
// let varName[index] = expression ;
//   index, push varName, add, expression, then the array write idiom.
func (generator *CodeGenerator) generateLetStatement(statement *Node) error {
	const construct = "let statement"
	target, ok := identifierAt(statement.children, 1)
	if !ok {
		return generator.makeError(construct, "missing target variable")
	}
	if !isSymbolAt(statement.children, 2, "[") {
		value, ok := nodeAt(statement.children, 3, ExpressionNode)
		if !ok {
			return generator.makeError(construct, "missing value expression")
		}
		err := generator.generateExpression(value)
		if err != nil {
			return err
		}
		segment, index, err := generator.variableLocation(target, construct)
		if err != nil {
			return err
		}
		generator.writer.WritePop(segment, index)
		return nil
	}

	arrayIndex, ok := nodeAt(statement.children, 3, ExpressionNode)
	if !ok {
		return generator.makeError(construct, "missing array index expression")
	}
	value, ok := nodeAt(statement.children, 6, ExpressionNode)
	if !ok {
		return generator.makeError(construct, "missing value expression")
	}
	err := generator.generateExpression(arrayIndex)
	if err != nil {
		return err
	}
	err = generator.pushVariable(target, construct)
	if err != nil {
		return err
	}
	generator.writer.WriteArithmetic(AddCommand)
	err = generator.generateExpression(value)
	if err != nil {
		return err
	}
	generator.writer.WriteArrayWrite()
	return nil
}

// if (condition) vm code:
// condition
// if-goto IF_TRUE
// goto IF_FALSE
// label IF_TRUE
// if statements
// goto IF_END          (only with else)
// label IF_FALSE
// else statements      (only with else)
// label IF_END         (only with else)
func (generator *CodeGenerator) generateIfStatement(statement *Node) error {
	const construct = "if statement"
	condition, ok := nodeAt(statement.children, 2, ExpressionNode)
	if !ok {
		return generator.makeError(construct, "missing condition")
	}
	blocks := statement.childNodes(StatementsNode)
	if len(blocks) == 0 || len(blocks) > 2 {
		return generator.makeError(construct, fmt.Sprintf("expected 1 or 2 blocks, got %d", len(blocks)))
	}
	labels := generator.writer.NextIfLabels()
	err := generator.generateExpression(condition)
	if err != nil {
		return err
	}
	generator.writer.WriteIf(labels.True)
	generator.writer.WriteGoto(labels.False)
	generator.writer.WriteLabel(labels.True)
	err = generator.generateStatements(blocks[0])
	if err != nil {
		return err
	}
	if len(blocks) == 1 {
		generator.writer.WriteLabel(labels.False)
		return nil
	}
	generator.writer.WriteGoto(labels.End)
	generator.writer.WriteLabel(labels.False)
	err = generator.generateStatements(blocks[1])
	if err != nil {
		return err
	}
	generator.writer.WriteLabel(labels.End)
	return nil
}

// label WHILE_EXP
// condition
// not
// if-goto WHILE_END
// statements
// goto WHILE_EXP
// label WHILE_END
func (generator *CodeGenerator) generateWhileStatement(statement *Node) error {
	const construct = "while statement"
	condition, ok := nodeAt(statement.children, 2, ExpressionNode)
	if !ok {
		return generator.makeError(construct, "missing condition")
	}
	blocks := statement.childNodes(StatementsNode)
	if len(blocks) != 1 {
		return generator.makeError(construct, "missing loop body")
	}
	labels := generator.writer.NextWhileLabels()
	generator.writer.WriteLabel(labels.Exp)
	err := generator.generateExpression(condition)
	if err != nil {
		return err
	}
	generator.writer.WriteArithmetic(NotCommand)
	generator.writer.WriteIf(labels.End)
	err = generator.generateStatements(blocks[0])
	if err != nil {
		return err
	}
	generator.writer.WriteGoto(labels.Exp)
	generator.writer.WriteLabel(labels.End)
	return nil
}

// The value returned by the call is never used, pop it away.
func (generator *CodeGenerator) generateDoStatement(statement *Node) error {
	if len(statement.children) < 3 {
		return generator.makeError("do statement", "missing subroutine call")
	}
	err := generator.generateSubroutineCall(statement.children[1 : len(statement.children)-1])
	if err != nil {
		return err
	}
	generator.writer.WriteDiscard()
	return nil
}

// A void subroutine still returns a value to the vm, it is 0.
func (generator *CodeGenerator) generateReturnStatement(statement *Node) error {
	if value, ok := nodeAt(statement.children, 1, ExpressionNode); ok {
		err := generator.generateExpression(value)
		if err != nil {
			return err
		}
	} else {
		generator.writer.WritePush(ConstantSegment, 0)
	}
	generator.writer.WriteReturn()
	return nil
}

// term (op term)* is folded left to right: each operator is applied to everything on
// its left and the term on its right.
func (generator *CodeGenerator) generateExpression(expression *Node) error {
	const construct = "expression"
	first, ok := nodeAt(expression.children, 0, TermNode)
	if !ok {
		return generator.makeError(construct, "expected a leading term")
	}
	err := generator.generateTerm(first)
	if err != nil {
		return err
	}
	for i := 1; i < len(expression.children); i += 2 {
		op, ok := tokenAt(expression.children, i)
		if !ok || op.tp != SymbolTP {
			return generator.makeError(construct, "expected a binary operator")
		}
		term, ok := nodeAt(expression.children, i+1, TermNode)
		if !ok {
			return generator.makeError(construct, fmt.Sprintf("operator %q has no right term", op.content))
		}
		err = generator.generateTerm(term)
		if err != nil {
			return err
		}
		if !generator.writer.WriteBinaryOp(op.content) {
			return generator.makeError(construct, fmt.Sprintf("unknown operator %q", op.content))
		}
	}
	return nil
}

func (generator *CodeGenerator) generateTerm(term *Node) error {
	const construct = "term"
	if len(term.children) == 0 {
		return generator.makeError(construct, "empty term")
	}
	switch first := term.children[0].(type) {
	case *Identifier:
		return generator.generateIdentifierTerm(term)
	case Token:
		switch first.tp {
		case IntegerTP:
			value, err := strconv.Atoi(first.content)
			if err != nil || value < 0 || value > 32767 {
				return generator.makeError(construct, fmt.Sprintf("invalid integer constant %q", first.content))
			}
			generator.writer.WritePush(ConstantSegment, value)
		case StringTP:
			generator.writer.WriteStringConstant(first.content)
		case KeywordTP:
			return generator.generateKeywordConstant(first)
		case SymbolTP:
			return generator.generateSymbolTerm(term, first)
		default:
			return generator.makeError(construct, fmt.Sprintf("unexpected %s", first))
		}
		return nil
	default:
		return generator.makeError(construct, "unexpected nested node")
	}
}

func (generator *CodeGenerator) generateKeywordConstant(keyword Token) error {
	switch keyword.content {
	case "true":
		generator.writer.WriteBoolean(true)
	case "false":
		generator.writer.WriteBoolean(false)
	case "null":
		generator.writer.WriteNull()
	case "this":
		generator.writer.WriteThis()
	default:
		return generator.makeError("term", fmt.Sprintf("unknown keyword constant %q", keyword.content))
	}
	return nil
}

// ( expression ) or unaryOp term.
func (generator *CodeGenerator) generateSymbolTerm(term *Node, symbol Token) error {
	const construct = "term"
	if symbol.content == "(" {
		inner, ok := nodeAt(term.children, 1, ExpressionNode)
		if !ok {
			return generator.makeError(construct, "missing parenthesised expression")
		}
		return generator.generateExpression(inner)
	}
	inner, ok := nodeAt(term.children, 1, TermNode)
	if !ok {
		return generator.makeError(construct, fmt.Sprintf("unary %q has no operand", symbol.content))
	}
	err := generator.generateTerm(inner)
	if err != nil {
		return err
	}
	if !generator.writer.WriteUnaryOp(symbol.content) {
		return generator.makeError(construct, fmt.Sprintf("unknown unary operator %q", symbol.content))
	}
	return nil
}

// varName, varName[index] or a subroutine call.
func (generator *CodeGenerator) generateIdentifierTerm(term *Node) error {
	const construct = "term"
	id := term.children[0].(*Identifier)
	switch {
	case len(term.children) == 1:
		return generator.pushVariable(id, construct)
	case isSymbolAt(term.children, 1, "["):
		arrayIndex, ok := nodeAt(term.children, 2, ExpressionNode)
		if !ok {
			return generator.makeError(construct, "missing array index expression")
		}
		err := generator.pushVariable(id, construct)
		if err != nil {
			return err
		}
		err = generator.generateExpression(arrayIndex)
		if err != nil {
			return err
		}
		generator.writer.WriteArithmetic(AddCommand)
		generator.writer.WriteArrayRead()
		return nil
	default:
		return generator.generateSubroutineCall(term.children)
	}
}

// generateSubroutineCall handles the elements of a call:
// * name ( expressionList ): a method of the current class, this is argument 0.
// * className . name ( expressionList ): a function or constructor, no receiver.
// * varName . name ( expressionList ): a method of the variable's class, the variable
//   is argument 0.
func (generator *CodeGenerator) generateSubroutineCall(elements []Element) error {
	const construct = "subroutine call"
	callee, ok := identifierAt(elements, 0)
	if !ok {
		return generator.makeError(construct, "missing subroutine name")
	}
	var target string
	var listPos, nArgs int
	if isSymbolAt(elements, 1, ".") {
		subroutine, ok := identifierAt(elements, 2)
		if !ok {
			return generator.makeError(construct, "missing subroutine name after '.'")
		}
		listPos = 4
		switch callee.kind {
		case ClassSymbol:
			target = callee.Name() + "." + subroutine.Name()
		case StaticSymbol, FieldSymbol, ArgumentSymbol, VarSymbol:
			if callee.classType == "" {
				return generator.makeError(construct, fmt.Sprintf("%s is not an object", callee.Name()))
			}
			err := generator.pushVariable(callee, construct)
			if err != nil {
				return err
			}
			target, nArgs = callee.classType+"."+subroutine.Name(), 1
		default:
			return generator.makeError(construct, fmt.Sprintf("cannot call through %s", callee))
		}
	} else {
		if callee.kind != SubroutineSymbol {
			return generator.makeError(construct, fmt.Sprintf("%s is not a subroutine", callee))
		}
		generator.writer.WriteThis()
		target, nArgs, listPos = generator.className+"."+callee.Name(), 1, 2
	}
	list, ok := nodeAt(elements, listPos, ExpressionListNode)
	if !ok {
		return generator.makeError(construct, "missing argument list")
	}
	n, err := generator.generateExpressionList(list)
	if err != nil {
		return err
	}
	generator.writer.WriteCall(target, nArgs+n)
	return nil
}

// generateExpressionList returns the number of expressions pushed.
func (generator *CodeGenerator) generateExpressionList(list *Node) (int, error) {
	expressions := list.childNodes(ExpressionNode)
	for _, expression := range expressions {
		err := generator.generateExpression(expression)
		if err != nil {
			return 0, err
		}
	}
	return len(expressions), nil
}

func (generator *CodeGenerator) pushVariable(id *Identifier, construct string) error {
	segment, index, err := generator.variableLocation(id, construct)
	if err != nil {
		return err
	}
	generator.writer.WritePush(segment, index)
	return nil
}

// variableLocation maps a storage identifier to its vm segment and slot.
func (generator *CodeGenerator) variableLocation(id *Identifier, construct string) (Segment, int, error) {
	index, ok := id.Index()
	if !ok {
		return "", 0, generator.makeError(construct, fmt.Sprintf("%s is not a variable", id))
	}
	switch id.kind {
	case VarSymbol:
		return LocalSegment, index, nil
	case ArgumentSymbol:
		return ArgumentSegment, index, nil
	case StaticSymbol:
		return StaticSegment, index, nil
	case FieldSymbol:
		return ThisSegment, index, nil
	default:
		return "", 0, generator.makeError(construct, fmt.Sprintf("%s is not a variable", id))
	}
}

func (generator *CodeGenerator) makeError(construct string, detail string) error {
	return &CodeGenError{Construct: construct, Detail: detail, Partial: generator.writer.Written()}
}

func tokenAt(elements []Element, i int) (Token, bool) {
	if i < 0 || i >= len(elements) {
		return Token{}, false
	}
	token, ok := elements[i].(Token)
	return token, ok
}

func identifierAt(elements []Element, i int) (*Identifier, bool) {
	if i < 0 || i >= len(elements) {
		return nil, false
	}
	id, ok := elements[i].(*Identifier)
	return id, ok
}

func nodeAt(elements []Element, i int, tp NodeType) (*Node, bool) {
	if i < 0 || i >= len(elements) {
		return nil, false
	}
	node, ok := elements[i].(*Node)
	if !ok || node.tp != tp {
		return nil, false
	}
	return node, true
}

func isSymbolAt(elements []Element, i int, symbol string) bool {
	token, ok := tokenAt(elements, i)
	return ok && token.is(SymbolTP, symbol)
}
