package internal

// Parser is a recursive descent parser for one jack class. There is one method per
// grammar production. While parsing, every identifier is resolved against the symbol
// table, so the returned tree is ready for code generation.
type Parser struct {
	currentTokenPos int
	currentTokens   []Token
	symbolTable     *SymbolTable
}

func NewParser(tokens []Token) *Parser {
	return &Parser{currentTokens: tokens, symbolTable: NewSymbolTable()}
}

func (parser *Parser) reset(tokens []Token) {
	parser.currentTokenPos, parser.currentTokens = 0, tokens
	parser.symbolTable = NewSymbolTable()
}

// ParseClassDeclaration parses a whole class. The token stream must hold exactly one
// class.
//
// class className {
//    classVarDec*
//    subroutineDec*
// }
func (parser *Parser) ParseClassDeclaration() (*Node, error) {
	class := newNode(ClassNode)
	err := parser.expectKeyword(class, "class", "class")
	if err != nil {
		return nil, err
	}
	err = parser.expectIdentifierDefinition(class, ClassSymbol, "", "class", "a class name identifier")
	if err != nil {
		return nil, err
	}
	err = parser.expectSymbol(class, "class", "{")
	if err != nil {
		return nil, err
	}
	for parser.matchKeyword("static", "field") {
		classVarDec, err := parser.parseClassVariableDeclaration()
		if err != nil {
			return nil, err
		}
		class.addChild(classVarDec)
	}
	for parser.matchKeyword("constructor", "function", "method") {
		subroutineDec, err := parser.parseSubroutineDeclaration()
		if err != nil {
			return nil, err
		}
		class.addChild(subroutineDec)
	}
	err = parser.expectSymbol(class, "class", "}")
	if err != nil {
		return nil, err
	}
	if parser.hasRemainTokens() {
		return nil, parser.makeError("class", "end of input")
	}
	return class, nil
}

// [static|field] type varName (, varName)* ;
func (parser *Parser) parseClassVariableDeclaration() (*Node, error) {
	const construct = "class variable declaration"
	classVarDec := newNode(ClassVariableDeclarationNode)
	kind := FieldSymbol
	if parser.matchKeyword("static") {
		kind = StaticSymbol
	}
	err := parser.expectKeyword(classVarDec, construct, "static", "field")
	if err != nil {
		return nil, err
	}
	err = parser.parseVariableNames(classVarDec, kind, construct)
	if err != nil {
		return nil, err
	}
	return classVarDec, nil
}

// parseVariableNames parses the tail shared by class and local declarations:
// type varName (, varName)* ;
func (parser *Parser) parseVariableNames(node *Node, kind SymbolKind, construct string) error {
	classType, err := parser.expectType(node, construct, false)
	if err != nil {
		return err
	}
	for {
		err = parser.expectIdentifierDefinition(node, kind, classType, construct, "a variable name")
		if err != nil {
			return err
		}
		if !parser.matchSymbol(",") {
			break
		}
		parser.addCurrentToken(node)
	}
	return parser.expectSymbol(node, construct, ";")
}

// [constructor|function|method] [void|type] subroutineName ( parameterList ) subroutineBody
func (parser *Parser) parseSubroutineDeclaration() (*Node, error) {
	const construct = "subroutine declaration"
	subroutineDec := newNode(SubroutineDeclarationNode)
	// The receiver reservation must be known before any parameter is numbered.
	parser.symbolTable.StartSubroutine(parser.matchKeyword("method"))
	err := parser.expectKeyword(subroutineDec, construct, "constructor", "function", "method")
	if err != nil {
		return nil, err
	}
	_, err = parser.expectType(subroutineDec, construct, true)
	if err != nil {
		return nil, err
	}
	err = parser.expectIdentifierDefinition(subroutineDec, SubroutineSymbol, "", construct, "a subroutine name")
	if err != nil {
		return nil, err
	}
	err = parser.expectSymbol(subroutineDec, construct, "(")
	if err != nil {
		return nil, err
	}
	paramList, err := parser.parseParameterList()
	if err != nil {
		return nil, err
	}
	subroutineDec.addChild(paramList)
	err = parser.expectSymbol(subroutineDec, construct, ")")
	if err != nil {
		return nil, err
	}
	body, err := parser.parseSubroutineBody()
	if err != nil {
		return nil, err
	}
	subroutineDec.addChild(body)
	return subroutineDec, nil
}

// ( type varName (, type varName)* )?
func (parser *Parser) parseParameterList() (*Node, error) {
	const construct = "parameter list"
	paramList := newNode(ParameterListNode)
	if parser.matchSymbol(")") {
		return paramList, nil
	}
	for {
		classType, err := parser.expectType(paramList, construct, false)
		if err != nil {
			return nil, err
		}
		err = parser.expectIdentifierDefinition(paramList, ArgumentSymbol, classType, construct, "a parameter name")
		if err != nil {
			return nil, err
		}
		if !parser.matchSymbol(",") {
			return paramList, nil
		}
		parser.addCurrentToken(paramList)
	}
}

// { varDec* statements }
func (parser *Parser) parseSubroutineBody() (*Node, error) {
	const construct = "subroutine body"
	body := newNode(SubroutineBodyNode)
	err := parser.expectSymbol(body, construct, "{")
	if err != nil {
		return nil, err
	}
	for parser.matchKeyword("var") {
		varDec := newNode(VariableDeclarationNode)
		parser.addCurrentToken(varDec)
		err = parser.parseVariableNames(varDec, VarSymbol, "variable declaration")
		if err != nil {
			return nil, err
		}
		body.addChild(varDec)
	}
	statements, err := parser.parseStatements()
	if err != nil {
		return nil, err
	}
	body.addChild(statements)
	err = parser.expectSymbol(body, construct, "}")
	if err != nil {
		return nil, err
	}
	return body, nil
}

// statements stop at the closing brace of the enclosing block.
func (parser *Parser) parseStatements() (*Node, error) {
	statements := newNode(StatementsNode)
	for parser.hasRemainTokens() && !parser.matchSymbol("}") {
		statement, err := parser.parseStatement()
		if err != nil {
			return nil, err
		}
		statements.addChild(statement)
	}
	return statements, nil
}

func (parser *Parser) parseStatement() (*Node, error) {
	token, _ := parser.getCurrentToken()
	if token.tp != KeywordTP {
		return nil, parser.makeError("statements", "a statement keyword")
	}
	switch token.content {
	case "let":
		return parser.parseLetStatement()
	case "if":
		return parser.parseIfStatement()
	case "while":
		return parser.parseWhileStatement()
	case "do":
		return parser.parseDoStatement()
	case "return":
		return parser.parseReturnStatement()
	default:
		return nil, parser.makeError("statements", "a statement keyword")
	}
}

// let varName ([ expression ])? = expression ;
func (parser *Parser) parseLetStatement() (*Node, error) {
	const construct = "let statement"
	statement := newNode(LetStatementNode)
	parser.addCurrentToken(statement)
	token, err := parser.expectIdentifierToken(construct, "an identifier")
	if err != nil {
		return nil, err
	}
	statement.addChild(parser.resolveUsage(token))
	if parser.matchSymbol("[") {
		err = parser.parseArrayIndex(statement, construct)
		if err != nil {
			return nil, err
		}
	}
	err = parser.expectSymbol(statement, construct, "=")
	if err != nil {
		return nil, err
	}
	err = parser.addExpression(statement)
	if err != nil {
		return nil, err
	}
	err = parser.expectSymbol(statement, construct, ";")
	if err != nil {
		return nil, err
	}
	return statement, nil
}

// if ( expression ) { statements } (else { statements })?
func (parser *Parser) parseIfStatement() (*Node, error) {
	const construct = "if statement"
	statement := newNode(IfStatementNode)
	parser.addCurrentToken(statement)
	err := parser.parseConditionAndBlock(statement, construct)
	if err != nil {
		return nil, err
	}
	if !parser.matchKeyword("else") {
		return statement, nil
	}
	parser.addCurrentToken(statement)
	err = parser.parseBlock(statement, construct)
	if err != nil {
		return nil, err
	}
	return statement, nil
}

// while ( expression ) { statements }
func (parser *Parser) parseWhileStatement() (*Node, error) {
	statement := newNode(WhileStatementNode)
	parser.addCurrentToken(statement)
	err := parser.parseConditionAndBlock(statement, "while statement")
	if err != nil {
		return nil, err
	}
	return statement, nil
}

// ( expression ) { statements }
func (parser *Parser) parseConditionAndBlock(statement *Node, construct string) error {
	err := parser.expectSymbol(statement, construct, "(")
	if err != nil {
		return err
	}
	err = parser.addExpression(statement)
	if err != nil {
		return err
	}
	err = parser.expectSymbol(statement, construct, ")")
	if err != nil {
		return err
	}
	return parser.parseBlock(statement, construct)
}

// { statements }
func (parser *Parser) parseBlock(statement *Node, construct string) error {
	err := parser.expectSymbol(statement, construct, "{")
	if err != nil {
		return err
	}
	statements, err := parser.parseStatements()
	if err != nil {
		return err
	}
	statement.addChild(statements)
	return parser.expectSymbol(statement, construct, "}")
}

// do subroutineCall ;
func (parser *Parser) parseDoStatement() (*Node, error) {
	const construct = "do statement"
	statement := newNode(DoStatementNode)
	parser.addCurrentToken(statement)
	token, err := parser.expectIdentifierToken(construct, "a subroutine call")
	if err != nil {
		return nil, err
	}
	err = parser.parseSubroutineCall(statement, token, construct)
	if err != nil {
		return nil, err
	}
	err = parser.expectSymbol(statement, construct, ";")
	if err != nil {
		return nil, err
	}
	return statement, nil
}

// return expression? ;
func (parser *Parser) parseReturnStatement() (*Node, error) {
	const construct = "return statement"
	statement := newNode(ReturnStatementNode)
	parser.addCurrentToken(statement)
	if parser.hasRemainTokens() && !parser.matchSymbol(";") {
		err := parser.addExpression(statement)
		if err != nil {
			return nil, err
		}
	}
	err := parser.expectSymbol(statement, construct, ";")
	if err != nil {
		return nil, err
	}
	return statement, nil
}

// Type is int, char, boolean or a class name, and void for a subroutine return type.
// The class name is returned for object types.
func (parser *Parser) expectType(node *Node, construct string, allowVoid bool) (classType string, err error) {
	token, ok := parser.getCurrentToken()
	expected := "a type"
	if allowVoid {
		expected = "a type or void"
	}
	if !ok {
		return "", parser.makeError(construct, expected)
	}
	switch token.tp {
	case KeywordTP:
		switch token.content {
		case "int", "char", "boolean":
		case "void":
			if !allowVoid {
				return "", parser.makeError(construct, expected)
			}
		default:
			return "", parser.makeError(construct, expected)
		}
		node.addChild(token)
	case IdentifierTP:
		node.addChild(newIdentifier(token, ClassSymbol, false))
		classType = token.content
	default:
		return "", parser.makeError(construct, expected)
	}
	parser.stepForward()
	return classType, nil
}

func (parser *Parser) expectIdentifierDefinition(node *Node, kind SymbolKind, classType string,
	construct string, expected string) error {
	token, err := parser.expectIdentifierToken(construct, expected)
	if err != nil {
		return err
	}
	if !kind.IsStorage() {
		node.addChild(newIdentifier(token, kind, true))
		return nil
	}
	symbol, err := parser.symbolTable.Define(token.content, kind, classType)
	if err != nil {
		return &SyntaxError{Construct: construct, Found: &token, Err: err}
	}
	node.addChild(newSymbolIdentifier(token, symbol, true))
	return nil
}

func (parser *Parser) expectIdentifierToken(construct string, expected string) (Token, error) {
	token, ok := parser.getCurrentToken()
	if !ok || token.tp != IdentifierTP {
		return Token{}, parser.makeError(construct, expected)
	}
	parser.stepForward()
	return token, nil
}

// resolveUsage annotates an identifier being used, with the current token being the
// one after it. Unknown names are class names when followed by '.' and subroutine
// names otherwise.
func (parser *Parser) resolveUsage(token Token) *Identifier {
	if symbol, ok := parser.symbolTable.Lookup(token.content); ok {
		return newSymbolIdentifier(token, symbol, false)
	}
	if parser.matchSymbol(".") {
		return newIdentifier(token, ClassSymbol, false)
	}
	return newIdentifier(token, SubroutineSymbol, false)
}

func (parser *Parser) expectKeyword(node *Node, construct string, keywords ...string) error {
	if !parser.matchKeyword(keywords...) {
		return parser.makeError(construct, quoteAll("keyword", keywords))
	}
	parser.addCurrentToken(node)
	return nil
}

func (parser *Parser) expectSymbol(node *Node, construct string, symbol string) error {
	if !parser.matchSymbol(symbol) {
		return parser.makeError(construct, "symbol '"+symbol+"'")
	}
	parser.addCurrentToken(node)
	return nil
}

func (parser *Parser) matchKeyword(keywords ...string) bool {
	return parser.matchToken(KeywordTP, keywords...)
}

func (parser *Parser) matchSymbol(symbols ...string) bool {
	return parser.matchToken(SymbolTP, symbols...)
}

func (parser *Parser) matchToken(tp TokenType, contents ...string) bool {
	token, ok := parser.getCurrentToken()
	if !ok {
		return false
	}
	for _, content := range contents {
		if token.is(tp, content) {
			return true
		}
	}
	return false
}

// addCurrentToken moves the current token into node. Callers check it first.
func (parser *Parser) addCurrentToken(node *Node) {
	node.addChild(parser.currentTokens[parser.currentTokenPos])
	parser.stepForward()
}

func (parser *Parser) getCurrentToken() (Token, bool) {
	if !parser.hasRemainTokens() {
		return Token{}, false
	}
	return parser.currentTokens[parser.currentTokenPos], true
}

func (parser *Parser) stepForward() {
	parser.currentTokenPos++
}

func (parser *Parser) hasRemainTokens() bool {
	return parser.currentTokenPos < len(parser.currentTokens)
}

// makeError reports that the current token does not fit.
func (parser *Parser) makeError(construct string, expected string) error {
	err := &SyntaxError{Construct: construct, Expected: expected}
	if token, ok := parser.getCurrentToken(); ok {
		err.Found = &token
	}
	return err
}

func quoteAll(what string, values []string) string {
	ret := what + " "
	for i, v := range values {
		if i > 0 {
			ret += " or "
		}
		ret += "'" + v + "'"
	}
	return ret
}
