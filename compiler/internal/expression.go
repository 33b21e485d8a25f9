package internal

import "strings"

// Jack has no operator priority: expression is term (op term)* and every operator is
// applied left to right. Parentheses are the only way to group.
const binaryOps = "+-*/&|<>="

func isBinaryOp(token Token) bool {
	return token.tp == SymbolTP && len(token.content) == 1 && strings.Contains(binaryOps, token.content)
}

func isUnaryOp(token Token) bool {
	return token.tp == SymbolTP && (token.content == "-" || token.content == "~")
}

func (parser *Parser) addExpression(node *Node) error {
	expression, err := parser.parseExpression()
	if err != nil {
		return err
	}
	node.addChild(expression)
	return nil
}

func (parser *Parser) parseExpression() (*Node, error) {
	expression := newNode(ExpressionNode)
	term, err := parser.parseTerm()
	if err != nil {
		return nil, err
	}
	expression.addChild(term)
	for {
		token, ok := parser.getCurrentToken()
		if !ok || !isBinaryOp(token) {
			return expression, nil
		}
		parser.addCurrentToken(expression)
		term, err = parser.parseTerm()
		if err != nil {
			return nil, err
		}
		expression.addChild(term)
	}
}

// Term can be:
// * unaryOp term
// * ( expression )
// * integerConstant | stringConstant | true | false | null | this
// * varName | varName[expression] | subroutineCall
func (parser *Parser) parseTerm() (*Node, error) {
	const construct = "term"
	term := newNode(TermNode)
	token, ok := parser.getCurrentToken()
	if !ok {
		return nil, parser.makeError(construct, "an expression term")
	}
	switch {
	case isUnaryOp(token):
		parser.addCurrentToken(term)
		inner, err := parser.parseTerm()
		if err != nil {
			return nil, err
		}
		term.addChild(inner)
	case token.is(SymbolTP, "("):
		parser.addCurrentToken(term)
		err := parser.addExpression(term)
		if err != nil {
			return nil, err
		}
		err = parser.expectSymbol(term, construct, ")")
		if err != nil {
			return nil, err
		}
	case token.tp == IntegerTP, token.tp == StringTP:
		parser.addCurrentToken(term)
	case token.tp == KeywordTP:
		if !parser.matchKeyword("true", "false", "null", "this") {
			return nil, parser.makeError(construct, "a keyword constant")
		}
		parser.addCurrentToken(term)
	case token.tp == IdentifierTP:
		parser.stepForward()
		err := parser.parseIdentifierTerm(term, token)
		if err != nil {
			return nil, err
		}
	default:
		return nil, parser.makeError(construct, "an expression term")
	}
	return term, nil
}

// parseIdentifierTerm continues a term after its leading identifier.
func (parser *Parser) parseIdentifierTerm(term *Node, token Token) error {
	switch {
	case parser.matchSymbol("."), parser.matchSymbol("("):
		return parser.parseSubroutineCall(term, token, "term")
	case parser.matchSymbol("["):
		term.addChild(parser.resolveUsage(token))
		return parser.parseArrayIndex(term, "term")
	default:
		term.addChild(parser.resolveUsage(token))
		return nil
	}
}

// subroutineCall: name ( expressionList ) | (className|varName) . name ( expressionList )
// The leading identifier is already consumed.
func (parser *Parser) parseSubroutineCall(node *Node, token Token, construct string) error {
	switch {
	case parser.matchSymbol("."):
		node.addChild(parser.resolveUsage(token))
		parser.addCurrentToken(node)
		subroutine, err := parser.expectIdentifierToken(construct, "a subroutine name")
		if err != nil {
			return err
		}
		node.addChild(newIdentifier(subroutine, SubroutineSymbol, false))
	case parser.matchSymbol("("):
		// name( is always a call, even when a variable shares the name.
		node.addChild(newIdentifier(token, SubroutineSymbol, false))
	default:
		return parser.makeError(construct, "symbol '(' or '.'")
	}
	err := parser.expectSymbol(node, construct, "(")
	if err != nil {
		return err
	}
	list, err := parser.parseExpressionList()
	if err != nil {
		return err
	}
	node.addChild(list)
	return parser.expectSymbol(node, construct, ")")
}

// (expression (, expression)*)?
func (parser *Parser) parseExpressionList() (*Node, error) {
	list := newNode(ExpressionListNode)
	if !parser.hasRemainTokens() || parser.matchSymbol(")") {
		return list, nil
	}
	for {
		err := parser.addExpression(list)
		if err != nil {
			return nil, err
		}
		if !parser.matchSymbol(",") {
			return list, nil
		}
		parser.addCurrentToken(list)
	}
}

// [ expression ]
func (parser *Parser) parseArrayIndex(node *Node, construct string) error {
	err := parser.expectSymbol(node, construct, "[")
	if err != nil {
		return err
	}
	err = parser.addExpression(node)
	if err != nil {
		return err
	}
	return parser.expectSymbol(node, construct, "]")
}
