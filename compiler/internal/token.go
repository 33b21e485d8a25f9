package internal

import "fmt"

// A jack program is a flat sequence of tokens. Each token belongs to one of five lexical
// kinds, and carries the literal text it was scanned from.

type TokenType int

const (
	KeywordTP    TokenType = iota // class, let, while ...
	SymbolTP                      // { } ( ) [ ] . , ; + - * / & | < > = ~
	IdentifierTP                  // varA
	IntegerTP                     // 1010
	StringTP                      // "xxx", content is stored without quotes.
)

func (tp TokenType) String() string {
	switch tp {
	case KeywordTP:
		return "Keyword"
	case SymbolTP:
		return "Symbol"
	case IdentifierTP:
		return "Identifier"
	case IntegerTP:
		return "IntegerConstant"
	case StringTP:
		return "StringConstant"
	}
	return fmt.Sprintf("TokenType(%d)", int(tp))
}

// Token is immutable once created.
type Token struct {
	tp      TokenType
	content string
	line    int
}

func NewToken(tp TokenType, content string) Token {
	return Token{tp: tp, content: content}
}

func newTokenAtLine(tp TokenType, content string, line int) Token {
	return Token{tp: tp, content: content, line: line}
}

func (t Token) Type() TokenType { return t.tp }

func (t Token) Content() string { return t.content }

// Line is the 1-based source line, or 0 for tokens built without a source.
func (t Token) Line() int { return t.line }

func (t Token) String() string {
	return fmt.Sprintf("%s '%s'", t.tp, t.content)
}

func (t Token) is(tp TokenType, content string) bool {
	return t.tp == tp && t.content == content
}

// SymbolKind tells what an identifier names. Class and Subroutine name a type or a
// callable and never own a slot, the rest name storage cells.
type SymbolKind int

const (
	ClassSymbol SymbolKind = iota
	SubroutineSymbol
	StaticSymbol
	FieldSymbol
	ArgumentSymbol
	VarSymbol
)

func (kind SymbolKind) String() string {
	switch kind {
	case ClassSymbol:
		return "class"
	case SubroutineSymbol:
		return "subroutine"
	case StaticSymbol:
		return "static"
	case FieldSymbol:
		return "field"
	case ArgumentSymbol:
		return "argument"
	case VarSymbol:
		return "var"
	}
	return fmt.Sprintf("SymbolKind(%d)", int(kind))
}

// IsStorage reports whether identifiers of this kind are slot numbered.
func (kind SymbolKind) IsStorage() bool {
	return kind == StaticSymbol || kind == FieldSymbol || kind == ArgumentSymbol || kind == VarSymbol
}

// Identifier is an identifier token annotated with what the analyzer resolved it to.
type Identifier struct {
	Token
	kind         SymbolKind
	isDefinition bool
	index        int
	hasIndex     bool
	classType    string
}

func newIdentifier(token Token, kind SymbolKind, isDefinition bool) *Identifier {
	return &Identifier{Token: token, kind: kind, isDefinition: isDefinition}
}

func newSymbolIdentifier(token Token, symbol *Symbol, isDefinition bool) *Identifier {
	return &Identifier{
		Token:        token,
		kind:         symbol.Kind,
		isDefinition: isDefinition,
		index:        symbol.Index,
		hasIndex:     true,
		classType:    symbol.ClassType,
	}
}

func (id *Identifier) Name() string { return id.content }

func (id *Identifier) Kind() SymbolKind { return id.kind }

func (id *Identifier) IsDefinition() bool { return id.isDefinition }

// Index returns the slot of a storage identifier. ok is false for class and
// subroutine names.
func (id *Identifier) Index() (index int, ok bool) { return id.index, id.hasIndex }

// ClassType is the declared class of an object typed variable, empty for primitives.
func (id *Identifier) ClassType() string { return id.classType }

func (id *Identifier) String() string {
	if id.hasIndex {
		return fmt.Sprintf("%s %s#%d", id.kind, id.content, id.index)
	}
	return fmt.Sprintf("%s %s", id.kind, id.content)
}
