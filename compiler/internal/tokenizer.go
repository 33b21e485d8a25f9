package internal

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xiaobogaga/jackc/util"
)

// A simple Tokenizer for jack.

// Jack source has those elements:
// * Keyword: class, constructor, function, method, field, static, var, int, char, boolean, void, true,
// 			false, null, this, let, do, if, else, while, return.
// * Symbol: {, }, (, ), [, ], ., ,, ;, +, -, *, /, &, |, <, >, =, ~.
// * Constant: integer (0 to 32767), string ("xxx", on one line)
// * Identifier: letters, digits, underscore, not starting with a digit.
// * Comment: /**/, //.

const maxIntegerConstant = 32767

var keywords = map[string]bool{
	"class":       true,
	"constructor": true,
	"function":    true,
	"method":      true,
	"field":       true,
	"static":      true,
	"var":         true,
	"int":         true,
	"char":        true,
	"boolean":     true,
	"void":        true,
	"true":        true,
	"false":       true,
	"null":        true,
	"this":        true,
	"let":         true,
	"do":          true,
	"if":          true,
	"else":        true,
	"while":       true,
	"return":      true,
}

type Tokenizer struct {
	currentPos  int
	currentLine int
	src         []byte
	tokens      []Token
}

// TokenizeError reports the source line where scanning stopped.
type TokenizeError struct {
	Line int
	Near string
	Msg  string
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("tokenizer: %s near %q at line %d", e.Msg, e.Near, e.Line)
}

// Tokenize reads the whole of rd and splits it according to jack lexical rules.
// Comments and whitespace are dropped.
func (tokenizer *Tokenizer) Tokenize(rd io.Reader) ([]Token, error) {
	src, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	return tokenizer.TokenizeBytes(src)
}

func (tokenizer *Tokenizer) TokenizeBytes(src []byte) ([]Token, error) {
	tokenizer.Reset()
	tokenizer.src, tokenizer.currentLine = src, 1
	for {
		err := tokenizer.skipSpaceAndComments()
		if err != nil {
			return nil, err
		}
		if !tokenizer.hasRemainCharacters() {
			return tokenizer.tokens, nil
		}
		token, err := tokenizer.getNextToken()
		if err != nil {
			return nil, err
		}
		tokenizer.tokens = append(tokenizer.tokens, token)
	}
}

// getNextToken returns the token starting at the current position, which is not a space
// nor the start of a comment.
func (tokenizer *Tokenizer) getNextToken() (Token, error) {
	c := tokenizer.src[tokenizer.currentPos]
	switch {
	case isSymbol(c):
		tokenizer.currentPos++
		return newTokenAtLine(SymbolTP, string(c), tokenizer.currentLine), nil
	case c == '"':
		return tokenizer.tokenString()
	case util.IsNumber(c):
		return tokenizer.tokenNumber()
	case util.IsLetterOrUnderscore(c):
		return tokenizer.toKeywordOrIdentifier(), nil
	default:
		return Token{}, tokenizer.makeError(string(c), "unexpected character")
	}
}

func isSymbol(c byte) bool {
	switch c {
	case '{', '}', '(', ')', '[', ']', '.', ',', ';', '+', '-', '*', '/', '&', '|', '>', '<', '=', '~':
		return true
	}
	return false
}

func (tokenizer *Tokenizer) hasRemainCharacters() bool {
	return tokenizer.currentPos < len(tokenizer.src)
}

// lookAhead returns the character i positions after the current one, or 0 past the end.
func (tokenizer *Tokenizer) lookAhead(i int) byte {
	if tokenizer.currentPos+i >= len(tokenizer.src) {
		return 0
	}
	return tokenizer.src[tokenizer.currentPos+i]
}

// skipSpaceAndComments steps over every space and comment before the next token. A /
// which doesn't start a comment is left for getNextToken as the divide symbol.
func (tokenizer *Tokenizer) skipSpaceAndComments() error {
	for tokenizer.hasRemainCharacters() {
		c := tokenizer.src[tokenizer.currentPos]
		switch {
		case c == '\n':
			tokenizer.currentLine++
			tokenizer.currentPos++
		case util.IsSpace(c):
			tokenizer.currentPos++
		case c == '/' && tokenizer.lookAhead(1) == '/':
			tokenizer.skipSingleLineComment()
		case c == '/' && tokenizer.lookAhead(1) == '*':
			err := tokenizer.skipMultipleLineComment()
			if err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

// The newline itself is left to skipSpaceAndComments so the line count stays right.
func (tokenizer *Tokenizer) skipSingleLineComment() {
	for tokenizer.hasRemainCharacters() && tokenizer.src[tokenizer.currentPos] != '\n' {
		tokenizer.currentPos++
	}
}

// Block comments don't nest, the first */ closes the comment.
func (tokenizer *Tokenizer) skipMultipleLineComment() error {
	startLine := tokenizer.currentLine
	tokenizer.currentPos += 2
	for tokenizer.hasRemainCharacters() {
		c := tokenizer.src[tokenizer.currentPos]
		if c == '*' && tokenizer.lookAhead(1) == '/' {
			tokenizer.currentPos += 2
			return nil
		}
		if c == '\n' {
			tokenizer.currentLine++
		}
		tokenizer.currentPos++
	}
	return &TokenizeError{Line: startLine, Near: "/*", Msg: "unterminated comment"}
}

func (tokenizer *Tokenizer) tokenString() (Token, error) {
	// Looking forward to find a closing quote on the same line.
	startPos := tokenizer.currentPos
	tokenizer.currentPos++
	for tokenizer.hasRemainCharacters() {
		switch tokenizer.src[tokenizer.currentPos] {
		case '"':
			tokenizer.currentPos++
			content := string(tokenizer.src[startPos+1 : tokenizer.currentPos-1])
			return newTokenAtLine(StringTP, content, tokenizer.currentLine), nil
		case '\n':
			return Token{}, tokenizer.makeError(string(tokenizer.src[startPos:tokenizer.currentPos]), "unterminated string")
		}
		tokenizer.currentPos++
	}
	return Token{}, tokenizer.makeError(string(tokenizer.src[startPos:]), "unterminated string")
}

func (tokenizer *Tokenizer) tokenNumber() (Token, error) {
	startPos := tokenizer.currentPos
	for tokenizer.hasRemainCharacters() && util.IsNumber(tokenizer.src[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
	content := string(tokenizer.src[startPos:tokenizer.currentPos])
	// 123abc is not an identifier.
	if tokenizer.hasRemainCharacters() && util.IsLetterOrUnderscore(tokenizer.src[tokenizer.currentPos]) {
		return Token{}, tokenizer.makeError(content+string(tokenizer.src[tokenizer.currentPos]), "incorrect identifier format")
	}
	value, err := strconv.Atoi(content)
	if err != nil || value > maxIntegerConstant {
		return Token{}, tokenizer.makeError(content, "integer constant out of range 0..32767")
	}
	return newTokenAtLine(IntegerTP, content, tokenizer.currentLine), nil
}

func (tokenizer *Tokenizer) toKeywordOrIdentifier() Token {
	startPos := tokenizer.currentPos
	for tokenizer.hasRemainCharacters() && util.IsLetterOrUnderscoreOrNumber(tokenizer.src[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
	content := string(tokenizer.src[startPos:tokenizer.currentPos])
	if keywords[content] {
		return newTokenAtLine(KeywordTP, content, tokenizer.currentLine)
	}
	return newTokenAtLine(IdentifierTP, content, tokenizer.currentLine)
}

func (tokenizer *Tokenizer) makeError(near string, msg string) error {
	return &TokenizeError{Line: tokenizer.currentLine, Near: near, Msg: msg}
}

func (tokenizer *Tokenizer) Reset() {
	tokenizer.currentPos, tokenizer.currentLine = 0, 0
	tokenizer.src, tokenizer.tokens = nil, nil
}
