package internal

import (
	"fmt"
	"strings"
)

// The analyzer builds one tree per class. Every node is tagged by the grammar production
// that built it and keeps its children in source order. A child is a plain Token, an
// *Identifier, or a nested *Node.

type NodeType int

const (
	ClassNode NodeType = iota
	ClassVariableDeclarationNode
	SubroutineDeclarationNode
	ParameterListNode
	SubroutineBodyNode
	VariableDeclarationNode
	StatementsNode
	LetStatementNode
	IfStatementNode
	WhileStatementNode
	DoStatementNode
	ReturnStatementNode
	ExpressionNode
	TermNode
	ExpressionListNode
)

var nodeTypeNames = map[NodeType]string{
	ClassNode:                    "class",
	ClassVariableDeclarationNode: "classVarDec",
	SubroutineDeclarationNode:    "subroutineDec",
	ParameterListNode:            "parameterList",
	SubroutineBodyNode:           "subroutineBody",
	VariableDeclarationNode:      "varDec",
	StatementsNode:               "statements",
	LetStatementNode:             "letStatement",
	IfStatementNode:              "ifStatement",
	WhileStatementNode:           "whileStatement",
	DoStatementNode:              "doStatement",
	ReturnStatementNode:          "returnStatement",
	ExpressionNode:               "expression",
	TermNode:                     "term",
	ExpressionListNode:           "expressionList",
}

func (tp NodeType) String() string {
	name, ok := nodeTypeNames[tp]
	if !ok {
		return fmt.Sprintf("NodeType(%d)", int(tp))
	}
	return name
}

// Element is implemented by Token, *Identifier and *Node only.
type Element interface {
	element()
}

func (Token) element()       {}
func (*Identifier) element() {}
func (*Node) element()       {}

type Node struct {
	tp       NodeType
	children []Element
}

func newNode(tp NodeType) *Node {
	return &Node{tp: tp}
}

func (node *Node) Type() NodeType { return node.tp }

// Children must not be modified by callers.
func (node *Node) Children() []Element { return node.children }

func (node *Node) addChild(element Element) {
	node.children = append(node.children, element)
}

// childNodes returns the nested nodes of the given type, in order.
func (node *Node) childNodes(tp NodeType) []*Node {
	var ret []*Node
	for _, child := range node.children {
		if n, ok := child.(*Node); ok && n.tp == tp {
			ret = append(ret, n)
		}
	}
	return ret
}

// String renders the tree as an indented outline, used by tests and debug logs.
func (node *Node) String() string {
	buf := &strings.Builder{}
	node.writeTo(buf, 0)
	return buf.String()
}

func (node *Node) writeTo(buf *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	buf.WriteString(indent + node.tp.String() + "\n")
	for _, child := range node.children {
		switch c := child.(type) {
		case *Node:
			c.writeTo(buf, depth+1)
		case *Identifier:
			buf.WriteString(indent + "  " + c.String() + "\n")
		case Token:
			buf.WriteString(indent + "  " + c.content + "\n")
		}
	}
}
