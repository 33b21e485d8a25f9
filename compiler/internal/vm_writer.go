package internal

import (
	"bytes"
	"fmt"
	"io"
)

type Segment string

const (
	ConstantSegment Segment = "constant"
	LocalSegment    Segment = "local"
	ArgumentSegment Segment = "argument"
	ThisSegment     Segment = "this"
	ThatSegment     Segment = "that"
	StaticSegment   Segment = "static"
	TempSegment     Segment = "temp"
	PointerSegment  Segment = "pointer"
)

type Command string

const (
	AddCommand Command = "add"
	SubCommand Command = "sub"
	NegCommand Command = "neg"
	NotCommand Command = "not"
	AndCommand Command = "and"
	OrCommand  Command = "or"
	EqCommand  Command = "eq"
	GtCommand  Command = "gt"
	LtCommand  Command = "lt"
)

// binaryOpCommands maps jack binary operators to vm commands. Multiply and divide are
// not vm commands, they are calls into the Math library.
var binaryOpCommands = map[string]Command{
	"+": AddCommand,
	"-": SubCommand,
	"&": AndCommand,
	"|": OrCommand,
	"<": LtCommand,
	">": GtCommand,
	"=": EqCommand,
}

var binaryOpCalls = map[string]string{
	"*": "Math.multiply",
	"/": "Math.divide",
}

var unaryOpCommands = map[string]Command{
	"-": NegCommand,
	"~": NotCommand,
}

// VMWriter formats vm instructions, one per line. It owns the if and while label
// counters of the subroutine being written.
//
// The first write error sticks: later writes are dropped and Err returns it.
type VMWriter struct {
	output       io.Writer
	written      bytes.Buffer
	ifCounter    int
	whileCounter int
	err          error
}

func NewVMWriter(w io.Writer) *VMWriter {
	return &VMWriter{output: w}
}

type IfLabels struct {
	True, False, End string
}

type WhileLabels struct {
	Exp, End string
}

// StartSubroutine restarts label numbering. Labels never need to be unique across
// subroutines.
func (writer *VMWriter) StartSubroutine() {
	writer.ifCounter, writer.whileCounter = 0, 0
}

func (writer *VMWriter) NextIfLabels() IfLabels {
	n := writer.ifCounter
	writer.ifCounter++
	return IfLabels{
		True:  fmt.Sprintf("IF_TRUE%d", n),
		False: fmt.Sprintf("IF_FALSE%d", n),
		End:   fmt.Sprintf("IF_END%d", n),
	}
}

func (writer *VMWriter) NextWhileLabels() WhileLabels {
	n := writer.whileCounter
	writer.whileCounter++
	return WhileLabels{
		Exp: fmt.Sprintf("WHILE_EXP%d", n),
		End: fmt.Sprintf("WHILE_END%d", n),
	}
}

func (writer *VMWriter) WriteFunction(name string, nLocals int) {
	writer.writeOutput(fmt.Sprintf("function %s %d", name, nLocals))
}

func (writer *VMWriter) WritePush(segment Segment, index int) {
	writer.writeOutput(fmt.Sprintf("push %s %d", segment, index))
}

func (writer *VMWriter) WritePop(segment Segment, index int) {
	writer.writeOutput(fmt.Sprintf("pop %s %d", segment, index))
}

func (writer *VMWriter) WriteArithmetic(command Command) {
	writer.writeOutput(string(command))
}

// WriteBinaryOp writes the instruction for a jack binary operator. It returns false for
// an unknown operator and writes nothing.
func (writer *VMWriter) WriteBinaryOp(op string) bool {
	if command, ok := binaryOpCommands[op]; ok {
		writer.WriteArithmetic(command)
		return true
	}
	if call, ok := binaryOpCalls[op]; ok {
		writer.WriteCall(call, 2)
		return true
	}
	return false
}

func (writer *VMWriter) WriteUnaryOp(op string) bool {
	command, ok := unaryOpCommands[op]
	if !ok {
		return false
	}
	writer.WriteArithmetic(command)
	return true
}

func (writer *VMWriter) WriteLabel(label string) {
	writer.writeOutput("label " + label)
}

func (writer *VMWriter) WriteGoto(label string) {
	writer.writeOutput("goto " + label)
}

func (writer *VMWriter) WriteIf(label string) {
	writer.writeOutput("if-goto " + label)
}

func (writer *VMWriter) WriteCall(name string, nArgs int) {
	writer.writeOutput(fmt.Sprintf("call %s %d", name, nArgs))
}

func (writer *VMWriter) WriteReturn() {
	writer.writeOutput("return")
}

// WriteStringConstant builds a String object. String.appendChar returns the string,
// so it stays on top of the stack for the next character.
func (writer *VMWriter) WriteStringConstant(str string) {
	writer.WritePush(ConstantSegment, len(str))
	writer.WriteCall("String.new", 1)
	for i := 0; i < len(str); i++ {
		writer.WritePush(ConstantSegment, int(str[i]))
		writer.WriteCall("String.appendChar", 2)
	}
}

// false and null are 0, true is ~0.
func (writer *VMWriter) WriteBoolean(value bool) {
	writer.WritePush(ConstantSegment, 0)
	if value {
		writer.WriteArithmetic(NotCommand)
	}
}

func (writer *VMWriter) WriteNull() {
	writer.WritePush(ConstantSegment, 0)
}

func (writer *VMWriter) WriteThis() {
	writer.WritePush(PointerSegment, 0)
}

// WriteArrayRead expects an element address on top of the stack and replaces it with
// the element.
func (writer *VMWriter) WriteArrayRead() {
	writer.WritePop(PointerSegment, 1)
	writer.WritePush(ThatSegment, 0)
}

// WriteArrayWrite expects an element address and then the value to store on top of
// the stack.
func (writer *VMWriter) WriteArrayWrite() {
	writer.WritePop(TempSegment, 0)
	writer.WritePop(PointerSegment, 1)
	writer.WritePush(TempSegment, 0)
	writer.WritePop(ThatSegment, 0)
}

// WriteAlloc is the constructor prologue: allocate nFields words and bind them as this.
func (writer *VMWriter) WriteAlloc(nFields int) {
	writer.WritePush(ConstantSegment, nFields)
	writer.WriteCall("Memory.alloc", 1)
	writer.WritePop(PointerSegment, 0)
}

// WriteBindReceiver is the method prologue: argument 0 becomes this.
func (writer *VMWriter) WriteBindReceiver() {
	writer.WritePush(ArgumentSegment, 0)
	writer.WritePop(PointerSegment, 0)
}

// WriteDiscard drops the value returned by a call whose result is unused.
func (writer *VMWriter) WriteDiscard() {
	writer.WritePop(TempSegment, 0)
}

// Written returns everything written so far.
func (writer *VMWriter) Written() string {
	return writer.written.String()
}

func (writer *VMWriter) Err() error {
	return writer.err
}

func (writer *VMWriter) writeOutput(output string) {
	if writer.err != nil {
		return
	}
	output += "\n"
	writer.written.WriteString(output)
	_, writer.err = io.WriteString(writer.output, output)
}
