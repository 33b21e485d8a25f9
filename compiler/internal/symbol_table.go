package internal

import (
	"errors"
	"fmt"
)

var ErrDuplicateDeclaration = errors.New("duplicate declaration")

// Symbol is one declared storage name.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	Index     int
	ClassType string // Only set for object typed variables.
}

// SymbolTable has two scopes: one for the class, living as long as the table, and one
// for the subroutine being parsed, replaced by StartSubroutine.
//
// Static and field names live in the class scope, argument and var names in the
// subroutine scope. Each kind is numbered on its own, starting at 0.
type SymbolTable struct {
	classScope      map[string]*Symbol
	subroutineScope map[string]*Symbol
	nextIndex       map[SymbolKind]int
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		classScope:      map[string]*Symbol{},
		subroutineScope: map[string]*Symbol{},
		nextIndex:       map[SymbolKind]int{},
	}
}

// StartSubroutine drops every argument and var. For a method argument 0 holds the
// receiver, so declared arguments are numbered from 1.
func (table *SymbolTable) StartSubroutine(isMethod bool) {
	table.subroutineScope = map[string]*Symbol{}
	table.nextIndex[ArgumentSymbol], table.nextIndex[VarSymbol] = 0, 0
	if isMethod {
		table.nextIndex[ArgumentSymbol] = 1
	}
}

// Define declares name in the scope owning kind and assigns it the next free slot.
// Declaring a name twice within one scope fails with ErrDuplicateDeclaration.
func (table *SymbolTable) Define(name string, kind SymbolKind, classType string) (*Symbol, error) {
	scope, err := table.scopeOf(kind)
	if err != nil {
		return nil, err
	}
	if _, ok := scope[name]; ok {
		return nil, fmt.Errorf("%w of %q", ErrDuplicateDeclaration, name)
	}
	symbol := &Symbol{
		Name:      name,
		Kind:      kind,
		Index:     table.nextIndex[kind],
		ClassType: classType,
	}
	table.nextIndex[kind]++
	scope[name] = symbol
	return symbol, nil
}

// Lookup checks the subroutine scope first, then the class scope.
func (table *SymbolTable) Lookup(name string) (*Symbol, bool) {
	if symbol, ok := table.subroutineScope[name]; ok {
		return symbol, true
	}
	symbol, ok := table.classScope[name]
	return symbol, ok
}

// Count returns how many names of kind are declared in its current scope.
func (table *SymbolTable) Count(kind SymbolKind) int {
	scope, err := table.scopeOf(kind)
	if err != nil {
		return 0
	}
	ret := 0
	for _, symbol := range scope {
		if symbol.Kind == kind {
			ret++
		}
	}
	return ret
}

func (table *SymbolTable) scopeOf(kind SymbolKind) (map[string]*Symbol, error) {
	switch kind {
	case StaticSymbol, FieldSymbol:
		return table.classScope, nil
	case ArgumentSymbol, VarSymbol:
		return table.subroutineScope, nil
	default:
		return nil, fmt.Errorf("%s names are not stored in the symbol table", kind)
	}
}
