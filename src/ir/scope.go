package ir

import (
	"fmt"

	"github.com/tanema/cfront/src/ast"
	"github.com/tanema/cfront/src/types"
)

type (
	// Scope is what lowering and typing need to know about the surrounding
	// compilation.
	Scope interface {
		TypeSystem() types.System
		ResolveLocal(name string) (*Local, bool)
		ResolveStruct(name string) (*types.Struct, bool)
	}
	// EmitScope additionally exposes the method being emitted into.
	EmitScope interface {
		Scope
		Method() *Method
	}
	// FunctionScope is the scope of a single method body.
	FunctionScope struct {
		ts      types.System
		method  *Method
		structs map[string]*types.Struct
	}
)

// NewFunctionScope creates a scope emitting into method.
func NewFunctionScope(ts types.System, method *Method) *FunctionScope {
	return &FunctionScope{
		ts:      ts,
		method:  method,
		structs: map[string]*types.Struct{},
	}
}

func (fs *FunctionScope) TypeSystem() types.System { return fs.ts }
func (fs *FunctionScope) Method() *Method          { return fs.method }

func (fs *FunctionScope) ResolveLocal(name string) (*Local, bool) {
	return fs.method.FindLocal(name)
}

func (fs *FunctionScope) ResolveStruct(name string) (*types.Struct, bool) {
	st, found := fs.structs[name]
	return st, found
}

// DeclareLocal resolves the declared type and adds a local to the method.
func (fs *FunctionScope) DeclareLocal(name string, tn ast.TypeName) (*Local, error) {
	typ, err := ResolveType(fs, tn)
	if err != nil {
		return nil, err
	} else if typ == fs.ts.Void() {
		return nil, fmt.Errorf("variable %v has incomplete type void", name)
	}
	return fs.method.AddLocal(name, typ)
}

// DeclareStruct defines a struct type from its field declarations.
func (fs *FunctionScope) DeclareStruct(def *ast.StructDefinition) (*types.Struct, error) {
	if _, found := fs.structs[def.Name]; found {
		return nil, fmt.Errorf("redefinition of struct %v", def.Name)
	}
	st := &types.Struct{Name: def.Name}
	for _, field := range def.Fields {
		if _, dup := st.FieldIndex(field.Name); dup {
			return nil, fmt.Errorf("duplicate member %v in struct %v", field.Name, def.Name)
		}
		typ, err := ResolveType(fs, field.Type)
		if err != nil {
			return nil, err
		} else if typ == fs.ts.Void() {
			return nil, fmt.Errorf("field %v has incomplete type void", field.Name)
		}
		st.Fields = append(st.Fields, types.Field{Name: field.Name, Type: typ})
	}
	fs.structs[def.Name] = st
	return st, nil
}

// ResolveType turns a written type name into a semantic type.
func ResolveType(scope Scope, tn ast.TypeName) (types.Type, error) {
	var typ types.Type
	if tn.Struct {
		st, found := scope.ResolveStruct(tn.Base)
		if !found {
			return nil, fmt.Errorf("unknown type struct %v", tn.Base)
		}
		typ = st
	} else {
		prim, found := scope.TypeSystem().Lookup(tn.Base)
		if !found {
			return nil, fmt.Errorf("unknown type %v", tn.Base)
		}
		typ = prim
	}
	for i := 0; i < tn.Pointers; i++ {
		typ = &types.Pointer{Elem: typ}
	}
	if tn.IsArray {
		if typ == scope.TypeSystem().Void() {
			return nil, fmt.Errorf("array of void")
		}
		typ = &types.Array{Elem: typ, Len: tn.ArrayLen}
	}
	return typ, nil
}
