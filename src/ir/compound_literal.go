package ir

import (
	"fmt"

	"github.com/tanema/cfront/src/ast"
	"github.com/tanema/cfront/src/bytecode"
	"github.com/tanema/cfront/src/types"
)

type (
	// CompoundLiteralExpression is (T){ initializers }. For a scalar T it is a
	// conversion of its single initializer, for a struct or array it builds the
	// aggregate.
	CompoundLiteralExpression struct {
		TypeName     ast.TypeName
		Initializers []*CompoundObjectFieldInitializer
	}
	// AggregateExpression is a lowered struct or array literal with every
	// initializer resolved to a slot.
	AggregateExpression struct {
		Type  types.Type
		Slots []AggregateSlot
	}
	// AggregateSlot is a value placed into a struct field or array element.
	AggregateSlot struct {
		Index int
		Type  types.Type
		Value LoweredExpression
	}
)

func (lit *CompoundLiteralExpression) Lower(scope Scope) (LoweredExpression, error) {
	typ, err := ResolveType(scope, lit.TypeName)
	if err != nil {
		return nil, err
	}
	inits := make([]*LoweredCompoundObjectFieldInitializer, len(lit.Initializers))
	for i, init := range lit.Initializers {
		lowered, err := init.Lower(scope)
		if err != nil {
			return nil, err
		}
		inits[i] = lowered.(*LoweredCompoundObjectFieldInitializer)
	}

	switch agg := typ.(type) {
	case *types.Struct:
		return lowerStruct(agg, inits)
	case *types.Array:
		return lowerArray(agg, inits)
	}
	if len(inits) != 1 {
		return nil, fmt.Errorf("scalar initializer for %v must have exactly one element", typ)
	} else if inits[0].Designation != nil {
		return nil, fmt.Errorf("designator %v in initializer for scalar type %v", inits[0].Designation, typ)
	}
	return &ConversionExpression{Value: asValue(inits[0].Inner), Type: typ}, nil
}

func (lit *CompoundLiteralExpression) ExpressionType(scope Scope) (types.Type, error) {
	return ResolveType(scope, lit.TypeName)
}

func lowerStruct(st *types.Struct, inits []*LoweredCompoundObjectFieldInitializer) (*AggregateExpression, error) {
	agg := &AggregateExpression{Type: st}
	next := 0
	for _, init := range inits {
		if init.Designation != nil {
			des, err := singleDesignator(init.Designation)
			if err != nil {
				return nil, err
			}
			field, isField := des.(ast.FieldDesignator)
			if !isField {
				return nil, fmt.Errorf("array designator %v in initializer for %v", des, st)
			}
			idx, found := st.FieldIndex(field.Name)
			if !found {
				return nil, fmt.Errorf("field designator %v does not refer to any field in %v", des, st)
			}
			next = idx
		}
		if next >= len(st.Fields) {
			return nil, fmt.Errorf("excess elements in initializer for %v", st)
		}
		agg.Slots = append(agg.Slots, AggregateSlot{Index: next, Type: st.Fields[next].Type, Value: asValue(init.Inner)})
		next++
	}
	return agg, nil
}

func lowerArray(arr *types.Array, inits []*LoweredCompoundObjectFieldInitializer) (*AggregateExpression, error) {
	agg := &AggregateExpression{Type: arr}
	next := 0
	for _, init := range inits {
		if init.Designation != nil {
			des, err := singleDesignator(init.Designation)
			if err != nil {
				return nil, err
			}
			index, isIndex := des.(ast.IndexDesignator)
			if !isIndex {
				return nil, fmt.Errorf("field designator %v in initializer for %v", des, arr)
			} else if index.Index < 0 || index.Index >= int64(arr.Len) {
				return nil, fmt.Errorf("array index %v is out of bounds for %v", index.Index, arr)
			}
			next = int(index.Index)
		}
		if next >= arr.Len {
			return nil, fmt.Errorf("excess elements in initializer for %v", arr)
		}
		agg.Slots = append(agg.Slots, AggregateSlot{Index: next, Type: arr.Elem, Value: asValue(init.Inner)})
		next++
	}
	return agg, nil
}

func singleDesignator(des *ast.Designation) (ast.Designator, error) {
	if len(des.Designators) != 1 {
		return nil, fmt.Errorf("nested designator %v is not supported, use a nested compound literal", des)
	}
	return des.Designators[0], nil
}

func (agg *AggregateExpression) Lower(Scope) (LoweredExpression, error) { return agg, nil }

func (agg *AggregateExpression) ExpressionType(Scope) (types.Type, error) { return agg.Type, nil }

// EmitTo creates the aggregate and stores every slot into it:
//
//	NEWOBJ t; (DUP; value; conv; STFLD i)*
func (agg *AggregateExpression) EmitTo(scope EmitScope) error {
	method := scope.Method()
	tidx, err := method.AddType(agg.Type)
	if err != nil {
		return err
	}
	create, store := bytecode.NEWOBJ, bytecode.STFLD
	if _, isArray := agg.Type.(*types.Array); isArray {
		create, store = bytecode.NEWARR, bytecode.STELEM
	}
	method.Code(bytecode.IA(create, tidx))
	for _, slot := range agg.Slots {
		method.Code(bytecode.I(bytecode.DUP))
		valueType, err := slot.Value.ExpressionType(scope)
		if err != nil {
			return err
		}
		if err := slot.Value.EmitTo(scope); err != nil {
			return err
		}
		if err := EmitConversion(scope, valueType, slot.Type); err != nil {
			return err
		}
		method.Code(bytecode.IA(store, uint32(slot.Index)))
	}
	return nil
}
