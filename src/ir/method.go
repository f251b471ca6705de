package ir

import (
	"bytes"
	"fmt"
	"math"
	"text/template"

	"github.com/pkg/errors"
	"github.com/tanema/cfront/src/bytecode"
	"github.com/tanema/cfront/src/conf"
	"github.com/tanema/cfront/src/types"
)

type (
	// Local is a named, typed slot of a method.
	Local struct {
		Name  string
		Type  types.Type
		Index int
	}
	// Method is the emission target for one function body. Its instruction
	// sequence is append only, except for patching forward branches.
	Method struct {
		Name      string
		Filename  string
		Locals    []*Local
		Constants []any        // int64 and float64 values loaded with LDC
		Types     []types.Type // aggregate types referenced by NEWOBJ and NEWARR
		ByteCodes []uint32
	}
)

const methodTemplate = `{{.Name}} <{{.Filename}}> ({{.ByteCodes | len}} instructions)
{{.Locals | len}} locals, {{.Constants | len}} constants, {{.Types | len}} types
{{- range .Locals}}
	.local {{.Index}} {{.Type}} {{.Name}}
{{- end}}
{{- range $i, $code := .ByteCodes}}
	{{$i}}	{{$code | inst}}{{codeMeta $i $code}}
{{- end}}
`

// NewMethod creates an empty method.
func NewMethod(filename, name string) *Method {
	return &Method{
		Name:     name,
		Filename: filename,
	}
}

// AddLocal declares a new local. Names must be unique within the method.
func (m *Method) AddLocal(name string, typ types.Type) (*Local, error) {
	if _, found := m.FindLocal(name); found {
		return nil, fmt.Errorf("redefinition of %v", name)
	} else if len(m.Locals) == conf.MAXLOCALS {
		return nil, fmt.Errorf("local overflow while adding local %v", name)
	}
	lcl := &Local{Name: name, Type: typ, Index: len(m.Locals)}
	m.Locals = append(m.Locals, lcl)
	return lcl, nil
}

// FindLocal looks up a local by name.
func (m *Method) FindLocal(name string) (*Local, bool) {
	for _, lcl := range m.Locals {
		if lcl.Name == name {
			return lcl, true
		}
	}
	return nil, false
}

// AddConst adds a value to the constant pool, reusing an existing slot for an
// equal value of the same Go type.
func (m *Method) AddConst(val any) (uint32, error) {
	for i, konst := range m.Constants {
		if sameConst(konst, val) {
			return uint32(i), nil
		}
	}
	if len(m.Constants) == conf.MAXCONST {
		return 0, fmt.Errorf("constant overflow while adding %v", val)
	}
	m.Constants = append(m.Constants, val)
	return uint32(len(m.Constants) - 1), nil
}

// sameConst compares floats by their bits, so that 0.0 and -0.0 keep separate
// slots.
func sameConst(a, b any) bool {
	af, aIsFloat := a.(float64)
	bf, bIsFloat := b.(float64)
	if aIsFloat && bIsFloat {
		return math.Float64bits(af) == math.Float64bits(bf)
	}
	return a == b
}

// GetConst gets a constant from the constant pool.
func (m *Method) GetConst(idx int64) any {
	if idx < 0 || int(idx) >= len(m.Constants) {
		return nil
	}
	return m.Constants[idx]
}

// AddType adds an aggregate type to the type table.
func (m *Method) AddType(typ types.Type) (uint32, error) {
	for i, known := range m.Types {
		if types.Equal(known, typ) {
			return uint32(i), nil
		}
	}
	if len(m.Types) == conf.MAXTYPES {
		return 0, fmt.Errorf("type overflow while adding %v", typ)
	}
	m.Types = append(m.Types, typ)
	return uint32(len(m.Types) - 1), nil
}

// GetType gets a type from the type table.
func (m *Method) GetType(idx int64) types.Type {
	if idx < 0 || int(idx) >= len(m.Types) {
		return nil
	}
	return m.Types[idx]
}

// Code appends an instruction and returns its position.
func (m *Method) Code(op uint32) int {
	m.ByteCodes = append(m.ByteCodes, op)
	return len(m.ByteCodes) - 1
}

// Label is the position of the next instruction, to be used as a branch target.
func (m *Method) Label() int {
	return len(m.ByteCodes)
}

// Patch points the branch instruction at pc to target.
func (m *Method) Patch(pc, target int) error {
	if pc < 0 || pc >= len(m.ByteCodes) || !bytecode.IsBranch(m.ByteCodes[pc]) {
		return fmt.Errorf("cannot patch non branch instruction at %v", pc)
	}
	m.ByteCodes[pc] = bytecode.IsA(bytecode.GetOp(m.ByteCodes[pc]), int32(target-pc-1))
	return nil
}

// LoadInteger emits the cheapest load of an integer value.
func (m *Method) LoadInteger(val int64) error {
	if val >= conf.MININLINEINT && val < conf.MAXINLINEINT {
		m.Code(bytecode.IsA(bytecode.LDI, int32(val)))
		return nil
	}
	kaddr, err := m.AddConst(val)
	if err != nil {
		return errors.Wrap(err, "load integer")
	}
	m.Code(bytecode.IA(bytecode.LDC, kaddr))
	return nil
}

// LoadFloat emits a load of a floating point value through the constant pool.
func (m *Method) LoadFloat(val float64) error {
	kaddr, err := m.AddConst(val)
	if err != nil {
		return errors.Wrap(err, "load float")
	}
	m.Code(bytecode.IA(bytecode.LDC, kaddr))
	return nil
}

func (m *Method) String() string {
	var buf bytes.Buffer
	tmpl := template.New("method")
	tmpl.Funcs(map[string]any{
		"inst": bytecode.ToString,
		"codeMeta": func(pc int, op uint32) string {
			switch bytecode.GetOp(op) {
			case bytecode.LDC:
				return fmt.Sprintf("\t; %v", m.GetConst(bytecode.GetA(op)))
			case bytecode.LDLOC, bytecode.STLOC:
				if idx := bytecode.GetA(op); int(idx) < len(m.Locals) {
					return "\t; " + m.Locals[idx].Name
				}
			case bytecode.BR, bytecode.BRFALSE, bytecode.BRTRUE:
				return fmt.Sprintf("\t; to %v", int64(pc)+1+bytecode.GetsA(op))
			case bytecode.NEWOBJ, bytecode.NEWARR:
				return fmt.Sprintf("\t; %v", m.GetType(bytecode.GetA(op)))
			}
			return ""
		},
	})
	tmpl = template.Must(tmpl.Parse(methodTemplate))
	if err := tmpl.Execute(&buf, m); err != nil {
		panic(err)
	}
	return buf.String()
}
