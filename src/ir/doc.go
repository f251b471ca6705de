// Package ir is the typed intermediate representation of C expressions. Nodes
// are built from the syntax tree with ToIntermediate, rewritten into their
// operator family by Lower and appended to a Method as stack machine
// instructions by EmitTo. Only a LoweredExpression can be emitted.
package ir
