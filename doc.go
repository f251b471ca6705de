// Package cfront is the expression core of a C compiler front end. It lowers C
// expressions (binary operators, compound assignment, compound literals) into
// instructions for a typed stack machine, converting between the C numeric
// types with one instruction per conversion, and it evaluates the constant
// expressions of #if directives against a table of object-like macros.
//
// Compiled units can be executed by the in memory vm in src/runtime or
// translated into an LLVM module by src/generate. The cfront command wraps all
// of this in a build tool and a repl.
package cfront
