// Package conf contains the constants that are used across packages for configuring
// versions and emission limits, and the loader for the cfront configuration file.
package conf

import (
	"fmt"
	"time"
)

const (
	// CFRONTVERSION is the version of the cfront application.
	CFRONTVERSION = "cfront 0.1.0"
	// CFRONTVERSIONMAJORN is the major version.
	CFRONTVERSIONMAJORN = 0
	// CFRONTVERSIONMINORN is the minor version.
	CFRONTVERSIONMINORN = 1
	// CFRONTVERSIONPATCHN is the patch version.
	CFRONTVERSIONPATCHN = 0
	// STDCVERSION is the value of __STDC_VERSION__ that the preprocessor reports.
	STDCVERSION = "201112L"
	// MAXLOCALS max allowed locals declared in a method.
	MAXLOCALS = 1 << 16
	// MAXCONST max amount of consts that a method can store.
	MAXCONST = 1 << 23
	// MAXTYPES max amount of aggregate types a method can reference.
	MAXTYPES = 1 << 16
	// MAXINLINEINT is the exclusive upper bound of integers that can be loaded
	// with LDI instead of through the constant pool.
	MAXINLINEINT = 1 << 23
	// MINLINEINT is the inclusive lower bound of integers loaded with LDI.
	MININLINEINT = -(1 << 23)
	// MAXMACRODEPTH max nesting of macro replacement text evaluated inside a
	// conditional expression.
	MAXMACRODEPTH = 200
	// INITIALSTACKSIZE stack size at vm startup.
	INITIALSTACKSIZE = 64
)

// FullVersion returns the version and copyright.
func FullVersion() string {
	return fmt.Sprintf("%v Copyright (C) %v", CFRONTVERSION, time.Now().Year())
}

// Copyright is the copyright to be written out in the CLI.
func Copyright() string {
	return fmt.Sprintf("Copyright (C) %v", time.Now().Year())
}
