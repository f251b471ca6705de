package cpp

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/lestrrat-go/strftime"
	"github.com/tanema/cfront/src/conf"
	"github.com/tanema/cfront/src/lerrors"
)

type (
	// MacroContext resolves an identifier to its replacement text.
	MacroContext interface {
		TryResolveMacro(name string) (string, bool)
	}
	// MacroTable holds the object like macros of a translation unit.
	MacroTable struct {
		macros    map[string]string
		protected map[string]bool
	}
)

const (
	dateFormat = "%b %e %Y"
	timeFormat = "%H:%M:%S"
)

// NewMacroTable creates a table with the predefined macros for the time now.
func NewMacroTable(now time.Time) *MacroTable {
	mt := &MacroTable{
		macros: map[string]string{
			"__STDC__":         "1",
			"__STDC_VERSION__": conf.STDCVERSION,
			"__STDC_HOSTED__":  "1",
			"__DATE__":         formatTime(dateFormat, now),
			"__TIME__":         formatTime(timeFormat, now),
		},
		protected: map[string]bool{},
	}
	for name := range mt.macros {
		mt.protected[name] = true
	}
	return mt
}

// NewConfiguredMacroTable creates a table with the predefined macros and the
// macros of the configuration file.
func NewConfiguredMacroTable(now time.Time, cfg *conf.Config) (*MacroTable, error) {
	mt := NewMacroTable(now)
	names := make([]string, 0, len(cfg.Preprocessor.Macros))
	for name := range cfg.Preprocessor.Macros {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := mt.Define(name, cfg.Preprocessor.Macros[name]); err != nil {
			return nil, err
		}
	}
	return mt, nil
}

// Define adds a macro. Redefining a macro with a different replacement text is
// an error, as is redefining a predefined macro.
func (mt *MacroTable) Define(name, text string) error {
	if !isIdentifier(name) {
		return ppErrorf("macro names must be identifiers: %q", name)
	} else if name == "defined" {
		return ppErrorf("\"defined\" cannot be used as a macro name")
	} else if mt.protected[name] {
		return ppErrorf("redefining builtin macro %v", name)
	}
	text = strings.Join(strings.Fields(text), " ")
	if existing, found := mt.macros[name]; found && existing != text {
		return ppErrorf("%v redefined: %q, %q", name, existing, text)
	}
	mt.macros[name] = text
	return nil
}

// Undefine removes a macro. Undefining an unknown macro is allowed.
func (mt *MacroTable) Undefine(name string) error {
	if mt.protected[name] {
		return ppErrorf("undefining builtin macro %v", name)
	}
	delete(mt.macros, name)
	return nil
}

// IsDefined reports whether name is a macro.
func (mt *MacroTable) IsDefined(name string) bool {
	_, found := mt.macros[name]
	return found
}

// TryResolveMacro returns the replacement text of name.
func (mt *MacroTable) TryResolveMacro(name string) (string, bool) {
	text, found := mt.macros[name]
	return text, found
}

// Names lists the defined macros in order.
func (mt *MacroTable) Names() []string {
	names := make([]string, 0, len(mt.macros))
	for name := range mt.macros {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefineLine processes a #define or #undef directive line.
func (mt *MacroTable) DefineLine(line string) error {
	directive, rest := splitWord(strings.TrimPrefix(strings.TrimSpace(line), "#"))
	name, text := splitWord(rest)
	switch directive {
	case "define":
		if name == "" {
			return ppErrorf("macro name missing")
		} else if idx := strings.IndexByte(name, '('); idx >= 0 {
			return &lerrors.WipError{Feature: "function like macro " + name[:idx]}
		}
		return mt.Define(name, text)
	case "undef":
		if name == "" {
			return ppErrorf("macro name missing")
		} else if text != "" {
			return ppErrorf("extra tokens at end of #undef directive")
		}
		return mt.Undefine(name)
	default:
		return ppErrorf("invalid preprocessing directive #%v", directive)
	}
}

// splitWord cuts the first whitespace delimited word off of s. A '(' directly
// after the word stays with it.
func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx:])
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, ch := range name {
		if ch != '_' && !unicode.IsLetter(ch) && (i == 0 || !unicode.IsDigit(ch)) {
			return false
		}
	}
	return true
}

// formatTime renders t as a C string literal.
func formatTime(format string, t time.Time) string {
	strf, err := strftime.New(format)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%q", strf.FormatString(t))
}

func ppErrorf(format string, args ...any) error {
	return &lerrors.Error{Kind: lerrors.PreprocessorErr, Err: fmt.Errorf(format, args...)}
}
