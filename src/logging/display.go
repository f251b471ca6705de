package logging

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/tanema/cfront/src/lerrors"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

var kindTags = map[lerrors.ErrorKind]string{
	lerrors.LexerErr:        "Lex Error",
	lerrors.ParserErr:       "Parse Error",
	lerrors.CompileErr:      "Compile Error",
	lerrors.PreprocessorErr: "Preprocessor Error",
	lerrors.RuntimeErr:      "Runtime Error",
}

// PrintErrorMessage prints a standard Go error to the console
func PrintErrorMessage(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

// PrintWarningMessage prints a warning message to the console
func PrintWarningMessage(tag, msg string) {
	WarnStyleBG.Print(tag)
	WarnColorFG.Println(" " + msg)
}

// PrintInfoMessage prints an informational message to the user
func PrintInfoMessage(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// describe splits an error into the tag it is displayed under, the position
// it points at and the message.
func describe(err error) (string, string, error) {
	var cErr *lerrors.Error
	if !errors.As(err, &cErr) {
		return "Error", "", err
	}
	tag := kindTags[cErr.Kind]
	if cErr.Line == 0 {
		return tag, cErr.Filename, cErr.Err
	}
	return tag, fmt.Sprintf("%s:%d:%d", cErr.Filename, cErr.Line, cErr.Column), cErr.Err
}

func displayError(err error) {
	tag, pos, msg := describe(err)
	fmt.Print("\n-- ")
	ErrorStyleBG.Print(tag)
	if pos != "" {
		fmt.Print(" ")
		InfoColorFG.Print(pos)
	}
	fmt.Println()
	fmt.Println(msg)

	var cErr *lerrors.Error
	if errors.As(err, &cErr) && cErr.Line > 0 {
		if lines, selErr := codeSelection(cErr.Filename, int(cErr.Line), int(cErr.Column)); selErr == nil {
			fmt.Println()
			InfoColorFG.Print(lines[0])
			fmt.Println(lines[1])
			ErrorColorFG.Println(lines[2])
		}
	}
}

// codeSelection reads line ln of the file at path and returns the line number
// gutter, the line itself and a caret under column col.
func codeSelection(path string, ln, col int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for lineNumber := 1; sc.Scan(); lineNumber++ {
		if lineNumber != ln {
			continue
		}
		gutter := strconv.Itoa(ln) + " |  "
		line := strings.ReplaceAll(sc.Text(), "\t", "    ")
		caret := strings.Repeat(" ", len(gutter)+max(col-1, 0)) + "^"
		return []string{gutter, line, caret}, nil
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%s has no line %d", path, ln)
}
