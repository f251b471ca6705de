package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/tanema/cfront/src/ast"
	"github.com/tanema/cfront/src/bytecode"
	"github.com/tanema/cfront/src/compile"
	"github.com/tanema/cfront/src/conf"
	"github.com/tanema/cfront/src/cpp"
	"github.com/tanema/cfront/src/parse"
	"github.com/tanema/cfront/src/types"
)

// Session is an interactive compilation session. Statements are compiled into
// one method and only the code added by each input is executed, so variables
// keep their values between inputs.
type Session struct {
	vm       *VM
	compiler *compile.Compiler
	macros   *cpp.MacroTable
	eval     *cpp.Evaluator
	listing  bool
	out      io.Writer
}

// NewSession creates a session configured by cfg that prints results to out.
func NewSession(ctx context.Context, cfg *conf.Config, out io.Writer) (*Session, error) {
	macros, err := cpp.NewConfiguredMacroTable(time.Now(), cfg)
	if err != nil {
		return nil, err
	}
	return &Session{
		vm:       New(ctx),
		compiler: compile.New("<repl>", "<main>", types.NewRegistry()),
		macros:   macros,
		eval:     &cpp.Evaluator{Context: macros, Strict: cfg.Preprocessor.StrictConditionals},
		listing:  cfg.Compiler.Listing,
		out:      out,
	}, nil
}

// Input handles one complete input. A line starting with # is a directive:
// #if prints the value of its condition, #define and #undef edit the macro
// table. Anything else is compiled as statements and run.
func (s *Session) Input(src string) error {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil
	} else if strings.HasPrefix(src, "#") {
		return s.directive(src)
	}
	stmts, err := parse.Parse("<repl>", strings.NewReader(src))
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if err := s.statement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) directive(src string) error {
	name, rest, _ := strings.Cut(strings.TrimSpace(strings.TrimPrefix(src, "#")), " ")
	if name != "if" {
		return s.macros.DefineLine(src)
	}
	expr, err := cpp.Parse(rest)
	if err != nil {
		return err
	}
	val, err := s.eval.Format(expr)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, val)
	return nil
}

func (s *Session) statement(stmt ast.Statement) error {
	method := s.compiler.Method()
	pc := len(method.ByteCodes)
	exprStmt, isExpr := stmt.(*ast.ExpressionStatement)
	if !isExpr {
		if err := s.compiler.Statement(stmt); err != nil {
			return err
		}
		return s.run(pc)
	}
	typ, err := s.compiler.Evaluate(exprStmt)
	if err != nil {
		return err
	} else if err := s.run(pc); err != nil {
		return err
	} else if typ == nil {
		return nil
	}
	val, err := s.vm.pop()
	if err != nil {
		return err
	}
	method.Code(bytecode.I(bytecode.POP))
	fmt.Fprintln(s.out, ToString(typ, val))
	return nil
}

func (s *Session) run(pc int) error {
	method := s.compiler.Method()
	if s.listing && pc < len(method.ByteCodes) {
		for i, code := range method.ByteCodes[pc:] {
			fmt.Fprintf(s.out, "\t%d\t%s\n", pc+i, bytecode.ToString(code))
		}
	}
	if _, err := s.vm.Exec(method, int64(pc)); err != nil {
		s.vm.top = 0
		return err
	}
	return nil
}

// Macros exposes the session's macro table.
func (s *Session) Macros() *cpp.MacroTable { return s.macros }

// REPL will start an interactive loop reading statements and directives until
// interrupted. Statements are buffered until they end with a semicolon.
func (s *Session) REPL() error {
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer func() { _ = rl.Close() }()
	buf := bytes.NewBuffer(nil)
	for {
		src, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if buf.Len() > 0 {
					rl.SetPrompt("> ")
					buf.Reset()
					fmt.Fprint(os.Stderr, "Press ctrl-c again to quit.\n")
					continue
				}
				break
			} else if errors.Is(err, io.EOF) {
				break
			}
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		if _, err := buf.WriteString(src + " "); err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		input := strings.TrimSpace(buf.String())
		if !strings.HasPrefix(input, "#") && !strings.HasSuffix(input, ";") {
			rl.SetPrompt("...> ")
			continue
		}

		rl.SetPrompt("> ")
		buf.Reset()
		if err := s.Input(input); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	return nil
}
