// Package main is the main entrypoint to the cfront application
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/ComedicChimera/olive"
	"github.com/tanema/cfront/src/compile"
	"github.com/tanema/cfront/src/conf"
	"github.com/tanema/cfront/src/cpp"
	"github.com/tanema/cfront/src/generate"
	"github.com/tanema/cfront/src/logging"
	"github.com/tanema/cfront/src/runtime"
	"github.com/tanema/cfront/src/types"
)

func main() {
	cli := olive.NewCLI("cfront", "cfront compiles C expressions to a stack machine", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the log level", false, logging.LogLevelNames)
	logLvlArg.SetDefaultValue("verbose")
	cli.AddStringArg("config", "c", "path to a toml configuration file", false)

	buildCmd := cli.AddSubcommand("build", "compile a translation unit", true)
	buildCmd.AddPrimaryArg("file", "the C file to compile", true)
	buildCmd.AddFlag("listing", "l", "print the method listing")
	buildCmd.AddFlag("emit-llvm", "e", "print the LLVM module")
	buildCmd.AddFlag("run", "r", "execute the unit and print its variables")

	condCmd := cli.AddSubcommand("cond", "evaluate a #if expression", true)
	condCmd.AddPrimaryArg("expression", "the conditional expression", true)

	cli.AddSubcommand("repl", "start an interactive session", false)
	cli.AddSubcommand("version", "print the cfront version", false)

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		logging.PrintErrorMessage("CLI Usage Error", err)
		os.Exit(1)
	}

	lvl, err := logging.ParseLogLevel(result.Arguments["loglevel"].(string))
	if err != nil {
		logging.PrintErrorMessage("CLI Usage Error", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(lvl)

	cfgPath := ""
	if val, ok := result.Arguments["config"]; ok {
		cfgPath = val.(string)
	}
	cfg, err := conf.Load(cfgPath)
	if err != nil {
		logging.PrintErrorMessage("Config Error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		execBuildCommand(ctx, logger, cfg, subResult)
	case "cond":
		execCondCommand(logger, cfg, subResult)
	case "repl":
		execReplCommand(ctx, logger, cfg)
	case "version":
		logging.PrintInfoMessage("cfront Version", conf.FullVersion())
	}
	if logger.ErrorCount() > 0 {
		stop()
		os.Exit(1)
	}
}

func execBuildCommand(ctx context.Context, logger *logging.Logger, cfg *conf.Config, result *olive.ArgParseResult) {
	path, _ := result.PrimaryArg()
	cfg.Compiler.Listing = cfg.Compiler.Listing || result.HasFlag("listing")
	cfg.Compiler.EmitLLVM = cfg.Compiler.EmitLLVM || result.HasFlag("emit-llvm")
	cfg.Compiler.Run = cfg.Compiler.Run || result.HasFlag("run")

	start := time.Now()
	method, err := compile.File(path, types.NewRegistry())
	if err != nil {
		logger.LogError(err)
		return
	}
	logger.LogInfo("Compiled", fmt.Sprintf("%s (%d instructions, %.3fs)", path, len(method.ByteCodes), time.Since(start).Seconds()))

	if cfg.Compiler.Listing {
		fmt.Println(method.String())
	}
	if cfg.Compiler.EmitLLVM {
		mod, err := generate.Module(method)
		if err != nil {
			logger.LogError(err)
			return
		}
		fmt.Println(mod.String())
	}
	if cfg.Compiler.Run {
		locals, err := runtime.New(ctx).Eval(method)
		if err != nil {
			logger.LogError(err)
			return
		}
		for i, lcl := range method.Locals {
			fmt.Printf("%s %s = %s\n", lcl.Type, lcl.Name, runtime.ToString(lcl.Type, locals[i]))
		}
	}
}

func execCondCommand(logger *logging.Logger, cfg *conf.Config, result *olive.ArgParseResult) {
	src, _ := result.PrimaryArg()
	macros, err := cpp.NewConfiguredMacroTable(time.Now(), cfg)
	if err != nil {
		logger.LogError(err)
		return
	}
	expr, err := cpp.Parse(src)
	if err != nil {
		logger.LogError(err)
		return
	}
	ev := &cpp.Evaluator{Context: macros, Strict: cfg.Preprocessor.StrictConditionals}
	val, err := ev.Format(expr)
	if err != nil {
		logger.LogError(err)
		return
	}
	fmt.Println(val)
}

func execReplCommand(ctx context.Context, logger *logging.Logger, cfg *conf.Config) {
	session, err := runtime.NewSession(ctx, cfg, os.Stdout)
	if err != nil {
		logger.LogError(err)
		return
	}
	logger.LogInfo("cfront Version", conf.FullVersion())
	logger.LogInfo("Usage", "Press ctrl-c to quit or clear current buffer.")
	if err := session.REPL(); err != nil {
		logger.LogError(err)
	}
}
