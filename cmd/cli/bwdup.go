package main

import (
	"context"
	"errors"
	"flag"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/args"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/duplicator"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/entry"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/logger"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/shell"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"os"
	"os/signal"
)

var Version = "development"

func main() {
	if err := logger.BuildLogger("info"); err != nil {
		os.Exit(1)
	}

	parseArgs, argsErrors, err := args.ParseArgs(os.Args[1:])

	if errors.Is(err, flag.ErrHelp) {
		zap.L().Error(argsErrors)
		os.Exit(2)
	} else if err != nil {
		zap.L().Error("got error: " + err.Error())
		zap.L().Error("argsErrors:\n" + argsErrors)
		os.Exit(2)
	}

	if parseArgs.Version {
		zap.L().Info("Version: " + Version)
		os.Exit(0)
	}

	if err := logger.BuildLogger(parseArgs.LogLevel); err != nil {
		errorExit(err.Error())
	}

	if err := parseArgs.Validate(); err != nil {
		errorExit(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// A second interrupt kills the process
	go func() {
		<-ctx.Done()
		stop()
	}()

	results, err := entry.Entry(ctx, parseArgs)

	if errors.Is(err, shell.ErrCancelled) {
		return
	}

	if errors.Is(err, context.Canceled) {
		errorExit("Operation cancelled by user")
	}

	if err != nil {
		stop()
		errorExit(err.Error())
	}

	if lo.SomeBy(results, func(result duplicator.Result) bool {
		return !result.Succeeded()
	}) {
		stop()
		errorExit("Some duplications did not complete, check the summary above for details")
	}
}

func errorExit(message string) {
	if len(message) == 0 {
		message = "No error message provided"
	}
	zap.L().Error(message)
	os.Exit(1)
}
