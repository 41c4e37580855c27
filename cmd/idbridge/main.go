// Package main is the idbridge entry point.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/ubuntu/idbridge/cmd/idbridge/cli"
	"github.com/ubuntu/idbridge/internal/registry"
	"github.com/ubuntu/idbridge/log"
)

const (
	exitLookupFailure = 1
	exitUsage         = 2
	exitNotFound      = 3
)

func main() {
	os.Exit(run(cli.New()))
}

type app interface {
	Run() error
	UsageError() bool
}

func run(a app) int {
	log.InitJournalHandler(false)

	if err := a.Run(); err != nil {
		log.Error(context.Background(), err)

		if a.UsageError() {
			return exitUsage
		}
		if errors.Is(err, registry.NotFoundError{}) {
			return exitNotFound
		}
		return exitLookupFailure
	}

	return 0
}
