package main

import (
	"errors"
	"os"

	"rsyncsync/internal/coordinator"
)

const (
	exitInterrupted = 130
	exitTerminated  = 143
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		switch {
		case errors.Is(err, coordinator.ErrInterrupted):
			os.Exit(exitInterrupted)
		case errors.Is(err, coordinator.ErrTerminated):
			os.Exit(exitTerminated)
		default:
			exitOnError(err)
		}
	}
}
