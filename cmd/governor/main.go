// Package main is the entry point for the governor service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/agentgov/governor/internal/governor"
)

func main() {
	governor.NewApp().Run()
}
