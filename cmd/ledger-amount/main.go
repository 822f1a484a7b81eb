package main

import (
	"context"
	"os"

	"github.com/govalues/ledger/cmd/ledger-amount/cmd"
)

func main() {
	if err := cmd.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
