package main

import (
	"context"
	"os"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		// cobra has already printed the error.
		os.Exit(1)
	}
}
