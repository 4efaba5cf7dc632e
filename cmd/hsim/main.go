// Command hsim runs nightshade scenes headlessly.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	app := New()
	if err := app.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
