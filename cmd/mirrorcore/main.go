package main

import (
	"fmt"
	"os"

	"github.com/small-frappuccino/mirrorcore/pkg/app"
)

// main is the entry point of the settings console bot.
func main() {
	if err := app.Run("mirrorcore", "MIRRORCORE_BOT_TOKEN"); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: %v\n", err)
		os.Exit(1)
	}
}
