// Command vex is the terminal coding assistant's entry point. Grounded on
// sidedotdev-sidekick/api/main/main.go's startup sequence: load .env, then
// hand off to the command surface.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"vex/cli"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Debug().Err(err).Msg("vex: error loading .env file")
		}
	}

	if err := cli.Root().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
