package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"vex/config"
)

// configCommand is "vex config", with "show" and "path" subcommands. show
// surfaces the resolved config.Snapshot (file + env overrides applied, in
// precedence order) as JSON, grounded on sidekick's config_discovery.go
// discovery logic feeding into local_config.go's loader.
func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "inspect the resolved configuration",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "print the resolved config as JSON",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					snap, path, err := config.Load(cmd.Root().String("config"))
					if err != nil {
						return cli.Exit(err, 1)
					}
					out, err := json.MarshalIndent(snap, "", "  ")
					if err != nil {
						return cli.Exit(err, 1)
					}
					if path != "" {
						fmt.Printf("# loaded from %s\n", path)
					} else {
						fmt.Println("# no config file found; environment and defaults only")
					}
					fmt.Println(string(out))
					return nil
				},
			},
			{
				Name:  "path",
				Usage: "print the config file that would be used",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					result := config.Discover(config.Dir())
					if result.ChosenPath == "" {
						fmt.Printf("no config file found in %s\n", config.Dir())
						return nil
					}
					fmt.Println(result.ChosenPath)
					if len(result.AllFound) > 1 {
						fmt.Printf("(%d other candidate(s) found but not used: %v)\n", len(result.AllFound)-1, result.AllFound[1:])
					}
					return nil
				},
			},
		},
	}
}
