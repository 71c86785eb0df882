// Package cli builds the vex command-line surface on github.com/urfave/cli/v3,
// a direct teacher dependency. Grounded on
// sidedotdev-sidekick/cli/task_command.go's Command/Flags/Action shape
// (NewTaskCommand), generalized from sidekick's raw os.Args dispatch in
// cli/cli.go to a proper urfave/cli/v3 root command with subcommands.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"vex/config"
	"vex/engine"
	"vex/logger"
	"vex/tool"
	"vex/tui"
	"vex/ui"
)

// Root builds the top-level "vex" command.
func Root() *cli.Command {
	return &cli.Command{
		Name:  "vex",
		Usage: "an interactive terminal coding assistant",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "model", Usage: "override the configured model"},
			&cli.StringFlag{Name: "api-url", Usage: "override the configured api_url"},
			&cli.StringFlag{Name: "config", Usage: "path to a config.json file, bypassing discovery"},
			&cli.StringFlag{Name: "prompt", Aliases: []string{"p"}, Usage: "send one prompt non-interactively and print the reply"},
			&cli.BoolFlag{Name: "debug-payload", Usage: "log outbound request bodies and raw stream chunks to api_log_path"},
		},
		Commands: []*cli.Command{
			configCommand(),
		},
		Action: runRoot,
	}
}

func runRoot(ctx context.Context, cmd *cli.Command) error {
	snap, _, err := config.Load(cmd.String("config"))
	if err != nil {
		return cli.Exit(fmt.Errorf("loading config: %w", err), 1)
	}
	if v := cmd.String("model"); v != "" {
		snap.Model = v
	}
	if v := cmd.String("api-url"); v != "" {
		snap.APIURL = v
	}
	if cmd.Bool("debug-payload") {
		snap.DebugPayload = true
	}
	if err := snap.Validate(); err != nil {
		return cli.Exit(err, 1)
	}

	resolved := snap.Resolve()

	withFile := cmd.String("prompt") == ""
	logger.Init(withFile)
	log.Debug().Str("endpoint", resolved.Endpoint).Str("model", resolved.Model).Bool("local", resolved.Opts.IsLocal).Msg("vex: starting")

	root, err := os.Getwd()
	if err != nil {
		return cli.Exit(fmt.Errorf("getting working directory: %w", err), 1)
	}
	ws, err := tool.NewWorkspace(root)
	if err != nil {
		return cli.Exit(fmt.Errorf("initializing workspace: %w", err), 1)
	}
	dispatcher := tool.NewDispatcher(ws)

	client := &http.Client{Timeout: time.Duration(resolved.Opts.ToolTimeoutSecs+30) * time.Second}
	uiChan := ui.NewChannel(64)
	eng := engine.New(resolved.Endpoint, resolved.Wire, resolved.Model, systemPrompt(root), tool.Catalog(), dispatcher, client, resolved.Opts, uiChan)

	if prompt := cmd.String("prompt"); prompt != "" {
		return runOneShot(ctx, eng, uiChan, prompt)
	}
	return tui.Run(ctx, eng, uiChan)
}

// runOneShot drains the UI channel concurrently with SendMessage so a
// blocked approval request doesn't deadlock a non-interactive invocation:
// anything requiring approval is auto-denied, matching a CI/script context
// where nobody is present to confirm a mutating tool call.
func runOneShot(ctx context.Context, eng *engine.Engine, uiChan *ui.Channel, prompt string) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range uiChan.Updates() {
			if u.ResponseChannel != nil {
				u.ResponseChannel <- false
			}
		}
	}()

	reply, err := eng.SendMessage(ctx, prompt)
	uiChan.Close()
	<-done
	if err != nil {
		return cli.Exit(err, 1)
	}
	fmt.Println(strings.TrimSpace(reply))
	return nil
}

func systemPrompt(workspaceRoot string) string {
	return fmt.Sprintf("You are vex, a terminal coding assistant operating against the workspace rooted at %s. Use the provided tools to read and modify files and inspect git state; ask for nothing you can discover yourself.", workspaceRoot)
}
