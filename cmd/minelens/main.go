package main

import (
	"context"
	"fmt"
	"minelens/internal/di"
	"minelens/internal/structures"
	"os"
	"os/signal"
	"syscall"

	json "github.com/goccy/go-json"
	cli "gopkg.in/urfave/cli.v1"
)

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "Path to the YAML configuration file",
		Value: "config/config.yaml",
	},
	cli.BoolFlag{
		Name:  "debug, d",
		Usage: "Enable debug logging",
	},
}

func cliFlags(c *cli.Context) *structures.CliFlags {
	return &structures.CliFlags{
		ConfigPath: c.GlobalString("config"),
		DebugMode:  c.GlobalBool("debug"),
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func serve(c *cli.Context) error {
	_, err := di.InitApp(cliFlags(c))
	return err
}

func recompute(c *cli.Context) error {
	jobs, err := di.InitJobs(cliFlags(c))
	if err != nil {
		return err
	}
	defer jobs.Close()

	ctx, cancel := signalContext()
	defer cancel()

	run, err := jobs.Recompute(ctx, c.Bool("dry-run"))
	if run != nil {
		if printErr := printJSON(run); printErr != nil {
			return printErr
		}
	}
	return err
}

func history(c *cli.Context) error {
	jobs, err := di.InitJobs(cliFlags(c))
	if err != nil {
		return err
	}
	defer jobs.Close()

	ctx, cancel := signalContext()
	defer cancel()

	h, err := jobs.ReplayHistory(ctx, c.Int("hours"), c.Int("step"))
	if err != nil {
		return err
	}
	return printJSON(h)
}

func network(c *cli.Context) error {
	jobs, err := di.InitJobs(cliFlags(c))
	if err != nil {
		return err
	}
	defer jobs.Close()

	ctx, cancel := signalContext()
	defer cancel()

	report, err := jobs.NetworkAggregate(ctx)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "minelens"
	app.Usage = "Hashpower, reward and protocol health analytics for the mining program"
	app.Version = "0.1.0"
	app.Writer = os.Stdout
	app.Flags = globalFlags
	app.Action = serve
	app.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "Run the HTTP API and scheduled jobs",
			Action: serve,
		},
		{
			Name:  "recompute",
			Usage: "Recompute the weighted stake total and write it on chain",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "dry-run",
					Usage: "Compute and record the run without writing",
				},
			},
			Action: recompute,
		},
		{
			Name:  "history",
			Usage: "Replay network hashpower over a past window",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "hours",
					Usage: "Window length in hours (1-720)",
					Value: 168,
				},
				cli.IntFlag{
					Name:  "step",
					Usage: "Step between points in hours (1-24)",
					Value: 6,
				},
			},
			Action: history,
		},
		{
			Name:   "network",
			Usage:  "Print the current network hashpower aggregate",
			Action: network,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "minelens:", err)
		os.Exit(1)
	}
}
