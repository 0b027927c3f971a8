package command

import (
	"github.com/urfave/cli/v3"
)

// NewApp builds the ttwactl command tree. Every subcommand is parameterized
// by --env-name; resource names are always derived from it so parallel
// environments in one account/region never collide.
func NewApp() *cli.Command {
	app := &cli.Command{
		Name:  "ttwactl",
		Usage: "operate helloworld environments on AWS",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-name",
				Aliases: []string{"e"},
				Usage:   "deployment environment name (dev, test, prod)",
				Sources: cli.EnvVars("ENV_NAME"),
				Value:   "dev",
			},
			&cli.StringFlag{
				Name:    "region",
				Usage:   "AWS region",
				Sources: cli.EnvVars("AWS_REGION"),
				Value:   "eu-central-1",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Value:   "info",
			},
		},
	}

	app.Commands = append(app.Commands,
		DeployCommand(),
		StatusCommand(),
		LogsCommand(),
		SecretsCommand(),
	)

	return app
}
