package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/ttwa/helloworld/internal/deploy"
	"github.com/ttwa/helloworld/pkg/secrets"
	"github.com/ttwa/helloworld/pkg/utils"
)

// SecretsCommand manages the per-environment Aurora credentials secret.
// Creation must happen before the first deploy: the stack references the
// secret by name and never owns its lifecycle.
func SecretsCommand() *cli.Command {
	return &cli.Command{
		Name:  "secrets",
		Usage: "manage the environment's database credentials secret",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create the {env}-aurora-credentials secret",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "username",
						Usage: "database master username",
						Value: "helloworld_admin",
					},
					&cli.StringFlag{
						Name:     "password",
						Usage:    "database master password",
						Sources:  cli.EnvVars("DB_PASSWORD"),
						Required: true,
					},
				},
				Action: runSecretsInit,
			},
			{
				Name:   "show",
				Usage:  "show the secret with the password masked",
				Action: runSecretsShow,
			},
		},
	}
}

func runSecretsInit(ctx context.Context, cmd *cli.Command) error {
	env := cmd.String("env-name")
	if err := deploy.ValidateEnvName(env); err != nil {
		return err
	}

	provider, err := secrets.NewAWSProvider(cmd.String("region"))
	if err != nil {
		return err
	}

	name := deploy.SecretName(env)
	err = provider.CreateSecret(ctx, name, map[string]string{
		"username": cmd.String("username"),
		"password": cmd.String("password"),
	})
	if err != nil {
		return err
	}

	fmt.Printf("created secret %s\n", name)
	return nil
}

func runSecretsShow(ctx context.Context, cmd *cli.Command) error {
	env := cmd.String("env-name")
	if err := deploy.ValidateEnvName(env); err != nil {
		return err
	}

	provider, err := secrets.NewAWSProvider(cmd.String("region"))
	if err != nil {
		return err
	}

	name := deploy.SecretName(env)
	values, err := provider.GetSecret(ctx, name)
	if err != nil {
		return err
	}

	fmt.Printf("%s:\n", name)
	fmt.Printf("  username: %s\n", values["username"])
	fmt.Printf("  password: %s\n", utils.MaskSecret(values["password"]))
	return nil
}
