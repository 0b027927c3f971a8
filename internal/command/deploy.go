package command

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/ttwa/helloworld/internal/deploy"
	"github.com/ttwa/helloworld/pkg/logger"
	"github.com/ttwa/helloworld/pkg/secrets"
)

// DeployCommand runs preflight checks, invokes the external infrastructure
// tool for one environment, and waits for the deployed service to answer.
// The resource definitions themselves live outside this tool.
func DeployCommand() *cli.Command {
	return &cli.Command{
		Name:  "deploy",
		Usage: "deploy one environment (preflight, provision, wait for health)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "hosted-zone-name",
				Usage:    "Route53 hosted zone name (e.g. example.com)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "hosted-zone-id",
				Usage:    "Route53 hosted zone ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "image-repo",
				Usage: "ECR repository holding the service image",
				Value: "helloworld",
			},
			&cli.StringFlag{
				Name:  "image-tag",
				Usage: "image tag the environment will run",
				Value: "latest",
			},
			&cli.StringFlag{
				Name:    "cdk-bin",
				Usage:   "infrastructure tool binary",
				Sources: cli.EnvVars("CDK_BIN"),
				Value:   "cdk",
			},
			&cli.BoolFlag{
				Name:  "skip-wait",
				Usage: "do not wait for the endpoint to become healthy",
			},
			&cli.DurationFlag{
				Name:  "wait-timeout",
				Usage: "how long to wait for the endpoint",
				Value: 15 * time.Minute,
			},
		},
		Action: runDeploy,
	}
}

func runDeploy(ctx context.Context, cmd *cli.Command) error {
	env := cmd.String("env-name")
	if err := deploy.ValidateEnvName(env); err != nil {
		return err
	}
	zoneName := cmd.String("hosted-zone-name")
	zoneID := cmd.String("hosted-zone-id")
	region := cmd.String("region")

	logger.Init("ttwactl", env, cmd.String("log-level"))
	defer logger.Sync()
	logg := logger.S()

	awsCfg, err := secrets.LoadAWSConfig(region)
	if err != nil {
		return fmt.Errorf("load AWS config: %w", err)
	}

	// --- Preflight: credentials secret must exist before the stack
	// references it by name.
	provider, err := secrets.NewAWSProvider(region)
	if err != nil {
		return err
	}
	secretName := deploy.SecretName(env)
	if _, err := provider.GetSecret(ctx, secretName); err != nil {
		return fmt.Errorf("secret %q not found — run 'ttwactl secrets init --env-name %s' first: %w",
			secretName, env, err)
	}
	logg.Infow("preflight: credentials secret present", "secret", secretName)

	// --- Preflight: the image must be pushed before the tasks try to pull it.
	checker := deploy.NewImageChecker(awsCfg)
	repo, tag := cmd.String("image-repo"), cmd.String("image-tag")
	exists, err := checker.ImageExists(ctx, repo, tag)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("image %s:%s not found in ECR — build and push it before deploying", repo, tag)
	}
	logg.Infow("preflight: container image present", "repo", repo, "tag", tag)

	// --- Provision via the external infrastructure tool.
	args := []string{
		"deploy", deploy.StackName(env),
		"--context", "env_name=" + env,
		"--context", "hosted_zone_name=" + zoneName,
		"--context", "hosted_zone_id=" + zoneID,
		"--require-approval", "never",
	}
	logg.Infow("invoking infrastructure tool", "bin", cmd.String("cdk-bin"), "stack", deploy.StackName(env))

	cdk := exec.CommandContext(ctx, cmd.String("cdk-bin"), args...)
	cdk.Stdout = os.Stdout
	cdk.Stderr = os.Stderr
	if err := cdk.Run(); err != nil {
		return fmt.Errorf("infrastructure tool failed: %w", err)
	}

	if cmd.Bool("skip-wait") {
		logg.Info("deploy submitted; skipping health wait")
		return nil
	}

	// --- Wait until the new tasks answer through the ALB.
	endpoint := deploy.EndpointURL(env, zoneName)
	waiter := deploy.NewHealthWaiter(logger.L(), nil, 15*time.Second, cmd.Duration("wait-timeout"))
	if err := waiter.WaitHealthy(ctx, endpoint); err != nil {
		return err
	}

	fmt.Printf("environment %s is healthy at %s\n", env, endpoint)
	return nil
}
