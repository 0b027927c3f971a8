package command

import (
	"context"
	"fmt"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/ttwa/helloworld/internal/deploy"
	"github.com/ttwa/helloworld/pkg/secrets"
)

// StatusCommand reads back one environment's provisioned stack state.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "show stack status and outputs for one environment",
		Action: runStatus,
	}
}

func runStatus(ctx context.Context, cmd *cli.Command) error {
	env := cmd.String("env-name")
	if err := deploy.ValidateEnvName(env); err != nil {
		return err
	}

	awsCfg, err := secrets.LoadAWSConfig(cmd.String("region"))
	if err != nil {
		return fmt.Errorf("load AWS config: %w", err)
	}

	reader := deploy.NewStackReader(awsCfg)
	status, err := reader.Describe(ctx, deploy.StackName(env))
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", status.Name, status.Status)

	keys := make([]string, 0, len(status.Outputs))
	for k := range status.Outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-20s %s\n", k, status.Outputs[k])
	}

	if v, ok := status.Outputs[deploy.OutputRecordDomainName]; ok {
		fmt.Printf("\nendpoint: %s\n", v)
	}
	return nil
}
