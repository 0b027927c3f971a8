package command

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/ttwa/helloworld/internal/deploy"
	"github.com/ttwa/helloworld/pkg/secrets"
)

// LogsCommand lists the environment's S3 logs bucket contents, newest first.
func LogsCommand() *cli.Command {
	return &cli.Command{
		Name:  "logs",
		Usage: "list objects in the environment's logs bucket",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "bucket",
				Usage:    "logs bucket name (see 'ttwactl status' outputs)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "key prefix filter (defaults to the environment name)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "maximum number of objects to list",
				Value: 50,
			},
		},
		Action: runLogs,
	}
}

func runLogs(ctx context.Context, cmd *cli.Command) error {
	env := cmd.String("env-name")
	if err := deploy.ValidateEnvName(env); err != nil {
		return err
	}

	prefix := cmd.String("prefix")
	if prefix == "" {
		prefix = env + "/"
	}

	awsCfg, err := secrets.LoadAWSConfig(cmd.String("region"))
	if err != nil {
		return fmt.Errorf("load AWS config: %w", err)
	}

	lister := deploy.NewLogLister(awsCfg)
	objects, err := lister.List(ctx, cmd.String("bucket"), prefix, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if len(objects) == 0 {
		fmt.Printf("no objects under s3://%s/%s\n", cmd.String("bucket"), prefix)
		return nil
	}

	for _, obj := range objects {
		fmt.Printf("%-12s %-16s %s\n",
			humanize.Bytes(uint64(obj.Size)),
			humanize.Time(obj.LastModified),
			obj.Key)
	}
	return nil
}
