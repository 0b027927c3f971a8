package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecr/types"
)

// ImageChecker verifies that the container image an environment will run is
// already pushed to ECR. Deploys are rejected when it is not, since the
// Fargate tasks would otherwise crash-loop pulling a missing image.
type ImageChecker struct {
	client *ecr.Client
}

func NewImageChecker(cfg aws.Config) *ImageChecker {
	return &ImageChecker{client: ecr.NewFromConfig(cfg)}
}

// ImageExists reports whether repo:tag is present in the registry.
func (c *ImageChecker) ImageExists(ctx context.Context, repo, tag string) (bool, error) {
	_, err := c.client.DescribeImages(ctx, &ecr.DescribeImagesInput{
		RepositoryName: aws.String(repo),
		ImageIds: []types.ImageIdentifier{
			{ImageTag: aws.String(tag)},
		},
	})
	if err != nil {
		var notFound *types.ImageNotFoundException
		if errors.As(err, &notFound) {
			return false, nil
		}
		var noRepo *types.RepositoryNotFoundException
		if errors.As(err, &noRepo) {
			return false, nil
		}
		return false, fmt.Errorf("describe image %s:%s: %w", repo, tag, err)
	}
	return true, nil
}
