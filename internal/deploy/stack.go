package deploy

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
)

// StackStatus is a read-back of one environment's provisioned stack.
type StackStatus struct {
	Name    string
	Status  string
	Outputs map[string]string
}

// Output keys emitted by the infrastructure declaration.
const (
	OutputLoadBalancerDNS  = "LoadBalancerDNS"
	OutputRecordDomainName = "RecordDomainName"
	OutputDBEndpoint       = "DBEndpoint"
	OutputDBReadEndpoint   = "DBReadEndpoint"
	OutputEnvName          = "EnvName"
)

// StackReader reads CloudFormation stack state for an environment.
type StackReader struct {
	client *cloudformation.Client
}

func NewStackReader(cfg aws.Config) *StackReader {
	return &StackReader{client: cloudformation.NewFromConfig(cfg)}
}

// Describe fetches the named stack and flattens its outputs.
func (r *StackReader) Describe(ctx context.Context, stackName string) (*StackStatus, error) {
	out, err := r.client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return nil, fmt.Errorf("describe stack %s: %w", stackName, err)
	}
	if len(out.Stacks) == 0 {
		return nil, fmt.Errorf("stack %s not found", stackName)
	}

	stack := out.Stacks[0]
	status := &StackStatus{
		Name:    stackName,
		Status:  string(stack.StackStatus),
		Outputs: make(map[string]string, len(stack.Outputs)),
	}
	for _, o := range stack.Outputs {
		if o.OutputKey != nil && o.OutputValue != nil {
			status.Outputs[*o.OutputKey] = *o.OutputValue
		}
	}
	return status, nil
}
