package deploy

import (
	"fmt"
	"regexp"
)

// Environment names prefix every provisioned resource. Keeping them short,
// lowercase and DNS-safe guarantees the derived names (stack, secret, DNS
// record) are valid everywhere they are used, and that two environments in
// the same account/region can never collide.
var envNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]{0,15}$`)

// ValidateEnvName checks an environment name token (e.g. dev, test, prod).
func ValidateEnvName(env string) error {
	if env == "" {
		return fmt.Errorf("environment name is required")
	}
	if !envNameRegex.MatchString(env) {
		return fmt.Errorf("invalid environment name %q: must match %s", env, envNameRegex.String())
	}
	return nil
}

// StackName returns the CloudFormation stack name for an environment.
func StackName(env string) string {
	return "HelloWorldStack-" + env
}

// SecretName returns the Secrets Manager name of the Aurora credentials.
func SecretName(env string) string {
	return env + "-aurora-credentials"
}

// RecordName returns the fully qualified domain name of the environment's
// Route53 alias record.
func RecordName(env, hostedZoneName string) string {
	return env + "." + hostedZoneName
}

// EndpointURL returns the externally reachable base URL of the environment.
func EndpointURL(env, hostedZoneName string) string {
	return "https://" + RecordName(env, hostedZoneName)
}
