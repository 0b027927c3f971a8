package deploy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEnvName(t *testing.T) {
	for _, env := range []string{"dev", "test", "prod", "dev2", "load-test"} {
		assert.NoError(t, ValidateEnvName(env), env)
	}

	for _, env := range []string{"", "Dev", "prod_1", "-dev", "1dev", "averyveryverylongenvname", "dev env"} {
		assert.Error(t, ValidateEnvName(env), env)
	}
}

func TestDerivedNames(t *testing.T) {
	assert.Equal(t, "HelloWorldStack-dev", StackName("dev"))
	assert.Equal(t, "dev-aurora-credentials", SecretName("dev"))
	assert.Equal(t, "dev.example.com", RecordName("dev", "example.com"))
	assert.Equal(t, "https://prod.example.com", EndpointURL("prod", "example.com"))
}

// Distinct environment names must always derive distinct resource names, so
// two deployments sharing an account/region cannot collide.
func TestDerivedNames_NoCollisions(t *testing.T) {
	envs := []string{"dev", "test", "prod"}

	stacks := map[string]bool{}
	secrets := map[string]bool{}
	records := map[string]bool{}
	for _, env := range envs {
		stacks[StackName(env)] = true
		secrets[SecretName(env)] = true
		records[RecordName(env, "example.com")] = true
	}

	assert.Len(t, stacks, len(envs))
	assert.Len(t, secrets, len(envs))
	assert.Len(t, records, len(envs))
}
