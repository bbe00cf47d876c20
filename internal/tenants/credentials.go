package tenants

import (
	"fmt"
	"os"

	"dealerbridge_backend/internal/configstore"
	"dealerbridge_backend/platform/apperr"
	"dealerbridge_backend/platform/normalize"
)

// CredentialEnvName returns the environment variable holding the tenant's
// CRM token: the configured tokenEnv when set, otherwise the deterministic
// <UPPER_SNAKE_CASE_NAME>_TOKEN fallback.
func CredentialEnvName(tenantName string, record configstore.TenantRecord) string {
	if record.TokenEnv != "" {
		return record.TokenEnv
	}
	return normalize.UpperSnake(tenantName) + "_TOKEN"
}

// Credential resolves the CRM token for a tenant from the environment.
// A missing variable is a configuration error naming the exact variable,
// so the message is actionable by an operator.
func Credential(tenantName string, record configstore.TenantRecord) (string, error) {
	envName := CredentialEnvName(tenantName, record)
	token := os.Getenv(envName)
	if token == "" {
		return "", apperr.Config(fmt.Sprintf(
			"no CRM credential for tenant %q: set environment variable %s", tenantName, envName,
		))
	}
	return token, nil
}
