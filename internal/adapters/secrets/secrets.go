// Package secrets resolves credentials from the environment or Azure Key Vault.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"

	"adda/internal/ports"
)

// Secret names, shared by the environment and the vault
const (
	DevOpsPersonalAccessToken = "AzureDevOpsPersonalAccessToken"
	JiraUsername              = "JiraUsername"
	JiraAPIToken              = "JiraApiToken"
)

// Env reads secrets from environment variables of the same name
type Env struct {
	lookup func(string) (string, bool)
}

var _ ports.SecretSource = Env{}

// NewEnv creates an environment-backed source
func NewEnv() Env {
	return Env{lookup: os.LookupEnv}
}

func (e Env) Secret(ctx context.Context, name string) (string, error) {
	v, ok := e.lookup(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%s: %w", name, ports.ErrSecretNotFound)
	}
	return v, nil
}

// secretGetter is the part of azsecrets.Client in use
type secretGetter interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// KeyVault reads the latest version of secrets from an Azure Key Vault
type KeyVault struct {
	client secretGetter
}

var _ ports.SecretSource = (*KeyVault)(nil)

// NewKeyVault connects to vaultURL with the default Azure credential chain
func NewKeyVault(vaultURL string) (*KeyVault, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("keyvault: credential: %w", err)
	}
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("keyvault: %w", err)
	}
	return &KeyVault{client: client}, nil
}

func (k *KeyVault) Secret(ctx context.Context, name string) (string, error) {
	resp, err := k.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("%s: %w", name, ports.ErrSecretNotFound)
		}
		return "", fmt.Errorf("keyvault: get %s: %w", name, err)
	}
	if resp.Value == nil || *resp.Value == "" {
		return "", fmt.Errorf("%s: %w", name, ports.ErrSecretNotFound)
	}
	return *resp.Value, nil
}

// Chain tries each source in order and returns the first value found.
// Errors other than ErrSecretNotFound stop the search.
type Chain []ports.SecretSource

var _ ports.SecretSource = Chain(nil)

func (c Chain) Secret(ctx context.Context, name string) (string, error) {
	for _, src := range c {
		v, err := src.Secret(ctx, name)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ports.ErrSecretNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%s: %w", name, ports.ErrSecretNotFound)
}
