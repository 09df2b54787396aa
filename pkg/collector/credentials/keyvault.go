package credentials

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

// KeyVaultSource reads secrets from Azure Key Vault. Keys are mapped to
// vault secret names by lower-casing and replacing underscores with
// dashes, so AZURE_STORAGE_CONNECTION_STRING is read from
// azure-storage-connection-string.
type KeyVaultSource struct {
	client *azsecrets.Client
	url    string
}

// NewKeyVaultSource authenticates with the default Azure credential chain
// (managed identity, workload identity, CLI login, ...).
func NewKeyVaultSource(vaultURL string) (*KeyVaultSource, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("key vault client: %w", err)
	}
	return &KeyVaultSource{client: client, url: vaultURL}, nil
}

func (s *KeyVaultSource) Name() string { return "keyvault" }

func (s *KeyVaultSource) Lookup(ctx context.Context, key string) (string, bool, error) {
	resp, err := s.client.GetSecret(ctx, SecretName(key), "", nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	if resp.Value == nil {
		return "", false, nil
	}
	return *resp.Value, true, nil
}

// SecretName maps an environment style key onto a vault secret name.
func SecretName(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}
