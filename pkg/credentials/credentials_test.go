package credentials

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"golang.org/x/oauth2"

	"github.com/opsgate/orgcache/pkg/oskeyring"
)

func TestRouter_SupplierPerPurpose(t *testing.T) {
	router := NewRouter(map[Purpose]TokenSource{
		PurposeData:       Static("data-token"),
		PurposeOperations: Static("ops-token"),
	})

	ctx := context.Background()

	dataSupplier, err := router.Supplier(PurposeData)
	assert.NoError(t, err)
	token, err := dataSupplier(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "data-token", token)

	opsSupplier, err := router.Supplier(PurposeOperations)
	assert.NoError(t, err)
	token, err = opsSupplier(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "ops-token", token)
}

func TestRouter_UnboundPurpose(t *testing.T) {
	router := NewRouter(map[Purpose]TokenSource{
		PurposeData: Static("data-token"),
	})

	_, err := router.Supplier(PurposeCustomerFacing)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownPurpose))
}

// The supplier must resolve the token when called, not when bound, so a
// rotated token is picked up without rebuilding the router.
func TestRouter_TokenResolvedAtCallTime(t *testing.T) {
	keyring := oskeyring.NewMemoryService()
	router := NewRouter(map[Purpose]TokenSource{
		PurposeData: Keyring{Service: "orgcache", User: "github-token", Store: keyring},
	})

	supplier, err := router.Supplier(PurposeData)
	assert.NoError(t, err)

	ctx := context.Background()

	_, err = supplier(ctx)
	assert.Error(t, err) // nothing stored yet

	assert.NoError(t, keyring.Set("orgcache", "github-token", "first"))
	token, err := supplier(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "first", token)

	assert.NoError(t, keyring.Set("orgcache", "github-token", "rotated"))
	token, err = supplier(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "rotated", token)
}

func TestStatic_Empty(t *testing.T) {
	_, err := Static("").Token(context.Background())
	assert.Error(t, err)
}

func TestOAuth2_AdaptsTokenSource(t *testing.T) {
	src := OAuth2{Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "oauth-token"})}

	token, err := src.Token(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "oauth-token", token)
}

func testPrivateKeyPEM(t *testing.T) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	assert.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
}

func TestNewInstallation(t *testing.T) {
	inst, err := NewInstallation(123, 456, testPrivateKeyPEM(t), "")
	assert.NoError(t, err)
	assert.NotZero(t, inst.transport)
}

func TestNewInstallation_EnterpriseURL(t *testing.T) {
	inst, err := NewInstallation(123, 456, testPrivateKeyPEM(t), "https://github.example.com/api/v3")
	assert.NoError(t, err)
	assert.Equal(t, "https://github.example.com/api/v3", inst.transport.BaseURL)
}

func TestNewInstallation_BadKey(t *testing.T) {
	_, err := NewInstallation(123, 456, []byte("not a key"), "")
	assert.Error(t, err)
}
