package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/opsgate/orgcache/pkg/oskeyring"
)

func TestGetToken(t *testing.T) {
	keyring := oskeyring.NewMemoryService()
	provider := NewGithubProvider(Config{}, keyring)
	ctx := context.Background()

	_, err := provider.GetToken(ctx)
	assert.True(t, errors.Is(err, ErrTokenNotFound))

	assert.NoError(t, keyring.Set(ServiceName, GithubToken, "tok"))
	token, err := provider.GetToken(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func TestLogout(t *testing.T) {
	keyring := oskeyring.NewMemoryService()
	assert.NoError(t, keyring.Set(ServiceName, GithubToken, "tok"))
	assert.NoError(t, keyring.Set(ServiceName, GithubLogin, "alice"))

	provider := NewGithubProvider(Config{}, keyring)
	assert.NoError(t, provider.Logout(context.Background()))

	_, err := keyring.Get(ServiceName, GithubToken)
	assert.True(t, errors.Is(err, oskeyring.ErrNotFound))
	_, err = keyring.Get(ServiceName, GithubLogin)
	assert.True(t, errors.Is(err, oskeyring.ErrNotFound))
}

func TestGetLogin_FromKeyring(t *testing.T) {
	keyring := oskeyring.NewMemoryService()
	assert.NoError(t, keyring.Set(ServiceName, GithubLogin, "alice"))

	provider := NewGithubProvider(Config{}, keyring)
	login, err := provider.GetLogin(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "alice", login)
}

func TestLogin_RequiresClientID(t *testing.T) {
	provider := NewGithubProvider(Config{}, oskeyring.NewMemoryService())
	assert.Error(t, provider.Login(context.Background()))
}
