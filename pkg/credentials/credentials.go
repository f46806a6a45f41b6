// Package credentials routes remote API calls to purpose-scoped tokens.
// Every call declares why it needs a credential; the router turns that
// purpose into a supplier that resolves the token at call time, so tokens
// are never cached on long-lived objects and may rotate freely.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	ghinstallation "github.com/bradleyfalzon/ghinstallation/v2"
	"golang.org/x/oauth2"

	"github.com/opsgate/orgcache/pkg/oskeyring"
)

// Purpose is the declared intent of a remote call. There is no default
// purpose: callers must pick one, and using the wrong one for a privileged
// write is a policy violation even when it happens to succeed.
type Purpose string

const (
	// PurposeData covers read-mostly listing calls.
	PurposeData Purpose = "data"
	// PurposeOperations covers privileged writes (create repository,
	// add/remove/accept membership).
	PurposeOperations Purpose = "operations"
	// PurposeCustomerFacing covers anonymous-compatible status checks.
	PurposeCustomerFacing Purpose = "customer-facing"
)

// Supplier resolves a token when the remote call is about to be made.
type Supplier func(ctx context.Context) (string, error)

// TokenSource yields a token for one purpose. Implementations may mint
// short-lived installation tokens or read a stored value.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

var ErrUnknownPurpose = errors.New("no credential source bound for purpose")

// Router maps purposes to token sources. It is immutable after construction.
type Router struct {
	sources map[Purpose]TokenSource
}

// NewRouter builds a router from the given purpose bindings.
func NewRouter(sources map[Purpose]TokenSource) *Router {
	copied := make(map[Purpose]TokenSource, len(sources))
	for p, s := range sources {
		copied[p] = s
	}
	return &Router{sources: copied}
}

// Supplier returns the credential supplier for the given purpose. The token
// itself is not fetched here; the supplier resolves it per call.
func (r *Router) Supplier(purpose Purpose) (Supplier, error) {
	src, ok := r.sources[purpose]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPurpose, purpose)
	}
	return func(ctx context.Context) (string, error) {
		token, err := src.Token(ctx)
		if err != nil {
			return "", fmt.Errorf("resolving %s credential: %w", purpose, err)
		}
		return token, nil
	}, nil
}

// Static is a fixed token, typically a personal access token from config.
type Static string

func (s Static) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", errors.New("empty static token")
	}
	return string(s), nil
}

// OAuth2 adapts an oauth2.TokenSource.
type OAuth2 struct {
	Source oauth2.TokenSource
}

func (o OAuth2) Token(ctx context.Context) (string, error) {
	tok, err := o.Source.Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Installation mints installation tokens for a GitHub App. Each purpose is
// expected to map to its own app or installation so privileges stay separate.
type Installation struct {
	transport *ghinstallation.Transport
}

// NewInstallation builds an installation token source from the app's
// PEM-encoded private key. An optional enterprise base URL points the token
// exchange at a GitHub Enterprise instance.
func NewInstallation(appID, installationID int64, privateKey []byte, enterpriseURL string) (*Installation, error) {
	tr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("creating installation transport: %w", err)
	}
	if enterpriseURL != "" {
		tr.BaseURL = enterpriseURL
	}
	return &Installation{transport: tr}, nil
}

func (i *Installation) Token(ctx context.Context) (string, error) {
	return i.transport.Token(ctx)
}

// Keyring reads a token stored in the OS keyring, as written by the CLI
// login flow.
type Keyring struct {
	Service string
	User    string
	Store   oskeyring.Service
}

func (k Keyring) Token(ctx context.Context) (string, error) {
	token, err := k.Store.Get(k.Service, k.User)
	if err != nil {
		return "", fmt.Errorf("reading token from keyring: %w", err)
	}
	return token, nil
}

var (
	_ TokenSource = Static("")
	_ TokenSource = OAuth2{}
	_ TokenSource = (*Installation)(nil)
	_ TokenSource = Keyring{}
)
