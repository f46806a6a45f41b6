package orgcache

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/go-github/v71/github"

	"github.com/opsgate/orgcache/pkg/credentials"
	"github.com/opsgate/orgcache/pkg/settings"
)

// RepositoryCreationMetadata describes what a caller may create in this
// organization: resolvable legal entities, supported visibility types in
// priority order, available templates and the default ignore-file language.
type RepositoryCreationMetadata struct {
	LegalEntities         []string
	VisibilityTypes       []string
	Templates             []settings.RepositoryTemplate
	DefaultIgnoreLanguage string
}

const defaultIgnoreLanguage = "Go"

// RepositoryCreationMetadata computes the creation metadata from the
// organization's settings and the configured defaults. An organization that
// resolves no legal entities, or that configures a default visibility its
// own rules do not support, is a configuration fault.
func (o *Organization) RepositoryCreationMetadata() (*RepositoryCreationMetadata, error) {
	entities := o.setting.LegalEntities
	if len(entities) == 0 {
		entities = o.svc.Config.LegalEntities
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("%w: no legal entities resolvable for %s", ErrConfig, o.name)
	}

	// Priority order: internal over private over public.
	var visibilities []string
	if o.setting.HasFeature("internal-repositories") {
		visibilities = append(visibilities, "internal")
	}
	visibilities = append(visibilities, "private")
	if o.setting.PropertyBool("allowPublicRepositories") {
		visibilities = append(visibilities, "public")
	}

	if configured, ok := o.setting.Property("defaultRepositoryVisibility"); ok {
		if !slices.Contains(visibilities, configured) {
			return nil, fmt.Errorf("%w: unsupported repository type %q configured for %s", ErrConfig, configured, o.name)
		}
		// The configured default takes priority.
		visibilities = slices.Concat([]string{configured}, slices.DeleteFunc(visibilities, func(v string) bool {
			return v == configured
		}))
	}

	templates := o.setting.Templates
	if len(templates) == 0 {
		templates = o.svc.Config.Templates
	}

	language, ok := o.setting.Property("gitignoreLanguage")
	if !ok || language == "" {
		language = defaultIgnoreLanguage
	}

	return &RepositoryCreationMetadata{
		LegalEntities:         entities,
		VisibilityTypes:       visibilities,
		Templates:             templates,
		DefaultIgnoreLanguage: language,
	}, nil
}

type CreateRepositoryOptions struct {
	Name        string
	Description string
	// Visibility must be one of the metadata's supported types; empty picks
	// the highest-priority one.
	Visibility string
	AutoInit   bool
}

// CreateRepositoryResult is the normalized response payload returned next
// to the wrapped entity.
type CreateRepositoryResult struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"fullName"`
	URL           string `json:"url"`
	Visibility    string `json:"visibility"`
	DefaultBranch string `json:"defaultBranch"`
}

// CreateRepository creates a repository in the organization, returning both
// the wrapped entity and a normalized payload.
func (o *Organization) CreateRepository(ctx context.Context, opts CreateRepositoryOptions) (*Repository, *CreateRepositoryResult, error) {
	if opts.Name == "" {
		return nil, nil, fmt.Errorf("repository name is required")
	}
	if err := o.writable(); err != nil {
		return nil, nil, err
	}

	meta, err := o.RepositoryCreationMetadata()
	if err != nil {
		return nil, nil, err
	}

	visibility := opts.Visibility
	if visibility == "" {
		visibility = meta.VisibilityTypes[0]
	} else if !slices.Contains(meta.VisibilityTypes, visibility) {
		return nil, nil, fmt.Errorf("visibility %q not supported in %s", visibility, o.name)
	}

	cred, err := o.svc.Credentials.Supplier(credentials.PurposeOperations)
	if err != nil {
		return nil, nil, err
	}

	created, err := o.svc.Remote.CreateRepository(ctx, cred, o.name, &github.Repository{
		Name:        github.Ptr(opts.Name),
		Description: github.Ptr(opts.Description),
		Visibility:  github.Ptr(visibility),
		Private:     github.Ptr(visibility != "public"),
		AutoInit:    github.Ptr(opts.AutoInit),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating repository %s in %s: %w", opts.Name, o.name, err)
	}

	result := &CreateRepositoryResult{
		ID:            created.GetID(),
		Name:          created.GetName(),
		FullName:      created.GetFullName(),
		URL:           created.GetHTMLURL(),
		Visibility:    created.GetVisibility(),
		DefaultBranch: created.GetDefaultBranch(),
	}
	return o.newRepository(created), result, nil
}
