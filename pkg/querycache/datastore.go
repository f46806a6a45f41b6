package querycache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/datastore"
)

const membershipKind = "OrganizationMembership"

// DataStore implements Cache against Google Cloud Datastore, where the
// query layer materializes organization membership records.
type DataStore struct {
	client *datastore.Client
	logger *slog.Logger
}

func NewDataStore(logger *slog.Logger, client *datastore.Client) *DataStore {
	return &DataStore{client: client, logger: logger}
}

func (s *DataStore) membershipDatastoreKey(orgID, memberID int64) *datastore.Key {
	return datastore.NameKey(membershipKind, fmt.Sprintf("%d:%d", orgID, memberID), nil)
}

func (s *DataStore) SupportsOrganizationMembership() bool { return true }

// RemoveOrganizationMember deletes the membership record. A record that is
// already gone is not an error; the cache is allowed to lag the primary.
func (s *DataStore) RemoveOrganizationMember(ctx context.Context, orgID, memberID int64) error {
	key := s.membershipDatastoreKey(orgID, memberID)
	err := s.client.Delete(ctx, key)
	if err != nil && !errors.Is(err, datastore.ErrNoSuchEntity) {
		return fmt.Errorf("deleting membership record %s: %w", key.Name, err)
	}
	s.logger.Debug("membership record removed from query cache", "org_id", orgID, "member_id", memberID)
	return nil
}

var _ Cache = (*DataStore)(nil)
