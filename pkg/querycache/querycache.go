// Package querycache defines the optional secondary query cache that is
// kept loosely in sync with membership changes. Synchronization is best
// effort: the cache may be briefly stale, and failures never affect the
// primary operation.
package querycache

import (
	"context"
	"fmt"
	"sync"
)

// Cache is the secondary query cache surface this layer notifies.
type Cache interface {
	// SupportsOrganizationMembership reports whether membership records are
	// materialized in this cache at all.
	SupportsOrganizationMembership() bool
	// RemoveOrganizationMember drops the membership record for one member.
	RemoveOrganizationMember(ctx context.Context, orgID, memberID int64) error
}

// Memory is an in-memory Cache used in tests and single-process setups.
type Memory struct {
	mu          sync.Mutex
	memberships map[string]struct{}
	failWith    error
}

func NewMemory() *Memory {
	return &Memory{memberships: make(map[string]struct{})}
}

func membershipKey(orgID, memberID int64) string {
	return fmt.Sprintf("%d:%d", orgID, memberID)
}

// AddOrganizationMember seeds a membership record.
func (m *Memory) AddOrganizationMember(orgID, memberID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memberships[membershipKey(orgID, memberID)] = struct{}{}
}

// HasOrganizationMember reports whether a membership record is present.
func (m *Memory) HasOrganizationMember(orgID, memberID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.memberships[membershipKey(orgID, memberID)]
	return ok
}

// FailWith makes every RemoveOrganizationMember call return err.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

func (m *Memory) SupportsOrganizationMembership() bool { return true }

func (m *Memory) RemoveOrganizationMember(ctx context.Context, orgID, memberID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	delete(m.memberships, membershipKey(orgID, memberID))
	return nil
}

var _ Cache = (*Memory)(nil)
