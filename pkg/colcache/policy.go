package colcache

import "time"

// Policy controls how one collection fetch interacts with the cache.
type Policy struct {
	// MaxAge is the staleness budget. A cached entry no older than MaxAge is
	// returned without a remote call. A negative value forces a synchronous
	// remote fetch regardless of what is cached.
	MaxAge time.Duration

	// BackgroundRefresh allows a stale-but-present entry to be returned
	// immediately while a refresh is scheduled out of band. When false, a
	// stale entry blocks the caller until a fresh fetch completes.
	BackgroundRefresh bool

	// PageDelay paces multi-page remote listings to avoid upstream
	// throttling. Zero disables pacing.
	PageDelay time.Duration
}

// NoCache is the policy for operational correctness paths where staleness is
// unacceptable, such as membership checks before a privileged decision.
func NoCache() Policy {
	return Policy{MaxAge: -time.Minute}
}
