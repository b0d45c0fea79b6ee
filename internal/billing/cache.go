package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Finder is anything that can look up a team's subscription.
type Finder interface {
	FindByTeamID(ctx context.Context, teamID uuid.UUID) (*Subscription, error)
}

// CachedGateway memoizes lookups for read-mostly paths such as plan display.
// Absent subscriptions are cached too. Decisions that gate writes must use
// the uncached gateway.
type CachedGateway struct {
	next  Finder
	cache *lru.LRU[uuid.UUID, *Subscription]
}

func NewCachedGateway(next Finder, size int, ttl time.Duration) *CachedGateway {
	if size < 16 {
		size = 16
	}
	return &CachedGateway{
		next:  next,
		cache: lru.NewLRU[uuid.UUID, *Subscription](size, nil, ttl),
	}
}

func (g *CachedGateway) FindByTeamID(ctx context.Context, teamID uuid.UUID) (*Subscription, error) {
	if sub, ok := g.cache.Get(teamID); ok {
		return sub, nil
	}

	sub, err := g.next.FindByTeamID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	g.cache.Add(teamID, sub)
	return sub, nil
}

// Invalidate drops a cached entry.
func (g *CachedGateway) Invalidate(teamID uuid.UUID) {
	g.cache.Remove(teamID)
}
