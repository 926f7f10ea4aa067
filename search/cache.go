package search

import (
	"strconv"
	"strings"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/poiesic/offersearch/core"
)

// resultCache memoizes rankings per catalog snapshot, query and limit.
// Stored rankings are never handed out directly; callers get copies.
type resultCache struct {
	cache *ristretto.Cache[string, *core.Ranking]
}

func newResultCache(size int) (*resultCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, *core.Ranking]{
		NumCounters: int64(size) * 10,
		MaxCost:     int64(size),
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &resultCache{cache: cache}, nil
}

func cacheKey(fingerprint core.ID, query string, limit int) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(uint64(fingerprint), 16))
	sb.WriteByte(0)
	sb.WriteString(strconv.Itoa(limit))
	sb.WriteByte(0)
	sb.WriteString(query)
	return sb.String()
}

func (c *resultCache) get(fingerprint core.ID, query string, limit int) (*core.Ranking, bool) {
	ranking, ok := c.cache.Get(cacheKey(fingerprint, query, limit))
	if !ok {
		return nil, false
	}
	return cloneRanking(ranking), true
}

// set stores a copy of ranking. Admission is asynchronous and may be refused.
func (c *resultCache) set(fingerprint core.ID, query string, limit int, ranking *core.Ranking) {
	c.cache.Set(cacheKey(fingerprint, query, limit), cloneRanking(ranking), 1)
}

// wait blocks until buffered writes are applied.
func (c *resultCache) wait() {
	c.cache.Wait()
}

func (c *resultCache) close() {
	c.cache.Close()
}

func cloneRanking(r *core.Ranking) *core.Ranking {
	out := *r
	out.Offers = make([]core.RankedOffer, len(r.Offers))
	copy(out.Offers, r.Offers)
	return &out
}
