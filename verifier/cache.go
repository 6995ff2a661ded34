package verifier

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/Motimate/extant-email/models"
)

// DefaultResultCacheSize is the number of verdicts kept when no size is set.
const DefaultResultCacheSize = 100

// ResultCache memoizes verdicts by normalized address with LRU eviction.
// Unknown verdicts are never stored so that transient failures are retried
// on the next request. Concurrent misses for one address share a single
// computation.
type ResultCache struct {
	next  Checker
	cache *lru.Cache[string, models.VerificationResult]
	group singleflight.Group
	log   *logrus.Entry
}

func NewResultCache(next Checker, size int, log *logrus.Entry) (*ResultCache, error) {
	if size <= 0 {
		size = DefaultResultCacheSize
	}
	cache, err := lru.New[string, models.VerificationResult](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ResultCache{
		next:  next,
		cache: cache,
		log:   log.WithField("component", "result_cache"),
	}, nil
}

func (c *ResultCache) Check(ctx context.Context, req models.VerificationRequest) models.VerificationResult {
	key := models.NormalizeEmail(req.ToEmail)

	if result, ok := c.cache.Get(key); ok {
		resultCacheRequests.WithLabelValues("hit").Inc()
		result.Email = req.ToEmail
		return result
	}

	v, _, shared := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.cache.Get(key); ok {
			return result, nil
		}

		resultCacheRequests.WithLabelValues("miss").Inc()
		result := c.next.Check(ctx, req)
		if result.IsReachable != models.ReachableUnknown {
			c.cache.Add(key, result)
		}
		return result, nil
	})
	if shared {
		c.log.WithField("email", req.ToEmail).Debug("joined in-flight verification")
	}

	result := v.(models.VerificationResult)
	result.Email = req.ToEmail
	return result
}

// Contains reports whether an address is cached without touching its recency.
func (c *ResultCache) Contains(email string) bool {
	return c.cache.Contains(models.NormalizeEmail(email))
}

func (c *ResultCache) Len() int {
	return c.cache.Len()
}

func (c *ResultCache) Purge() {
	c.cache.Purge()
}
