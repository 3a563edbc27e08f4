package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	feedMetaKey        = "feed_meta"
	feedDegradedHeader = "X-Feed-Degraded"
)

// FeedMeta describes how the shift feed served by the current request was assembled.
type FeedMeta struct {
	CacheHit bool
	Degraded bool
	Warnings []string

	started time.Time
}

// WithFeedMeta starts the per-request feed metadata clock.
func WithFeedMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(feedMetaKey, &FeedMeta{started: time.Now()})
		c.Next()
	}
}

// RecordFeed stores the feed outcome on the context and flags degraded responses
// with the X-Feed-Degraded header. Call it before the body is written.
func RecordFeed(c *gin.Context, cacheHit, degraded bool, warnings []string) *FeedMeta {
	meta := ensureFeedMeta(c)
	meta.CacheHit = cacheHit
	meta.Degraded = degraded
	meta.Warnings = warnings
	if degraded {
		c.Header(feedDegradedHeader, "true")
	}
	return meta
}

// CurrentFeedMeta returns the metadata attached by WithFeedMeta or RecordFeed.
func CurrentFeedMeta(c *gin.Context) (*FeedMeta, bool) {
	if c == nil {
		return nil, false
	}
	value, exists := c.Get(feedMetaKey)
	if !exists {
		return nil, false
	}
	meta, ok := value.(*FeedMeta)
	return meta, ok
}

// Map renders the metadata for the response envelope.
func (m *FeedMeta) Map() map[string]interface{} {
	out := map[string]interface{}{
		"cache_hit": m.CacheHit,
		"degraded":  m.Degraded,
	}
	if len(m.Warnings) > 0 {
		out["warnings"] = m.Warnings
	}
	if !m.started.IsZero() {
		out["processing_time_ms"] = time.Since(m.started).Milliseconds()
	}
	return out
}

func ensureFeedMeta(c *gin.Context) *FeedMeta {
	if meta, ok := CurrentFeedMeta(c); ok {
		return meta
	}
	meta := &FeedMeta{}
	c.Set(feedMetaKey, meta)
	return meta
}
