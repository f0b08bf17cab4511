package askengine

import (
	"context"
	"sync"
	"time"
)

// QuestionCache is an in-memory cache of published questions and their tags with TTL.
// It backs the sitemap, the feed and the tag cloud; per-viewer listings go to the Store.
type QuestionCache struct {
	mu        sync.RWMutex
	questions []Post
	tags      []string
	fetched   time.Time
	ttl       time.Duration
	store     *Store
}

// NewQuestionCache creates a QuestionCache backed by the given Store.
func NewQuestionCache(s *Store, ttl time.Duration) *QuestionCache {
	return &QuestionCache{store: s, ttl: ttl}
}

func (c *QuestionCache) valid() bool {
	return c.questions != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *QuestionCache) Invalidate() {
	c.mu.Lock()
	c.questions = nil
	c.tags = nil
	c.mu.Unlock()
}

func (c *QuestionCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	questions, err := c.store.ListPublishedQuestions(ctx)
	if err != nil {
		return err
	}
	tags, err := c.store.ListTags(ctx)
	if err != nil {
		return err
	}
	if questions == nil {
		questions = []Post{}
	}
	c.questions = questions
	c.tags = tags
	c.fetched = time.Now()
	return nil
}

// ensureLoaded takes the write lock only when a reload is needed.
func (c *QuestionCache) ensureLoaded(ctx context.Context) ([]Post, []string, error) {
	c.mu.RLock()
	if c.valid() {
		questions, tags := c.questions, c.tags
		c.mu.RUnlock()
		return questions, tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, nil, err
	}
	return c.questions, c.tags, nil
}

// Questions returns published questions, newest first.
func (c *QuestionCache) Questions(ctx context.Context) ([]Post, error) {
	questions, _, err := c.ensureLoaded(ctx)
	return questions, err
}

// Tags returns all unique tags of published questions.
func (c *QuestionCache) Tags(ctx context.Context) ([]string, error) {
	_, tags, err := c.ensureLoaded(ctx)
	return tags, err
}
