package cache

import (
	"testing"
	"time"

	"github.com/Dan9191/finance-insights/internal/models"
)

func complete(userID int64) *models.Insights {
	return &models.Insights{
		UserID: userID,
		Sections: map[string]models.SectionResult{
			models.SectionTrends:      {OK: true},
			models.SectionPredictions: {OK: true},
			models.SectionSuggestions: {OK: true},
			models.SectionHealthScore: {OK: true},
		},
	}
}

func TestInsightsCache(t *testing.T) {
	c, err := NewInsightsCache(time.Minute)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	defer c.Close()

	t.Run("stores complete results", func(t *testing.T) {
		c.Set(complete(1))
		got, ok := c.Get(1)
		if !ok || got.UserID != 1 {
			t.Fatalf("expected cached result for user 1, got %v, %v", got, ok)
		}
	})

	t.Run("skips partial results", func(t *testing.T) {
		partial := complete(2)
		partial.Sections[models.SectionTrends] = models.SectionResult{Error: "timeout"}
		c.Set(partial)
		if _, ok := c.Get(2); ok {
			t.Error("expected partial result not to be cached")
		}
	})

	t.Run("invalidates", func(t *testing.T) {
		c.Set(complete(3))
		c.Invalidate(3)
		if _, ok := c.Get(3); ok {
			t.Error("expected entry to be removed")
		}
	})
}

func TestDisabledCache(t *testing.T) {
	c, err := NewInsightsCache(0)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	defer c.Close()

	c.Set(complete(1))
	if _, ok := c.Get(1); ok {
		t.Error("expected a zero ttl to disable caching")
	}
}
