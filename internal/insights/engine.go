package insights

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/sirupsen/logrus"
)

// Evaluate computes every insight section for one user concurrently. A failing
// section is left nil and flagged in Sections; it never stops the others.
func (a *Analyzer) Evaluate(ctx context.Context, userID int64, asOf time.Time) *models.Insights {
	res := &models.Insights{
		UserID:      userID,
		GeneratedAt: asOf,
		Sections:    make(map[string]models.SectionResult, 4),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	run := func(section string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := guard(fn)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.log.WithFields(logrus.Fields{"user_id": userID, "section": section}).
					Errorf("Insight section failed: %v", err)
				res.Sections[section] = models.SectionResult{OK: false, Error: err.Error()}
				return
			}
			res.Sections[section] = models.SectionResult{OK: true}
		}()
	}

	var (
		trends      *models.TrendReport
		predictions []models.Prediction
		suggestions []models.Suggestion
		health      *models.HealthScore
	)
	run(models.SectionTrends, func() (err error) {
		trends, err = a.Trends(ctx, userID, asOf)
		return err
	})
	run(models.SectionPredictions, func() (err error) {
		predictions, err = a.Predictions(ctx, userID, asOf)
		return err
	})
	run(models.SectionSuggestions, func() (err error) {
		suggestions, err = a.Suggestions(ctx, userID, asOf)
		return err
	})
	run(models.SectionHealthScore, func() (err error) {
		health, err = a.HealthScore(ctx, userID, asOf)
		return err
	})
	wg.Wait()

	res.Trends = trends
	res.Predictions = predictions
	res.Suggestions = suggestions
	res.HealthScore = health
	return res
}

// guard turns a panic inside one section into an error for that section only
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
