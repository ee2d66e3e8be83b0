package engine

import (
	"context"
	"time"

	"conquer/internal/storage"
)

// InstanceDetail pairs an instance with the template it came from, for
// display surfaces that need both.
type InstanceDetail struct {
	Instance storage.TaskInstance
	Template storage.TaskTemplate
}

// WeeklyStats covers Monday through now.
type WeeklyStats struct {
	Completions int
	Points      int
}

// weekStart returns the most recent Monday at midnight.
func weekStart(now time.Time) time.Time {
	day := DateOnly(now)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func (s *Service) templateFor(ctx context.Context, cache map[int64]*storage.TaskTemplate, id int64) (*storage.TaskTemplate, error) {
	if t, ok := cache[id]; ok {
		return t, nil
	}
	t, err := s.templates.Get(ctx, id)
	if err != nil {
		return nil, storeErr("template get", err)
	}
	cache[id] = t
	return t, nil
}

// TodayInstances returns every instance created today, open and completed,
// with its template attached.
func (s *Service) TodayInstances(ctx context.Context) ([]InstanceDetail, error) {
	day := DateOnly(s.now())
	list, err := s.instances.ListCreatedBetween(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, storeErr("instance list", err)
	}
	return s.attachTemplates(ctx, list)
}

// TodaysCompletions returns instances completed today, newest first.
func (s *Service) TodaysCompletions(ctx context.Context) ([]InstanceDetail, error) {
	day := DateOnly(s.now())
	list, err := s.instances.ListCompletedSince(ctx, day)
	if err != nil {
		return nil, storeErr("instance completed list", err)
	}
	return s.attachTemplates(ctx, list)
}

func (s *Service) attachTemplates(ctx context.Context, list []storage.TaskInstance) ([]InstanceDetail, error) {
	cache := map[int64]*storage.TaskTemplate{}
	out := make([]InstanceDetail, 0, len(list))
	for _, inst := range list {
		t, err := s.templateFor(ctx, cache, inst.TemplateID)
		if err != nil {
			return nil, err
		}
		if t == nil {
			// Template hard-deleted out from under the instance; skip.
			continue
		}
		out = append(out, InstanceDetail{Instance: inst, Template: *t})
	}
	return out, nil
}

// WeekStats sums completions and points since Monday.
func (s *Service) WeekStats(ctx context.Context) (WeeklyStats, error) {
	count, points, err := s.instances.WeeklyTotals(ctx, weekStart(s.now()))
	if err != nil {
		return WeeklyStats{}, storeErr("weekly totals", err)
	}
	return WeeklyStats{Completions: count, Points: points}, nil
}

// CategoryStats returns this week's completion counts per category, with
// every fixed category present even at zero.
func (s *Service) CategoryStats(ctx context.Context) (map[string]int, error) {
	counts, err := s.instances.CategoryCounts(ctx, weekStart(s.now()))
	if err != nil {
		return nil, storeErr("category counts", err)
	}
	for _, cat := range Categories {
		if _, ok := counts[cat]; !ok {
			counts[cat] = 0
		}
	}
	return counts, nil
}
