package engine

import (
	"context"
	"database/sql"
	"fmt"

	"conquer/internal/storage"
)

// AvailableSubtasks returns every subtask usable at the given tier, in
// display order. The checklist is cumulative: a low-tier step stays on the
// list at medium and high.
func AvailableSubtasks(t *storage.TaskTemplate, tier Tier) []storage.SubTask {
	var out []storage.SubTask
	for _, st := range t.Subtasks {
		if Tier(st.Tier) <= tier {
			out = append(out, st)
		}
	}
	return out
}

// BaseXPForTier returns the template's base reward at a tier. Unknown
// tiers fall back to the low reward.
func BaseXPForTier(t *storage.TaskTemplate, tier Tier) int {
	switch tier {
	case TierMedium:
		return t.BaseXPMedium
	case TierHigh:
		return t.BaseXPHigh
	default:
		return t.BaseXPLow
	}
}

// RewardXP computes the XP for completing at a tier with the given number
// of checked steps.
func (s *Service) RewardXP(t *storage.TaskTemplate, tier Tier, completedCount int) int {
	xp := BaseXPForTier(t, tier) + completedCount*s.bonusXP
	if s.rewardCap > 0 && xp > s.rewardCap {
		xp = s.rewardCap
	}
	return xp
}

type SubTaskSpec struct {
	Description string
	Tier        Tier
}

type TemplateInput struct {
	Title        string
	Category     string
	Recurrence   Recurrence
	EffortType   string
	LocationType string
	BaseXPLow    int
	BaseXPMedium int
	BaseXPHigh   int
	Subtasks     []SubTaskSpec
}

func (in *TemplateInput) validate() error {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return err
	}
	in.Title = title

	if !in.Recurrence.IsValid() {
		return ValidationError{Msg: fmt.Sprintf("invalid recurrence: %q", in.Recurrence)}
	}
	if in.Category != "" && !IsValidCategory(in.Category) {
		return ValidationError{Msg: fmt.Sprintf("unknown category: %q", in.Category)}
	}
	if in.BaseXPLow < 0 || in.BaseXPMedium < 0 || in.BaseXPHigh < 0 {
		return ValidationError{Msg: "base XP must be non-negative"}
	}
	// Higher effort never pays less.
	if in.BaseXPMedium < in.BaseXPLow || in.BaseXPHigh < in.BaseXPMedium {
		return ValidationError{Msg: "base XP must be non-decreasing from low to high"}
	}
	for _, st := range in.Subtasks {
		if _, err := normalizeTitle(st.Description); err != nil {
			return ValidationError{Msg: "subtask description is required"}
		}
		if !st.Tier.IsValid() {
			return ValidationError{Msg: fmt.Sprintf("invalid subtask tier: %d", st.Tier)}
		}
	}
	return nil
}

func toSubtaskInserts(specs []SubTaskSpec) []storage.SubTaskInsert {
	out := make([]storage.SubTaskInsert, 0, len(specs))
	for i, st := range specs {
		out = append(out, storage.SubTaskInsert{
			Description:  st.Description,
			Tier:         int(st.Tier),
			DisplayOrder: i,
		})
	}
	return out
}

func (in TemplateInput) toInsert() storage.TemplateInsert {
	return storage.TemplateInsert{
		Title:        in.Title,
		Category:     in.Category,
		Recurrence:   string(in.Recurrence),
		EffortType:   in.EffortType,
		LocationType: in.LocationType,
		BaseXPLow:    in.BaseXPLow,
		BaseXPMedium: in.BaseXPMedium,
		BaseXPHigh:   in.BaseXPHigh,
	}
}

func (s *Service) CreateTemplate(ctx context.Context, in TemplateInput) (*storage.TaskTemplate, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.templates.Insert(ctx, in.toInsert(), toSubtaskInserts(in.Subtasks))
	if err != nil {
		return nil, storeErr("template insert", err)
	}
	t, err := s.templates.Get(ctx, id)
	if err != nil {
		return nil, storeErr("template get", err)
	}
	return t, nil
}

// EditTemplate replaces the template's fields and its whole subtask list.
// Wholesale replacement keeps the cumulative-tier checklist coherent; a
// partial patch could leave orphaned tiers.
func (s *Service) EditTemplate(ctx context.Context, id int64, in TemplateInput) (*storage.TaskTemplate, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.templates.Get(ctx, id)
	if err != nil {
		return nil, storeErr("template get", err)
	}
	if existing == nil {
		return nil, NotFoundError{Kind: "template", ID: id}
	}

	if err := s.templates.UpdateFields(ctx, id, in.toInsert(), toSubtaskInserts(in.Subtasks)); err != nil {
		return nil, storeErr("template update", err)
	}
	t, err := s.templates.Get(ctx, id)
	if err != nil {
		return nil, storeErr("template get", err)
	}
	return t, nil
}

type TemplateFilter struct {
	Category     string
	EffortType   string
	LocationType string
	Recurrence   string
}

// ListTemplates returns active templates matching the filter.
func (s *Service) ListTemplates(ctx context.Context, f TemplateFilter) ([]storage.TaskTemplate, error) {
	out, err := s.templates.List(ctx, storage.TemplateFilter{
		Category:     f.Category,
		EffortType:   f.EffortType,
		LocationType: f.LocationType,
		Recurrence:   f.Recurrence,
	})
	if err != nil {
		return nil, storeErr("template list", err)
	}
	return out, nil
}

func (s *Service) GetTemplate(ctx context.Context, id int64) (*storage.TaskTemplate, error) {
	t, err := s.templates.Get(ctx, id)
	if err != nil {
		return nil, storeErr("template get", err)
	}
	if t == nil {
		return nil, NotFoundError{Kind: "template", ID: id}
	}
	return t, nil
}

// DeactivateTemplate soft-deletes: the template disappears from listings
// but history stays intact.
func (s *Service) DeactivateTemplate(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.templates.Get(ctx, id)
	if err != nil {
		return storeErr("template get", err)
	}
	if t == nil {
		return NotFoundError{Kind: "template", ID: id}
	}
	if err := s.templates.SetActive(ctx, id, false); err != nil {
		return storeErr("template deactivate", err)
	}
	return nil
}

// DeleteTemplate hard-deletes the template along with everything it owns:
// subtasks, instances, and their completion rows.
func (s *Service) DeleteTemplate(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.templates.Get(ctx, id)
	if err != nil {
		return storeErr("template get", err)
	}
	if t == nil {
		return NotFoundError{Kind: "template", ID: id}
	}

	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.templates.InTx(tx).DeleteCascade(ctx, id)
	})
	if err != nil {
		return storeErr("template delete", err)
	}
	return nil
}
