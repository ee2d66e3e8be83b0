package engine

import (
	"context"
	"database/sql"

	"conquer/internal/storage"
)

// CompleteResult is what the caller gets back from a completion: the XP,
// the level movement, and the streak after the update.
type CompleteResult struct {
	InstanceID     int64
	XPEarned       int
	LevelBefore    int
	LevelAfter     int
	LeveledUp      bool
	CurrentStreak  int
	LongestStreak  int
	TasksCompleted int
}

// CompleteInstance finishes an open instance and applies the whole
// progression update: XP, tasks-completed count, level, and streak. The
// instance flip and the progress write commit in one transaction, so a
// crash can never award XP without marking the instance done or the other
// way around. A repeat call on a completed instance fails with a
// transition error instead of double-awarding.
func (s *Service) CompleteInstance(ctx context.Context, instanceID int64) (*CompleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, err := s.instances.Get(ctx, instanceID)
	if err != nil {
		return nil, storeErr("instance get", err)
	}
	if inst == nil {
		return nil, NotFoundError{Kind: "instance", ID: instanceID}
	}
	if inst.CompletedAt != nil {
		return nil, TransitionError{Op: "complete", Reason: "already completed"}
	}

	st := StatusOf(inst)
	if st.Percentage < CompletionGatePercent {
		return nil, TransitionError{Op: "complete", Reason: "insufficient progress"}
	}

	t, err := s.templates.Get(ctx, inst.TemplateID)
	if err != nil {
		return nil, storeErr("template get", err)
	}
	if t == nil {
		return nil, NotFoundError{Kind: "template", ID: inst.TemplateID}
	}

	p, err := s.GetProgress(ctx)
	if err != nil {
		return nil, err
	}
	levelBefore := p.CurrentLevel

	now := s.now()
	xp := s.RewardXP(t, Tier(inst.SelectedTier), st.Completed)

	p.TotalXP += xp
	p.TasksCompleted++
	p.CurrentLevel = LevelForXP(p.TotalXP)

	streak := AdvanceStreak(now, StreakState{
		Current:            p.CurrentStreak,
		Longest:            p.LongestStreak,
		LastCompletionDate: p.LastCompletionDate,
	})
	p.CurrentStreak = streak.Current
	p.LongestStreak = streak.Longest
	p.LastCompletionDate = streak.LastCompletionDate

	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.instances.InTx(tx).MarkCompleted(ctx, instanceID, now, xp); err != nil {
			return err
		}
		return s.progress.InTx(tx).Update(ctx, p)
	})
	if err != nil {
		return nil, storeErr("complete", err)
	}

	return &CompleteResult{
		InstanceID:     instanceID,
		XPEarned:       xp,
		LevelBefore:    levelBefore,
		LevelAfter:     p.CurrentLevel,
		LeveledUp:      p.CurrentLevel > levelBefore,
		CurrentStreak:  p.CurrentStreak,
		LongestStreak:  p.LongestStreak,
		TasksCompleted: p.TasksCompleted,
	}, nil
}
