package engine

import (
	"context"
	"database/sql"
	"fmt"

	"conquer/internal/storage"
)

// CompletionStatus summarizes an instance's checklist.
type CompletionStatus struct {
	Total      int
	Completed  int
	Percentage float64
}

// StatusOf computes checklist progress from the seeded completion rows.
// An empty checklist reads as 0%.
func StatusOf(inst *storage.TaskInstance) CompletionStatus {
	st := CompletionStatus{Total: len(inst.Completions)}
	for _, c := range inst.Completions {
		if c.Completed {
			st.Completed++
		}
	}
	if st.Total > 0 {
		st.Percentage = float64(st.Completed) / float64(st.Total) * 100
	}
	return st
}

// CompletionGatePercent is the minimum checklist progress required to
// complete an instance. Half done counts as done enough.
const CompletionGatePercent = 50.0

// CanUpgradeTier reports whether the instance may move up a tier: not at
// high already, and every available subtask checked. Exactly 100%, not
// "almost".
func CanUpgradeTier(inst *storage.TaskInstance) bool {
	if inst.CompletedAt != nil {
		return false
	}
	if Tier(inst.SelectedTier) >= TierHigh {
		return false
	}
	st := StatusOf(inst)
	return st.Total > 0 && st.Completed == st.Total
}

// CreateInstance starts one concrete attempt at a template for today,
// seeding an unchecked completion row for every subtask available at the
// chosen tier.
func (s *Service) CreateInstance(ctx context.Context, templateID int64, tier Tier) (*storage.TaskInstance, error) {
	if !tier.IsValid() {
		return nil, ValidationError{Msg: fmt.Sprintf("invalid tier: %d", tier)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return nil, storeErr("template get", err)
	}
	if t == nil {
		return nil, NotFoundError{Kind: "template", ID: templateID}
	}

	var id int64
	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := s.instances.InTx(tx)
		id, err = repo.Insert(ctx, templateID, int(tier), s.now())
		if err != nil {
			return err
		}
		for _, st := range AvailableSubtasks(t, tier) {
			if err := repo.InsertCompletion(ctx, id, st.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("instance create", err)
	}

	inst, err := s.instances.Get(ctx, id)
	if err != nil {
		return nil, storeErr("instance get", err)
	}
	return inst, nil
}

func (s *Service) GetInstance(ctx context.Context, id int64) (*storage.TaskInstance, error) {
	inst, err := s.instances.Get(ctx, id)
	if err != nil {
		return nil, storeErr("instance get", err)
	}
	if inst == nil {
		return nil, NotFoundError{Kind: "instance", ID: id}
	}
	return inst, nil
}

// ToggleSubtask flips one checklist entry. The flip is reversible and
// idempotent in shape: there is no counter to corrupt, just the flag.
func (s *Service) ToggleSubtask(ctx context.Context, instanceID, completionID int64) (*storage.TaskInstance, error) {
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
		return nil, TransitionError{Op: "toggle subtask", Reason: "instance already completed"}
	}

	c, err := s.instances.GetCompletion(ctx, completionID)
	if err != nil {
		return nil, storeErr("completion get", err)
	}
	if c == nil {
		return nil, NotFoundError{Kind: "completion", ID: completionID}
	}
	if c.InstanceID != instanceID {
		return nil, ValidationError{Msg: fmt.Sprintf("completion %d does not belong to instance %d", completionID, instanceID)}
	}

	if err := s.instances.SetCompletionState(ctx, completionID, !c.Completed); err != nil {
		return nil, storeErr("completion toggle", err)
	}

	inst, err = s.instances.Get(ctx, instanceID)
	if err != nil {
		return nil, storeErr("instance get", err)
	}
	return inst, nil
}

// UpgradeTier moves the instance up one tier and seeds unchecked rows for
// the newly available subtasks. Existing rows are never duplicated or
// reset, so checked low-tier steps stay checked.
func (s *Service) UpgradeTier(ctx context.Context, instanceID int64) (*storage.TaskInstance, error) {
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
		return nil, TransitionError{Op: "upgrade tier", Reason: "instance already completed"}
	}
	if !CanUpgradeTier(inst) {
		if Tier(inst.SelectedTier) >= TierHigh {
			return nil, TransitionError{Op: "upgrade tier", Reason: "already at high tier"}
		}
		return nil, TransitionError{Op: "upgrade tier", Reason: "checklist not fully complete"}
	}

	next, ok := Tier(inst.SelectedTier).Next()
	if !ok {
		return nil, TransitionError{Op: "upgrade tier", Reason: "already at high tier"}
	}

	t, err := s.templates.Get(ctx, inst.TemplateID)
	if err != nil {
		return nil, storeErr("template get", err)
	}
	if t == nil {
		return nil, NotFoundError{Kind: "template", ID: inst.TemplateID}
	}

	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := s.instances.InTx(tx)
		if err := repo.SetTier(ctx, instanceID, int(next)); err != nil {
			return err
		}
		for _, st := range AvailableSubtasks(t, next) {
			if err := repo.InsertCompletion(ctx, instanceID, st.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("tier upgrade", err)
	}

	inst, err = s.instances.Get(ctx, instanceID)
	if err != nil {
		return nil, storeErr("instance get", err)
	}
	return inst, nil
}

// DeleteInstance removes an open instance and its completion rows.
// Completed instances are immutable history and cannot be deleted.
func (s *Service) DeleteInstance(ctx context.Context, instanceID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, err := s.instances.Get(ctx, instanceID)
	if err != nil {
		return storeErr("instance get", err)
	}
	if inst == nil {
		return NotFoundError{Kind: "instance", ID: instanceID}
	}
	if inst.CompletedAt != nil {
		return TransitionError{Op: "delete instance", Reason: "cannot delete completed task"}
	}

	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.instances.InTx(tx).DeleteCascade(ctx, instanceID)
	})
	if err != nil {
		return storeErr("instance delete", err)
	}
	return nil
}
