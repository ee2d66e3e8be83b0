package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"conquer/internal/storage"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(days int) { c.now = c.now.AddDate(0, 0, days) }

func newTestService(t *testing.T) (*Service, *testClock, func()) {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	db, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	clock := &testClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc := NewServiceWith(db, Options{SubtaskBonusXP: 2, Now: clock.Now})
	cleanup := func() {
		_ = db.Close()
	}
	return svc, clock, cleanup
}

func kitchenInput() TemplateInput {
	return TemplateInput{
		Title:        "Clean the Kitchen",
		Category:     "Cleaning",
		Recurrence:   RecurrenceDaily,
		EffortType:   "physical",
		LocationType: "indoor",
		BaseXPLow:    10,
		BaseXPMedium: 20,
		BaseXPHigh:   30,
		Subtasks: []SubTaskSpec{
			{Description: "Load dishwasher", Tier: TierLow},
			{Description: "Wipe counter", Tier: TierLow},
			{Description: "Wipe stove", Tier: TierMedium},
			{Description: "Sweep floor", Tier: TierMedium},
			{Description: "Scrub sink", Tier: TierHigh},
			{Description: "Mop floor", Tier: TierHigh},
		},
	}
}

func TestCompleteAtHalfChecklist(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	tmpl, err := svc.CreateTemplate(ctx, kitchenInput())
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}

	inst, err := svc.CreateInstance(ctx, tmpl.ID, TierLow)
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	if len(inst.Completions) != 2 {
		t.Fatalf("seeded %d completion rows at low, want 2", len(inst.Completions))
	}

	// One of two steps checked: exactly 50%, which passes the gate.
	if _, err := svc.ToggleSubtask(ctx, inst.ID, inst.Completions[0].ID); err != nil {
		t.Fatalf("ToggleSubtask: %v", err)
	}

	res, err := svc.CompleteInstance(ctx, inst.ID)
	if err != nil {
		t.Fatalf("CompleteInstance: %v", err)
	}
	if res.XPEarned != 12 {
		t.Fatalf("xp earned = %d, want 12 (base 10 + 1 subtask * 2)", res.XPEarned)
	}
	if res.CurrentStreak != 1 || res.LongestStreak != 1 {
		t.Fatalf("first completion streak = (%d,%d), want (1,1)", res.CurrentStreak, res.LongestStreak)
	}
	if res.TasksCompleted != 1 {
		t.Fatalf("tasks completed = %d, want 1", res.TasksCompleted)
	}

	p, err := svc.GetProgress(ctx)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if p.TotalXP != 12 {
		t.Fatalf("total xp = %d, want 12", p.TotalXP)
	}

	got, err := svc.GetInstance(ctx, inst.ID)
	if err != nil {
		t.Fatalf("GetInstance: %v", err)
	}
	if got.CompletedAt == nil || got.XPEarned != 12 {
		t.Fatalf("instance not marked completed with xp: %+v", got)
	}
}

func TestCompleteBelowGateFails(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	tmpl, err := svc.CreateTemplate(ctx, kitchenInput())
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	inst, err := svc.CreateInstance(ctx, tmpl.ID, TierLow)
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}

	// Nothing checked: 0% < 50%.
	_, err = svc.CompleteInstance(ctx, inst.ID)
	var te TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransitionError for insufficient progress, got %v", err)
	}
}

func TestCompleteTwiceFails(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	tmpl, _ := svc.CreateTemplate(ctx, kitchenInput())
	inst, _ := svc.CreateInstance(ctx, tmpl.ID, TierLow)
	if _, err := svc.ToggleSubtask(ctx, inst.ID, inst.Completions[0].ID); err != nil {
		t.Fatalf("ToggleSubtask: %v", err)
	}
	if _, err := svc.CompleteInstance(ctx, inst.ID); err != nil {
		t.Fatalf("first complete: %v", err)
	}

	_, err := svc.CompleteInstance(ctx, inst.ID)
	var te TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("second complete should fail with TransitionError, got %v", err)
	}

	// XP awarded exactly once.
	p, _ := svc.GetProgress(ctx)
	if p.TotalXP != 12 || p.TasksCompleted != 1 {
		t.Fatalf("retry double-counted: xp=%d completed=%d", p.TotalXP, p.TasksCompleted)
	}
}

func TestTierUpgradeSeedsNewSteps(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	tmpl, _ := svc.CreateTemplate(ctx, kitchenInput())
	inst, _ := svc.CreateInstance(ctx, tmpl.ID, TierLow)

	// Not eligible until every available step is checked.
	if CanUpgradeTier(inst) {
		t.Fatal("upgrade should not be available at 0%")
	}
	inst, err := svc.ToggleSubtask(ctx, inst.ID, inst.Completions[0].ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if CanUpgradeTier(inst) {
		t.Fatal("upgrade should not be available at 50%")
	}
	if _, err := svc.UpgradeTier(ctx, inst.ID); err == nil {
		t.Fatal("UpgradeTier should fail below 100%")
	}

	inst, err = svc.ToggleSubtask(ctx, inst.ID, inst.Completions[1].ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !CanUpgradeTier(inst) {
		t.Fatal("upgrade should be available at 100%")
	}

	inst, err = svc.UpgradeTier(ctx, inst.ID)
	if err != nil {
		t.Fatalf("UpgradeTier: %v", err)
	}
	if Tier(inst.SelectedTier) != TierMedium {
		t.Fatalf("tier after upgrade = %s, want medium", Tier(inst.SelectedTier))
	}
	if len(inst.Completions) != 4 {
		t.Fatalf("completions after upgrade = %d, want 4", len(inst.Completions))
	}

	st := StatusOf(inst)
	if st.Completed != 2 {
		t.Fatalf("existing checks lost on upgrade: %d checked, want 2", st.Completed)
	}
}

func TestTierUpgradeNeverSkipsOrPassesHigh(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	tmpl, _ := svc.CreateTemplate(ctx, kitchenInput())
	inst, _ := svc.CreateInstance(ctx, tmpl.ID, TierLow)

	checkAll := func() {
		t.Helper()
		cur, err := svc.GetInstance(ctx, inst.ID)
		if err != nil {
			t.Fatalf("GetInstance: %v", err)
		}
		for _, c := range cur.Completions {
			if !c.Completed {
				if _, err := svc.ToggleSubtask(ctx, inst.ID, c.ID); err != nil {
					t.Fatalf("toggle: %v", err)
				}
			}
		}
	}

	checkAll()
	if _, err := svc.UpgradeTier(ctx, inst.ID); err != nil {
		t.Fatalf("upgrade to medium: %v", err)
	}
	checkAll()
	if _, err := svc.UpgradeTier(ctx, inst.ID); err != nil {
		t.Fatalf("upgrade to high: %v", err)
	}
	checkAll()

	_, err := svc.UpgradeTier(ctx, inst.ID)
	var te TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("upgrade past high should fail with TransitionError, got %v", err)
	}
}

func TestToggleRejectsForeignCompletion(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	tmpl, _ := svc.CreateTemplate(ctx, kitchenInput())
	a, _ := svc.CreateInstance(ctx, tmpl.ID, TierLow)
	b, _ := svc.CreateInstance(ctx, tmpl.ID, TierLow)

	_, err := svc.ToggleSubtask(ctx, a.ID, b.Completions[0].ID)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for foreign completion, got %v", err)
	}
}

func TestDeleteInstanceRules(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	tmpl, _ := svc.CreateTemplate(ctx, kitchenInput())

	open, _ := svc.CreateInstance(ctx, tmpl.ID, TierLow)
	if err := svc.DeleteInstance(ctx, open.ID); err != nil {
		t.Fatalf("delete open instance: %v", err)
	}
	if _, err := svc.GetInstance(ctx, open.ID); err == nil {
		t.Fatal("deleted instance still readable")
	}

	done, _ := svc.CreateInstance(ctx, tmpl.ID, TierLow)
	if _, err := svc.ToggleSubtask(ctx, done.ID, done.Completions[0].ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := svc.CompleteInstance(ctx, done.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	err := svc.DeleteInstance(ctx, done.ID)
	var te TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("delete completed should fail with TransitionError, got %v", err)
	}
}

func TestStreakAcrossDays(t *testing.T) {
	svc, clock, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	tmpl, _ := svc.CreateTemplate(ctx, kitchenInput())

	completeOne := func() *CompleteResult {
		t.Helper()
		inst, err := svc.CreateInstance(ctx, tmpl.ID, TierLow)
		if err != nil {
			t.Fatalf("CreateInstance: %v", err)
		}
		if _, err := svc.ToggleSubtask(ctx, inst.ID, inst.Completions[0].ID); err != nil {
			t.Fatalf("toggle: %v", err)
		}
		res, err := svc.CompleteInstance(ctx, inst.ID)
		if err != nil {
			t.Fatalf("complete: %v", err)
		}
		return res
	}

	if res := completeOne(); res.CurrentStreak != 1 {
		t.Fatalf("day 1 streak = %d, want 1", res.CurrentStreak)
	}
	// Second completion the same day leaves the streak alone.
	if res := completeOne(); res.CurrentStreak != 1 {
		t.Fatalf("same-day streak = %d, want 1", res.CurrentStreak)
	}

	clock.Advance(1)
	if res := completeOne(); res.CurrentStreak != 2 || res.LongestStreak != 2 {
		t.Fatalf("day 2 streak = (%d,%d), want (2,2)", res.CurrentStreak, res.LongestStreak)
	}

	clock.Advance(3)
	if res := completeOne(); res.CurrentStreak != 1 || res.LongestStreak != 2 {
		t.Fatalf("after gap = (%d,%d), want (1,2)", res.CurrentStreak, res.LongestStreak)
	}
}

func TestLevelUpSignal(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	in := kitchenInput()
	in.BaseXPLow = 95
	in.BaseXPMedium = 95
	in.BaseXPHigh = 95
	tmpl, err := svc.CreateTemplate(ctx, in)
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}

	inst, _ := svc.CreateInstance(ctx, tmpl.ID, TierLow)
	if _, err := svc.ToggleSubtask(ctx, inst.ID, inst.Completions[0].ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	// 95 + 2 = 97 XP: still level 1.
	res, err := svc.CompleteInstance(ctx, inst.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.LeveledUp {
		t.Fatalf("97 XP should not level up, got %+v", res)
	}

	inst2, _ := svc.CreateInstance(ctx, tmpl.ID, TierLow)
	if _, err := svc.ToggleSubtask(ctx, inst2.ID, inst2.Completions[0].ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	res, err = svc.CompleteInstance(ctx, inst2.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !res.LeveledUp || res.LevelAfter != 2 {
		t.Fatalf("crossing 100 XP should level up to 2, got %+v", res)
	}
}

func TestDashboardStats(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	tmpl, _ := svc.CreateTemplate(ctx, kitchenInput())
	inst, _ := svc.CreateInstance(ctx, tmpl.ID, TierLow)
	if _, err := svc.ToggleSubtask(ctx, inst.ID, inst.Completions[0].ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := svc.CompleteInstance(ctx, inst.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	today, err := svc.TodayInstances(ctx)
	if err != nil {
		t.Fatalf("TodayInstances: %v", err)
	}
	if len(today) != 1 || today[0].Template.Title != "Clean the Kitchen" {
		t.Fatalf("today instances = %+v", today)
	}

	week, err := svc.WeekStats(ctx)
	if err != nil {
		t.Fatalf("WeekStats: %v", err)
	}
	if week.Completions != 1 || week.Points != 12 {
		t.Fatalf("week stats = %+v, want 1 completion / 12 points", week)
	}

	cats, err := svc.CategoryStats(ctx)
	if err != nil {
		t.Fatalf("CategoryStats: %v", err)
	}
	if cats["Cleaning"] != 1 {
		t.Fatalf("cleaning count = %d, want 1", cats["Cleaning"])
	}
	for _, c := range Categories {
		if _, ok := cats[c]; !ok {
			t.Fatalf("category %q missing from stats", c)
		}
	}
}

func TestTemplateLifecycle(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	tmpl, err := svc.CreateTemplate(ctx, kitchenInput())
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}

	list, err := svc.ListTemplates(ctx, TemplateFilter{Category: "Cleaning"})
	if err != nil {
		t.Fatalf("ListTemplates: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("listed %d templates, want 1", len(list))
	}

	// Edit replaces the subtask list wholesale.
	edit := kitchenInput()
	edit.Title = "Kitchen Reset"
	edit.Subtasks = []SubTaskSpec{
		{Description: "Clear sink", Tier: TierLow},
		{Description: "Deep clean", Tier: TierHigh},
	}
	updated, err := svc.EditTemplate(ctx, tmpl.ID, edit)
	if err != nil {
		t.Fatalf("EditTemplate: %v", err)
	}
	if updated.Title != "Kitchen Reset" || len(updated.Subtasks) != 2 {
		t.Fatalf("edit result = %+v", updated)
	}

	// Soft delete hides the template from listings.
	if err := svc.DeactivateTemplate(ctx, tmpl.ID); err != nil {
		t.Fatalf("DeactivateTemplate: %v", err)
	}
	list, err = svc.ListTemplates(ctx, TemplateFilter{})
	if err != nil {
		t.Fatalf("ListTemplates: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("deactivated template still listed")
	}

	// Hard delete cascades to instances and their checklist rows.
	inst, err := svc.CreateInstance(ctx, tmpl.ID, TierHigh)
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	if err := svc.DeleteTemplate(ctx, tmpl.ID); err != nil {
		t.Fatalf("DeleteTemplate: %v", err)
	}
	if _, err := svc.GetTemplate(ctx, tmpl.ID); err == nil {
		t.Fatal("deleted template still readable")
	}
	if _, err := svc.GetInstance(ctx, inst.ID); err == nil {
		t.Fatal("cascade left instance behind")
	}
}

func TestNotFoundErrors(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	var nf NotFoundError
	if _, err := svc.GetTemplate(ctx, 999); !errors.As(err, &nf) {
		t.Fatalf("GetTemplate(999) = %v, want NotFoundError", err)
	}
	if _, err := svc.GetInstance(ctx, 999); !errors.As(err, &nf) {
		t.Fatalf("GetInstance(999) = %v, want NotFoundError", err)
	}
	if _, err := svc.CreateInstance(ctx, 999, TierLow); !errors.As(err, &nf) {
		t.Fatalf("CreateInstance(999) = %v, want NotFoundError", err)
	}
	if _, err := svc.CompleteInstance(ctx, 999); !errors.As(err, &nf) {
		t.Fatalf("CompleteInstance(999) = %v, want NotFoundError", err)
	}
}
