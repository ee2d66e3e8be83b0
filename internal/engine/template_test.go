package engine

import (
	"testing"

	"conquer/internal/storage"
)

func fixtureTemplate() *storage.TaskTemplate {
	return &storage.TaskTemplate{
		ID:           1,
		Title:        "Clean the Kitchen",
		Category:     "Cleaning",
		Recurrence:   "daily",
		BaseXPLow:    10,
		BaseXPMedium: 20,
		BaseXPHigh:   30,
		Active:       true,
		Subtasks: []storage.SubTask{
			{ID: 1, TemplateID: 1, Description: "Load dishwasher", Tier: 1, DisplayOrder: 0},
			{ID: 2, TemplateID: 1, Description: "Wipe counter", Tier: 1, DisplayOrder: 1},
			{ID: 3, TemplateID: 1, Description: "Wipe stove", Tier: 2, DisplayOrder: 2},
			{ID: 4, TemplateID: 1, Description: "Sweep floor", Tier: 2, DisplayOrder: 3},
			{ID: 5, TemplateID: 1, Description: "Scrub sink", Tier: 3, DisplayOrder: 4},
			{ID: 6, TemplateID: 1, Description: "Mop floor", Tier: 3, DisplayOrder: 5},
		},
	}
}

func TestAvailableSubtasksCumulative(t *testing.T) {
	tmpl := fixtureTemplate()

	low := AvailableSubtasks(tmpl, TierLow)
	med := AvailableSubtasks(tmpl, TierMedium)
	high := AvailableSubtasks(tmpl, TierHigh)

	if len(low) != 2 || len(med) != 4 || len(high) != 6 {
		t.Fatalf("got %d/%d/%d available, want 2/4/6", len(low), len(med), len(high))
	}

	// Each tier's checklist is a prefix-superset of the one below.
	inMed := map[int64]bool{}
	for _, st := range med {
		inMed[st.ID] = true
	}
	for _, st := range low {
		if !inMed[st.ID] {
			t.Fatalf("low subtask %d missing at medium tier", st.ID)
		}
	}
	inHigh := map[int64]bool{}
	for _, st := range high {
		inHigh[st.ID] = true
	}
	for _, st := range med {
		if !inHigh[st.ID] {
			t.Fatalf("medium subtask %d missing at high tier", st.ID)
		}
	}
}

func TestAvailableSubtasksKeepsDisplayOrder(t *testing.T) {
	tmpl := fixtureTemplate()
	high := AvailableSubtasks(tmpl, TierHigh)
	for i := 1; i < len(high); i++ {
		if high[i-1].DisplayOrder > high[i].DisplayOrder {
			t.Fatalf("subtasks out of display order at %d", i)
		}
	}
}

func TestRewardXP(t *testing.T) {
	svc := NewServiceWith(nil, Options{SubtaskBonusXP: 2})
	tmpl := fixtureTemplate()

	cases := []struct {
		tier  Tier
		count int
		want  int
	}{
		{TierLow, 0, 10},
		{TierLow, 1, 12},
		{TierMedium, 3, 26},
		{TierHigh, 6, 42},
	}
	for _, c := range cases {
		if got := svc.RewardXP(tmpl, c.tier, c.count); got != c.want {
			t.Errorf("RewardXP(%s, %d)=%d, want %d", c.tier, c.count, got, c.want)
		}
	}
}

func TestSubtaskBonusConfiguration(t *testing.T) {
	if got := NewService(nil).SubtaskBonusXP(); got != DefaultSubtaskBonusXP {
		t.Fatalf("NewService bonus = %d, want %d", got, DefaultSubtaskBonusXP)
	}
	// Zero is an honest zero, not a fallback trigger.
	if got := NewServiceWith(nil, Options{RewardCap: 5}).SubtaskBonusXP(); got != 0 {
		t.Fatalf("zero-option bonus = %d, want 0", got)
	}
	if got := NewServiceWith(nil, Options{SubtaskBonusXP: -3}).SubtaskBonusXP(); got != 0 {
		t.Fatalf("negative bonus = %d, want 0", got)
	}
}

func TestRewardXPConfiguredBonus(t *testing.T) {
	svc := NewServiceWith(nil, Options{SubtaskBonusXP: 5})
	tmpl := fixtureTemplate()
	if got := svc.RewardXP(tmpl, TierMedium, 3); got != 35 {
		t.Fatalf("RewardXP with bonus 5 = %d, want 35", got)
	}
}

func TestRewardXPCap(t *testing.T) {
	svc := NewServiceWith(nil, Options{SubtaskBonusXP: 2, RewardCap: 25})
	tmpl := fixtureTemplate()
	if got := svc.RewardXP(tmpl, TierHigh, 6); got != 25 {
		t.Fatalf("RewardXP capped = %d, want 25", got)
	}
	if got := svc.RewardXP(tmpl, TierLow, 0); got != 10 {
		t.Fatalf("RewardXP under cap = %d, want 10", got)
	}
}

func TestTierOrderingAndNext(t *testing.T) {
	if !(TierLow < TierMedium && TierMedium < TierHigh) {
		t.Fatal("tier ordering broken")
	}
	if next, ok := TierLow.Next(); !ok || next != TierMedium {
		t.Fatalf("TierLow.Next()=%v,%v", next, ok)
	}
	if next, ok := TierMedium.Next(); !ok || next != TierHigh {
		t.Fatalf("TierMedium.Next()=%v,%v", next, ok)
	}
	if _, ok := TierHigh.Next(); ok {
		t.Fatal("TierHigh.Next() should not advance")
	}
}

func TestTemplateInputValidation(t *testing.T) {
	base := TemplateInput{
		Title:        "Walk",
		Recurrence:   RecurrenceDaily,
		BaseXPLow:    10,
		BaseXPMedium: 20,
		BaseXPHigh:   30,
	}

	if err := base.validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	empty := base
	empty.Title = "   "
	if err := empty.validate(); err == nil {
		t.Fatal("expected error for empty title")
	}

	badRec := base
	badRec.Recurrence = "hourly"
	if err := badRec.validate(); err == nil {
		t.Fatal("expected error for bad recurrence")
	}

	decreasing := base
	decreasing.BaseXPMedium = 5
	if err := decreasing.validate(); err == nil {
		t.Fatal("expected error for decreasing base XP")
	}

	badTier := base
	badTier.Subtasks = []SubTaskSpec{{Description: "x", Tier: 7}}
	if err := badTier.validate(); err == nil {
		t.Fatal("expected error for invalid subtask tier")
	}
}
