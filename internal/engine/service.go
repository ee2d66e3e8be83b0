package engine

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"conquer/internal/storage"
)

// Service is the progression engine. All mutating operations serialize on
// an internal lock: the tracker is single-player, but a double-click or a
// retried request must not race two completions on the same aggregate.
type Service struct {
	db        *sql.DB
	progress  *storage.ProgressRepo
	templates *storage.TemplateRepo
	instances *storage.InstanceRepo

	bonusXP   int
	rewardCap int
	now       func() time.Time

	mu sync.Mutex
}

// Options tune the engine.
type Options struct {
	// SubtaskBonusXP is XP per completed checklist step. Zero means no
	// bonus; negative values are treated as zero. NewService applies
	// DefaultSubtaskBonusXP.
	SubtaskBonusXP int

	// RewardCap caps XP from one completion. 0 means uncapped.
	RewardCap int

	// Now overrides the clock, for tests.
	Now func() time.Time
}

func NewService(db *sql.DB) *Service {
	return NewServiceWith(db, Options{SubtaskBonusXP: DefaultSubtaskBonusXP})
}

func NewServiceWith(db *sql.DB, opts Options) *Service {
	bonus := opts.SubtaskBonusXP
	if bonus < 0 {
		bonus = 0
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		db:        db,
		progress:  storage.NewProgressRepo(db),
		templates: storage.NewTemplateRepo(db),
		instances: storage.NewInstanceRepo(db),
		bonusXP:   bonus,
		rewardCap: opts.RewardCap,
		now:       now,
	}
}

func (s *Service) ProgressRepo() *storage.ProgressRepo { return s.progress }
func (s *Service) TemplateRepo() *storage.TemplateRepo { return s.templates }
func (s *Service) InstanceRepo() *storage.InstanceRepo { return s.instances }

// SubtaskBonusXP is the configured bonus per completed checklist step.
func (s *Service) SubtaskBonusXP() int { return s.bonusXP }

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", ValidationError{Msg: "title is required"}
	}
	return t, nil
}

// GetProgress returns the singleton progress aggregate, creating it with
// zero defaults on first use. The cached level is repaired if it has
// drifted from the XP total.
func (s *Service) GetProgress(ctx context.Context) (*storage.Progress, error) {
	p, err := s.progress.GetOrCreateMain(ctx)
	if err != nil {
		return nil, storeErr("progress get", err)
	}
	computed := LevelForXP(p.TotalXP)
	if p.CurrentLevel != computed {
		p.CurrentLevel = computed
		if err := s.progress.Update(ctx, p); err != nil {
			return nil, storeErr("progress update", err)
		}
	}
	return p, nil
}
