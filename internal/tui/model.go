package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"conquer/internal/engine"
	"conquer/internal/storage"
	"conquer/internal/ui"
)

// RunBoard runs the interactive board until the user quits.
func RunBoard(ctx context.Context, svc *engine.Service, out io.Writer) error {
	p := tea.NewProgram(newBoardModel(ctx, svc), tea.WithOutput(out))
	_, err := p.Run()
	return err
}

type boardModel struct {
	ctx context.Context
	svc *engine.Service

	width  int
	height int

	progress *storage.Progress
	items    []engine.InstanceDetail

	expanded map[int64]bool
	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	progress *storage.Progress
	items    []engine.InstanceDetail
	err      error
}

type completedMsg struct {
	id  int64
	res *engine.CompleteResult
	err error
}

type actionMsg struct {
	log string
	err error
}

func newBoardModel(ctx context.Context, svc *engine.Service) boardModel {
	return boardModel{
		ctx:      ctx,
		svc:      svc,
		expanded: map[int64]bool{},
		loading:  true,
		lastLog:  "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		p, err := m.svc.GetProgress(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		items, err := m.svc.TodayInstances(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{progress: p, items: items}
	}
}

func (m boardModel) completeCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteInstance(m.ctx, id)
		return completedMsg{id: id, res: res, err: err}
	}
}

func (m boardModel) toggleCmd(instanceID, completionID int64) tea.Cmd {
	return func() tea.Msg {
		_, err := m.svc.ToggleSubtask(m.ctx, instanceID, completionID)
		return actionMsg{log: "Toggled.", err: err}
	}
}

func (m boardModel) upgradeCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		inst, err := m.svc.UpgradeTier(m.ctx, id)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{log: fmt.Sprintf("Upgraded #%d to %s.", id, engine.Tier(inst.SelectedTier))}
	}
}

func (m boardModel) deleteCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		err := m.svc.DeleteInstance(m.ctx, id)
		return actionMsg{log: fmt.Sprintf("Removed #%d.", id), err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.progress = msg.progress
		m.items = msg.items
		// Default-expand open instances.
		for _, it := range m.items {
			if it.Instance.CompletedAt == nil {
				m.expanded[it.Instance.ID] = true
			}
		}
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = fmt.Sprintf("Completed #%d: +%d XP (level %d → %d, streak %d)",
			msg.id, msg.res.XPEarned, msg.res.LevelBefore, msg.res.LevelAfter, msg.res.CurrentStreak)
		return m, m.loadCmd()
	case actionMsg:
		if msg.err != nil {
			m.lastLog = msg.err.Error()
			return m, nil
		}
		m.lastLog = msg.log
		return m, m.loadCmd()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m boardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r":
		m.loading = true
		m.lastLog = "Refreshing…"
		return m, m.loadCmd()
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "j":
		rows := m.boardRows()
		if m.selected < len(rows)-1 {
			m.selected++
		}
		return m, nil
	case "enter", " ":
		rows := m.boardRows()
		if m.selected < 0 || m.selected >= len(rows) {
			return m, nil
		}
		row := rows[m.selected]
		if row.completionID == 0 {
			m.expanded[row.instanceID] = !m.expanded[row.instanceID]
			return m, nil
		}
		if row.done {
			m.lastLog = "Instance already completed."
			return m, nil
		}
		return m, m.toggleCmd(row.instanceID, row.completionID)
	case "c":
		row, ok := m.selectedInstanceRow()
		if !ok {
			return m, nil
		}
		if row.done {
			m.lastLog = "Already completed."
			return m, nil
		}
		m.lastLog = fmt.Sprintf("Completing #%d…", row.instanceID)
		return m, m.completeCmd(row.instanceID)
	case "u":
		row, ok := m.selectedInstanceRow()
		if !ok {
			return m, nil
		}
		return m, m.upgradeCmd(row.instanceID)
	case "x":
		row, ok := m.selectedInstanceRow()
		if !ok {
			return m, nil
		}
		return m, m.deleteCmd(row.instanceID)
	}
	return m, nil
}

// boardRow is one rendered line: an instance header (completionID == 0)
// or a checklist entry under an expanded instance.
type boardRow struct {
	instanceID   int64
	completionID int64
	title        string
	tier         engine.Tier
	checked      bool
	done         bool
	percentage   float64
}

func (m boardModel) boardRows() []boardRow {
	var out []boardRow
	for _, it := range m.items {
		inst := it.Instance
		st := engine.StatusOf(&inst)
		out = append(out, boardRow{
			instanceID: inst.ID,
			title:      it.Template.Title,
			tier:       engine.Tier(inst.SelectedTier),
			done:       inst.CompletedAt != nil,
			percentage: st.Percentage,
		})
		if !m.expanded[inst.ID] {
			continue
		}
		descByID := map[int64]string{}
		for _, s := range it.Template.Subtasks {
			descByID[s.ID] = s.Description
		}
		for _, c := range inst.Completions {
			out = append(out, boardRow{
				instanceID:   inst.ID,
				completionID: c.ID,
				title:        descByID[c.SubtaskID],
				checked:      c.Completed,
				done:         inst.CompletedAt != nil,
			})
		}
	}
	return out
}

func (m boardModel) selectedInstanceRow() (boardRow, bool) {
	rows := m.boardRows()
	if m.selected < 0 || m.selected >= len(rows) {
		return boardRow{}, false
	}
	row := rows[m.selected]
	// Checklist rows act on their parent instance.
	row.completionID = 0
	return row, true
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderBoard())
	b.WriteString("\n")
	b.WriteString(ui.Muted.Render("j/k move · enter/space toggle · c complete · u upgrade · x remove · r refresh · q quit"))
	b.WriteString("\n" + m.lastLog + "\n")
	return b.String()
}

func (m boardModel) renderHeader() string {
	if m.progress == nil {
		return "Conquer — loading…"
	}
	p := m.progress
	return fmt.Sprintf("%s  %s  %s %s  %s",
		ui.Heading(ui.IconQuest, "Conquer"),
		ui.LabelValue("Level", p.CurrentLevel),
		ui.Key.Render("XP:"),
		ui.ProgressBar(engine.LevelProgressPercent(p.TotalXP), 20),
		ui.LabelValue("Streak", fmt.Sprintf("%d (best %d)", p.CurrentStreak, p.LongestStreak)))
}

func (m boardModel) renderBoard() string {
	if m.loading {
		return "Loading…"
	}
	rows := m.boardRows()
	if len(rows) == 0 {
		return ui.Muted.Render("Nothing started today. Try: conquer start <template-id>")
	}

	var out []string
	for i, row := range rows {
		cursor := "  "
		if i == m.selected {
			cursor = ui.Gold.Render("> ")
		}
		if row.completionID == 0 {
			mark := ui.TierIcon(row.tier.String())
			suffix := ui.Muted.Render(fmt.Sprintf("%.0f%%", row.percentage))
			if row.done {
				mark = ui.IconDone
				suffix = ui.Good.Render("done")
			}
			out = append(out, fmt.Sprintf("%s%s #%d %s %s", cursor, mark, row.instanceID, row.title, suffix))
			continue
		}
		box := "[ ]"
		if row.checked {
			box = ui.Good.Render("[x]")
		}
		out = append(out, fmt.Sprintf("%s   %s %s", cursor, box, ui.Muted.Render(row.title)))
	}
	return strings.Join(out, "\n")
}
