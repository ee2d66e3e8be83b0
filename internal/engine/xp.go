package engine

// XPPerLevel is the flat amount of XP between levels.
const XPPerLevel = 100

// DefaultSubtaskBonusXP is the bonus per completed checklist step when no
// configured value is supplied.
const DefaultSubtaskBonusXP = 2

// LevelForXP returns the level for a cumulative XP total.
// Levels start at 1 and never go below it, even for negative input.
func LevelForXP(totalXP int) int {
	if totalXP < 0 {
		return 1
	}
	return totalXP/XPPerLevel + 1
}

// XPToNextLevel returns how much XP remains until the next level.
// The result is always in [1, XPPerLevel].
func XPToNextLevel(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return LevelForXP(totalXP)*XPPerLevel - totalXP
}

// LevelProgressPercent returns progress through the current level, 0-100.
func LevelProgressPercent(totalXP int) float64 {
	if totalXP < 0 {
		totalXP = 0
	}
	return float64(totalXP%XPPerLevel) / float64(XPPerLevel) * 100
}
