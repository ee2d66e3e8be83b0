package engine

import (
	"testing"

	"pgregory.net/rapid"
)

func TestLevelNeverBelowOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		xp := rapid.IntRange(-1_000, 10_000_000).Draw(rt, "xp")
		if lvl := LevelForXP(xp); lvl < 1 {
			rt.Fatalf("LevelForXP(%d)=%d, want >= 1", xp, lvl)
		}
	})
}

func TestXPToNextLevelInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		xp := rapid.IntRange(0, 10_000_000).Draw(rt, "xp")
		n := XPToNextLevel(xp)
		if n < 1 || n > XPPerLevel {
			rt.Fatalf("XPToNextLevel(%d)=%d, want in [1,%d]", xp, n, XPPerLevel)
		}
		// Adding the remainder lands exactly on the next level boundary.
		if LevelForXP(xp+n) != LevelForXP(xp)+1 {
			rt.Fatalf("xp=%d + toNext=%d did not advance exactly one level", xp, n)
		}
	})
}

func TestLevelMonotone(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.IntRange(0, 1_000_000).Draw(rt, "a")
		b := rapid.IntRange(0, 1_000_000).Draw(rt, "b")
		if a > b {
			a, b = b, a
		}
		if LevelForXP(a) > LevelForXP(b) {
			rt.Fatalf("LevelForXP not monotone: level(%d)=%d > level(%d)=%d", a, LevelForXP(a), b, LevelForXP(b))
		}
	})
}
