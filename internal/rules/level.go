package rules

// xpPerLevel is the flat XP cost of each level.
const xpPerLevel = 50

// Level maps experience points to a level: 0–49 XP is level 1, 50–99 is
// level 2, and so on. Total over non-negative XP, monotonic non-decreasing.
func Level(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/xpPerLevel + 1
}
