package progression

const maxLevel = 100

// Rank tier labels by level band.
const (
	RankBronze    = "Bronze"
	RankSilver    = "Silver"
	RankGold      = "Gold"
	RankRuby      = "Ruby"
	RankLegendary = "Legendary Platinum"
)

type Level struct {
	Level       int    `json:"level"`
	CurrentXP   int    `json:"current_xp"`
	NextLevelXP int    `json:"next_level_xp"`
	Rank        string `json:"rank"`
}

// LevelInfo resolves cumulative leveling XP into a level, the XP consumed
// into the current level, and the cost of the next one. The cost of level
// n -> n+1 is (n+1)*100; leveling stops at 100. The stored `level` column is
// a cache of this function, never an input to it.
func LevelInfo(levelXP int) Level {
	level := 0
	remaining := levelXP
	for level < maxLevel && remaining >= (level+1)*100 {
		remaining -= (level + 1) * 100
		level++
	}
	next := 0
	if level < maxLevel {
		next = (level + 1) * 100
	}
	return Level{
		Level:       level,
		CurrentXP:   remaining,
		NextLevelXP: next,
		Rank:        rankFor(level),
	}
}

func rankFor(level int) string {
	switch {
	case level >= 100:
		return RankLegendary
	case level >= 75:
		return RankRuby
	case level >= 50:
		return RankGold
	case level >= 25:
		return RankSilver
	default:
		return RankBronze
	}
}
