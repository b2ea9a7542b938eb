package progression

import "testing"

func TestLevelInfo(t *testing.T) {
	cases := []struct {
		name        string
		xp          int
		wantLevel   int
		wantCurrent int
		wantNext    int
		wantRank    string
	}{
		{name: "zero", xp: 0, wantLevel: 0, wantCurrent: 0, wantNext: 100, wantRank: RankBronze},
		{name: "just_below_first_level", xp: 99, wantLevel: 0, wantCurrent: 99, wantNext: 100, wantRank: RankBronze},
		{name: "exactly_level_one", xp: 100, wantLevel: 1, wantCurrent: 0, wantNext: 200, wantRank: RankBronze},
		{name: "partway_into_level_two", xp: 350, wantLevel: 2, wantCurrent: 50, wantNext: 300, wantRank: RankBronze},
		{name: "silver_threshold", xp: costThrough(25), wantLevel: 25, wantCurrent: 0, wantNext: 2600, wantRank: RankSilver},
		{name: "gold_threshold", xp: costThrough(50), wantLevel: 50, wantCurrent: 0, wantNext: 5100, wantRank: RankGold},
		{name: "ruby_threshold", xp: costThrough(75), wantLevel: 75, wantCurrent: 0, wantNext: 7600, wantRank: RankRuby},
		{name: "level_cap", xp: costThrough(100) + 5000, wantLevel: 100, wantCurrent: 5000, wantNext: 0, wantRank: RankLegendary},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LevelInfo(tc.xp)
			if got.Level != tc.wantLevel || got.CurrentXP != tc.wantCurrent || got.NextLevelXP != tc.wantNext || got.Rank != tc.wantRank {
				t.Fatalf("LevelInfo(%d)=%+v, want level=%d current=%d next=%d rank=%s",
					tc.xp, got, tc.wantLevel, tc.wantCurrent, tc.wantNext, tc.wantRank)
			}
		})
	}
}

// costThrough is the cumulative XP needed to finish level n, i.e. the
// triangular sum of (i+1)*100 for i in [0, n).
func costThrough(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += (i + 1) * 100
	}
	return total
}

func TestLevelInfoRoundTrip(t *testing.T) {
	// Sum of per-level costs plus CurrentXP must reproduce the input below
	// the cap, across level boundaries and mid-level values.
	for xp := 0; xp < costThrough(100); xp += 137 {
		info := LevelInfo(xp)
		if got := costThrough(info.Level) + info.CurrentXP; got != xp {
			t.Fatalf("round trip failed at xp=%d: level=%d current=%d reconstructs %d", xp, info.Level, info.CurrentXP, got)
		}
		if info.Level < 100 && info.CurrentXP >= info.NextLevelXP {
			t.Fatalf("current xp %d not below next level cost %d at xp=%d", info.CurrentXP, info.NextLevelXP, xp)
		}
	}
}
