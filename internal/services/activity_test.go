package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/estuda-app/estuda-backend/internal/apierr"
	"github.com/estuda-app/estuda-backend/internal/progression"
	"github.com/estuda-app/estuda-backend/internal/types"
)

func TestCompleteActivityAwardsXPAndClearBonus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ana", []string{"Matemática"})

	activity := env.createActivity(t, user.ID, ActivityInput{
		Title:         "Revisar funções",
		Subject:       "Matemática",
		Difficulty:    3,
		EstimatedTime: 30,
	})

	result, err := env.activityService.CompleteActivity(ctx, user.ID, activity.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	// 50 base + 30 duration + 30 difficulty, first day of a new streak,
	// plus the queue-clear bonus for emptying the day's only pending item.
	wantXP := 110 + progression.DayClearBonus
	if result.XPEarned != wantXP {
		t.Fatalf("xp = %d, want %d", result.XPEarned, wantXP)
	}
	if result.Streak != 1 {
		t.Fatalf("streak = %d, want 1", result.Streak)
	}
	if !result.LeveledUp || result.NewLevel != 1 {
		t.Fatalf("level transition = (%v, %d), want (true, 1)", result.LeveledUp, result.NewLevel)
	}

	reloaded := env.reloadUser(t, user.ID)
	if reloaded.LevelXP != wantXP || reloaded.TotalXP != wantXP {
		t.Fatalf("user xp = (%d, %d), want both %d", reloaded.LevelXP, reloaded.TotalXP, wantXP)
	}
	if reloaded.LastActivityDate != progression.Today() {
		t.Fatalf("last activity date = %q, want %q", reloaded.LastActivityDate, progression.Today())
	}

	entry, err := env.dailyXPRepo.GetByUserDate(ctx, nil, user.ID, progression.Today())
	if err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	if entry == nil || entry.XP != wantXP {
		t.Fatalf("ledger entry = %+v, want xp %d", entry, wantXP)
	}

	stored, err := env.activityRepo.GetByIDForUser(ctx, nil, activity.ID, user.ID)
	if err != nil {
		t.Fatalf("reload activity: %v", err)
	}
	if stored.Status != types.ActivityStatusCompleted || stored.XPEarned != wantXP {
		t.Fatalf("activity = (%s, %d), want (completed, %d)", stored.Status, stored.XPEarned, wantXP)
	}
}

func TestCompleteActivityClearBonusOnlyOnEmptyQueue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "bruno", nil)

	first := env.createActivity(t, user.ID, ActivityInput{Title: "Leitura", Difficulty: 3, EstimatedTime: 30})
	second := env.createActivity(t, user.ID, ActivityInput{Title: "Exercícios", Difficulty: 3, EstimatedTime: 30})

	r1, err := env.activityService.CompleteActivity(ctx, user.ID, first.ID)
	if err != nil {
		t.Fatalf("complete first: %v", err)
	}
	if r1.XPEarned != 110 {
		t.Fatalf("first xp = %d, want 110 (no clear bonus with one still pending)", r1.XPEarned)
	}

	r2, err := env.activityService.CompleteActivity(ctx, user.ID, second.ID)
	if err != nil {
		t.Fatalf("complete second: %v", err)
	}
	if r2.XPEarned != 110+progression.DayClearBonus {
		t.Fatalf("second xp = %d, want %d", r2.XPEarned, 110+progression.DayClearBonus)
	}
	if r2.Streak != 1 {
		t.Fatalf("second streak = %d, want 1 (same-day completions count once)", r2.Streak)
	}

	entry, err := env.dailyXPRepo.GetByUserDate(ctx, nil, user.ID, progression.Today())
	if err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	want := r1.XPEarned + r2.XPEarned
	if entry == nil || entry.XP != want {
		t.Fatalf("ledger = %+v, want accumulated %d", entry, want)
	}
}

func TestCompleteActivityTwiceRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "carla", nil)
	activity := env.createActivity(t, user.ID, ActivityInput{Title: "Redação", Difficulty: 2, EstimatedTime: 45})

	if _, err := env.activityService.CompleteActivity(ctx, user.ID, activity.ID); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	before := env.reloadUser(t, user.ID)

	_, err := env.activityService.CompleteActivity(ctx, user.ID, activity.ID)
	ae := apierr.From(err)
	if ae == nil || ae.Code != apierr.CodeAlreadyCompleted {
		t.Fatalf("second complete err = %v, want code %s", err, apierr.CodeAlreadyCompleted)
	}

	after := env.reloadUser(t, user.ID)
	if after.TotalXP != before.TotalXP || after.LevelXP != before.LevelXP {
		t.Fatalf("xp changed on rejected completion: %d -> %d", before.TotalXP, after.TotalXP)
	}
}

func TestCompleteActivityUsesElapsedTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "davi", nil)
	activity := env.createActivity(t, user.ID, ActivityInput{Title: "Simulado", Difficulty: 3, EstimatedTime: 30})

	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC).Format(time.RFC3339)
	end := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC).Format(time.RFC3339)
	if _, err := env.activityService.SetActualTime(ctx, user.ID, activity.ID, &start, &end); err != nil {
		t.Fatalf("set actual time: %v", err)
	}

	result, err := env.activityService.CompleteActivity(ctx, user.ID, activity.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	// 60 elapsed minutes beat the 30 minute estimate: 50 + 60 + 30 + clear bonus.
	want := 140 + progression.DayClearBonus
	if result.XPEarned != want {
		t.Fatalf("xp = %d, want %d", result.XPEarned, want)
	}
}

func TestCompleteActivityFraudGuard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "edu", nil)
	activity := env.createActivity(t, user.ID, ActivityInput{Title: "Maratona", Difficulty: 5, EstimatedTime: 60})

	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC).Format(time.RFC3339)
	end := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC).Add(481 * time.Minute).Format(time.RFC3339)
	if _, err := env.activityService.SetActualTime(ctx, user.ID, activity.ID, &start, &end); err != nil {
		t.Fatalf("set actual time: %v", err)
	}

	_, err := env.activityService.CompleteActivity(ctx, user.ID, activity.ID)
	ae := apierr.From(err)
	if ae == nil || ae.Code != apierr.CodeFraudRejected {
		t.Fatalf("err = %v, want code %s", err, apierr.CodeFraudRejected)
	}

	// The rejection must not roll back the audit row.
	logs, err := env.fraudLogRepo.ListByUser(ctx, nil, user.ID, 10)
	if err != nil {
		t.Fatalf("list fraud logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Reason != progression.FraudReasonDuration {
		t.Fatalf("fraud logs = %+v, want one %s entry", logs, progression.FraudReasonDuration)
	}

	stored, err := env.activityRepo.GetByIDForUser(ctx, nil, activity.ID, user.ID)
	if err != nil {
		t.Fatalf("reload activity: %v", err)
	}
	if stored.Status != types.ActivityStatusPending {
		t.Fatalf("activity status = %s, want still pending", stored.Status)
	}
	if env.reloadUser(t, user.ID).TotalXP != 0 {
		t.Fatal("rejected completion granted xp")
	}
}

func TestCompleteActivityAwardsFirstBadge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "fabi", nil)
	activity := env.createActivity(t, user.ID, ActivityInput{Title: "Vocabulário", Difficulty: 1, EstimatedTime: 15})

	result, err := env.activityService.CompleteActivity(ctx, user.ID, activity.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	found := false
	for _, id := range result.NewBadges {
		if id == "first_activity" {
			found = true
		}
	}
	if !found {
		t.Fatalf("new badges = %v, want first_activity", result.NewBadges)
	}

	ids, err := env.badgeRepo.ListBadgeIDs(ctx, nil, user.ID)
	if err != nil {
		t.Fatalf("list badges: %v", err)
	}
	if len(ids) == 0 || ids[0] != "first_activity" {
		t.Fatalf("stored badges = %v, want first_activity persisted", ids)
	}
}

func TestUpdateCompletedActivityRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "gui", nil)
	activity := env.createActivity(t, user.ID, ActivityInput{Title: "História", Difficulty: 2, EstimatedTime: 30})

	if _, err := env.activityService.CompleteActivity(ctx, user.ID, activity.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	_, err := env.activityService.UpdateActivity(ctx, user.ID, activity.ID, map[string]interface{}{"title": "Editado"})
	ae := apierr.From(err)
	if ae == nil || ae.Code != apierr.CodeAlreadyCompleted {
		t.Fatalf("err = %v, want code %s", err, apierr.CodeAlreadyCompleted)
	}
}

func TestCreateActivityRejectsWeakTitles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "heitor", nil)

	cases := []struct {
		name  string
		title string
	}{
		{"too_short", "abc"},
		{"empty", "   "},
		{"no_vowel", "xyzw"},
		{"keyboard_mash", "xxxxxxx"},
		{"leading_repetition", "aaaa estudo"},
		{"letters_then_digits", "ab1234"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.activityService.CreateActivity(ctx, user.ID, ActivityInput{Title: tc.title, Difficulty: 3})
			ae := apierr.From(err)
			if ae == nil || ae.Code != apierr.CodeInvalidArgument {
				t.Fatalf("title %q: err = %v, want code %s", tc.title, err, apierr.CodeInvalidArgument)
			}
		})
	}
}

func TestCreateActivityRejectsSameTitleToday(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "iara", nil)

	env.createActivity(t, user.ID, ActivityInput{Title: "Revisar texto", Difficulty: 2, EstimatedTime: 20})

	_, err := env.activityService.CreateActivity(ctx, user.ID, ActivityInput{Title: "Revisar texto", Difficulty: 2, EstimatedTime: 20})
	ae := apierr.From(err)
	if ae == nil || ae.Code != apierr.CodeInvalidArgument {
		t.Fatalf("duplicate same-day title err = %v, want code %s", err, apierr.CodeInvalidArgument)
	}

	// A different title on the same day is fine.
	env.createActivity(t, user.ID, ActivityInput{Title: "Revisar resumo", Difficulty: 2, EstimatedTime: 20})
}

func TestCreateActivityRejectsRepeatedTitleInWeek(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "joana", nil)

	// Five same-titled activities spread over the past week; gorm stamps
	// created_at with now, which is inside the 7-day window.
	for day := 1; day <= 5; day++ {
		past := &types.Activity{
			ID:            uuid.New(),
			UserID:        user.ID,
			Title:         "Leitura dirigida",
			Difficulty:    2,
			EstimatedTime: 20,
			Status:        types.ActivityStatusPending,
			Date:          time.Now().UTC().AddDate(0, 0, -day).Format("2006-01-02"),
		}
		if _, err := env.activityRepo.Create(ctx, nil, []*types.Activity{past}); err != nil {
			t.Fatalf("seed activity %d: %v", day, err)
		}
	}

	_, err := env.activityService.CreateActivity(ctx, user.ID, ActivityInput{Title: "Leitura dirigida", Difficulty: 2, EstimatedTime: 20})
	ae := apierr.From(err)
	if ae == nil || ae.Code != apierr.CodeInvalidArgument {
		t.Fatalf("sixth same-title-in-week err = %v, want code %s", err, apierr.CodeInvalidArgument)
	}
}

func TestCompleteActivityDerivesLevelFromXP(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "kadu", nil)

	// Stale level cache: 50 level_xp is still level 0, but the cached
	// column claims 5. The transition must be computed from level_xp.
	if err := env.userRepo.UpdateFields(ctx, nil, user.ID, map[string]interface{}{
		"level_xp": 50,
		"total_xp": 50,
		"level":    5,
	}); err != nil {
		t.Fatalf("seed xp: %v", err)
	}

	activity := env.createActivity(t, user.ID, ActivityInput{Title: "Trigonometria", Difficulty: 3, EstimatedTime: 30})
	result, err := env.activityService.CompleteActivity(ctx, user.ID, activity.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	// 50 + 110 + 75 = 235 level xp crosses the level-1 threshold.
	if !result.LeveledUp || result.NewLevel != 1 {
		t.Fatalf("level transition = (%v, %d), want (true, 1)", result.LeveledUp, result.NewLevel)
	}
	if env.reloadUser(t, user.ID).Level != 1 {
		t.Fatal("level cache not refreshed from level_xp")
	}
}
