package services

import (
	"context"
	"testing"

	"github.com/estuda-app/estuda-backend/internal/apierr"
	"github.com/estuda-app/estuda-backend/internal/repos"
)

func TestWeeklyGoalDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "lia", nil)

	view, err := env.goalService.GetWeeklyGoals(ctx, user.ID)
	if err != nil {
		t.Fatalf("get goals: %v", err)
	}
	if view.XPGoal != repos.DefaultXPGoal || view.MinutesGoal != repos.DefaultMinutesGoal || view.ActivitiesGoal != repos.DefaultActivitiesGoal {
		t.Fatalf("targets = %d/%d/%d, want defaults %d/%d/%d",
			view.XPGoal, view.MinutesGoal, view.ActivitiesGoal,
			repos.DefaultXPGoal, repos.DefaultMinutesGoal, repos.DefaultActivitiesGoal)
	}
	if view.XPProgress != 0 || view.MinutesProgress != 0 || view.ActivitiesProgress != 0 {
		t.Fatalf("fresh week progress = %d/%d/%d, want zero", view.XPProgress, view.MinutesProgress, view.ActivitiesProgress)
	}
}

func TestWeeklyGoalProgressFollowsCompletions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "marcos", nil)

	activity := env.createActivity(t, user.ID, ActivityInput{Title: "Geometria", Difficulty: 3, EstimatedTime: 30})
	result, err := env.activityService.CompleteActivity(ctx, user.ID, activity.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	view, err := env.goalService.GetWeeklyGoals(ctx, user.ID)
	if err != nil {
		t.Fatalf("get goals: %v", err)
	}
	if view.XPProgress != result.XPEarned {
		t.Fatalf("xp progress = %d, want %d", view.XPProgress, result.XPEarned)
	}
	if view.MinutesProgress != 30 || view.ActivitiesProgress != 1 {
		t.Fatalf("progress = %d min / %d activities, want 30 / 1", view.MinutesProgress, view.ActivitiesProgress)
	}
}

func TestUpdateWeeklyGoals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "nina", nil)

	xp := 800
	view, err := env.goalService.UpdateWeeklyGoals(ctx, user.ID, WeeklyGoalTargets{XPGoal: &xp})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if view.XPGoal != 800 {
		t.Fatalf("xp goal = %d, want 800", view.XPGoal)
	}
	if view.MinutesGoal != repos.DefaultMinutesGoal {
		t.Fatalf("minutes goal = %d, want untouched default", view.MinutesGoal)
	}

	bad := 0
	_, err = env.goalService.UpdateWeeklyGoals(ctx, user.ID, WeeklyGoalTargets{MinutesGoal: &bad})
	ae := apierr.From(err)
	if ae == nil || ae.Code != apierr.CodeInvalidArgument {
		t.Fatalf("err = %v, want code %s", err, apierr.CodeInvalidArgument)
	}
}
