package services

import (
	"context"
	"testing"

	"github.com/estuda-app/estuda-backend/internal/apierr"
	"github.com/estuda-app/estuda-backend/internal/types"
)

func TestGetMissionsGeneratesFixedDailySet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "helena", []string{"Física"})

	missions, err := env.missionService.GetMissions(ctx, user.ID)
	if err != nil {
		t.Fatalf("get missions: %v", err)
	}
	if len(missions) != 3 {
		t.Fatalf("missions = %d, want 3", len(missions))
	}
	if missions[0].ID != "m1" || missions[1].ID != "m2" || missions[2].ID != "m3" {
		t.Fatalf("mission ids = %s/%s/%s", missions[0].ID, missions[1].ID, missions[2].ID)
	}
	if missions[1].Type != types.MissionTypeSubject || missions[1].Subject != "Física" {
		t.Fatalf("subject mission = %+v, want the user's only subject", missions[1])
	}

	// The set is frozen on first read; a second read must return the same
	// targets and subject pick.
	again, err := env.missionService.GetMissions(ctx, user.ID)
	if err != nil {
		t.Fatalf("get missions again: %v", err)
	}
	for i := range missions {
		if again[i].ID != missions[i].ID || again[i].Subject != missions[i].Subject || again[i].Target != missions[i].Target || again[i].Reward != missions[i].Reward {
			t.Fatalf("regenerated mission %d changed: %+v vs %+v", i, missions[i], again[i])
		}
	}
}

func TestMissionProgressTracksCompletions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "igor", []string{"Matemática"})

	if _, err := env.missionService.GetMissions(ctx, user.ID); err != nil {
		t.Fatalf("generate: %v", err)
	}

	activity := env.createActivity(t, user.ID, ActivityInput{Title: "Funções", Subject: "Matemática", Difficulty: 3, EstimatedTime: 30})
	if _, err := env.activityService.CompleteActivity(ctx, user.ID, activity.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	missions, err := env.missionService.GetMissions(ctx, user.ID)
	if err != nil {
		t.Fatalf("get missions: %v", err)
	}
	if missions[0].Progress != 1 || missions[0].Completed {
		t.Fatalf("m1 = %+v, want progress 1 of 3", missions[0])
	}
	if !missions[1].Completed {
		t.Fatalf("m2 = %+v, want completed after studying its subject", missions[1])
	}
	if missions[2].Progress != 30 || missions[2].Completed {
		t.Fatalf("m3 = %+v, want 30 of 60 minutes", missions[2])
	}
}

func TestSubjectMissionAcceptsAnySubject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "lara", []string{"Física"})

	missions, err := env.missionService.GetMissions(ctx, user.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if missions[1].Subject != "Física" {
		t.Fatalf("subject pick = %q, want Física", missions[1].Subject)
	}

	// The subject mission is a suggestion; studying anything today
	// satisfies it even when the subject differs from the pick.
	activity := env.createActivity(t, user.ID, ActivityInput{Title: "Derivadas", Subject: "Matemática", Difficulty: 3, EstimatedTime: 30})
	if _, err := env.activityService.CompleteActivity(ctx, user.ID, activity.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	missions, err = env.missionService.GetMissions(ctx, user.ID)
	if err != nil {
		t.Fatalf("get missions: %v", err)
	}
	if missions[1].Progress != 1 || !missions[1].Completed {
		t.Fatalf("m2 = %+v, want completed by an off-subject activity", missions[1])
	}
}

func TestClaimMission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "julia", []string{"Química"})

	if _, err := env.missionService.GetMissions(ctx, user.ID); err != nil {
		t.Fatalf("generate: %v", err)
	}
	activity := env.createActivity(t, user.ID, ActivityInput{Title: "Estequiometria", Subject: "Química", Difficulty: 3, EstimatedTime: 30})
	if _, err := env.activityService.CompleteActivity(ctx, user.ID, activity.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	before := env.reloadUser(t, user.ID)

	result, err := env.missionService.ClaimMission(ctx, user.ID, "m2")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if result.XP != 75 {
		t.Fatalf("claim xp = %d, want 75", result.XP)
	}
	after := env.reloadUser(t, user.ID)
	if after.TotalXP != before.TotalXP+75 {
		t.Fatalf("total xp = %d, want %d", after.TotalXP, before.TotalXP+75)
	}

	// Write-once: the same reward can never be granted twice.
	_, err = env.missionService.ClaimMission(ctx, user.ID, "m2")
	ae := apierr.From(err)
	if ae == nil || ae.Code != apierr.CodeAlreadyClaimed {
		t.Fatalf("second claim err = %v, want code %s", err, apierr.CodeAlreadyClaimed)
	}
	if env.reloadUser(t, user.ID).TotalXP != after.TotalXP {
		t.Fatal("double claim granted xp")
	}
}

func TestClaimMissionRequiresCompletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "kaio", nil)

	if _, err := env.missionService.GetMissions(ctx, user.ID); err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err := env.missionService.ClaimMission(ctx, user.ID, "m1")
	ae := apierr.From(err)
	if ae == nil || ae.Code != apierr.CodeNotCompleted {
		t.Fatalf("err = %v, want code %s", err, apierr.CodeNotCompleted)
	}

	_, err = env.missionService.ClaimMission(ctx, user.ID, "m9")
	ae = apierr.From(err)
	if ae == nil || ae.Code != apierr.CodeNotFound {
		t.Fatalf("unknown mission err = %v, want code %s", err, apierr.CodeNotFound)
	}
}
