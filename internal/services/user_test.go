package services

import (
	"context"
	"strings"
	"testing"

	"github.com/estuda-app/estuda-backend/internal/apierr"
)

func TestCompleteOnboardingValidatesDisplayName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name        string
		displayName string
	}{
		{"too_short", "ab"},
		{"blank", "   "},
		{"too_long", strings.Repeat("a", 21)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := env.createUser(t, "", nil)
			_, err := env.userService.CompleteOnboarding(ctx, user.ID, OnboardingInput{
				DisplayName: tc.displayName,
				Subjects:    []string{"Matemática"},
			})
			ae := apierr.From(err)
			if ae == nil || ae.Code != apierr.CodeInvalidArgument {
				t.Fatalf("display name %q: err = %v, want code %s", tc.displayName, err, apierr.CodeInvalidArgument)
			}
		})
	}

	user := env.createUser(t, "", nil)
	updated, err := env.userService.CompleteOnboarding(ctx, user.ID, OnboardingInput{
		DisplayName: "valter",
		Subjects:    []string{"Matemática"},
	})
	if err != nil {
		t.Fatalf("onboarding: %v", err)
	}
	if !updated.OnboardingComplete || updated.DisplayName != "valter" {
		t.Fatalf("user = %+v, want onboarded as valter", updated)
	}
}

func TestUpdateSubjectsValidatesNames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "wanda", []string{"História"})

	_, err := env.userService.UpdateSubjects(ctx, user.ID, []string{"Física", "X"})
	ae := apierr.From(err)
	if ae == nil || ae.Code != apierr.CodeInvalidArgument {
		t.Fatalf("one-letter subject err = %v, want code %s", err, apierr.CodeInvalidArgument)
	}
	if got := env.reloadUser(t, user.ID).SubjectList(); len(got) != 1 || got[0] != "História" {
		t.Fatalf("subjects = %v, want unchanged", got)
	}

	updated, err := env.userService.UpdateSubjects(ctx, user.ID, []string{" Física ", "Química"})
	if err != nil {
		t.Fatalf("update subjects: %v", err)
	}
	got := updated.SubjectList()
	if len(got) != 2 || got[0] != "Física" || got[1] != "Química" {
		t.Fatalf("subjects = %v, want trimmed Física and Química", got)
	}
}
