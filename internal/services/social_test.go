package services

import (
	"context"
	"testing"

	"github.com/estuda-app/estuda-backend/internal/apierr"
	"github.com/estuda-app/estuda-backend/internal/progression"
)

func TestClanLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	clanService := NewClanService(env.db, env.log, env.userRepo, env.clanRepo)

	leader := env.createUser(t, "rafa", nil)
	member := env.createUser(t, "sofia", nil)

	clan, err := clanService.CreateClan(ctx, leader.ID, ClanInput{Name: "Vestibulandos"})
	if err != nil {
		t.Fatalf("create clan: %v", err)
	}
	if env.reloadUser(t, leader.ID).ClanID == nil {
		t.Fatal("leader not assigned to the new clan")
	}

	if _, err := clanService.CreateClan(ctx, member.ID, ClanInput{Name: "vestibulandos"}); apierr.From(err) == nil {
		t.Fatalf("duplicate name err = %v, want conflict", err)
	}

	if _, err := clanService.JoinClan(ctx, member.ID, clan.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	view, err := clanService.GetClan(ctx, clan.ID)
	if err != nil {
		t.Fatalf("get clan: %v", err)
	}
	if len(view.Members) != 2 {
		t.Fatalf("members = %d, want 2", len(view.Members))
	}

	if err := clanService.LeaveClan(ctx, member.ID); err != nil {
		t.Fatalf("member leave: %v", err)
	}
	if err := clanService.LeaveClan(ctx, leader.ID); err != nil {
		t.Fatalf("leader leave: %v", err)
	}
	// Last member out dissolves the clan.
	if _, err := clanService.GetClan(ctx, clan.ID); apierr.From(err) == nil {
		t.Fatalf("dissolved clan err = %v, want not found", err)
	}
}

func TestFriendRequestFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	friendService := NewFriendService(env.db, env.log, env.userRepo, env.friendRepo)

	alice := env.createUser(t, "alice", nil)
	bob := env.createUser(t, "bob", nil)

	request, err := friendService.SendRequest(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := friendService.SendRequest(ctx, alice.ID, alice.ID); apierr.From(err) == nil {
		t.Fatalf("self request err = %v, want rejected", err)
	}
	if _, err := friendService.SendRequest(ctx, bob.ID, alice.ID); apierr.From(err) == nil {
		t.Fatalf("duplicate request err = %v, want rejected", err)
	}

	pending, err := friendService.ListPending(ctx, bob.ID)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].User.ID != alice.ID {
		t.Fatalf("pending = %+v, want request from alice", pending)
	}

	// Only the recipient can accept.
	if _, err := friendService.AcceptRequest(ctx, alice.ID, request.ID); apierr.From(err) == nil {
		t.Fatalf("sender accept err = %v, want rejected", err)
	}
	if _, err := friendService.AcceptRequest(ctx, bob.ID, request.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	friends, err := friendService.ListFriends(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list friends: %v", err)
	}
	if len(friends) != 1 || friends[0].User.ID != bob.ID {
		t.Fatalf("alice friends = %+v, want bob", friends)
	}

	if err := friendService.RemoveFriend(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	friends, err = friendService.ListFriends(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list after remove: %v", err)
	}
	if len(friends) != 0 {
		t.Fatalf("friends after remove = %d, want 0", len(friends))
	}
}

func TestGlobalDailyRankingFromLedger(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rankingService := NewRankingService(env.db, env.log, env.userRepo, env.dailyXPRepo, env.friendRepo, env.clanRepo, nil)

	fast := env.createUser(t, "veloz", nil)
	slow := env.createUser(t, "calmo", nil)
	today := progression.Today()

	if err := env.dailyXPRepo.Accumulate(ctx, nil, fast.ID, today, 300, "veloz", ""); err != nil {
		t.Fatalf("accumulate: %v", err)
	}
	if err := env.dailyXPRepo.Accumulate(ctx, nil, slow.ID, today, 120, "calmo", ""); err != nil {
		t.Fatalf("accumulate: %v", err)
	}

	entries, err := rankingService.GlobalDaily(ctx, fast.ID, 10)
	if err != nil {
		t.Fatalf("global daily: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].UserID != fast.ID || entries[0].Position != 1 || entries[0].Value != 300 {
		t.Fatalf("first entry = %+v, want veloz at 300", entries[0])
	}
	if entries[1].UserID != slow.ID || entries[1].Position != 2 {
		t.Fatalf("second entry = %+v, want calmo", entries[1])
	}
}

func TestFriendsRankingZeroFills(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	friendService := NewFriendService(env.db, env.log, env.userRepo, env.friendRepo)
	rankingService := NewRankingService(env.db, env.log, env.userRepo, env.dailyXPRepo, env.friendRepo, env.clanRepo, nil)

	me := env.createUser(t, "eu", nil)
	friend := env.createUser(t, "amigo", nil)
	request, err := friendService.SendRequest(ctx, me.ID, friend.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := friendService.AcceptRequest(ctx, friend.ID, request.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if err := env.dailyXPRepo.Accumulate(ctx, nil, friend.ID, progression.Today(), 80, "amigo", ""); err != nil {
		t.Fatalf("accumulate: %v", err)
	}

	entries, err := rankingService.Friends(ctx, me.ID)
	if err != nil {
		t.Fatalf("friends ranking: %v", err)
	}
	// Both appear even though only one scored today.
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].UserID != friend.ID || entries[0].Value != 80 {
		t.Fatalf("first = %+v, want amigo at 80", entries[0])
	}
	if entries[1].UserID != me.ID || entries[1].Value != 0 {
		t.Fatalf("second = %+v, want zero-filled self", entries[1])
	}
}

func TestDashboardAggregates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dashboardService := NewDashboardService(env.db, env.log, env.userRepo, env.activityRepo, env.dailyXPRepo, env.goalService, env.missionService)

	user := env.createUser(t, "tati", []string{"Biologia"})
	done := env.createActivity(t, user.ID, ActivityInput{Title: "Citologia", Subject: "Biologia", Difficulty: 3, EstimatedTime: 30})
	env.createActivity(t, user.ID, ActivityInput{Title: "Genética", Subject: "Biologia", Difficulty: 4, EstimatedTime: 45})

	result, err := env.activityService.CompleteActivity(ctx, user.ID, done.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	view, err := dashboardService.GetDashboard(ctx, user.ID)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if view.TodayXP != result.XPEarned {
		t.Fatalf("today xp = %d, want %d", view.TodayXP, result.XPEarned)
	}
	if view.PendingToday != 1 || view.CompletedToday != 1 {
		t.Fatalf("counts = %d pending / %d completed, want 1 / 1", view.PendingToday, view.CompletedToday)
	}
	if len(view.Last7Days) != 7 {
		t.Fatalf("last 7 days = %d points, want 7", len(view.Last7Days))
	}
	if view.Last7Days[6].XP != result.XPEarned {
		t.Fatalf("today point = %+v, want xp %d", view.Last7Days[6], result.XPEarned)
	}
	if len(view.Missions) != 3 {
		t.Fatalf("missions = %d, want 3", len(view.Missions))
	}
	if view.WeeklyGoals == nil || view.WeeklyGoals.ActivitiesProgress != 1 {
		t.Fatalf("weekly goals = %+v, want one completed activity", view.WeeklyGoals)
	}
}
