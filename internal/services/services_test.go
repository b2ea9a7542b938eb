package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/estuda-app/estuda-backend/internal/db"
	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/repos"
	"github.com/estuda-app/estuda-backend/internal/types"
)

// testEnv wires the full service stack against an in-memory sqlite
// database. The repos are dialect-portable, so everything except the
// redis mirror and the avatar renderer runs unchanged in tests.
type testEnv struct {
	db  *gorm.DB
	log *logger.Logger

	userRepo     repos.UserRepo
	activityRepo repos.ActivityRepo
	dailyXPRepo  repos.DailyXPRepo
	fraudLogRepo repos.FraudLogRepo
	clanRepo     repos.ClanRepo
	missionRepo  repos.MissionSetRepo
	goalRepo     repos.WeeklyGoalRepo
	badgeRepo    repos.UserBadgeRepo
	shopItemRepo repos.ShopItemRepo
	friendRepo   repos.FriendRepo

	badgeService    BadgeService
	activityService ActivityService
	missionService  MissionService
	goalService     GoalService
	shopService     ShopService
	userService     UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.MigrateAll(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	env := &testEnv{
		db:           gdb,
		log:          log,
		userRepo:     repos.NewUserRepo(gdb, log),
		activityRepo: repos.NewActivityRepo(gdb, log),
		dailyXPRepo:  repos.NewDailyXPRepo(gdb, log),
		fraudLogRepo: repos.NewFraudLogRepo(gdb, log),
		clanRepo:     repos.NewClanRepo(gdb, log),
		missionRepo:  repos.NewMissionSetRepo(gdb, log),
		goalRepo:     repos.NewWeeklyGoalRepo(gdb, log),
		badgeRepo:    repos.NewUserBadgeRepo(gdb, log),
		shopItemRepo: repos.NewShopItemRepo(gdb, log),
		friendRepo:   repos.NewFriendRepo(gdb, log),
	}
	env.badgeService = NewBadgeService(gdb, log, env.userRepo, env.activityRepo, env.badgeRepo)
	env.activityService = NewActivityService(gdb, log, env.userRepo, env.activityRepo, env.dailyXPRepo, env.fraudLogRepo, env.clanRepo, env.badgeService, nil)
	env.missionService = NewMissionService(gdb, log, env.userRepo, env.activityRepo, env.missionRepo, env.badgeService)
	env.goalService = NewGoalService(gdb, log, env.goalRepo, env.dailyXPRepo, env.activityRepo)
	env.shopService = NewShopService(gdb, log, env.userRepo, env.shopItemRepo)
	env.userService = NewUserService(gdb, log, env.userRepo, env.badgeService, nil)
	return env
}

func (e *testEnv) createUser(t *testing.T, displayName string, subjects []string) *types.User {
	t.Helper()
	user := &types.User{
		ID:          uuid.New(),
		Email:       fmt.Sprintf("%s@example.com", uuid.NewString()),
		Password:    "irrelevant",
		DisplayName: displayName,
	}
	user.SetSubjectList(subjects)
	user.SetInventoryList([]string{})
	if _, err := e.userRepo.Create(context.Background(), nil, []*types.User{user}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) createActivity(t *testing.T, userID uuid.UUID, input ActivityInput) *types.Activity {
	t.Helper()
	activity, err := e.activityService.CreateActivity(context.Background(), userID, input)
	if err != nil {
		t.Fatalf("create activity: %v", err)
	}
	return activity
}

func (e *testEnv) reloadUser(t *testing.T, userID uuid.UUID) *types.User {
	t.Helper()
	user, err := e.userRepo.GetByID(context.Background(), nil, userID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if user == nil {
		t.Fatalf("user %s disappeared", userID)
	}
	return user
}
