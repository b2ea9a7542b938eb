package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estuda-app/estuda-backend/internal/clients/redis"
	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/progression"
	"github.com/estuda-app/estuda-backend/internal/repos"
)

type RankingEntry struct {
	Position    int       `json:"position"`
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Picture     string    `json:"picture"`
	Value       int       `json:"value"`
}

type ClanRankingEntry struct {
	Position int       `json:"position"`
	ClanID   uuid.UUID `json:"clan_id"`
	Name     string    `json:"name"`
	Photo    string    `json:"photo"`
	TotalXP  int       `json:"total_xp"`
	Members  int       `json:"members"`
}

type RankingService interface {
	GlobalDaily(ctx context.Context, userID uuid.UUID, n int) ([]RankingEntry, error)
	Streaks(ctx context.Context, n int) ([]RankingEntry, error)
	Friends(ctx context.Context, userID uuid.UUID) ([]RankingEntry, error)
	Clans(ctx context.Context, n int) ([]ClanRankingEntry, error)
}

type rankingService struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	dailyXPRepo repos.DailyXPRepo
	friendRepo  repos.FriendRepo
	clanRepo    repos.ClanRepo
	leaderboard redis.Leaderboard
}

func NewRankingService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	dailyXPRepo repos.DailyXPRepo,
	friendRepo repos.FriendRepo,
	clanRepo repos.ClanRepo,
	leaderboard redis.Leaderboard,
) RankingService {
	serviceLog := log.With("service", "RankingService")
	return &rankingService{
		db:          db,
		log:         serviceLog,
		userRepo:    userRepo,
		dailyXPRepo: dailyXPRepo,
		friendRepo:  friendRepo,
		clanRepo:    clanRepo,
		leaderboard: leaderboard,
	}
}

// GlobalDaily serves today's leaderboard. The redis sorted set is tried
// first as a hot-path mirror; the ledger table is authoritative and the
// fallback whenever the mirror is cold or unavailable.
func (s *rankingService) GlobalDaily(ctx context.Context, userID uuid.UUID, n int) ([]RankingEntry, error) {
	if n <= 0 {
		n = 50
	}
	today := progression.Today()

	if s.leaderboard != nil {
		if mirrored, err := s.leaderboard.TopDaily(ctx, today, n); err == nil && len(mirrored) > 0 {
			ids := make([]uuid.UUID, 0, len(mirrored))
			for _, e := range mirrored {
				ids = append(ids, e.UserID)
			}
			rows, lErr := s.dailyXPRepo.ListByUsersDate(ctx, nil, ids, today)
			if lErr == nil {
				meta := map[uuid.UUID]struct{ name, picture string }{}
				for _, row := range rows {
					meta[row.UserID] = struct{ name, picture string }{row.DisplayName, row.Picture}
				}
				entries := make([]RankingEntry, 0, len(mirrored))
				for i, e := range mirrored {
					m := meta[e.UserID]
					entries = append(entries, RankingEntry{
						Position:    i + 1,
						UserID:      e.UserID,
						DisplayName: m.name,
						Picture:     m.picture,
						Value:       e.XP,
					})
				}
				return entries, nil
			}
			s.log.Warn("Ledger read for mirrored leaderboard failed, falling back", "error", lErr)
		}
	}

	rows, err := s.dailyXPRepo.TopNByDate(ctx, nil, today, n)
	if err != nil {
		return nil, fmt.Errorf("Failed to read daily leaderboard: %w", err)
	}
	entries := make([]RankingEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, RankingEntry{
			Position:    i + 1,
			UserID:      row.UserID,
			DisplayName: row.DisplayName,
			Picture:     row.Picture,
			Value:       row.XP,
		})
	}
	return entries, nil
}

func (s *rankingService) Streaks(ctx context.Context, n int) ([]RankingEntry, error) {
	if n <= 0 {
		n = 50
	}
	users, err := s.userRepo.ListOnboardedByStreak(ctx, nil, n)
	if err != nil {
		return nil, fmt.Errorf("Failed to read streak ranking: %w", err)
	}
	entries := make([]RankingEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, RankingEntry{
			Position:    i + 1,
			UserID:      u.ID,
			DisplayName: u.DisplayName,
			Picture:     u.AvatarURL,
			Value:       u.Streak,
		})
	}
	return entries, nil
}

func (s *rankingService) Friends(ctx context.Context, userID uuid.UUID) ([]RankingEntry, error) {
	accepted, err := s.friendRepo.ListAcceptedFor(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to list friends: %w", err)
	}
	ids := []uuid.UUID{userID}
	for _, fr := range accepted {
		other := fr.FromUserID
		if other == userID {
			other = fr.ToUserID
		}
		ids = append(ids, other)
	}

	today := progression.Today()
	rows, err := s.dailyXPRepo.ListByUsersDate(ctx, nil, ids, today)
	if err != nil {
		return nil, fmt.Errorf("Failed to read friends leaderboard: %w", err)
	}
	xpByUser := map[uuid.UUID]*RankingEntry{}
	for _, row := range rows {
		xpByUser[row.UserID] = &RankingEntry{
			UserID:      row.UserID,
			DisplayName: row.DisplayName,
			Picture:     row.Picture,
			Value:       row.XP,
		}
	}

	// Friends with no ledger entry today still appear, at zero.
	users, err := s.userRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("Failed to load friend profiles: %w", err)
	}
	entries := make([]RankingEntry, 0, len(users))
	for _, u := range users {
		if e, ok := xpByUser[u.ID]; ok {
			entries = append(entries, *e)
			continue
		}
		entries = append(entries, RankingEntry{
			UserID:      u.ID,
			DisplayName: u.DisplayName,
			Picture:     u.AvatarURL,
		})
	}
	sortRankingEntries(entries)
	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries, nil
}

func sortRankingEntries(entries []RankingEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})
}

func (s *rankingService) Clans(ctx context.Context, n int) ([]ClanRankingEntry, error) {
	if n <= 0 {
		n = 50
	}
	clans, err := s.clanRepo.ListByTotalXP(ctx, nil, n)
	if err != nil {
		return nil, fmt.Errorf("Failed to read clan ranking: %w", err)
	}
	entries := make([]ClanRankingEntry, 0, len(clans))
	for i, c := range clans {
		entries = append(entries, ClanRankingEntry{
			Position: i + 1,
			ClanID:   c.ID,
			Name:     c.Name,
			Photo:    c.Photo,
			TotalXP:  c.TotalXP,
			Members:  len(c.MemberList()),
		})
	}
	return entries, nil
}
