package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estuda-app/estuda-backend/internal/apierr"
	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/progression"
	"github.com/estuda-app/estuda-backend/internal/repos"
	"github.com/estuda-app/estuda-backend/internal/types"
)

type ProfileView struct {
	User      *types.User       `json:"user"`
	LevelInfo progression.Level `json:"level_info"`
	Badges    []BadgeView       `json:"badges"`
}

type OnboardingInput struct {
	DisplayName string   `json:"display_name"`
	City        string   `json:"city"`
	School      string   `json:"school"`
	Grade       string   `json:"grade"`
	Subjects    []string `json:"subjects"`
	CollegePlan string   `json:"college_plan"`
}

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileView, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, fields map[string]interface{}) (*types.User, error)
	CompleteOnboarding(ctx context.Context, userID uuid.UUID, input OnboardingInput) (*types.User, error)
	UpdateSubjects(ctx context.Context, userID uuid.UUID, subjects []string) (*types.User, error)
	UploadAvatar(ctx context.Context, userID uuid.UUID, raw []byte) (*types.User, error)
	SetRival(ctx context.Context, userID uuid.UUID, rivalID *uuid.UUID) (*types.User, error)
	SearchUsers(ctx context.Context, userID uuid.UUID, query string) ([]*types.User, error)
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	badgeService  BadgeService
	avatarService AvatarService
}

func NewUserService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	badgeService BadgeService,
	avatarService AvatarService,
) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		badgeService:  badgeService,
		avatarService: avatarService,
	}
}

func validateDisplayName(name string) error {
	length := utf8.RuneCountInString(name)
	if length < 3 {
		return apierr.Invalid("display_name must have at least 3 characters")
	}
	if length > 20 {
		return apierr.Invalid("display_name must have at most 20 characters")
	}
	return nil
}

func (s *userService) getUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load user: %w", err)
	}
	if user == nil {
		return nil, apierr.NotFound("user not found")
	}
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges, err := s.badgeService.GetBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{
		User:      user,
		LevelInfo: progression.LevelInfo(user.LevelXP),
		Badges:    badges,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, fields map[string]interface{}) (*types.User, error) {
	allowed := map[string]bool{
		"display_name": true, "bio": true, "city": true, "school": true,
		"grade": true, "college_plan": true, "current_course": true,
		"banner": true, "profile_color": true, "frame": true,
		"active_badge": true, "social_links": true,
	}
	updates := map[string]interface{}{}
	for k, v := range fields {
		if allowed[k] {
			updates[k] = v
		}
	}
	if dn, ok := updates["display_name"]; ok {
		name, _ := dn.(string)
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, apierr.Invalid("display_name cannot be empty")
		}
		taken, tErr := s.userRepo.DisplayNameTaken(ctx, nil, name, userID)
		if tErr != nil {
			return nil, fmt.Errorf("Failed to check display name: %w", tErr)
		}
		if taken {
			return nil, apierr.Conflict(apierr.CodeConflict, "display name already taken")
		}
		updates["display_name"] = name
	}
	if err := s.userRepo.UpdateFields(ctx, nil, userID, updates); err != nil {
		return nil, fmt.Errorf("Failed to update profile: %w", err)
	}
	return s.getUser(ctx, userID)
}

func (s *userService) CompleteOnboarding(ctx context.Context, userID uuid.UUID, input OnboardingInput) (*types.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.OnboardingComplete {
		return nil, apierr.Conflict(apierr.CodeConflict, "onboarding already complete")
	}
	displayName := strings.TrimSpace(input.DisplayName)
	if err := validateDisplayName(displayName); err != nil {
		return nil, err
	}
	if len(input.Subjects) == 0 {
		return nil, apierr.Invalid("at least one subject required")
	}
	taken, err := s.userRepo.DisplayNameTaken(ctx, nil, displayName, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to check display name: %w", err)
	}
	if taken {
		return nil, apierr.Conflict(apierr.CodeConflict, "display name already taken")
	}

	user.SetSubjectList(input.Subjects)
	updates := map[string]interface{}{
		"display_name":        displayName,
		"city":                strings.TrimSpace(input.City),
		"school":              strings.TrimSpace(input.School),
		"grade":               strings.TrimSpace(input.Grade),
		"college_plan":        strings.TrimSpace(input.CollegePlan),
		"subjects":            user.Subjects,
		"onboarding_complete": true,
	}
	if err := s.userRepo.UpdateFields(ctx, nil, userID, updates); err != nil {
		return nil, fmt.Errorf("Failed to complete onboarding: %w", err)
	}
	s.log.Info("Onboarding completed", "user_id", userID)
	return s.getUser(ctx, userID)
}

func (s *userService) UpdateSubjects(ctx context.Context, userID uuid.UUID, subjects []string) (*types.User, error) {
	if len(subjects) == 0 {
		return nil, apierr.Invalid("at least one subject required")
	}
	cleaned := make([]string, 0, len(subjects))
	for _, subj := range subjects {
		subj = strings.TrimSpace(subj)
		if utf8.RuneCountInString(subj) < 2 {
			return nil, apierr.Invalid("subject names must have at least 2 characters")
		}
		cleaned = append(cleaned, subj)
	}
	user := &types.User{}
	user.SetSubjectList(cleaned)
	if err := s.userRepo.UpdateFields(ctx, nil, userID, map[string]interface{}{"subjects": user.Subjects}); err != nil {
		return nil, fmt.Errorf("Failed to update subjects: %w", err)
	}
	return s.getUser(ctx, userID)
}

func (s *userService) UploadAvatar(ctx context.Context, userID uuid.UUID, raw []byte) (*types.User, error) {
	if s.avatarService == nil {
		return nil, apierr.Invalid("avatar uploads are not enabled")
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.avatarService.CreateUserAvatarFromImage(ctx, nil, user, raw); err != nil {
		return nil, fmt.Errorf("Failed to process avatar upload: %w", err)
	}
	updates := map[string]interface{}{
		"avatar_path": user.AvatarPath,
		"avatar_url":  user.AvatarURL,
	}
	if err := s.userRepo.UpdateFields(ctx, nil, userID, updates); err != nil {
		return nil, fmt.Errorf("Failed to store avatar reference: %w", err)
	}
	return s.getUser(ctx, userID)
}

func (s *userService) SetRival(ctx context.Context, userID uuid.UUID, rivalID *uuid.UUID) (*types.User, error) {
	if rivalID != nil {
		if *rivalID == userID {
			return nil, apierr.Invalid("cannot set yourself as rival")
		}
		rival, err := s.userRepo.GetByID(ctx, nil, *rivalID)
		if err != nil {
			return nil, fmt.Errorf("Failed to load rival: %w", err)
		}
		if rival == nil {
			return nil, apierr.NotFound("rival user not found")
		}
	}
	if err := s.userRepo.UpdateFields(ctx, nil, userID, map[string]interface{}{"rival_id": rivalID}); err != nil {
		return nil, fmt.Errorf("Failed to set rival: %w", err)
	}
	return s.getUser(ctx, userID)
}

func (s *userService) SearchUsers(ctx context.Context, userID uuid.UUID, query string) ([]*types.User, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, apierr.Invalid("query must be at least 2 characters")
	}
	return s.userRepo.SearchByDisplayName(ctx, nil, query, userID, 20)
}
