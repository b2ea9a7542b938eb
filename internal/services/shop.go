package services

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/estuda-app/estuda-backend/internal/apierr"
	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/repos"
	"github.com/estuda-app/estuda-backend/internal/types"
)

type PurchaseResult struct {
	Item      types.ShopItem `json:"item"`
	TotalXP   int            `json:"total_xp"`
	Inventory []string       `json:"inventory"`
}

type ShopService interface {
	SeedCatalog(ctx context.Context, path string) error
	ListItems(ctx context.Context) ([]types.ShopItem, error)
	BuyItem(ctx context.Context, userID uuid.UUID, itemID string) (*PurchaseResult, error)
}

type shopService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	shopItemRepo repos.ShopItemRepo
}

func NewShopService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	shopItemRepo repos.ShopItemRepo,
) ShopService {
	serviceLog := log.With("service", "ShopService")
	return &shopService{
		db:           db,
		log:          serviceLog,
		userRepo:     userRepo,
		shopItemRepo: shopItemRepo,
	}
}

// SeedCatalog loads the cosmetic catalog from a yaml file and reconciles
// it into the shop_item table at boot.
func (s *shopService) SeedCatalog(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("Failed to read shop catalog: %w", err)
	}
	var doc struct {
		Items []types.ShopItem `yaml:"items"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("Failed to parse shop catalog: %w", err)
	}
	if err := s.shopItemRepo.Upsert(ctx, nil, doc.Items); err != nil {
		return fmt.Errorf("Failed to seed shop catalog: %w", err)
	}
	s.log.Info("Shop catalog seeded", "items", len(doc.Items))
	return nil
}

func (s *shopService) ListItems(ctx context.Context) ([]types.ShopItem, error) {
	return s.shopItemRepo.List(ctx, nil)
}

// BuyItem spends total_xp. The spend is a conditional update so the
// balance can never go negative, even under concurrent purchases.
func (s *shopService) BuyItem(ctx context.Context, userID uuid.UUID, itemID string) (*PurchaseResult, error) {
	item, err := s.shopItemRepo.GetByID(ctx, nil, itemID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load shop item: %w", err)
	}
	if item == nil {
		return nil, apierr.NotFound("shop item not found")
	}

	var result PurchaseResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, uErr := s.userRepo.GetByIDForUpdate(ctx, tx, userID)
		if uErr != nil {
			return fmt.Errorf("Failed to lock user row: %w", uErr)
		}
		if user == nil {
			return apierr.NotFound("user not found")
		}

		inventory := user.InventoryList()
		for _, owned := range inventory {
			if owned == item.ID {
				return apierr.Conflict(apierr.CodeConflict, "item already owned")
			}
		}

		spent, spErr := s.userRepo.SpendTotalXP(ctx, tx, userID, item.Price)
		if spErr != nil {
			return fmt.Errorf("Failed to spend xp: %w", spErr)
		}
		if !spent {
			return apierr.New(http.StatusPaymentRequired, apierr.CodeInsufficientXP, fmt.Errorf("not enough xp for %s", item.ID))
		}

		inventory = append(inventory, item.ID)
		user.SetInventoryList(inventory)
		if upErr := s.userRepo.UpdateFields(ctx, tx, userID, map[string]interface{}{"inventory": user.Inventory}); upErr != nil {
			return fmt.Errorf("Failed to update inventory: %w", upErr)
		}

		result = PurchaseResult{
			Item:      *item,
			TotalXP:   user.TotalXP - item.Price,
			Inventory: inventory,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Shop item purchased", "user_id", userID, "item_id", itemID, "price", item.Price)
	return &result, nil
}
