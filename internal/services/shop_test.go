package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/estuda-app/estuda-backend/internal/apierr"
)

const testCatalog = `items:
  - item_id: banner_test
    name: Banner de Teste
    type: banner
    rarity: common
    price: 100
    description: Item barato.
  - item_id: frame_test
    name: Moldura de Teste
    type: avatar_frame
    rarity: rare
    price: 500
    description: Item caro.
`

func seedTestCatalog(t *testing.T, env *testEnv) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop_items.yaml")
	if err := os.WriteFile(path, []byte(testCatalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if err := env.shopService.SeedCatalog(context.Background(), path); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
}

func TestSeedCatalogAndList(t *testing.T) {
	env := newTestEnv(t)
	seedTestCatalog(t, env)

	items, err := env.shopService.ListItems(context.Background())
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].ID != "banner_test" || items[1].ID != "frame_test" {
		t.Fatalf("order = %s, %s, want cheapest first", items[0].ID, items[1].ID)
	}

	// Reseeding is idempotent.
	seedTestCatalog(t, env)
	items, err = env.shopService.ListItems(context.Background())
	if err != nil {
		t.Fatalf("list after reseed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items after reseed = %d, want 2", len(items))
	}
}

func TestBuyItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedTestCatalog(t, env)
	user := env.createUser(t, "otavio", nil)
	if err := env.userRepo.UpdateFields(ctx, nil, user.ID, map[string]interface{}{"total_xp": 600}); err != nil {
		t.Fatalf("grant xp: %v", err)
	}

	result, err := env.shopService.BuyItem(ctx, user.ID, "frame_test")
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if result.TotalXP != 100 {
		t.Fatalf("balance = %d, want 100", result.TotalXP)
	}
	if len(result.Inventory) != 1 || result.Inventory[0] != "frame_test" {
		t.Fatalf("inventory = %v, want [frame_test]", result.Inventory)
	}

	_, err = env.shopService.BuyItem(ctx, user.ID, "frame_test")
	ae := apierr.From(err)
	if ae == nil || ae.Code != apierr.CodeConflict {
		t.Fatalf("rebuy err = %v, want code %s", err, apierr.CodeConflict)
	}
}

func TestBuyItemInsufficientXP(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedTestCatalog(t, env)
	user := env.createUser(t, "paula", nil)

	_, err := env.shopService.BuyItem(ctx, user.ID, "banner_test")
	ae := apierr.From(err)
	if ae == nil || ae.Code != apierr.CodeInsufficientXP {
		t.Fatalf("err = %v, want code %s", err, apierr.CodeInsufficientXP)
	}
	if env.reloadUser(t, user.ID).TotalXP != 0 {
		t.Fatal("failed purchase changed balance")
	}

	_, err = env.shopService.BuyItem(ctx, user.ID, "missing_item")
	ae = apierr.From(err)
	if ae == nil || ae.Code != apierr.CodeNotFound {
		t.Fatalf("unknown item err = %v, want code %s", err, apierr.CodeNotFound)
	}
}
