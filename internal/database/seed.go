package database

import (
	"log/slog"

	"github.com/telbinapp/telbin-backend/internal/models"
	"gorm.io/gorm"
)

// SeedMedals holds the default medal ladder. Admins can add tiers above
// Diamond at runtime; the engine only cares about min_points ordering.
var SeedMedals = []models.Medal{
	{MedalID: "iron", Name: "Iron", Emoji: "🔩", MinPoints: 0},
	{MedalID: "bronze", Name: "Bronze", Emoji: "🥉", MinPoints: 1000},
	{MedalID: "silver", Name: "Silver", Emoji: "🥈", MinPoints: 2000},
	{MedalID: "gold", Name: "Gold", Emoji: "🥇", MinPoints: 3000},
	{MedalID: "platinum", Name: "Platinum", Emoji: "💠", MinPoints: 4000},
	{MedalID: "diamond", Name: "Diamond", Emoji: "💎", MinPoints: 5000},
}

var SeedRewards = []models.Reward{
	{RewardID: "eco-sticker-pack", Title: "Eco Sticker Pack", Description: "A pack of recycled-paper stickers", Icon: "🌿", SubmissionsRequired: 5, BonusPoints: 50},
	{RewardID: "recycled-notebook", Title: "Recycled Notebook", Description: "Notebook made from 100% recycled paper", Icon: "📓", SubmissionsRequired: 10, BonusPoints: 100},
	{RewardID: "reusable-tote-bag", Title: "Reusable Tote Bag", Description: "Canvas tote to replace plastic bags", Icon: "👜", SubmissionsRequired: 15, BonusPoints: 150},
	{RewardID: "bee-seed-kit", Title: "Bee-Friendly Seed Kit", Description: "Wildflower seeds for pollinators", Icon: "🐝", SubmissionsRequired: 18, BonusPoints: 175},
	{RewardID: "bamboo-cutlery", Title: "Bamboo Cutlery Set", Description: "Travel cutlery set made of bamboo", Icon: "🥢", SubmissionsRequired: 20, BonusPoints: 200},
	{RewardID: "tree-planted", Title: "Tree Planted", Description: "We plant a tree in your name", Icon: "🌳", SubmissionsRequired: 25, BonusPoints: 250},
	{RewardID: "water-bottle", Title: "Steel Water Bottle", Description: "Insulated stainless steel bottle", Icon: "🍶", SubmissionsRequired: 30, BonusPoints: 300},
	{RewardID: "premium-badge", Title: "Premium TelBin Badge", Description: "Exclusive in-app profile badge", Icon: "🏅", SubmissionsRequired: 50, BonusPoints: 500},
}

var seedConfigs = []models.RemoteConfig{
	{Key: "min_app_version", Value: "1.0.0", Type: "string"},
	{Key: "feed_enabled", Value: "true", Type: "bool"},
	{Key: "points_per_scan", Value: "10", Type: "int"},
	{Key: "onboarding_message", Value: "Scan trash, sort it right, earn points!", Type: "string"},
}

// SeedCatalogs inserts the default medal ladder, reward catalog and
// remote-config keys. Existing rows are left untouched so admin edits
// survive restarts.
func SeedCatalogs(db *gorm.DB) error {
	seeded := 0

	for _, m := range SeedMedals {
		var existing models.Medal
		if err := db.Where("medal_id = ?", m.MedalID).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&m).Error; err != nil {
			return err
		}
		seeded++
	}

	for _, r := range SeedRewards {
		var existing models.Reward
		if err := db.Where("reward_id = ?", r.RewardID).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&r).Error; err != nil {
			return err
		}
		seeded++
	}

	for _, c := range seedConfigs {
		var existing models.RemoteConfig
		if err := db.Where("key = ?", c.Key).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&c).Error; err != nil {
			return err
		}
		seeded++
	}

	if seeded > 0 {
		slog.Info("seeded catalogs", "new", seeded)
	}
	return nil
}
