package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"sportrent/internal/config"
	"sportrent/internal/models"
	"sportrent/internal/repository"
	"sportrent/internal/security"
)

const (
	adminEmail    = "admin@admin.pl"
	adminPassword = "Admin123!"
)

// Run provisions a default admin account and, when the catalog is empty,
// a handful of demo records. It is idempotent and safe to call on every
// startup.
func Run(ctx context.Context, stores Stores, cfg *config.AppConfig, log zerolog.Logger) error {
	if err := ensureAdmin(ctx, stores.Users, cfg, log); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if err := seedEquipment(ctx, stores.Equipment, log); err != nil {
		return fmt.Errorf("seed equipment: %w", err)
	}
	if err := seedReviews(ctx, stores.Reviews, log); err != nil {
		return fmt.Errorf("seed reviews: %w", err)
	}
	if err := seedMessages(ctx, stores.Messages, log); err != nil {
		return fmt.Errorf("seed messages: %w", err)
	}
	return nil
}

type Stores struct {
	Users     repository.UserStore
	Equipment repository.EquipmentStore
	Reviews   repository.ReviewStore
	Messages  repository.MessageStore
}

func ensureAdmin(ctx context.Context, users repository.UserStore, cfg *config.AppConfig, log zerolog.Logger) error {
	_, err := users.FindAdmin(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := security.HashPassword(adminPassword, cfg.Security.BcryptCost)
	if err != nil {
		return err
	}

	if _, err := users.Create(ctx, models.User{
		FullName:     "Administrator",
		UserName:     "admin",
		Email:        adminEmail,
		PhoneNumber:  "123456789",
		PasswordHash: hash,
		Role:         models.UserRoleAdmin,
	}); err != nil {
		return err
	}

	log.Info().Str("email", adminEmail).Msg("default admin account created")
	return nil
}

func seedEquipment(ctx context.Context, equipment repository.EquipmentStore, log zerolog.Logger) error {
	existing, err := equipment.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	demo := []models.Equipment{
		{
			Name:        "Mountain bike",
			Category:    "Bikes",
			Description: "Hardtail mountain bike with 29\" wheels, suitable for trail and cross-country riding.",
			PricePerDay: 35,
		},
		{
			Name:        "Touring kayak",
			Category:    "Water sports",
			Description: "Single-person touring kayak with paddle and life vest included.",
			PricePerDay: 50,
		},
		{
			Name:        "Snowboard set",
			Category:    "Winter sports",
			Description: "All-mountain snowboard with bindings and boots, sizes 38 to 46.",
			PricePerDay: 45,
		},
		{
			Name:        "Camping tent",
			Category:    "Camping",
			Description: "Four-person dome tent, waterproof up to 3000 mm, sets up in ten minutes.",
			PricePerDay: 25,
		},
	}

	for _, item := range demo {
		if _, err := equipment.Create(ctx, item); err != nil {
			return err
		}
	}

	log.Info().Int("count", len(demo)).Msg("demo equipment seeded")
	return nil
}

func seedReviews(ctx context.Context, reviews repository.ReviewStore, log zerolog.Logger) error {
	existing, err := reviews.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	demo := []models.Review{
		{FullName: "Anna Nowak", Rating: 5, Comment: "Smooth rental process and the bike was in great shape."},
		{FullName: "Tom Baker", Rating: 4, Comment: "Good gear for the price, pickup took a little long."},
	}

	for _, review := range demo {
		if _, err := reviews.Create(ctx, review); err != nil {
			return err
		}
	}

	log.Info().Int("count", len(demo)).Msg("demo reviews seeded")
	return nil
}

func seedMessages(ctx context.Context, messages repository.MessageStore, log zerolog.Logger) error {
	existing, err := messages.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	demo := []models.Message{
		{
			FullName: "Piotr Lewandowski",
			Email:    "piotr@example.com",
			Subject:  "Group discount",
			Content:  "Do you offer discounts for renting six bikes for a weekend?",
		},
	}

	for _, message := range demo {
		if _, err := messages.Create(ctx, message); err != nil {
			return err
		}
	}

	log.Info().Int("count", len(demo)).Msg("demo messages seeded")
	return nil
}
