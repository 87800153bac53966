package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tropharbour-backend/internal/config"
	reviewRepo "tropharbour-backend/internal/domains/review/repository"
	reviewService "tropharbour-backend/internal/domains/review/service"
	tourRepo "tropharbour-backend/internal/domains/tour/repository"
	userRepo "tropharbour-backend/internal/domains/user/repository"
	"tropharbour-backend/internal/infrastructure/database"
	"tropharbour-backend/internal/seed"
	"tropharbour-backend/pkg/cache"
	"tropharbour-backend/pkg/logger"
)

var (
	toursFile   string
	usersFile   string
	reviewsFile string
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Import or delete development data",
}

var dataImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Load tours, users and reviews from JSON exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		files := seed.Files{}
		for _, f := range []struct {
			path string
			dst  *[]byte
		}{
			{toursFile, &files.Tours},
			{usersFile, &files.Users},
			{reviewsFile, &files.Reviews},
		} {
			if f.path == "" {
				continue
			}
			data, err := os.ReadFile(f.path)
			if err != nil {
				return fmt.Errorf("read %s: %w", f.path, err)
			}
			*f.dst = data
		}

		return withMongo(cmd.Context(), func(ctx context.Context, db *database.MongoDB) error {
			tours := tourRepo.NewMongoRepository(db.Collection(database.CollectionTours))
			users := userRepo.NewMongoRepository(db.Collection(database.CollectionUsers))
			reviews := reviewRepo.NewMongoRepository(db.Collection(database.CollectionReviews))
			ratings := reviewService.NewReviewService(reviews, tours, users, cache.Noop{})

			counts, err := seed.NewImporter(tours, users, reviews, ratings).Import(ctx, files)
			if err != nil {
				return err
			}
			logger.Info("Data successfully loaded!", map[string]interface{}{
				"tours":   counts.Tours,
				"users":   counts.Users,
				"reviews": counts.Reviews,
			})
			return nil
		})
	},
}

var dataDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete every tour, user and review",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMongo(cmd.Context(), func(ctx context.Context, db *database.MongoDB) error {
			if err := seed.Delete(ctx, db.DB); err != nil {
				return err
			}
			logger.Info("Data successfully deleted!", map[string]interface{}{})
			return nil
		})
	},
}

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create missing document store indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMongo(cmd.Context(), func(ctx context.Context, db *database.MongoDB) error {
			return database.EnsureIndexes(ctx, db.DB)
		})
	},
}

func init() {
	dataImportCmd.Flags().StringVar(&toursFile, "file", "", "tours JSON export")
	dataImportCmd.Flags().StringVar(&usersFile, "users", "", "users JSON export")
	dataImportCmd.Flags().StringVar(&reviewsFile, "reviews", "", "reviews JSON export")
	_ = dataImportCmd.MarkFlagRequired("file")

	dataCmd.AddCommand(dataImportCmd, dataDeleteCmd)
	rootCmd.AddCommand(dataCmd, indexesCmd)
}

func withMongo(parent context.Context, fn func(ctx context.Context, db *database.MongoDB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, 5*time.Minute)
	defer cancel()

	db, err := database.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close(context.Background())
	}()

	return fn(ctx, db)
}
