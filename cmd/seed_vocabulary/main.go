package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"vocab-quiz/internal/config"
	"vocab-quiz/internal/database"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/dto"
	"vocab-quiz/internal/logger"
	"vocab-quiz/internal/repository"
	"vocab-quiz/internal/starter"
	"vocab-quiz/internal/util"
	"vocab-quiz/internal/validation"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Seeds a user's vocabulary from a JSON word list, or from the built-in starter words when -file is empty.
// Words the user already has (case-insensitive) are skipped.
func main() {
	email := flag.String("email", "", "email of the user that receives the words (required)")
	file := flag.String("file", "", "JSON array of {word, meaning, example}; defaults to the starter words")
	flag.Parse()

	if *email == "" {
		fmt.Println("-email is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		// If logger is not initialized yet, use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	entries, source, err := loadEntries(*file)
	if err != nil {
		log.Fatal("Failed to load seed words", zap.String("source", source), zap.Error(err))
	}
	log.Info("Loaded seed words", zap.String("source", source), zap.Int("count", len(entries)))

	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	inserted, err := seedVocabulary(ctx, db, log, strings.ToLower(strings.TrimSpace(*email)), entries)
	if err != nil {
		log.Fatal("Seeding failed, transaction rolled back", zap.Error(err))
	}
	log.Info("Vocabulary seeding completed", zap.Int("inserted", inserted), zap.Int("skipped", len(entries)-inserted))
}

func loadEntries(path string) ([]starter.Entry, string, error) {
	if path == "" {
		return starter.Entries(), "starter", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, path, err
	}
	defer f.Close()
	entries, err := starter.ReadEntries(f)
	return entries, path, err
}

func seedVocabulary(ctx context.Context, db *sqlx.DB, log *zap.Logger, email string, entries []starter.Entry) (inserted int, err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("Failed to rollback transaction", zap.Error(rbErr))
			}
		} else if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	userRepo := repository.NewSQLXUserRepository(tx)
	vocabRepo := repository.NewSQLXVocabularyRepository(tx)

	user, err := userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return 0, fmt.Errorf("error looking up user %s: %w", email, err)
	}
	if user == nil {
		return 0, fmt.Errorf("no user with email %s", email)
	}

	existing, err := vocabRepo.ListAllByUser(ctx, user.ID)
	if err != nil {
		return 0, fmt.Errorf("error loading existing vocabulary: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, item := range existing {
		seen[strings.ToLower(item.Word)] = true
	}

	validator := validation.NewValidator()
	var items []*domain.VocabularyItem
	for i, e := range entries {
		req := dto.VocabularyRequest{Word: e.Word, Meaning: e.Meaning, Example: e.Example}
		if errs := validator.ValidateVocabulary(&req, fmt.Sprintf("[%d].", i)); len(errs) > 0 {
			log.Warn("Skipping invalid entry", zap.Int("index", i), zap.Error(errs))
			continue
		}
		key := strings.ToLower(req.Word)
		if seen[key] {
			log.Debug("Skipping existing word", zap.String("word", req.Word))
			continue
		}
		seen[key] = true
		item := domain.NewVocabularyItem(user.ID, req.Word, req.Meaning, req.Example)
		item.ID = util.NewULID()
		items = append(items, item)
	}

	if len(items) == 0 {
		return 0, nil
	}
	if err := vocabRepo.CreateBatch(ctx, items); err != nil {
		return 0, fmt.Errorf("error inserting vocabulary: %w", err)
	}
	return len(items), nil
}
