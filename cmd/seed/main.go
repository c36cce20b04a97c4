// Package main provides a tool to seed the database with demo content.
//
// It creates one account per membership tier, a newsroom staff account, and
// a handful of articles mixing free and premium sections, so tier gating and
// theme unlocks can be exercised against a fresh database.
//
// Usage:
//
//	DATA_PATH=~/apogee go run ./cmd/seed
//	DATA_PATH=~/apogee go run ./cmd/seed --wipe-themes  # Also clear saved theme choices
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/apogeepress/apogee-server/internal/auth"
	"github.com/apogeepress/apogee-server/internal/domain"
	"github.com/apogeepress/apogee-server/internal/id"
	"github.com/apogeepress/apogee-server/internal/store"
)

var wipeThemes = flag.Bool("wipe-themes", false, "Delete saved theme preferences for seeded users")

// seedPassword is shared by all demo accounts.
const seedPassword = "apogee-demo"

type seedAccount struct {
	email       string
	displayName string
	role        domain.Role
	tier        domain.MembershipTier
}

var seedAccounts = []seedAccount{
	{"admin@apogee.press", "Mission Director", domain.RoleAdmin, domain.TierThree},
	{"editor@apogee.press", "Orbit Desk", domain.RoleEditor, domain.TierTwo},
	{"author@apogee.press", "Staff Writer", domain.RoleAuthor, domain.TierOne},
	{"free@apogee.press", "Free Reader", domain.RoleUser, domain.TierFree},
	{"tier1@apogee.press", "Tier One Reader", domain.RoleUser, domain.TierOne},
	{"tier2@apogee.press", "Tier Two Reader", domain.RoleUser, domain.TierTwo},
	{"tier3@apogee.press", "Tier Three Reader", domain.RoleUser, domain.TierThree},
}

func main() {
	flag.Parse()

	basePath := os.Getenv("DATA_PATH")
	if basePath == "" {
		basePath = os.ExpandEnv("$HOME/apogee")
	}
	dbPath := filepath.Join(basePath, "db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	users := seedUsers(ctx, s)

	author := users["author@apogee.press"]
	if author != nil {
		seedArticles(ctx, s, author.ID)
	}

	seedThemePreferences(ctx, s, users)

	fmt.Println("\nDone. All accounts use the password:", seedPassword)
}

func seedUsers(ctx context.Context, s *store.Store) map[string]*domain.User {
	users := make(map[string]*domain.User, len(seedAccounts))

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	for _, acct := range seedAccounts {
		if existing, err := s.GetUserByEmail(ctx, acct.email); err == nil {
			fmt.Printf("User %s already exists, skipping\n", acct.email)
			users[acct.email] = existing
			continue
		}

		userID, err := id.Generate("user")
		if err != nil {
			log.Fatalf("Failed to generate user ID: %v", err)
		}

		user := &domain.User{
			ID:           userID,
			Email:        acct.email,
			PasswordHash: hash,
			Role:         acct.role,
			Tier:         acct.tier,
			DisplayName:  acct.displayName,
			LastLoginAt:  time.Now(),
		}
		user.InitTimestamps()

		if err := s.CreateUser(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", acct.email, err)
		}

		fmt.Printf("Created %s (%s, %s)\n", acct.email, acct.role, acct.tier)
		users[acct.email] = user
	}

	return users
}

func seedArticles(ctx context.Context, s *store.Store, authorID string) {
	articles := []*domain.Article{
		{
			Slug:    "welcome-to-apogee",
			Title:   "Welcome to Apogee Press",
			Summary: "What we cover and why.",
			Tags:    []string{"editorial"},
			Content: []domain.Block{
				{Kind: domain.BlockHeading, Text: "Hello, space fans", Level: 2},
				{Kind: domain.BlockParagraph, Text: "Apogee Press covers launches, missions, and the business of orbit."},
				{Kind: domain.BlockList, Items: []string{"Launch coverage", "Mission deep dives", "Industry analysis"}},
			},
		},
		{
			Slug:    "heavy-lift-economics",
			Title:   "The Economics of Heavy Lift",
			Summary: "Why bigger rockets keep getting cheaper per kilogram.",
			Tags:    []string{"analysis", "launches"},
			Content: []domain.Block{
				{Kind: domain.BlockParagraph, Text: "Every generation of heavy lift has cut the price of a kilogram to orbit."},
				{Kind: domain.BlockQuote, Text: "Mass to orbit is the whole game.", Attribution: "A launch vehicle engineer"},
				{
					Kind:         domain.BlockPremium,
					RequiredTier: domain.TierOne,
					Payload: &domain.Block{
						Kind: domain.BlockParagraph,
						Text: "Our cost model puts the next-generation price under $900 per kilogram.",
					},
				},
			},
		},
		{
			Slug:    "station-insider",
			Title:   "Inside the Next Commercial Station",
			Summary: "A walkthrough of the habitat module designs.",
			Tags:    []string{"stations"},
			Content: []domain.Block{
				{Kind: domain.BlockParagraph, Text: "Three companies are racing to replace the aging orbital lab."},
				{Kind: domain.BlockDivider},
				{
					Kind:         domain.BlockPremium,
					RequiredTier: domain.TierTwo,
					Payload: &domain.Block{
						Kind:    domain.BlockImage,
						URL:     "https://cdn.apogee.press/station-cutaway.jpg",
						Alt:     "Station habitat cutaway",
						Caption: "Exclusive cutaway of the crew habitat module.",
					},
				},
				{
					Kind:         domain.BlockPremium,
					RequiredTier: domain.TierThree,
					Payload: &domain.Block{
						Kind: domain.BlockParagraph,
						Text: "Sources familiar with the program shared the full crew rotation schedule with us.",
					},
				},
			},
		},
	}

	now := time.Now().UTC()
	for _, article := range articles {
		if _, err := s.GetArticleBySlug(ctx, article.Slug); err == nil {
			fmt.Printf("Article %q already exists, skipping\n", article.Slug)
			continue
		}

		articleID, err := id.Generate("article")
		if err != nil {
			log.Fatalf("Failed to generate article ID: %v", err)
		}

		article.ID = articleID
		article.AuthorID = authorID
		article.Published = true
		publishedAt := now
		article.PublishedAt = &publishedAt
		article.InitTimestamps()

		if err := s.Articles.Create(ctx, article.ID, article); err != nil {
			log.Fatalf("Failed to create article %q: %v", article.Slug, err)
		}

		fmt.Printf("Created article %q (premium: %v)\n", article.Slug, article.HasPremiumContent())
	}
}

func seedThemePreferences(ctx context.Context, s *store.Store, users map[string]*domain.User) {
	// Saved choices that match each account's tier, so the session resolver
	// has something to restore on first load.
	choices := map[string]string{
		"tier1@apogee.press": "apollo",
		"tier2@apogee.press": "nebula",
		"tier3@apogee.press": "deep-field",
	}

	for email, user := range users {
		if *wipeThemes {
			if err := s.DeleteThemePreference(ctx, user.ID); err != nil {
				log.Printf("Failed to clear theme preference for %s: %v", email, err)
			}
			continue
		}

		themeName, ok := choices[email]
		if !ok {
			continue
		}

		pref := &domain.ThemePreference{
			UserID:    user.ID,
			ThemeName: themeName,
			UpdatedAt: time.Now().UTC(),
		}
		if err := s.SetThemePreference(ctx, pref); err != nil {
			log.Printf("Failed to save theme preference for %s: %v", email, err)
			continue
		}
		fmt.Printf("Saved theme %q for %s\n", themeName, email)
	}
}
