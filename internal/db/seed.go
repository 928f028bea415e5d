package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedInterests = []string{
	"chess", "hiking", "poetry", "gaming", "cooking", "astronomy",
	"photography", "running", "painting", "music", "travel", "reading",
}

var seedCareers = []string{
	"engineer", "teacher", "designer", "nurse", "writer", "student",
}

var seedMoods = []string{
	"anxious", "calm", "curious", "knowledgeable", "lonely", "friendly",
	"motivated", "ambitious", "excited", "supportive",
}

// SeedTestData resets the database and populates it with demo users and
// match history.
//
// Behavior:
//  1. Clears existing data in `users`, `action_events` and `matches`.
//  2. Creates 30 users with hashed passwords, random interest sets,
//     careers, moods and recent activity.
//  3. Generates ~60 historical matches with scores derived from the
//     actual profiles.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"matches", "action_events", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE matches AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE action_events AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('users', 'matches', 'action_events')")
	}

	log.Println("Cleared existing data")

	// --- Seed Users ---
	for i := 1; i <= 30; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		// 2-4 interests each; a couple of users get none to exercise the
		// pool filter
		interests := []string{}
		if i%10 != 0 {
			n := 2 + r.Intn(3)
			perm := r.Perm(len(seedInterests))
			for _, idx := range perm[:n] {
				interests = append(interests, seedInterests[idx])
			}
		}

		user := User{
			Username:     fmt.Sprintf("whisperer%d", i),
			Email:        fmt.Sprintf("whisperer%d@example.com", i),
			PasswordHash: string(hash),
			Interests:    interests,
			Career:       seedCareers[r.Intn(len(seedCareers))],
			Mood:         seedMoods[r.Intn(len(seedMoods))],
			LastActiveAt: time.Now().Add(-time.Duration(r.Intn(72)) * time.Hour),
		}

		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	log.Println("Seeded 30 users.")

	// --- Seed Matches (~60) ---
	var users []User
	if err := db.Find(&users).Error; err != nil {
		return fmt.Errorf("failed to load seeded users: %w", err)
	}

	for i := 0; i < 60; i++ {
		a := users[r.Intn(len(users))]
		b := users[r.Intn(len(users))]
		if a.ID == b.ID {
			continue
		}

		shared := sharedInterests(a.Interests, b.Interests)
		match := Match{
			UserID:          a.ID,
			MatchedUserID:   b.ID,
			Score:           float64(3 * len(shared)),
			SharedInterests: shared,
			CreatedAt:       time.Now().Add(-time.Duration(r.Intn(14*24)) * time.Hour),
		}
		if err := db.Create(&match).Error; err != nil {
			return fmt.Errorf("failed to seed match: %w", err)
		}
	}

	return nil
}

// SeedMinimalTestData inserts a small deterministic dataset for tests.
//
// Dataset:
//   - user 1 "ada":  interests [chess, hiking, poetry], engineer, anxious
//   - user 2 "bo":   interests [chess, hiking], engineer, calm
//   - user 3 "cleo": interests [gaming], teacher, curious
//   - user 4 "dev":  no interests (never eligible as a candidate)
//
// Activity recency: bo > cleo > dev > ada.
func SeedMinimalTestData(db *gorm.DB) error {
	for _, table := range []string{"matches", "action_events", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}

	base := time.Now()
	users := []User{
		{ID: 1, Username: "ada", Email: "ada@test.com", PasswordHash: "x",
			Interests: []string{"chess", "hiking", "poetry"}, Career: "engineer", Mood: "anxious",
			LastActiveAt: base.Add(-3 * time.Hour)},
		{ID: 2, Username: "bo", Email: "bo@test.com", PasswordHash: "x",
			Interests: []string{"chess", "hiking"}, Career: "engineer", Mood: "calm",
			LastActiveAt: base},
		{ID: 3, Username: "cleo", Email: "cleo@test.com", PasswordHash: "x",
			Interests: []string{"gaming"}, Career: "teacher", Mood: "curious",
			LastActiveAt: base.Add(-time.Hour)},
		{ID: 4, Username: "dev", Email: "dev@test.com", PasswordHash: "x",
			Interests: []string{}, Career: "writer", Mood: "lonely",
			LastActiveAt: base.Add(-2 * time.Hour)},
	}
	return db.Create(&users).Error
}

func sharedInterests(a, b []string) []string {
	theirs := make(map[string]struct{}, len(b))
	for _, interest := range b {
		theirs[interest] = struct{}{}
	}
	shared := []string{}
	for _, interest := range a {
		if _, ok := theirs[interest]; ok {
			shared = append(shared, interest)
		}
	}
	return shared
}
