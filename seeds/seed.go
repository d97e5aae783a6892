package seeds

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"

	"quizapp/models"
)

//go:embed questions.json
var questionsJSON []byte

type UserUpserter interface {
	Upsert(ctx context.Context, user *models.User) error
}

type QuestionSeeder interface {
	ExistsByText(ctx context.Context, text string) (bool, error)
	Create(ctx context.Context, question *models.Question) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

type seedUser struct {
	Name     string
	Email    string
	Password string
}

// The first user authors the seeded questions.
var defaultUsers = []seedUser{
	{Name: "Admin", Email: "admin@example.com", Password: "admin123"},
	{Name: "Demo User", Email: "demo@example.com", Password: "password123"},
}

// Questions returns the bundled demo question set.
func Questions() ([]models.Question, error) {
	var questions []models.Question
	if err := json.Unmarshal(questionsJSON, &questions); err != nil {
		return nil, fmt.Errorf("decode seed questions: %w", err)
	}
	return questions, nil
}

// Run upserts the default accounts and adds any demo question whose text is
// not stored yet. Running it twice changes nothing.
func Run(ctx context.Context, users UserUpserter, questions QuestionSeeder, hasher PasswordHasher) error {
	var authorID uint
	for i, u := range defaultUsers {
		hash, err := hasher.Hash(u.Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Email, err)
		}
		user := &models.User{Name: u.Name, Email: u.Email, Password: hash}
		if err := users.Upsert(ctx, user); err != nil {
			return fmt.Errorf("upsert user %s: %w", u.Email, err)
		}
		if i == 0 {
			authorID = user.ID
		}
		log.Printf("Seeded user %s", u.Email)
	}
	if authorID == 0 {
		return fmt.Errorf("admin user has no id after upsert")
	}

	demo, err := Questions()
	if err != nil {
		return err
	}

	added := 0
	for i := range demo {
		q := demo[i]
		exists, err := questions.ExistsByText(ctx, q.QuestionText)
		if err != nil {
			return fmt.Errorf("look up question %q: %w", q.QuestionText, err)
		}
		if exists {
			continue
		}
		q.CreatedBy = authorID
		if err := questions.Create(ctx, &q); err != nil {
			return fmt.Errorf("create question %q: %w", q.QuestionText, err)
		}
		added++
	}

	log.Printf("Seeding complete: %d of %d demo questions added", added, len(demo))
	return nil
}
