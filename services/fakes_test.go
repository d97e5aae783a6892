package services

import (
	"context"
	"strings"
	"sync"

	"quizapp/models"
	"quizapp/repositories"
)

type fakeUserStore struct {
	mu     sync.Mutex
	users  []models.User
	nextID uint
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserStore) FindByID(_ context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserStore) EmailTaken(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

type fakeQuestionStore struct {
	questions []models.Question
	lookups   [][]uint
	nextID    uint
}

func (f *fakeQuestionStore) List(context.Context) ([]models.Question, error) {
	return f.questions, nil
}

func (f *fakeQuestionStore) ListForQuiz(context.Context) ([]models.QuestionPublicView, error) {
	var views []models.QuestionPublicView
	for i := range f.questions {
		views = append(views, f.questions[i].PublicView())
	}
	return views, nil
}

func (f *fakeQuestionStore) Create(_ context.Context, q *models.Question) error {
	f.nextID++
	q.ID = f.nextID
	f.questions = append(f.questions, *q)
	return nil
}

func (f *fakeQuestionStore) Update(_ context.Context, id uint, fields map[string]interface{}) (*models.Question, error) {
	for i := range f.questions {
		q := &f.questions[i]
		if q.ID != id {
			continue
		}
		for column, v := range fields {
			s := v.(string)
			switch column {
			case "question_text":
				q.QuestionText = s
			case "option_a":
				q.OptionA = s
			case "option_b":
				q.OptionB = s
			case "option_c":
				q.OptionC = s
			case "option_d":
				q.OptionD = s
			case "correct_answer":
				q.CorrectAnswer = s
			}
		}
		out := *q
		return &out, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeQuestionStore) Delete(_ context.Context, id uint) error {
	for i := range f.questions {
		if f.questions[i].ID == id {
			f.questions = append(f.questions[:i], f.questions[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeQuestionStore) CorrectAnswers(_ context.Context, ids []uint) (map[uint]string, error) {
	f.lookups = append(f.lookups, ids)
	out := make(map[uint]string)
	for _, id := range ids {
		for _, q := range f.questions {
			if q.ID == id {
				out[id] = q.CorrectAnswer
			}
		}
	}
	return out, nil
}

type fakeResultStore struct {
	results []models.QuizResult
}

func (f *fakeResultStore) Create(_ context.Context, r *models.QuizResult) error {
	r.ID = uint(len(f.results) + 1)
	f.results = append(f.results, *r)
	return nil
}

func (f *fakeResultStore) ListByUser(_ context.Context, userID uint) ([]models.QuizResult, error) {
	var out []models.QuizResult
	for _, r := range f.results {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeResultStore) BestByUser(_ context.Context, userID uint) (*models.QuizResult, error) {
	var best *models.QuizResult
	for i := range f.results {
		r := &f.results[i]
		if r.UserID != userID {
			continue
		}
		if best == nil || r.Score > best.Score || (r.Score == best.Score && r.TimeTaken < best.TimeTaken) {
			best = r
		}
	}
	if best == nil {
		return nil, repositories.ErrNotFound
	}
	return best, nil
}

type recordingPublisher struct {
	userIDs   []uint
	summaries []ResultSummary
}

func (p *recordingPublisher) PublishResult(userID uint, summary ResultSummary) {
	p.userIDs = append(p.userIDs, userID)
	p.summaries = append(p.summaries, summary)
}

func question(id uint, correct string) models.Question {
	return models.Question{
		ID:            id,
		QuestionText:  "What is question " + correct + "?",
		OptionA:       "a",
		OptionB:       "b",
		OptionC:       "c",
		OptionD:       "d",
		CorrectAnswer: correct,
		CreatedBy:     1,
	}
}
