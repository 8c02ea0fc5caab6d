package question

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/michalkopec1981/saper-gra/go/internal/apperr"
	"github.com/michalkopec1981/saper-gra/go/internal/models"
)

// QuestionsRepository defines what the app layer needs from the repository.
type QuestionsRepository interface {
	CreateQuestion(ctx context.Context, q models.Question) (*models.Question, error)
	ListQuestions(ctx context.Context) ([]models.Question, error)
	DeleteQuestion(ctx context.Context, id int) error
}

// App handles question management for the host console.
type App struct {
	repo QuestionsRepository
}

func NewApp(repo QuestionsRepository) *App {
	return &App{repo: repo}
}

// CreateRequest is a host-submitted question. Answers come as an
// ordered list; the third option is optional.
type CreateRequest struct {
	Text           string   `json:"text" validate:"required"`
	Answers        []string `json:"answers" validate:"required,min=2,max=3"`
	CorrectAnswer  string   `json:"correctAnswer" validate:"required"`
	LetterToReveal string   `json:"letterToReveal"`
}

// Create validates and stores a new question. A missing reveal letter
// falls back to 'X', which never matches a real password character.
func (a *App) Create(ctx context.Context, req CreateRequest) (*models.Question, error) {
	correct := strings.ToLower(strings.TrimSpace(req.CorrectAnswer))
	if correct != "a" && correct != "b" && correct != "c" {
		return nil, apperr.Validationf("correctAnswer must be one of a, b, c")
	}
	letter := strings.ToUpper(strings.TrimSpace(req.LetterToReveal))
	if letter == "" {
		letter = "X"
	}

	q := models.Question{
		Text:           req.Text,
		OptionA:        req.Answers[0],
		OptionB:        req.Answers[1],
		CorrectAnswer:  correct,
		LetterToReveal: letter,
	}
	if len(req.Answers) > 2 {
		q.OptionC = req.Answers[2]
	}

	created, err := a.repo.CreateQuestion(ctx, q)
	if err != nil {
		return nil, err
	}
	log.Info().Int("question_id", created.ID).Msg("question added")
	return created, nil
}

// List returns every question for the host console.
func (a *App) List(ctx context.Context) ([]models.Question, error) {
	return a.repo.ListQuestions(ctx)
}

// Delete removes a question by ID.
func (a *App) Delete(ctx context.Context, id int) error {
	if err := a.repo.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	log.Info().Int("question_id", id).Msg("question deleted")
	return nil
}
