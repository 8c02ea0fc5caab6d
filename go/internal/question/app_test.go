package question

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michalkopec1981/saper-gra/go/internal/apperr"
	"github.com/michalkopec1981/saper-gra/go/internal/models"
)

type fakeRepo struct {
	created []models.Question
	deleted []int
}

func (f *fakeRepo) CreateQuestion(_ context.Context, q models.Question) (*models.Question, error) {
	q.ID = len(f.created) + 1
	f.created = append(f.created, q)
	return &q, nil
}

func (f *fakeRepo) ListQuestions(context.Context) ([]models.Question, error) {
	return f.created, nil
}

func (f *fakeRepo) DeleteQuestion(_ context.Context, id int) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestCreateNormalizesFields(t *testing.T) {
	repo := &fakeRepo{}
	app := NewApp(repo)

	q, err := app.Create(context.Background(), CreateRequest{
		Text:           "Stolica Polski?",
		Answers:        []string{"Warszawa", "Kraków", "Gdańsk"},
		CorrectAnswer:  " A ",
		LetterToReveal: "w",
	})
	require.NoError(t, err)
	assert.Equal(t, "a", q.CorrectAnswer)
	assert.Equal(t, "W", q.LetterToReveal)
	assert.Equal(t, "Warszawa", q.OptionA)
	assert.Equal(t, "Gdańsk", q.OptionC)
}

func TestCreateWithTwoAnswers(t *testing.T) {
	app := NewApp(&fakeRepo{})

	q, err := app.Create(context.Background(), CreateRequest{
		Text:          "Tak czy nie?",
		Answers:       []string{"Tak", "Nie"},
		CorrectAnswer: "b",
	})
	require.NoError(t, err)
	assert.Empty(t, q.OptionC)
	assert.Equal(t, "X", q.LetterToReveal)
}

func TestCreateRejectsBadCorrectAnswer(t *testing.T) {
	app := NewApp(&fakeRepo{})

	_, err := app.Create(context.Background(), CreateRequest{
		Text:          "q",
		Answers:       []string{"x", "y"},
		CorrectAnswer: "d",
	})
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.Validation, appErr.Kind)
}

func TestDelete(t *testing.T) {
	repo := &fakeRepo{}
	app := NewApp(repo)

	require.NoError(t, app.Delete(context.Background(), 3))
	assert.Equal(t, []int{3}, repo.deleted)
}
