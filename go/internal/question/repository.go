package question

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/michalkopec1981/saper-gra/go/internal/apperr"
	"github.com/michalkopec1981/saper-gra/go/internal/models"
)

// Repository implements question data access.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateQuestion inserts a new trivia question.
func (r *Repository) CreateQuestion(ctx context.Context, q models.Question) (*models.Question, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO questions (text, option_a, option_b, option_c, correct_answer, letter_to_reveal)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		q.Text, q.OptionA, q.OptionB, q.OptionC, q.CorrectAnswer, q.LetterToReveal).
		Scan(&q.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return &q, nil
}

// GetQuestion retrieves a question by ID.
func (r *Repository) GetQuestion(ctx context.Context, id int) (*models.Question, error) {
	var q models.Question
	err := r.db.QueryRowContext(ctx,
		`SELECT id, text, option_a, option_b, option_c, correct_answer, letter_to_reveal
		 FROM questions WHERE id = $1`, id).
		Scan(&q.ID, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.CorrectAnswer, &q.LetterToReveal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFoundf("question %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &q, nil
}

// ListQuestions returns every question, correct answers included;
// this feeds the host console only.
func (r *Repository) ListQuestions(ctx context.Context) ([]models.Question, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, text, option_a, option_b, option_c, correct_answer, letter_to_reveal
		 FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.CorrectAnswer, &q.LetterToReveal); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}
	return questions, nil
}

// DeleteQuestion removes a question by ID.
func (r *Repository) DeleteQuestion(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return nil
}

// RandomUnansweredQuestion picks one question the player has not been
// scored on yet, uniformly at random. Returns nil when none remain.
func (r *Repository) RandomUnansweredQuestion(ctx context.Context, playerID int) (*models.Question, error) {
	var q models.Question
	err := r.db.QueryRowContext(ctx,
		`SELECT q.id, q.text, q.option_a, q.option_b, q.option_c, q.correct_answer, q.letter_to_reveal
		 FROM questions q
		 WHERE q.id NOT IN (SELECT question_id FROM player_answers WHERE player_id = $1)
		 ORDER BY random() LIMIT 1`, playerID).
		Scan(&q.ID, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.CorrectAnswer, &q.LetterToReveal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pick random question: %w", err)
	}
	return &q, nil
}
