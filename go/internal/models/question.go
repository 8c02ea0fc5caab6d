package models

// Question represents a trivia question served after a white-code scan
type Question struct {
	ID      int    `json:"id"`
	Text    string `json:"text"`
	OptionA string `json:"option_a"`
	OptionB string `json:"option_b"`
	OptionC string `json:"option_c"`

	// CorrectAnswer is the option tag ('a', 'b' or 'c'); never serialized
	// to players.
	CorrectAnswer string `json:"-"`

	// LetterToReveal is the password letter unlocked by a correct answer.
	LetterToReveal string `json:"-"`
}
