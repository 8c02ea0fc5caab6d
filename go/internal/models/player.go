package models

// Player represents a registered participant in the current game session
type Player struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Warnings int    `json:"warnings"`

	// RevealedLetters is the append-only set of password letters this
	// player has unlocked, stored uppercase with no separators.
	RevealedLetters string `json:"revealed_letters"`
}
