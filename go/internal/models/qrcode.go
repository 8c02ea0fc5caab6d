package models

// QRCode represents a physical code hung up at the event venue.
// Red codes pay a one-time bonus, white codes serve trivia questions.
type QRCode struct {
	ID             int    `json:"id"`
	CodeIdentifier string `json:"code_identifier"`
	IsRed          bool   `json:"is_red"`

	// ClaimedByPlayerID is set exactly once, when a red code is claimed.
	ClaimedByPlayerID *int `json:"claimed_by_player_id,omitempty"`
}
