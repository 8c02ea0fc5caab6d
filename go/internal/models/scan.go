package models

import "time"

// PlayerScan records a single scan of a QR code by a player. The most
// recent scan of a (player, code) pair drives the reuse cooldown.
type PlayerScan struct {
	ID       int       `json:"id"`
	PlayerID int       `json:"player_id"`
	QRCodeID int       `json:"qrcode_id"`
	ScanTime time.Time `json:"scan_time"`
}

// PlayerAnswer records that a player has been scored on a question.
// A (player, question) pair is answered at most once.
type PlayerAnswer struct {
	ID         int `json:"id"`
	PlayerID   int `json:"player_id"`
	QuestionID int `json:"question_id"`
}
