package models

// GameSetting is a persisted key/value pair of session state.
// Booleans are stored as the strings "True"/"False".
type GameSetting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Setting keys used by the game.
const (
	SettingGameActive   = "game_active"
	SettingPassword     = "password"
	SettingTetrisActive = "tetris_active"
)
