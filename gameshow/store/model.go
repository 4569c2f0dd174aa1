// gameshow/store/model.go
package store

import "time"

// BuzzerMessageRef identifies one buzzer prompt message on the platform.
// Channel doubles as the contestant's DM channel when prompts are reissued
// for a new round.
type BuzzerMessageRef struct {
	Channel   string `bson:"channel" json:"channel"`
	Timestamp string `bson:"ts" json:"ts"`
}

// Game is the single persisted record of a team's in-progress trivia session.
// Exactly zero or one document exists per team; the team id is the document
// key.
type Game struct {
	TeamID        string `bson:"_id" json:"teamId"`
	ChannelID     string `bson:"channel_id" json:"channelId"`
	CreatedUserID string `bson:"created_user_id" json:"createdUserId"`

	// Scores maps contestant user ids to point totals. Keys are fixed at
	// creation; later actions never add or remove players.
	Scores map[string]int `bson:"scores" json:"scores"`

	// BuzzedUser is the contestant who won the current round's buzz, or ""
	// when nobody has buzzed since the last reset.
	BuzzedUser string `bson:"buzzed_user" json:"buzzedUser,omitempty"`

	// BuzzerMessages lists the currently outstanding buzzer prompts, one per
	// contestant DM.
	BuzzerMessages []BuzzerMessageRef `bson:"buzzer_messages,omitempty" json:"buzzerMessagesData,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
