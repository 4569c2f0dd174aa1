// gameshow/messages/catalog.go
package messages

import (
	"fmt"
	"sort"
	"strconv"
)

// Action identifiers carried on the catalog's buttons and selects. The
// orchestrator's dispatch table is keyed by these values.
const (
	ActionStartGame      = "startGame"
	ActionCancelGame     = "cancelGame"
	ActionContinueGame   = "continueGame"
	ActionFinishGame     = "finishGame"
	ActionBuzz           = "buzz"
	ActionAnswerCorrect  = "answerCorrect"
	ActionAnswerWrong    = "answerWrong"
	ActionAllocatePoints = "allocatePoints"
	ActionNextQuestion   = "nextQuestion"
)

// GameStatus selects the header and footer of a score sheet.
type GameStatus string

const (
	StatusStart    GameStatus = "start"
	StatusContinue GameStatus = "continue"
	StatusWaiting  GameStatus = "waiting"
	StatusFinish   GameStatus = "finish"
)

// maxAllocatablePoints bounds the host's point selector.
const maxAllocatablePoints = 5

// Welcome greets the host after a game document was created.
func Welcome() *Message {
	return &Message{
		Blocks: []Block{
			section(plainText("Welcome to Gameshow!")),
			actions(
				button("Start Game", ActionStartGame, "primary"),
				button("Cancel", ActionCancelGame, "danger"),
			),
		},
	}
}

// GameAlreadyStarted tells the host a game document already exists for the
// workspace.
func GameAlreadyStarted() *Message {
	return &Message{
		Blocks: []Block{
			section(plainText("A game has already been started for this workspace. Would you like to keep playing or cancel the game?")),
			actions(
				button("Continue playing", ActionContinueGame, "primary"),
				button("Cancel", ActionCancelGame, "danger"),
			),
		},
	}
}

// Buzzer is the prompt sent to each contestant's DM channel.
func Buzzer() *Message {
	return &Message{
		Blocks: []Block{
			section(plainText("Get ready to answer the next question!")),
			actions(
				button("Buzz!!", ActionBuzz, "primary"),
			),
		},
	}
}

// CancelGame confirms cancellation to the host.
func CancelGame() *Message {
	return &Message{
		ReplaceOriginal: true,
		Blocks: []Block{
			section(mrkdwn("Game cancelled.")),
		},
	}
}

// GameContinued acknowledges the continueGame action.
func GameContinued() *Message {
	return &Message{
		ReplaceOriginal: true,
		Blocks: []Block{
			section(mrkdwn("Game continued!")),
		},
	}
}

// GameFinished confirms the end of a game to the host.
func GameFinished() *Message {
	return &Message{
		ReplaceOriginal: true,
		Blocks: []Block{
			section(mrkdwn("Game finished!")),
		},
	}
}

// UserAlreadyBuzzed notifies a contestant who buzzed second.
func UserAlreadyBuzzed() *Message {
	return &Message{
		ReplaceOriginal: true,
		Blocks: []Block{
			section(plainText("Too late! Someone already buzzed in for this question.")),
		},
	}
}

// UserBuzzedFirst confirms to the winning contestant that their buzz was
// registered first.
func UserBuzzedFirst() *Message {
	return &Message{
		ReplaceOriginal: true,
		Blocks: []Block{
			section(plainText("You buzzed in first! Get ready to answer.")),
		},
	}
}

// BuzzedNotification is the ephemeral message to the host naming who buzzed,
// with the point-allocation controls for the round.
func BuzzedNotification(userID string) *Message {
	options := make([]Option, 0, maxAllocatablePoints)
	for i := 1; i <= maxAllocatablePoints; i++ {
		label := fmt.Sprintf("%d points", i)
		if i == 1 {
			label = "1 point"
		}
		options = append(options, Option{
			Text:  &TextObject{Type: "plain_text", Text: label},
			Value: strconv.Itoa(i),
		})
	}

	return &Message{
		Blocks: []Block{
			section(mrkdwn(fmt.Sprintf("*<@%s>* buzzed in first!", userID))),
			actions(
				Element{
					Type:        "static_select",
					ActionID:    ActionAllocatePoints,
					Placeholder: &TextObject{Type: "plain_text", Text: "Award points"},
					Options:     options,
				},
				button("Correct (+1)", ActionAnswerCorrect, "primary"),
				button("Wrong", ActionAnswerWrong, "danger"),
			),
		},
	}
}

// ScoreSheet renders the current scores for the given status. The rendering
// is deterministic: contestants are ordered by descending score, ties broken
// by ascending user id.
func ScoreSheet(scores map[string]int, status GameStatus) *Message {
	users := make([]string, 0, len(scores))
	for userID := range scores {
		users = append(users, userID)
	}
	sort.Slice(users, func(i, j int) bool {
		if scores[users[i]] != scores[users[j]] {
			return scores[users[i]] > scores[users[j]]
		}
		return users[i] < users[j]
	})

	blocks := make([]Block, 0, len(users)+2)
	blocks = append(blocks, section(plainText(scoreSheetHeader(status))))
	for _, userID := range users {
		blocks = append(blocks, section(mrkdwn(fmt.Sprintf("*<@%s>*: %d", userID, scores[userID]))))
	}
	blocks = append(blocks, scoreSheetFooter(status))

	return &Message{
		ReplaceOriginal: true,
		Blocks:          blocks,
	}
}

func scoreSheetHeader(status GameStatus) string {
	switch status {
	case StatusStart:
		return "A new GameShow has been started for the following users:"
	case StatusWaiting:
		return "Waiting for the next buzz. Current scores:"
	case StatusFinish:
		return "GameShow ended. Here are the final scores:"
	default:
		return "Current scores:"
	}
}

func scoreSheetFooter(status GameStatus) Block {
	if status == StatusFinish {
		return section(plainText("Congratulations to the winner!"))
	}
	return actions(
		button("Next Question", ActionNextQuestion, "primary"),
		button("Finish Game", ActionFinishGame, "danger"),
	)
}
