// gameshow/testutil/testutil.go

// Package testutil provides in-memory fakes for the store and messaging
// surfaces so service and webhook tests run without MongoDB or Slack.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/gameshow-bot/gameshow-service/gameshow/messages"
	"github.com/gameshow-bot/gameshow-service/gameshow/store"
)

// FakeGameStore is an in-memory GameStore mirroring the Mongo store's
// contract, including the conditional-update semantics of SetBuzzedUser.
type FakeGameStore struct {
	mu    sync.Mutex
	games map[string]*store.Game

	// RaceBuzzer simulates a competing buzz that lands between a read and
	// the conditional update: Get hides this user from the returned copy
	// while the stored document keeps them, so SetBuzzedUser loses.
	RaceBuzzer string
}

// NewFakeGameStore creates an empty fake store.
func NewFakeGameStore() *FakeGameStore {
	return &FakeGameStore{games: make(map[string]*store.Game)}
}

// Seed inserts a game directly, bypassing the conflict check.
func (f *FakeGameStore) Seed(game *store.Game) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games[game.TeamID] = cloneGame(game)
}

// Game returns a copy of the stored document for assertions.
func (f *FakeGameStore) Game(teamID string) (*store.Game, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[teamID]
	if !ok {
		return nil, false
	}
	return cloneGame(game), true
}

func (f *FakeGameStore) Create(ctx context.Context, game *store.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.games[game.TeamID]; ok {
		return fmt.Errorf("%w: %s", store.ErrGameExists, game.TeamID)
	}
	f.games[game.TeamID] = cloneGame(game)
	return nil
}

func (f *FakeGameStore) Get(ctx context.Context, teamID string) (*store.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[teamID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrGameNotFound, teamID)
	}
	clone := cloneGame(game)
	if f.RaceBuzzer != "" && clone.BuzzedUser == f.RaceBuzzer {
		clone.BuzzedUser = ""
	}
	return clone, nil
}

func (f *FakeGameStore) SetBuzzedUser(ctx context.Context, teamID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[teamID]
	if !ok || game.BuzzedUser != "" {
		return fmt.Errorf("%w: team %s", store.ErrAlreadyBuzzed, teamID)
	}
	game.BuzzedUser = userID
	return nil
}

func (f *FakeGameStore) UpdateBuzzerMessages(ctx context.Context, teamID string, refs []store.BuzzerMessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[teamID]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrGameNotFound, teamID)
	}
	game.BuzzerMessages = append([]store.BuzzerMessageRef(nil), refs...)
	return nil
}

func (f *FakeGameStore) ResetRound(ctx context.Context, teamID string, scores map[string]int, refs []store.BuzzerMessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[teamID]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrGameNotFound, teamID)
	}
	game.BuzzedUser = ""
	game.BuzzerMessages = append([]store.BuzzerMessageRef(nil), refs...)
	if scores != nil {
		game.Scores = cloneScores(scores)
	}
	return nil
}

func (f *FakeGameStore) Delete(ctx context.Context, teamID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.games, teamID)
	return nil
}

func cloneGame(game *store.Game) *store.Game {
	clone := *game
	clone.Scores = cloneScores(game.Scores)
	clone.BuzzerMessages = append([]store.BuzzerMessageRef(nil), game.BuzzerMessages...)
	return &clone
}

func cloneScores(scores map[string]int) map[string]int {
	if scores == nil {
		return nil
	}
	clone := make(map[string]int, len(scores))
	for userID, score := range scores {
		clone[userID] = score
	}
	return clone
}

// PostedMessage records one PostMessage call.
type PostedMessage struct {
	Channel   string
	Timestamp string
	Message   *messages.Message
}

// EphemeralMessage records one PostEphemeral call.
type EphemeralMessage struct {
	Channel string
	User    string
	Message *messages.Message
}

// ResponseMessage records one PostResponse call.
type ResponseMessage struct {
	URL     string
	Message *messages.Message
}

// FakeMessenger records every outbound messaging call. DM channels are named
// "D" + user id; message timestamps are a simple counter.
type FakeMessenger struct {
	mu sync.Mutex

	// Members backs ChannelMembers lookups.
	Members map[string][]string
	// FailChannels makes PostMessage fail for specific channels.
	FailChannels map[string]bool

	OpenedIMs  []string
	Posted     []PostedMessage
	Ephemerals []EphemeralMessage
	Deleted    []store.BuzzerMessageRef
	Responses  []ResponseMessage

	nextTS int
}

// NewFakeMessenger creates an empty fake messenger.
func NewFakeMessenger() *FakeMessenger {
	return &FakeMessenger{
		Members:      make(map[string][]string),
		FailChannels: make(map[string]bool),
	}
}

func (f *FakeMessenger) OpenIM(ctx context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.OpenedIMs = append(f.OpenedIMs, userID)
	return "D" + userID, nil
}

func (f *FakeMessenger) PostMessage(ctx context.Context, channelID string, msg *messages.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailChannels[channelID] {
		return "", fmt.Errorf("channel_not_found: %s", channelID)
	}
	f.nextTS++
	ts := fmt.Sprintf("1700000000.%06d", f.nextTS)
	f.Posted = append(f.Posted, PostedMessage{Channel: channelID, Timestamp: ts, Message: msg})
	return ts, nil
}

func (f *FakeMessenger) PostEphemeral(ctx context.Context, channelID, userID string, msg *messages.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Ephemerals = append(f.Ephemerals, EphemeralMessage{Channel: channelID, User: userID, Message: msg})
	return nil
}

func (f *FakeMessenger) DeleteMessage(ctx context.Context, channelID, timestamp string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, store.BuzzerMessageRef{Channel: channelID, Timestamp: timestamp})
	return nil
}

func (f *FakeMessenger) ChannelMembers(ctx context.Context, channelID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	members, ok := f.Members[channelID]
	if !ok {
		return nil, fmt.Errorf("channel_not_found: %s", channelID)
	}
	return members, nil
}

func (f *FakeMessenger) PostResponse(ctx context.Context, responseURL string, msg *messages.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses = append(f.Responses, ResponseMessage{URL: responseURL, Message: msg})
	return nil
}

// LastResponse returns the most recent response-URL message, or nil.
func (f *FakeMessenger) LastResponse() *ResponseMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Responses) == 0 {
		return nil
	}
	return &f.Responses[len(f.Responses)-1]
}
