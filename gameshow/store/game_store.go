// gameshow/store/game_store.go
package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Errors returned by the GameStore for the orchestrator to branch on.
var (
	ErrGameExists    = fmt.Errorf("game already exists for team")
	ErrGameNotFound  = fmt.Errorf("no game found for team")
	ErrAlreadyBuzzed = fmt.Errorf("another contestant already buzzed")
)

// GameStore represents the MongoDB data store for game documents, one
// document per team keyed by `_id`.
type GameStore struct {
	collection *mongo.Collection
}

// NewGameStore creates a new GameStore instance.
func NewGameStore(collection *mongo.Collection) *GameStore {
	return &GameStore{
		collection: collection,
	}
}

// Create inserts a new game document. The `_id` key makes duplicate creation
// fail rather than overwrite; that failure is surfaced as ErrGameExists.
func (gs *GameStore) Create(ctx context.Context, game *Game) error {
	_, err := gs.collection.InsertOne(ctx, game)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrGameExists, game.TeamID)
		}
		return fmt.Errorf("failed to create game for team %s: %w", game.TeamID, err)
	}
	return nil
}

// Get retrieves the game document for a team.
func (gs *GameStore) Get(ctx context.Context, teamID string) (*Game, error) {
	var game Game
	filter := bson.M{"_id": teamID}

	err := gs.collection.FindOne(ctx, filter).Decode(&game)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: %s", ErrGameNotFound, teamID)
		}
		return nil, fmt.Errorf("failed to get game for team %s: %w", teamID, err)
	}
	return &game, nil
}

// SetBuzzedUser records the first buzz of a round. The conditional filter on
// an empty buzzed_user is the serialization point for simultaneous buzzes:
// the first successful update wins and every later caller gets
// ErrAlreadyBuzzed.
func (gs *GameStore) SetBuzzedUser(ctx context.Context, teamID, userID string) error {
	filter := bson.M{"_id": teamID, "buzzed_user": ""}
	update := bson.M{"$set": bson.M{"buzzed_user": userID}}

	res, err := gs.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set buzzed user for team %s: %w", teamID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: team %s", ErrAlreadyBuzzed, teamID)
	}
	return nil
}

// UpdateBuzzerMessages replaces the list of outstanding buzzer prompt refs.
func (gs *GameStore) UpdateBuzzerMessages(ctx context.Context, teamID string, refs []BuzzerMessageRef) error {
	filter := bson.M{"_id": teamID}
	update := bson.M{"$set": bson.M{"buzzer_messages": refs}}

	res, err := gs.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update buzzer messages for team %s: %w", teamID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", ErrGameNotFound, teamID)
	}
	return nil
}

// ResetRound clears the buzzed user and replaces the prompt refs in a single
// update. Scores are rewritten only when a non-nil map is passed.
func (gs *GameStore) ResetRound(ctx context.Context, teamID string, scores map[string]int, refs []BuzzerMessageRef) error {
	set := bson.M{
		"buzzed_user":     "",
		"buzzer_messages": refs,
	}
	if scores != nil {
		set["scores"] = scores
	}

	filter := bson.M{"_id": teamID}
	res, err := gs.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to reset round for team %s: %w", teamID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", ErrGameNotFound, teamID)
	}
	return nil
}

// Delete removes the game document for a team. Deleting a missing document
// is not an error; cancellation must be idempotent.
func (gs *GameStore) Delete(ctx context.Context, teamID string) error {
	filter := bson.M{"_id": teamID}
	if _, err := gs.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete game for team %s: %w", teamID, err)
	}
	return nil
}
