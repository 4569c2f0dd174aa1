// gameshow/service/game_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gameshow-bot/gameshow-service/gameshow/messages"
	"github.com/gameshow-bot/gameshow-service/gameshow/store"
)

// GameStore is the persistence surface the orchestrator needs. The Mongo
// implementation lives in gameshow/store; tests substitute an in-memory fake.
type GameStore interface {
	Create(ctx context.Context, game *store.Game) error
	Get(ctx context.Context, teamID string) (*store.Game, error)
	SetBuzzedUser(ctx context.Context, teamID, userID string) error
	UpdateBuzzerMessages(ctx context.Context, teamID string, refs []store.BuzzerMessageRef) error
	ResetRound(ctx context.Context, teamID string, scores map[string]int, refs []store.BuzzerMessageRef) error
	Delete(ctx context.Context, teamID string) error
}

// Messenger is the outbound platform surface the orchestrator needs.
type Messenger interface {
	OpenIM(ctx context.Context, userID string) (string, error)
	PostMessage(ctx context.Context, channelID string, msg *messages.Message) (string, error)
	PostEphemeral(ctx context.Context, channelID, userID string, msg *messages.Message) error
	DeleteMessage(ctx context.Context, channelID, timestamp string) error
	ChannelMembers(ctx context.Context, channelID string) ([]string, error)
	PostResponse(ctx context.Context, responseURL string, msg *messages.Message) error
}

// mentionPattern matches <@USERID|display> and bare <@USERID tokens in the
// start command's free text.
var mentionPattern = regexp.MustCompile(`<@([A-Z0-9]+)`)

type actionFunc func(ctx context.Context, p *ActionPayload) error

// GameService encapsulates the business logic of the trivia game: start
// intake plus the per-action transitions on a team's game document.
type GameService struct {
	store   GameStore
	slack   Messenger
	actions map[string]actionFunc
}

// NewGameService creates a new GameService instance.
func NewGameService(gs GameStore, slack Messenger) *GameService {
	svc := &GameService{
		store: gs,
		slack: slack,
	}
	svc.actions = map[string]actionFunc{
		messages.ActionStartGame:      svc.startGame,
		messages.ActionCancelGame:     svc.cancelGame,
		messages.ActionContinueGame:   svc.continueGame,
		messages.ActionFinishGame:     svc.finishGame,
		messages.ActionBuzz:           svc.buzz,
		messages.ActionAnswerCorrect:  svc.answerCorrect,
		messages.ActionAnswerWrong:    svc.answerWrong,
		messages.ActionAllocatePoints: svc.allocatePoints,
		messages.ActionNextQuestion:   svc.nextQuestion,
	}
	return svc
}

// CreateGame handles start intake: resolve the contestant set, create the
// game document with all scores at zero and reply through the response URL.
// A conflicting document yields the already-started reply and no other side
// effect.
func (svc *GameService) CreateGame(ctx context.Context, req *StartRequest) error {
	contestants := parseMentions(req.Text)
	if len(contestants) == 0 {
		members, err := svc.slack.ChannelMembers(ctx, req.ChannelID)
		if err != nil {
			return fmt.Errorf("failed to resolve contestants for team %s: %w", req.TeamID, err)
		}
		contestants = members
	}

	scores := make(map[string]int, len(contestants))
	for _, userID := range contestants {
		scores[userID] = 0
	}

	game := &store.Game{
		TeamID:        req.TeamID,
		ChannelID:     req.ChannelID,
		CreatedUserID: req.UserID,
		Scores:        scores,
		CreatedAt:     time.Now(),
	}

	if err := svc.store.Create(ctx, game); err != nil {
		if errors.Is(err, store.ErrGameExists) {
			return svc.slack.PostResponse(ctx, req.ResponseURL, messages.GameAlreadyStarted())
		}
		return err
	}

	return svc.slack.PostResponse(ctx, req.ResponseURL, messages.Welcome())
}

// HandleAction dispatches an already-verified action payload. Unrecognized
// identifiers are ignored; the webhook layer acks them regardless.
func (svc *GameService) HandleAction(ctx context.Context, p *ActionPayload) error {
	name := p.ActionName()
	fn, ok := svc.actions[name]
	if !ok {
		log.Printf("INFO: Ignoring unrecognized action %q for team %s.", name, p.Team.ID)
		return nil
	}
	return fn(ctx, p)
}

// parseMentions extracts user ids from explicit mention tokens, preserving
// first-seen order and dropping duplicates.
func parseMentions(text string) []string {
	var users []string
	seen := make(map[string]bool)
	for _, match := range mentionPattern.FindAllStringSubmatch(text, -1) {
		userID := match[1]
		if !seen[userID] {
			seen[userID] = true
			users = append(users, userID)
		}
	}
	return users
}

// getGame loads the team's game document. An absent document is logged and
// reported as nil so the caller can quietly no-op (the game may have been
// cancelled already).
func (svc *GameService) getGame(ctx context.Context, teamID, action string) (*store.Game, error) {
	game, err := svc.store.Get(ctx, teamID)
	if err != nil {
		if errors.Is(err, store.ErrGameNotFound) {
			log.Printf("INFO: No active game for team %s; ignoring %s.", teamID, action)
			return nil, nil
		}
		return nil, err
	}
	return game, nil
}

// startGame broadcasts a buzzer prompt to every contestant's DM channel and
// replies to the host with the opening score sheet.
func (svc *GameService) startGame(ctx context.Context, p *ActionPayload) error {
	game, err := svc.getGame(ctx, p.Team.ID, messages.ActionStartGame)
	if err != nil || game == nil {
		return err
	}

	contestants := make([]string, 0, len(game.Scores))
	for userID := range game.Scores {
		contestants = append(contestants, userID)
	}
	sort.Strings(contestants)

	refs := svc.broadcastBuzzers(ctx, contestants)
	if err := svc.store.UpdateBuzzerMessages(ctx, game.TeamID, refs); err != nil {
		return err
	}

	return svc.slack.PostResponse(ctx, p.ResponseURL, messages.ScoreSheet(game.Scores, messages.StatusStart))
}

// cancelGame deletes every outstanding prompt, removes the game document and
// confirms to the host. Safe to repeat against a missing document.
func (svc *GameService) cancelGame(ctx context.Context, p *ActionPayload) error {
	game, err := svc.getGame(ctx, p.Team.ID, messages.ActionCancelGame)
	if err != nil {
		return err
	}
	if game != nil {
		svc.deleteBuzzers(ctx, game.BuzzerMessages)
	}

	if err := svc.store.Delete(ctx, p.Team.ID); err != nil {
		return err
	}

	return svc.slack.PostResponse(ctx, p.ResponseURL, messages.CancelGame())
}

// continueGame is a purely informational acknowledgement; no mutation.
func (svc *GameService) continueGame(ctx context.Context, p *ActionPayload) error {
	return svc.slack.PostResponse(ctx, p.ResponseURL, messages.GameContinued())
}

// finishGame removes the game document, broadcasts the final score sheet to
// the originating channel and confirms to the host.
func (svc *GameService) finishGame(ctx context.Context, p *ActionPayload) error {
	game, err := svc.getGame(ctx, p.Team.ID, messages.ActionFinishGame)
	if err != nil {
		return err
	}
	if game == nil {
		return svc.slack.PostResponse(ctx, p.ResponseURL, messages.GameFinished())
	}

	svc.deleteBuzzers(ctx, game.BuzzerMessages)

	if err := svc.store.Delete(ctx, game.TeamID); err != nil {
		return err
	}

	if _, err := svc.slack.PostMessage(ctx, game.ChannelID, messages.ScoreSheet(game.Scores, messages.StatusFinish)); err != nil {
		log.Printf("WARN: Failed to broadcast final scores for team %s: %v", game.TeamID, err)
	}

	return svc.slack.PostResponse(ctx, p.ResponseURL, messages.GameFinished())
}

// buzz registers the first buzz of a round. The conditional store update is
// the serialization point: whichever contestant's update lands first wins,
// every other caller gets the already-buzzed reply and no mutation happens.
func (svc *GameService) buzz(ctx context.Context, p *ActionPayload) error {
	game, err := svc.getGame(ctx, p.Team.ID, messages.ActionBuzz)
	if err != nil || game == nil {
		return err
	}

	if game.BuzzedUser != "" {
		return svc.slack.PostResponse(ctx, p.ResponseURL, messages.UserAlreadyBuzzed())
	}

	if err := svc.store.SetBuzzedUser(ctx, game.TeamID, p.User.ID); err != nil {
		if errors.Is(err, store.ErrAlreadyBuzzed) {
			return svc.slack.PostResponse(ctx, p.ResponseURL, messages.UserAlreadyBuzzed())
		}
		return err
	}

	// Take down every live prompt so nobody can buzz late.
	svc.deleteBuzzers(ctx, game.BuzzerMessages)

	if err := svc.slack.PostEphemeral(ctx, game.ChannelID, game.CreatedUserID, messages.BuzzedNotification(p.User.ID)); err != nil {
		log.Printf("WARN: Failed to notify host of buzz for team %s: %v", game.TeamID, err)
	}

	return svc.slack.PostResponse(ctx, p.ResponseURL, messages.UserBuzzedFirst())
}

// answerCorrect awards a single point to the buzzed contestant and resets
// the round.
func (svc *GameService) answerCorrect(ctx context.Context, p *ActionPayload) error {
	return svc.awardPoints(ctx, p, 1)
}

// allocatePoints awards the host-selected point value to the buzzed
// contestant and resets the round.
func (svc *GameService) allocatePoints(ctx context.Context, p *ActionPayload) error {
	return svc.awardPoints(ctx, p, p.SelectedPoints())
}

func (svc *GameService) awardPoints(ctx context.Context, p *ActionPayload, points int) error {
	game, err := svc.getGame(ctx, p.Team.ID, p.ActionName())
	if err != nil || game == nil {
		return err
	}
	if game.BuzzedUser == "" {
		log.Printf("INFO: No buzzed contestant for team %s; ignoring %s.", game.TeamID, p.ActionName())
		return nil
	}

	scores := game.Scores
	if scores == nil {
		scores = make(map[string]int)
	}
	// A missing entry counts as zero.
	scores[game.BuzzedUser] += points

	refs := svc.reissueBuzzers(ctx, game.BuzzerMessages)
	if err := svc.store.ResetRound(ctx, game.TeamID, scores, refs); err != nil {
		return err
	}

	return svc.slack.PostResponse(ctx, p.ResponseURL, messages.ScoreSheet(scores, messages.StatusContinue))
}

// answerWrong resets the round without touching scores.
func (svc *GameService) answerWrong(ctx context.Context, p *ActionPayload) error {
	return svc.resetRound(ctx, p)
}

// nextQuestion resets the round without touching scores.
func (svc *GameService) nextQuestion(ctx context.Context, p *ActionPayload) error {
	return svc.resetRound(ctx, p)
}

func (svc *GameService) resetRound(ctx context.Context, p *ActionPayload) error {
	game, err := svc.getGame(ctx, p.Team.ID, p.ActionName())
	if err != nil || game == nil {
		return err
	}

	refs := svc.reissueBuzzers(ctx, game.BuzzerMessages)
	if err := svc.store.ResetRound(ctx, game.TeamID, nil, refs); err != nil {
		return err
	}

	return svc.slack.PostResponse(ctx, p.ResponseURL, messages.ScoreSheet(game.Scores, messages.StatusWaiting))
}

// broadcastBuzzers opens a DM with each contestant and posts a buzzer prompt
// into it, in parallel. Failed sends are logged and simply absent from the
// returned refs; the fan-out is best-effort.
func (svc *GameService) broadcastBuzzers(ctx context.Context, contestants []string) []store.BuzzerMessageRef {
	results := make([]store.BuzzerMessageRef, len(contestants))

	var g errgroup.Group
	for i, userID := range contestants {
		g.Go(func() error {
			channelID, err := svc.slack.OpenIM(ctx, userID)
			if err != nil {
				return fmt.Errorf("opening IM with %s: %w", userID, err)
			}
			ts, err := svc.slack.PostMessage(ctx, channelID, messages.Buzzer())
			if err != nil {
				return fmt.Errorf("posting buzzer to %s: %w", channelID, err)
			}
			results[i] = store.BuzzerMessageRef{Channel: channelID, Timestamp: ts}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("WARN: Buzzer broadcast incomplete: %v", err)
	}

	return compactRefs(results)
}

// reissueBuzzers replaces the outstanding prompts for a new round: delete
// the old messages, then post a fresh prompt to every recorded DM channel.
func (svc *GameService) reissueBuzzers(ctx context.Context, old []store.BuzzerMessageRef) []store.BuzzerMessageRef {
	svc.deleteBuzzers(ctx, old)

	results := make([]store.BuzzerMessageRef, len(old))

	var g errgroup.Group
	for i, ref := range old {
		channelID := ref.Channel
		g.Go(func() error {
			ts, err := svc.slack.PostMessage(ctx, channelID, messages.Buzzer())
			if err != nil {
				return fmt.Errorf("posting buzzer to %s: %w", channelID, err)
			}
			results[i] = store.BuzzerMessageRef{Channel: channelID, Timestamp: ts}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("WARN: Buzzer reissue incomplete: %v", err)
	}

	return compactRefs(results)
}

// deleteBuzzers deletes every listed prompt message in parallel. Every
// deletion is attempted; the group carries no cancellation, so one failure
// does not stop the rest. Some prompts may already be gone, which is fine.
func (svc *GameService) deleteBuzzers(ctx context.Context, refs []store.BuzzerMessageRef) {
	if len(refs) == 0 {
		return
	}

	var g errgroup.Group
	for _, ref := range refs {
		g.Go(func() error {
			return svc.slack.DeleteMessage(ctx, ref.Channel, ref.Timestamp)
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("WARN: Buzzer cleanup incomplete: %v", err)
	}
}

// compactRefs drops the zero-valued slots left behind by failed sends.
func compactRefs(refs []store.BuzzerMessageRef) []store.BuzzerMessageRef {
	out := make([]store.BuzzerMessageRef, 0, len(refs))
	for _, ref := range refs {
		if ref.Channel != "" && ref.Timestamp != "" {
			out = append(out, ref)
		}
	}
	return out
}
