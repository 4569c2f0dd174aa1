// gameshow/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gameshow-bot/gameshow-service/gameshow/service"
	sharedapi "github.com/gameshow-bot/gameshow-service/shared/api"
)

// actionTimeout bounds the detached transition work an acked action runs.
const actionTimeout = 30 * time.Second

// WebhookHandlers holds the orchestrator and the shared secret the platform
// sends with every webhook.
type WebhookHandlers struct {
	GameService       *service.GameService
	VerificationToken string
}

// NewWebhookHandlers is the constructor for the webhook handlers.
func NewWebhookHandlers(gs *service.GameService, verificationToken string) *WebhookHandlers {
	return &WebhookHandlers{
		GameService:       gs,
		VerificationToken: verificationToken,
	}
}

// RegisterRoutes attaches the webhook endpoints to the router.
func (wh *WebhookHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", wh.RootHandler).Methods(http.MethodGet)
	router.HandleFunc("/start", wh.StartHandler).Methods(http.MethodPost)
	router.HandleFunc("/action", wh.ActionHandler).Methods(http.MethodPost)
}

// RootHandler is the liveness endpoint.
// GET /
func (wh *WebhookHandlers) RootHandler(w http.ResponseWriter, r *http.Request) {
	sharedapi.WriteText(w, http.StatusOK, "Welcome to Gameshow!")
}

// StartHandler handles the start-game slash command.
// POST /start
func (wh *WebhookHandlers) StartHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		sharedapi.WriteText(w, http.StatusBadRequest, "Bad Request")
		return
	}

	if r.PostFormValue("token") != wh.VerificationToken {
		sharedapi.WriteForbidden(w)
		return
	}

	req := &service.StartRequest{
		TeamID:      r.PostFormValue("team_id"),
		ChannelID:   r.PostFormValue("channel_id"),
		UserID:      r.PostFormValue("user_id"),
		ResponseURL: r.PostFormValue("response_url"),
		Text:        r.PostFormValue("text"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	// A conflict is answered through the response URL; the webhook itself
	// acks 200 either way so the platform does not retry.
	if err := wh.GameService.CreateGame(ctx, req); err != nil {
		log.Printf("ERROR: Start intake for team %s failed: %v", req.TeamID, err)
	}

	w.WriteHeader(http.StatusOK)
}

// ActionHandler handles interactive action payloads. The webhook is acked as
// soon as the payload is validated; the transition itself runs detached and
// replies through the payload's response URL.
// POST /action
func (wh *WebhookHandlers) ActionHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		sharedapi.WriteText(w, http.StatusBadRequest, "Bad Request")
		return
	}

	var payload service.ActionPayload
	if err := json.Unmarshal([]byte(r.PostFormValue("payload")), &payload); err != nil {
		sharedapi.WriteText(w, http.StatusBadRequest, "Bad Request")
		return
	}

	if payload.Token != wh.VerificationToken {
		sharedapi.WriteForbidden(w)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		// The platform never sees these failures; logging is the only trace.
		if err := wh.GameService.HandleAction(ctx, &payload); err != nil {
			log.Printf("ERROR: Action %q for team %s failed: %v", payload.ActionName(), payload.Team.ID, err)
		}
	}()

	w.WriteHeader(http.StatusOK)
}
