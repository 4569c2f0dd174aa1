// gameshow/api/handler_test.go
package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	gameshowapi "github.com/gameshow-bot/gameshow-service/gameshow/api"
	"github.com/gameshow-bot/gameshow-service/gameshow/service"
	"github.com/gameshow-bot/gameshow-service/gameshow/store"
	"github.com/gameshow-bot/gameshow-service/gameshow/testutil"
)

const testToken = "test-verification-token"

func newRouter(t *testing.T) (*mux.Router, *testutil.FakeGameStore, *testutil.FakeMessenger) {
	t.Helper()
	games := testutil.NewFakeGameStore()
	slack := testutil.NewFakeMessenger()
	svc := service.NewGameService(games, slack)

	router := mux.NewRouter()
	gameshowapi.NewWebhookHandlers(svc, testToken).RegisterRoutes(router)
	return router, games, slack
}

func postForm(router *mux.Router, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func actionForm(t *testing.T, token, action string) url.Values {
	t.Helper()
	payload := map[string]interface{}{
		"token":        token,
		"response_url": "https://hooks.example.com/response",
		"team":         map[string]string{"id": "T1"},
		"channel":      map[string]string{"id": "C1"},
		"user":         map[string]string{"id": "UA"},
		"actions":      []map[string]string{{"action_id": action}},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}
	return url.Values{"payload": {string(raw)}}
}

func TestRootHandler(t *testing.T) {
	router, _, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if string(body) != "Welcome to Gameshow!" {
		t.Errorf("Unexpected liveness body: %q", body)
	}
}

func TestStartHandlerRejectsBadToken(t *testing.T) {
	router, games, _ := newRouter(t)

	rr := postForm(router, "/start", url.Values{
		"token":   {"wrong-token"},
		"team_id": {"T1"},
	})

	if rr.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if string(body) != "Forbidden" {
		t.Errorf("Expected body %q, got %q", "Forbidden", body)
	}
	if _, ok := games.Game("T1"); ok {
		t.Error("Bad token must not touch the store")
	}
}

func TestStartHandlerCreatesGame(t *testing.T) {
	router, games, slack := newRouter(t)

	form := url.Values{
		"token":        {testToken},
		"response_url": {"https://hooks.example.com/response"},
		"team_id":      {"T1"},
		"channel_id":   {"C1"},
		"user_id":      {"UHOST"},
		"text":         {"<@UA> <@UB>"},
	}

	rr := postForm(router, "/start", form)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	game, ok := games.Game("T1")
	if !ok {
		t.Fatal("Expected game document created")
	}
	if len(game.Scores) != 2 {
		t.Errorf("Unexpected scores: %v", game.Scores)
	}
	if len(slack.Responses) != 1 {
		t.Fatalf("Expected one welcome reply, got %d", len(slack.Responses))
	}

	// The conflict path still acks 200.
	rr = postForm(router, "/start", form)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 on conflict, got %d", rr.Code)
	}
	if len(slack.Responses) != 2 {
		t.Fatalf("Expected an already-started reply, got %d responses", len(slack.Responses))
	}
}

func TestActionHandlerRejectsBadToken(t *testing.T) {
	router, _, _ := newRouter(t)

	rr := postForm(router, "/action", actionForm(t, "wrong-token", "buzz"))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if string(body) != "Forbidden" {
		t.Errorf("Expected body %q, got %q", "Forbidden", body)
	}
}

func TestActionHandlerRejectsMalformedPayload(t *testing.T) {
	router, _, _ := newRouter(t)

	rr := postForm(router, "/action", url.Values{"payload": {"{not json"}})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
}

func TestActionHandlerAcksUnknownAction(t *testing.T) {
	router, _, _ := newRouter(t)

	rr := postForm(router, "/action", actionForm(t, testToken, "definitelyNotAnAction"))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 for unrecognized action, got %d", rr.Code)
	}
}

func TestActionHandlerAcksRecognizedAction(t *testing.T) {
	router, games, _ := newRouter(t)
	games.Seed(&store.Game{
		TeamID:        "T1",
		ChannelID:     "C1",
		CreatedUserID: "UHOST",
		Scores:        map[string]int{"UA": 0},
	})

	rr := postForm(router, "/action", actionForm(t, testToken, "continueGame"))

	// The ack is independent of the detached transition completing.
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
}
