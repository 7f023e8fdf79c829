package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/fmarinoa/el-impostor-game/internal/auth"
	"github.com/fmarinoa/el-impostor-game/internal/events"
	"github.com/fmarinoa/el-impostor-game/internal/metrics"
	"github.com/fmarinoa/el-impostor-game/internal/service"
	"github.com/fmarinoa/el-impostor-game/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	hub := events.NewHub()
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	m := metrics.New()
	rooms := service.NewRoomService(store, hub, tokens, m)

	ts := httptest.NewServer(New(rooms, hub, tokens, m).Handler())
	t.Cleanup(ts.Close)
	return ts
}

// doJSON issues a request with an optional JSON body and bearer token, and
// decodes the JSON response.
func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req, err := http.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode, decoded
}

// createRoom posts a room and returns its join code and the host's token.
func createRoom(t *testing.T, ts *httptest.Server, hostName string) (string, string) {
	t.Helper()

	status, body := doJSON(t, ts, http.MethodPost, "/api/rooms", "", map[string]string{"name": hostName})
	if status != http.StatusCreated {
		t.Fatalf("create room status = %d, body = %v", status, body)
	}
	room := body["room"].(map[string]any)
	return room["code"].(string), body["token"].(string)
}

func TestCreateAndJoinRoom(t *testing.T) {
	ts := newTestServer(t)

	code, token := createRoom(t, ts, "Ana")
	if len(code) != 6 {
		t.Errorf("room code = %q, want 6 characters", code)
	}
	if token == "" {
		t.Error("no token in create response")
	}

	status, body := doJSON(t, ts, http.MethodPost, "/api/rooms/"+code+"/join", "", map[string]string{"name": "Bruno"})
	if status != http.StatusCreated {
		t.Fatalf("join status = %d, body = %v", status, body)
	}
	player := body["player"].(map[string]any)
	if player["name"] != "Bruno" {
		t.Errorf("joined player = %v, want Bruno", player["name"])
	}

	t.Run("duplicate name is a conflict", func(t *testing.T) {
		status, _ := doJSON(t, ts, http.MethodPost, "/api/rooms/"+code+"/join", "", map[string]string{"name": "Bruno"})
		if status != http.StatusConflict {
			t.Errorf("status = %d, want 409", status)
		}
	})

	t.Run("unknown room is not found", func(t *testing.T) {
		status, _ := doJSON(t, ts, http.MethodPost, "/api/rooms/ZZZZZZ/join", "", map[string]string{"name": "Carla"})
		if status != http.StatusNotFound {
			t.Errorf("status = %d, want 404", status)
		}
	})
}

func TestPrivateRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)
	code, _ := createRoom(t, ts, "Ana")

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodPost, "/api/rooms/" + code + "/start"},
		{http.MethodPost, "/api/rooms/" + code + "/voting"},
		{http.MethodPost, "/api/rooms/" + code + "/votes"},
		{http.MethodPost, "/api/rooms/" + code + "/tally"},
		{http.MethodPatch, "/api/rooms/" + code + "/settings"},
		{http.MethodDelete, "/api/rooms/" + code},
	} {
		t.Run(fmt.Sprintf("%s %s", tc.method, tc.path), func(t *testing.T) {
			status, _ := doJSON(t, ts, tc.method, tc.path, "", map[string]string{})
			if status != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", status)
			}
		})
	}
}

func TestNonHostCannotStart(t *testing.T) {
	ts := newTestServer(t)
	code, _ := createRoom(t, ts, "Ana")

	_, body := doJSON(t, ts, http.MethodPost, "/api/rooms/"+code+"/join", "", map[string]string{"name": "Bruno"})
	guestToken := body["token"].(string)

	status, _ := doJSON(t, ts, http.MethodPost, "/api/rooms/"+code+"/start", guestToken,
		map[string]any{"phrases": []string{"frase"}})
	if status != http.StatusForbidden {
		t.Errorf("status = %d, want 403", status)
	}
}

func TestSnapshotHidesPhrases(t *testing.T) {
	ts := newTestServer(t)
	code, hostToken := createRoom(t, ts, "Ana")

	var guestTokens []string
	for _, name := range []string{"Bruno", "Carla", "Diego"} {
		_, body := doJSON(t, ts, http.MethodPost, "/api/rooms/"+code+"/join", "", map[string]string{"name": name})
		guestTokens = append(guestTokens, body["token"].(string))
	}

	status, body := doJSON(t, ts, http.MethodPost, "/api/rooms/"+code+"/start", hostToken,
		map[string]any{"phrases": []string{"la frase secreta"}})
	if status != http.StatusOK {
		t.Fatalf("start status = %d, body = %v", status, body)
	}
	room := body["room"].(map[string]any)
	if room["status"] != "playing" {
		t.Fatalf("room status = %v, want playing", room["status"])
	}
	if _, ok := room["phrases"]; ok {
		t.Error("start response leaks the full phrase list")
	}

	t.Run("anonymous snapshot has no phrase and no roles", func(t *testing.T) {
		status, body := doJSON(t, ts, http.MethodGet, "/api/rooms/"+code, "", nil)
		if status != http.StatusOK {
			t.Fatalf("snapshot status = %d", status)
		}
		if _, ok := body["phrase"]; ok {
			t.Error("phrase leaked to anonymous snapshot")
		}
		for _, p := range body["players"].([]any) {
			if _, ok := p.(map[string]any)["is_impostor"]; ok {
				t.Error("impostor flag leaked to anonymous snapshot")
			}
		}
	})

	t.Run("identified snapshot reveals role and phrase to non-impostors", func(t *testing.T) {
		sawPhrase := 0
		impostors := 0
		for _, token := range append([]string{hostToken}, guestTokens...) {
			status, body := doJSON(t, ts, http.MethodGet, "/api/rooms/"+code, token, nil)
			if status != http.StatusOK {
				t.Fatalf("snapshot status = %d", status)
			}

			// Exactly one player entry carries the caller's own role.
			self := 0
			isImpostor := false
			for _, p := range body["players"].([]any) {
				if flag, ok := p.(map[string]any)["is_impostor"]; ok {
					self++
					isImpostor = flag.(bool)
				}
			}
			if self != 1 {
				t.Fatalf("snapshot exposes %d roles, want 1", self)
			}

			phrase, hasPhrase := body["phrase"]
			if isImpostor {
				impostors++
				if hasPhrase {
					t.Error("phrase revealed to the impostor")
				}
			} else {
				sawPhrase++
				if phrase != "la frase secreta" {
					t.Errorf("phrase = %v, want la frase secreta", phrase)
				}
			}
		}
		if impostors != 1 || sawPhrase != 3 {
			t.Errorf("impostors = %d, phrase viewers = %d, want 1 and 3", impostors, sawPhrase)
		}
	})
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	status, body := doJSON(t, ts, http.MethodGet, "/healthz", "", nil)
	if status != http.StatusOK || body["ok"] != true {
		t.Errorf("healthz = %d %v", status, body)
	}
}
