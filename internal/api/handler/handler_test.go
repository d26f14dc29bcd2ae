package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mentorlink/backend/internal/alumni"
	"mentorlink/backend/internal/api/handler"
	"mentorlink/backend/internal/apperr"
	"mentorlink/backend/internal/auth"
	"mentorlink/backend/internal/chathub"
	"mentorlink/backend/internal/mentorship"
	"mentorlink/backend/internal/models"
	"mentorlink/backend/internal/storage/storagetest"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router *gin.Engine
	store  *storagetest.Memory
	hub    *chathub.ManagerService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := storagetest.NewMemory()
	hub := chathub.NewManagerService(log)
	t.Cleanup(hub.Shutdown)
	gateway := chathub.NewGateway(store, hub, log)
	authSvc := auth.NewService(store, auth.NewTokenManager("test-secret", time.Hour), nil, nil, log)
	h := handler.NewHandler(
		authSvc,
		alumni.NewService(store),
		mentorship.NewService(store, gateway.Rooms, nil, log),
		gateway,
		"*",
		log,
	)
	return &testAPI{router: handler.NewRouter(h, handler.RouterOptions{}), store: store, hub: hub}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type account struct {
	ID    uint
	Token string
}

func (a *testAPI) signUp(t *testing.T, email, name, role string, extra map[string]any) account {
	t.Helper()
	body := map[string]any{"email": email, "password": "password123", "fullName": name, "role": role}
	for k, v := range extra {
		body[k] = v
	}
	w := a.do(t, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode[models.User](t, w)

	w = a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	session := decode[auth.Session](t, w)
	return account{ID: user.ID, Token: session.Token}
}

func TestPing(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/ping", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestAuthEndpoints(t *testing.T) {
	api := newTestAPI(t)
	student := api.signUp(t, "s@example.org", "Sam", "STUDENT", nil)

	w := api.do(t, http.MethodGet, "/api/auth/me", student.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]any](t, w)
	assert.Equal(t, "Sam", me["fullName"])
	assert.NotContains(t, me, "passwordHash")

	w = api.do(t, http.MethodPut, "/api/auth/profile", student.Token, map[string]any{
		"fullName": "Sam S.", "student": map[string]any{"major": "CS"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.User](t, w)
	assert.Equal(t, "Sam S.", updated.FullName)
	assert.Equal(t, "CS", updated.Student.Major)

	w = api.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "s@example.org", "password": "password123", "fullName": "Dup", "role": "STUDENT",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperr.CodeConflict, decode[map[string]string](t, w)["code"])

	w = api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "s@example.org", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodPost, "/api/auth/logout", student.Token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestErrorMapping(t *testing.T) {
	api := newTestAPI(t)
	student := api.signUp(t, "s@example.org", "Sam", "STUDENT", nil)
	alum := api.signUp(t, "a@example.org", "Ada", "ALUMNI", nil)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
		code   string
	}{
		{"no token", http.MethodGet, "/api/chat/rooms", "", nil, http.StatusUnauthorized, apperr.CodeAuthenticationRequired},
		{"directory is for students", http.MethodGet, "/api/alumni", alum.Token, nil, http.StatusForbidden, apperr.CodeForbidden},
		{"bad id", http.MethodGet, "/api/alumni/abc", student.Token, nil, http.StatusBadRequest, apperr.CodeValidation},
		{"not an alumni", http.MethodGet, fmt.Sprintf("/api/alumni/%d", student.ID), student.Token, nil, http.StatusNotFound, apperr.CodeNotFound},
		{"unknown room", http.MethodGet, "/api/chat/rooms/999/messages", student.Token, nil, http.StatusNotFound, apperr.CodeNotFound},
		{"bad status filter", http.MethodGet, "/api/requests?status=MAYBE", student.Token, nil, http.StatusBadRequest, apperr.CodeValidation},
		{"alumni cannot request", http.MethodPost, "/api/requests", alum.Token, map[string]any{"alumniId": alum.ID}, http.StatusForbidden, apperr.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, tt.method, tt.path, tt.token, tt.body)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode[map[string]string](t, w)["code"])
		})
	}
}

func TestAlumniDirectory(t *testing.T) {
	api := newTestAPI(t)
	student := api.signUp(t, "s@example.org", "Sam", "STUDENT", nil)
	api.signUp(t, "a@example.org", "Ada", "ALUMNI", map[string]any{"alumni": map[string]any{"company": "Acme", "skills": []string{"Go"}}})
	api.signUp(t, "b@example.org", "Bob", "ALUMNI", map[string]any{"alumni": map[string]any{"company": "Globex", "skills": []string{"Rust"}}})

	w := api.do(t, http.MethodGet, "/api/alumni?skill=go", student.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]models.User](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Ada", list[0].FullName)

	w = api.do(t, http.MethodGet, "/api/alumni?company=glob", student.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list = decode[[]models.User](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Bob", list[0].FullName)
}

// TestMentoringScenario walks a request from creation to a read chat message.
func TestMentoringScenario(t *testing.T) {
	api := newTestAPI(t)
	student := api.signUp(t, "s@example.org", "Sam", "STUDENT", nil)
	alum := api.signUp(t, "a@example.org", "Ada", "ALUMNI", nil)

	w := api.do(t, http.MethodPost, "/api/requests", student.Token, map[string]any{"alumniId": alum.ID, "message": "Please mentor me"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[mentorship.RequestView](t, w)
	assert.Equal(t, models.StatusPending, created.Status)

	w = api.do(t, http.MethodPut, fmt.Sprintf("/api/requests/%d?status=ACCEPTED", created.ID), alum.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.StatusAccepted, decode[mentorship.RequestView](t, w).Status)

	w = api.do(t, http.MethodPut, fmt.Sprintf("/api/requests/%d", created.ID), alum.Token, map[string]string{"status": "REJECTED"})
	assert.Equal(t, http.StatusConflict, w.Code, "terminal requests stay terminal")

	w = api.do(t, http.MethodPost, fmt.Sprintf("/api/chat/rooms/from-request/%d", created.ID), student.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	room := decode[map[string]any](t, w)
	roomID := uint(room["id"].(float64))
	assert.Equal(t, fmt.Sprintf("chat_%d_%d", student.ID, alum.ID), room["roomName"])

	w = api.do(t, http.MethodPost, fmt.Sprintf("/api/chat/rooms/%d/messages", roomID), student.Token, map[string]string{"content": "Hello"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sent := decode[map[string]any](t, w)
	assert.Equal(t, models.EnvelopeMessage, sent["type"])
	assert.Equal(t, "Hello", sent["content"])
	assert.Equal(t, "Sam", sent["senderName"])
	assert.Equal(t, "Ada", sent["recipientName"])
	assert.Equal(t, string(models.RoleStudent), sent["senderRole"])
	assert.Contains(t, sent, "sentAt")
	assert.NotContains(t, sent, "createdAt")

	w = api.do(t, http.MethodPost, fmt.Sprintf("/api/chat/rooms/%d/messages", roomID), student.Token, map[string]string{"content": "   "})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodGet, "/api/chat/unread-count", alum.Token, nil)
	assert.JSONEq(t, `{"unreadCount":1}`, w.Body.String())

	w = api.do(t, http.MethodGet, "/api/chat/rooms", alum.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	rooms := decode[[]chathub.RoomSummary](t, w)
	require.Len(t, rooms, 1)
	assert.Equal(t, int64(1), rooms[0].UnreadCount)
	assert.Equal(t, "Sam", rooms[0].OtherUserName)

	w = api.do(t, http.MethodGet, fmt.Sprintf("/api/chat/rooms/%d/messages", roomID), alum.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]models.ChatEnvelope](t, w)
	require.Len(t, history, 1)
	assert.Equal(t, "Hello", history[0].Content)
	assert.Equal(t, "Sam", history[0].SenderName)

	w = api.do(t, http.MethodPost, fmt.Sprintf("/api/chat/rooms/%d/mark-read", roomID), alum.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, fmt.Sprintf("/api/chat/rooms/%d/unread-count", roomID), alum.Token, nil)
	assert.JSONEq(t, fmt.Sprintf(`{"roomId":%d,"unreadCount":0}`, roomID), w.Body.String())

	w = api.do(t, http.MethodGet, "/api/requests?status=ACCEPTED", student.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]mentorship.RequestView](t, w), 1)
}

func dial(t *testing.T, srv *httptest.Server, roomID uint, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + fmt.Sprintf("/ws/chat/%d?token=%s", roomID, token)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) models.ChatEnvelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env models.ChatEnvelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestWebSocketChat(t *testing.T) {
	api := newTestAPI(t)
	student := api.signUp(t, "s@example.org", "Sam", "STUDENT", nil)
	alum := api.signUp(t, "a@example.org", "Ada", "ALUMNI", nil)
	outsider := api.signUp(t, "o@example.org", "Olly", "STUDENT", nil)
	srv := httptest.NewServer(api.router)
	defer srv.Close()

	w := api.do(t, http.MethodPost, "/api/requests", student.Token, map[string]any{"alumniId": alum.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	reqID := decode[mentorship.RequestView](t, w).ID
	w = api.do(t, http.MethodPut, fmt.Sprintf("/api/requests/%d?status=ACCEPTED", reqID), alum.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = api.do(t, http.MethodPost, fmt.Sprintf("/api/chat/rooms/from-request/%d", reqID), alum.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	roomID := uint(decode[map[string]any](t, w)["id"].(float64))

	alumConn := dial(t, srv, roomID, alum.Token)
	require.Eventually(t, func() bool { return len(api.hub.Online(roomID)) == 1 }, 2*time.Second, 10*time.Millisecond)
	studentConn := dial(t, srv, roomID, student.Token)

	joined := readEnvelope(t, alumConn)
	assert.Equal(t, models.EnvelopeSystem, joined.Type)
	assert.Equal(t, "Sam joined the chat", joined.Content)

	require.NoError(t, studentConn.WriteJSON(models.InboundMessage{Type: "message", Content: "Hi Ada"}))

	got := readEnvelope(t, alumConn)
	assert.Equal(t, models.EnvelopeMessage, got.Type)
	assert.Equal(t, "Hi Ada", got.Content)
	assert.Equal(t, student.ID, got.SenderID)
	assert.Equal(t, alum.ID, got.RecipientID)

	t.Run("non participant is closed with 4403", func(t *testing.T) {
		conn := dial(t, srv, roomID, outsider.Token)
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

		_, _, err := conn.ReadMessage()

		var closeErr *websocket.CloseError
		require.ErrorAs(t, err, &closeErr)
		assert.Equal(t, apperr.CloseAccessDenied, closeErr.Code)
		assert.Equal(t, apperr.CodeAccessDenied, closeErr.Text)
	})

	t.Run("unknown room is closed with 4404", func(t *testing.T) {
		conn := dial(t, srv, 999, student.Token)
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

		_, _, err := conn.ReadMessage()

		var closeErr *websocket.CloseError
		require.ErrorAs(t, err, &closeErr)
		assert.Equal(t, apperr.CloseNotFound, closeErr.Code)
	})
}
