package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mygenetics/reportnav"
	"github.com/mygenetics/reportnav/internal/sanitize"
	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/mygenetics/reportnav/pkg/observability"
	"github.com/mygenetics/reportnav/pkg/ports"
	"github.com/mygenetics/reportnav/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{}

var errStoreDown = errors.New("connection refused")

func (brokenStore) Load(context.Context, string) (*domain.Session, error) { return nil, errStoreDown }
func (brokenStore) Save(context.Context, *domain.Session) error           { return errStoreDown }
func (brokenStore) Expire(context.Context, string) error                  { return errStoreDown }
func (brokenStore) List(context.Context) ([]string, error)                { return nil, errStoreDown }

func newTestHandler(t *testing.T, opts ...reportnav.Option) (http.Handler, *reportnav.Bot) {
	t.Helper()
	bot, err := reportnav.New(opts...)
	require.NoError(t, err)
	return NewHandler(bot), bot
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeReply(t *testing.T, w *httptest.ResponseRecorder) reportnav.Reply {
	t.Helper()
	var reply reportnav.Reply
	require.NoError(t, json.NewDecoder(w.Body).Decode(&reply))
	return reply
}

func TestPostAction_Navigate(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/v1/users/u1/actions", `{"action":"forward"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	reply := decodeReply(t, w)
	assert.Equal(t, domain.OutcomeMoved, reply.Outcome)
	assert.Equal(t, report.ScreenMenu, reply.Screen)
	require.Len(t, reply.Payload.Buttons, 7)

	// Pressing a rendered button sends its callback data back.
	w = do(t, h, http.MethodPost, "/v1/users/u1/actions", `{"data":"`+reply.Payload.Buttons[1].Data+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ScreenID("SHOW_DETOX_SUMMARY"), decodeReply(t, w).Screen)

	// A button from the menu is stale once the user has moved on.
	w = do(t, h, http.MethodPost, "/v1/users/u1/actions", `{"data":"MENU|open:detox"}`)
	require.Equal(t, http.StatusOK, w.Code)
	reply = decodeReply(t, w)
	assert.Equal(t, domain.OutcomeIllegalAction, reply.Outcome)
	assert.Equal(t, domain.ScreenID("SHOW_DETOX_SUMMARY"), reply.Screen)
}

func TestPostAction_ButtonWithText(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/v1/users/u1/actions", `{"action":"forward"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPost, "/v1/users/u1/actions", `{"data":"MENU|back","text":"x"}`)
	require.Equal(t, http.StatusOK, w.Code)
	reply := decodeReply(t, w)
	assert.Equal(t, domain.OutcomeMoved, reply.Outcome)
	assert.Equal(t, report.ScreenSummary, reply.Screen)
}

func TestPostAction_Question(t *testing.T) {
	h, _ := newTestHandler(t, reportnav.WithAnswerer(staticAnswer("Drink water.")))

	do(t, h, http.MethodPost, "/v1/users/u1/actions", `{"action":"forward"}`)
	w := do(t, h, http.MethodPost, "/v1/users/u1/actions", `{"action":"ask_question"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, report.ScreenInput, decodeReply(t, w).Screen)

	w = do(t, h, http.MethodPost, "/v1/users/u1/actions", `{"text":"What should I eat?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	reply := decodeReply(t, w)
	assert.Equal(t, report.ScreenQuestion, reply.Screen)
	assert.Equal(t, "Drink water.", reply.Answer)
	assert.Contains(t, reply.Payload.Text, "What should I eat?")
}

func TestPostAction_BadRequests(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"action":`},
		{"unknown field", `{"acton":"forward"}`},
		{"empty", `{}`},
		{"callback without action", `{"data":"MENU|"}`},
		{"text too long", `{"text":"` + strings.Repeat("a", sanitize.DefaultMaxInputSize+1) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/v1/users/u1/actions", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestPostAction_RateLimited(t *testing.T) {
	h, _ := newTestHandler(t, reportnav.WithRateLimiter(denyAll{}))

	w := do(t, h, http.MethodPost, "/v1/users/u1/actions", `{"text":"hello"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	reply := decodeReply(t, w)
	assert.Equal(t, domain.OutcomeRateLimited, reply.Outcome)
	assert.Equal(t, reportnav.NoticeRateLimited, reply.Notice)
}

func TestPostAction_Degraded(t *testing.T) {
	h, _ := newTestHandler(t, reportnav.WithStore(brokenStore{}))

	w := do(t, h, http.MethodPost, "/v1/users/u1/actions", `{"action":"forward"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	reply := decodeReply(t, w)
	assert.True(t, reply.Degraded)
	assert.Equal(t, reportnav.DefaultFallbackText, reply.Payload.Text)
}

func TestSessionEndpoints(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/v1/users/u1/session", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	do(t, h, http.MethodPost, "/v1/users/u1/actions", `{"action":"forward"}`)

	w = do(t, h, http.MethodGet, "/v1/users/u1/session", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sess domain.Session
	require.NoError(t, json.NewDecoder(w.Body).Decode(&sess))
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, report.ScreenMenu, sess.Screen)
	assert.Equal(t, []domain.ScreenID{report.ScreenSummary}, sess.History)

	w = do(t, h, http.MethodGet, "/v1/users/u1/screen", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, report.ScreenMenu, decodeReply(t, w).Screen)

	w = do(t, h, http.MethodDelete, "/v1/users/u1/session", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/v1/users/u1/session", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionEndpoints_StoreDown(t *testing.T) {
	h, _ := newTestHandler(t, reportnav.WithStore(brokenStore{}))

	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/v1/users/u1/session", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodDelete, "/v1/users/u1/session", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/v1/graph/mermaid?user=u1", "").Code)
}

func TestGetGraph(t *testing.T) {
	h, bot := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/v1/graph", "")
	require.Equal(t, http.StatusOK, w.Code)

	var graph GraphResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&graph))
	assert.Equal(t, report.ScreenSummary, graph.Entry)
	assert.Len(t, graph.Screens, len(bot.Screens()))
	assert.Equal(t, bot.Table().Edges(), graph.Edges)
}

func TestGetMermaid(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/v1/graph/mermaid", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph TD"))
	assert.NotContains(t, w.Body.String(), "classDef")

	// Unknown users get the plain chart.
	w = do(t, h, http.MethodGet, "/v1/graph/mermaid?user=nobody", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "classDef")

	do(t, h, http.MethodPost, "/v1/users/u1/actions", `{"action":"forward"}`)
	w = do(t, h, http.MethodGet, "/v1/graph/mermaid?user=u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "class MENU current;")
	assert.Contains(t, w.Body.String(), "class REPORT_SUMMARY visited;")
}

func TestHealthAndInfo(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&info))
	assert.Equal(t, "reportnav", info["app"])
	assert.Equal(t, strings.TrimSpace(reportnav.Version), info["version"])
}

func TestCORS(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodOptions, "/v1/users/u1/actions", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := observability.NewMetrics()
	bot, err := reportnav.New(reportnav.WithMetrics(metrics))
	require.NoError(t, err)

	without := NewHandler(bot)
	assert.Equal(t, http.StatusNotFound, do(t, without, http.MethodGet, "/metrics", "").Code)

	h := NewHandler(bot, WithMetrics(metrics))
	do(t, h, http.MethodPost, "/v1/users/u1/actions", `{"action":"forward"}`)

	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `reportnav_transitions_total{action="forward",from="REPORT_SUMMARY"} 1`)
}

func TestActionRequest_Inbound(t *testing.T) {
	in, err := ActionRequest{Data: "MENU|open:detox"}.Inbound("u1")
	require.NoError(t, err)
	assert.Equal(t, domain.Inbound{UserID: "u1", Origin: report.ScreenMenu, Label: domain.Open("detox")}, in)

	in, err = ActionRequest{Action: " back "}.Inbound("u1")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionBack, in.Label)
	assert.Empty(t, in.Origin)

	in, err = ActionRequest{Text: "hi"}.Inbound("u1")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionFreeText, in.Label)
	assert.Equal(t, "hi", in.Text)

	_, err = ActionRequest{}.Inbound("u1")
	assert.Error(t, err)
}

type staticAnswer string

func (s staticAnswer) Answer(context.Context, ports.Question) (string, error) { return string(s), nil }

type denyAll struct{}

func (denyAll) Allow(context.Context, string) (bool, error) { return false, nil }
