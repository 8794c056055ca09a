package data

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/biz/repo"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 5*time.Second, nil)
}

func TestParseAPIError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"success", 200, `{"consultations":[]}`, ""},
		{"empty success", 204, ``, ""},
		{"string error", 200, `{"error":"Consultation not found"}`, "Consultation not found"},
		{"flag with message", 400, `{"error":true,"message":"Invalid status"}`, "Invalid status"},
		{"object error", 409, `{"error":{"message":"Already accepted"}}`, "Already accepted"},
		{"false flag", 200, `{"error":false,"ok":true}`, ""},
		{"null error", 200, `{"error":null}`, ""},
		{"bare status", 500, `oops`, "request failed: internal server error"},
		{"message only", 403, `{"message":"Not your consultation"}`, "Not your consultation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseAPIError("GET /x", tt.status, []byte(tt.body))
			if tt.want == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.Equal(t, tt.status, err.StatusCode)
		})
	}
}

func TestClient_Headers(t *testing.T) {
	var auth, requestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		requestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"total_unread":3}`))
	})
	c.SetToken("secret")

	n, err := NewUnreadRepo(c).Total(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "Bearer secret", auth)
	assert.NotEmpty(t, requestID)

	c.SetToken("")
	_, err = NewUnreadRepo(c).Total(context.Background())
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestConsultationRepo(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		if r.Method == http.MethodPut {
			json.NewDecoder(r.Body).Decode(&gotBody)
			w.Write([]byte(`{"ok":true}`))
			return
		}
		w.Write([]byte(`{"consultations":[{"id":"42","client_id":"f1","expert_id":"e1","topic":"Maize streak","date":"2026-03-01T09:00:00Z","status":"pending"}]}`))
	})
	r := NewConsultationRepo(c)
	ctx := context.Background()

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.StatusPending, list[0].Status)
	assert.Equal(t, "/consultations", gotPath)

	require.NoError(t, r.UpdateStatus(ctx, "42", domain.StatusAccepted))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/consultations/42/status", gotPath)
	assert.Equal(t, "accepted", gotBody["status"])
}

func TestConsultationRepo_ErrorIndicator(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Consultation already handled"}`))
	})

	err := NewConsultationRepo(c).UpdateStatus(context.Background(), "42", domain.StatusAccepted)
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Consultation already handled", apiErr.Message)
	assert.Equal(t, "PUT /consultations/42/status", apiErr.Op)
}

func TestMessageRepo(t *testing.T) {
	var sent sendRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			json.NewDecoder(r.Body).Decode(&sent)
			w.WriteHeader(http.StatusCreated)
		case r.URL.Path == "/messages/unread/by-consultation":
			w.Write([]byte(`{"by_consultation":{"c1":2}}`))
		default:
			w.Write([]byte(`{"messages":[{"id":"m1","consultation_id":"c1","sender_id":"f1","message":"hi","timestamp":"2026-03-01T09:00:00Z"}]}`))
		}
	})
	r := NewMessageRepo(c)
	ctx := context.Background()

	msgs, err := r.History(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Message)

	require.NoError(t, r.Send(ctx, "c1", "thanks", "cid-1"))
	assert.Equal(t, sendRequest{Message: "thanks", ClientMsgID: "cid-1"}, sent)

	by, err := NewUnreadRepo(c).ByConsultation(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"c1": 2}, by)
}

func TestAvailabilityRepo(t *testing.T) {
	var saved map[string]domain.Schedule
	stored := true
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			json.NewDecoder(r.Body).Decode(&saved)
			return
		}
		if !stored {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"No availability"}`))
			return
		}
		w.Write([]byte(`{"availability":{"monday":{"enabled":false}}}`))
	})
	r := NewAvailabilityRepo(c)
	ctx := context.Background()

	days, err := r.Get(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, days[domain.Monday].Enabled)
	assert.False(t, *days[domain.Monday].Enabled)
	assert.Nil(t, days[domain.Monday].Start)

	stored = false
	_, err = r.Get(ctx, "e1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, r.Save(ctx, "e1", domain.DefaultSchedule()))
	assert.Len(t, saved["availability"], 7)
}

func TestNotificationRepo(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.RequestURI())
		if r.Method == http.MethodGet {
			w.Write([]byte(`{"notifications":[{"id":"n1","type":"message","title":"New message","time":"now","read":false}],"unread_count":1}`))
		}
	})
	r := NewNotificationRepo(c)
	ctx := context.Background()

	page, err := r.List(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.UnreadCount)
	require.NoError(t, r.MarkRead(ctx, "n1"))
	require.NoError(t, r.MarkAllRead(ctx))

	assert.Equal(t, []string{
		"GET /notifications?limit=10",
		"PUT /notifications/n1/read",
		"PUT /notifications/read-all",
	}, paths)
}

func TestAccountRepo_UploadAvatar(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("avatar")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"missing file"}`))
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "me.png" || string(data) != "PNGDATA" || header.Header.Get("Content-Type") != "image/png" {
			w.Write([]byte(`{"error":"unexpected upload"}`))
			return
		}
		w.Write([]byte(`{"avatar_url":"https://cdn.agrolink.test/me.png"}`))
	})

	url, err := NewAccountRepo(c).UploadAvatar(context.Background(), "me.png", "image/png", []byte("PNGDATA"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.agrolink.test/me.png", url)
}

func TestAccountRepo_MeUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Token expired"}`))
	})

	_, err := NewAccountRepo(c).Me(context.Background())
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

type failingNotifier struct{ err error }

func (f failingNotifier) NotifyCounterpart(ctx context.Context, event repo.CounterpartEvent) error {
	return f.err
}

func TestMultiNotifier(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/notifications/refresh", r.URL.Path)
	})
	boom := errors.New("feishu down")
	n := NewMultiNotifier(NewAPINotifier(c), nil, failingNotifier{err: boom})

	err := n.NotifyCounterpart(context.Background(), repo.CounterpartEvent{
		Consultation: domain.Consultation{ID: "42"},
		ActorID:      "e1",
		RecipientID:  "f1",
		Status:       domain.StatusAccepted,
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
