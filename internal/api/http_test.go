package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akaliniv/tetatet/internal/auth"
	"github.com/akaliniv/tetatet/internal/logging"
	"github.com/akaliniv/tetatet/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) (*HTTPClient, *auth.Credentials, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	creds := auth.NewCredentials()
	c := New(srv.URL, 5*time.Second, creds, logging.NewNop())
	return c, creds, srv
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	c, creds, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, models.User{ID: 1, Username: "alice"})
	}))

	creds.Set("tok-1")
	user, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, int64(1), user.ID)
}

func TestAuthRetry_RefreshSucceeds(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
			return
		}
		writeJSON(w, http.StatusOK, models.User{ID: 7, Username: "bob"})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "fresh"})
	})

	c, creds, _ := newTestClient(t, mux)
	creds.Set("expired")

	// resolves as if it had never failed
	user, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, int32(1), refreshCalls.Load())

	token, ok := creds.Get()
	require.True(t, ok)
	assert.Equal(t, "fresh", token)
}

func TestAuthRetry_RefreshFails_ClearsCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "refresh token expired"})
	})

	c, creds, _ := newTestClient(t, mux)
	creds.Set("expired")

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, ok := creds.Get()
	assert.False(t, ok, "credentials must be cleared after a failed refresh")
}

func TestAuthRetry_RetriedCallDoesNotRefreshAgain(t *testing.T) {
	var refreshCalls, meCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		meCalls.Add(1)
		// keeps rejecting even after refresh
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]string{"token": "fresh"})
	})

	c, creds, _ := newTestClient(t, mux)
	creds.Set("expired")

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), refreshCalls.Load(), "exactly one refresh per original call")
	assert.Equal(t, int32(2), meCalls.Load(), "original call plus one retry")
}

func TestAuthRetry_ConcurrentCallsShareOneRefresh(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/friends", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
			return
		}
		writeJSON(w, http.StatusOK, []models.Friend{})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		time.Sleep(100 * time.Millisecond)
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "fresh"})
	})

	c, creds, _ := newTestClient(t, mux)
	creds.Set("expired")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Friends(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), refreshCalls.Load())
}

func TestRefreshWithoutUsableTokenFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	})

	c, creds, _ := newTestClient(t, mux)
	creds.Set("expired")

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, ok := creds.Get()
	assert.False(t, ok)
}

func TestValidationErrorMapping(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "validation failed",
			"errors":  map[string][]string{"username": {"already taken"}},
		})
	}))

	_, err := c.Register(context.Background(), "alice", "a@example.com", "pw")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "validation failed", ve.Message)
	assert.Equal(t, []string{"already taken"}, ve.Fields["username"])
}

func TestNotFoundMapping(t *testing.T) {
	c, creds, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no such conversation"})
	}))
	creds.Set("tok")

	_, err := c.Messages(context.Background(), 42, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServerErrorMapping(t *testing.T) {
	c, creds, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "db down"})
	}))
	creds.Set("tok")

	_, err := c.Friends(context.Background())
	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, "db down", se.Message)
}

func TestNetworkErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nothing listening anymore

	c := New(srv.URL, time.Second, auth.NewCredentials(), logging.NewNop())
	_, err := c.Friends(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLoginReturnsTokenPair(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "alice", body["username"])

		writeJSON(w, http.StatusOK, models.TokenPair{
			AccessToken: "tok",
			User:        &models.User{ID: 1, Username: "alice"},
		})
	}))

	pair, err := c.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", pair.Token())
	require.NotNil(t, pair.User)
	assert.Equal(t, "alice", pair.User.Username)
}

func TestSendMessageJSON(t *testing.T) {
	c, creds, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/conversations/42/messages", r.URL.Path)
		require.Contains(t, r.Header.Get("Content-Type"), "application/json")

		var draft models.MessageDraft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		require.Equal(t, "hi", draft.Content)

		writeJSON(w, http.StatusCreated, models.Message{ID: "999", ConversationID: 42, Content: "hi"})
	}))
	creds.Set("tok")

	msg, err := c.SendMessage(context.Background(), 42, models.MessageDraft{Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "999", msg.ID)
}

func TestSendMessageMultipartWithAttachment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pic.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o600))

	c, creds, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "look", r.FormValue("content"))

		file, _, err := r.FormFile("attachment")
		require.NoError(t, err)
		defer file.Close()

		writeJSON(w, http.StatusCreated, models.Message{ID: "1000", AttachmentRef: "/files/pic.png"})
	}))
	creds.Set("tok")

	msg, err := c.SendMessage(context.Background(), 42, models.MessageDraft{Content: "look", AttachmentPath: path})
	require.NoError(t, err)
	assert.Equal(t, "/files/pic.png", msg.AttachmentRef)
}

func TestMessagesPageParam(t *testing.T) {
	c, creds, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		writeJSON(w, http.StatusOK, []models.Message{})
	}))
	creds.Set("tok")

	_, err := c.Messages(context.Background(), 42, 3)
	require.NoError(t, err)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "validation with message", err: &ValidationError{Message: "name taken"}, want: "name taken"},
		{name: "validation without message", err: &ValidationError{}, want: genericFailureMessage},
		{name: "server error", err: &ServerError{Status: 500, Message: "db down"}, want: "db down"},
		{name: "unavailable", err: ErrUnavailable, want: "server unavailable, check your connection"},
		{name: "unauthorized wrapped", err: errors.Join(ErrUnauthorized), want: "session expired, please log in again"},
		{name: "unknown", err: errors.New("weird"), want: genericFailureMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
