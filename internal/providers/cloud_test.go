package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatCompletionJSON = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gemini-2.0-flash",
  "choices": [
    {"index": 0, "message": {"role": "assistant", "content": "Paris"}, "finish_reason": "stop"}
  ]
}`

func newFakeChatServer(t *testing.T, status int, body string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.Error(w, "unexpected route "+r.URL.Path, http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			http.Error(w, `{"error":{"message":"bad auth"}}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewCloud_Credentials(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty", "", ErrMissingCredential},
		{"whitespace", "   ", ErrMissingCredential},
		{"placeholder", PlaceholderAPIKey, ErrPlaceholderCredential},
		{"real key", "AIza-real-key", nil},
		{"short key", "x", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewCloud(CloudConfig{APIKey: tt.key})
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)

				var optErr *OptionError
				require.True(t, errors.As(err, &optErr))
				assert.Equal(t, "api_key", optErr.Option)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, p)
		})
	}
}

func TestNewCloud_Defaults(t *testing.T) {
	p, err := NewCloud(CloudConfig{APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, KindCloud, p.Name())
	assert.Equal(t, DefaultCloudModel, p.Model())
	assert.Equal(t, DefaultCloudBaseURL, p.BaseURL())
	assert.Equal(t, DefaultCloudTimeout, p.timeout)
}

func TestCloud_Assist_Success(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatCompletionJSON))
	}))
	defer srv.Close()

	p, err := NewCloud(CloudConfig{APIKey: "test-key", BaseURL: srv.URL + "/", Model: "gemini-test"})
	require.NoError(t, err)

	got := p.Assist(context.Background(), "Capital of France?")

	assert.Equal(t, "Paris", got)
	require.NotNil(t, gotBody)
	assert.Equal(t, "gemini-test", gotBody["model"])
	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	msg := msgs[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "Capital of France?", msg["content"])
}

func TestCloud_Assist_ServiceError(t *testing.T) {
	var calls atomic.Int32
	srv := newFakeChatServer(t, http.StatusInternalServerError, `{"error":{"message":"overloaded"}}`, &calls)

	p, err := NewCloud(CloudConfig{APIKey: "test-key", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	got := p.Assist(context.Background(), "hello")

	assert.True(t, strings.HasPrefix(got, cloudErrorPrefix), "got %q", got)
	assert.Contains(t, got, "status 500")
	assert.Equal(t, int32(1), calls.Load(), "no retries expected")
}

func TestCloud_Assist_Unauthorized(t *testing.T) {
	srv := newFakeChatServer(t, http.StatusOK, chatCompletionJSON, nil)

	p, err := NewCloud(CloudConfig{APIKey: "wrong-key", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	got := p.Assist(context.Background(), "hello")

	assert.True(t, strings.HasPrefix(got, cloudErrorPrefix), "got %q", got)
	assert.Contains(t, got, "status 401")
}

func TestCloud_Assist_NoChoices(t *testing.T) {
	srv := newFakeChatServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","created":0,"model":"m","choices":[]}`, nil)

	p, err := NewCloud(CloudConfig{APIKey: "test-key", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	assert.Equal(t, cloudErrorPrefix+"the model returned no content", p.Assist(context.Background(), "hello"))
}

func TestCloud_Assist_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL + "/"
	srv.Close()

	p, err := NewCloud(CloudConfig{APIKey: "test-key", BaseURL: base})
	require.NoError(t, err)

	got := p.Assist(context.Background(), "hello")

	assert.True(t, strings.HasPrefix(got, cloudErrorPrefix), "got %q", got)
	assert.Contains(t, got, "could not reach the service")
}

func TestCloud_Assist_RepeatedCallsAreIndependent(t *testing.T) {
	var calls atomic.Int32
	srv := newFakeChatServer(t, http.StatusOK, chatCompletionJSON, &calls)

	p, err := NewCloud(CloudConfig{APIKey: "test-key", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	first := p.Assist(context.Background(), "Capital of France?")
	second := p.Assist(context.Background(), "Capital of France?")

	assert.Equal(t, "Paris", first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDescribeCloudError_Classes(t *testing.T) {
	kind, detail := describeCloudError(context.DeadlineExceeded)
	assert.Equal(t, FailureTimeout, kind)
	assert.Contains(t, detail, "timed out")

	kind, detail = describeCloudError(errors.New("boom"))
	assert.Equal(t, FailureRequest, kind)
	assert.Equal(t, "boom", detail)
}
