package chat

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// fakeGemini serves just enough of the Gemini REST surface for the SDK.
type fakeGemini struct {
	mu    sync.Mutex
	paths []string
	keys  []string
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)
	f.keys = append(f.keys, r.Header.Get("x-goog-api-key"))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/v1/models/gemini-2.0-flash:generateContent":
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":404,"message":"models/gemini-2.0-flash is not found for API version v1","status":"NOT_FOUND"}}`)
	case r.URL.Path == "/v1/models/gemini-1.5-flash:generateContent":
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`)
	case strings.HasSuffix(r.URL.Path, ":generateContent"):
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"God bless you"}]}}]}`)
	case r.Method == http.MethodGet && r.URL.Path == "/v1beta/models":
		if r.URL.Query().Get("pageToken") == "" {
			_, _ = io.WriteString(w, `{"models":[{"name":"models/gemini-2.5-flash","supportedGenerationMethods":["generateContent","countTokens"]}],"nextPageToken":"p2"}`)
			return
		}
		_, _ = io.WriteString(w, `{"models":[{"name":"models/embedding-001","supportedGenerationMethods":["embedContent"]}]}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":404,"message":"not found","status":"NOT_FOUND"}}`)
	}
}

func newTestUpstream(t *testing.T) (*GenaiUpstream, *fakeGemini) {
	t.Helper()
	fake := &fakeGemini{}
	srv := httptest.NewServer(fake)
	transport := &http.Transport{}
	t.Cleanup(func() {
		transport.CloseIdleConnections()
		srv.Close()
	})
	return NewGenaiUpstream(srv.URL+"/", &http.Client{Transport: transport}), fake
}

func TestGenaiUpstream_Generate(t *testing.T) {
	up, fake := newTestUpstream(t)
	contents := buildContents(nil, "hello")

	text, err := up.Generate(context.Background(), "secret", "v1beta", "gemini-pro", contents)
	require.NoError(t, err)
	assert.Equal(t, "God bless you", text)
	assert.Contains(t, fake.paths, "POST /v1beta/models/gemini-pro:generateContent")
	assert.Equal(t, "secret", fake.keys[0])
}

func TestGenaiUpstream_StatusCodes(t *testing.T) {
	up, _ := newTestUpstream(t)
	contents := buildContents(nil, "hello")

	_, err := up.Generate(context.Background(), "secret", "v1", "gemini-2.0-flash", contents)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	_, err = up.Generate(context.Background(), "secret", "v1", "gemini-1.5-flash", contents)
	require.Error(t, err)
	assert.Equal(t, http.StatusTooManyRequests, statusOf(err))
	assert.Equal(t, "Quota exceeded", messageOf(err))
}

func TestGenaiUpstream_ListModelsFollowsPages(t *testing.T) {
	up, _ := newTestUpstream(t)

	models, err := up.ListModels(context.Background(), "secret", "v1beta")
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "models/gemini-2.5-flash", models[0].Name)
	assert.Contains(t, models[0].Actions, "generateContent")
	assert.NotContains(t, models[1].Actions, "generateContent")
}

// End to end through the SDK: v1 answers 404 then 429, so v1 is abandoned
// and the first v1beta candidate replies.
func TestProxy_WithGenaiUpstream(t *testing.T) {
	up, fake := newTestUpstream(t)
	p := New(Config{APIKey: "secret"}, up, nil)

	reply, err := p.Chat(context.Background(), Request{Message: "Pray for me"})
	require.NoError(t, err)
	assert.Equal(t, "God bless you", reply.Reply)
	assert.Equal(t, "v1beta", reply.Version)
	assert.Equal(t, []string{
		"POST /v1/models/gemini-2.0-flash:generateContent",
		"POST /v1/models/gemini-1.5-flash:generateContent",
		"POST /v1beta/models/gemini-2.0-flash:generateContent",
	}, fake.paths)
}
