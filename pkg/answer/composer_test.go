package answer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	reply  string
	err    error
	key    string
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, apiKey, _, prompt string) (string, error) {
	f.key = apiKey
	f.prompt = prompt
	return f.reply, f.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newComposer(t *testing.T, gen Generator, defaultKey string) *Composer {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "roaming.md"),
		[]byte("International roaming can be activated from the app.\n\nRoaming packs start at 499."), 0o644))
	c := NewComposer(Options{DocsDir: dir, DefaultAPIKey: defaultKey}, gen, quietLogger())
	require.NoError(t, c.Reload())
	return c
}

func TestComposerStatus(t *testing.T) {
	c := NewComposer(Options{DocsDir: filepath.Join(t.TempDir(), "none")}, nil, quietLogger())
	require.NoError(t, c.Reload())
	assert.Equal(t, Status{Status: StatusEmpty, DocCount: 0}, c.Status())

	c = newComposer(t, nil, "")
	assert.Equal(t, Status{Status: StatusReady, DocCount: 2}, c.Status())
}

func TestComposerRetrievalWithoutKey(t *testing.T) {
	gen := &fakeGenerator{reply: "unused"}
	c := newComposer(t, gen, "")

	ans := c.Answer(context.Background(), Request{Query: "activate roaming"})
	assert.Equal(t, ModeRetrieval, ans.Mode)
	assert.Contains(t, ans.Answer, "International roaming can be activated")
	assert.Contains(t, ans.Sources, "roaming.md#1")
	assert.Empty(t, gen.prompt, "generator must not be called without a key")
}

func TestComposerRetrievalPrefersRoutedContext(t *testing.T) {
	c := newComposer(t, nil, "")

	ans := c.Answer(context.Background(), Request{
		Query:   "what is my due amount",
		Context: "Please provide a valid 10-digit mobile number to check bills.",
	})
	assert.Equal(t, ModeRetrieval, ans.Mode)
	assert.Equal(t, "Please provide a valid 10-digit mobile number to check bills.", ans.Answer)

	ans = c.Answer(context.Background(), Request{Query: "zzqx"})
	assert.Equal(t, noInformation, ans.Answer)
	assert.NotNil(t, ans.Sources)
}

func TestComposerGenerates(t *testing.T) {
	gen := &fakeGenerator{reply: "Open the app and enable roaming."}
	c := newComposer(t, gen, "default-key")

	ans := c.Answer(context.Background(), Request{Query: "activate roaming", Prompt: "USER QUERY: activate roaming", APIKey: "request-key"})
	assert.Equal(t, ModeGenerated, ans.Mode)
	assert.Equal(t, "Open the app and enable roaming.", ans.Answer)
	assert.Equal(t, "request-key", gen.key)
	assert.True(t, strings.HasPrefix(gen.prompt, "CONTEXT:\n"))
	assert.Contains(t, gen.prompt, "International roaming can be activated")
	assert.Contains(t, gen.prompt, "USER QUERY: activate roaming")

	c.Answer(context.Background(), Request{Query: "activate roaming"})
	assert.Equal(t, "default-key", gen.key)
}

func TestComposerFallsBackOnGenerationError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	c := newComposer(t, gen, "k")

	ans := c.Answer(context.Background(), Request{Query: "roaming", Context: "AVAILABLE PLANS"})
	assert.Equal(t, ModeRetrieval, ans.Mode)
	assert.Equal(t, "AVAILABLE PLANS", ans.Answer)
	assert.Contains(t, ans.Warning, "quota exceeded")
}

func TestChatGenerator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "hello", req.Messages[1].Content)
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  hi there  "}}]}`))
	}))
	defer srv.Close()

	g := NewChatGenerator(srv.URL+"/v1/", "test-model", 5*time.Second)
	out, err := g.Generate(context.Background(), "secret", "system", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", out)

	_, err = g.Generate(context.Background(), "", "system", "hello")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestChatGeneratorHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer srv.Close()

	g := NewChatGenerator(srv.URL, "m", time.Second)
	_, err := g.Generate(context.Background(), "bad", "system", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation http 401: invalid api key")
}

func TestWatchRebuildsIndex(t *testing.T) {
	dir := t.TempDir()
	c := NewComposer(Options{DocsDir: dir}, nil, quietLogger())
	require.NoError(t, c.Reload())
	require.Equal(t, 0, c.Status().DocCount)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Watch(ctx, 20*time.Millisecond))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("Fresh content about 5G."), 0o644))
	assert.Eventually(t, func() bool { return c.Status().DocCount == 1 }, 3*time.Second, 20*time.Millisecond)
}
