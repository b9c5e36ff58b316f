package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"dreamwriter-api/internal/application/story"
	"dreamwriter-api/internal/config"
	"dreamwriter-api/internal/domain/entity"
	"dreamwriter-api/internal/infrastructure/persistence/store"
	"dreamwriter-api/internal/interfaces/http/handler"
	"dreamwriter-api/internal/interfaces/http/middleware"
	"dreamwriter-api/internal/workflow/chain"
	workflowport "dreamwriter-api/internal/workflow/port"
	workflowprompt "dreamwriter-api/internal/workflow/prompt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type streamModel struct {
	chunks []string
}

func (m *streamModel) Generate(context.Context, []*schema.Message, ...model.Option) (*schema.Message, error) {
	return schema.AssistantMessage(strings.Join(m.chunks, ""), nil), nil
}

func (m *streamModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msgs := make([]*schema.Message, 0, len(m.chunks))
	for _, c := range m.chunks {
		msgs = append(msgs, schema.AssistantMessage(c, nil))
	}
	return schema.StreamReaderFromArray(msgs), nil
}

type staticFactory struct {
	model model.BaseChatModel
	specs []workflowport.ModelSpec
}

func (f *staticFactory) NewChatModel(_ context.Context, spec workflowport.ModelSpec) (model.BaseChatModel, error) {
	f.specs = append(f.specs, spec)
	return f.model, nil
}

type denyLimiter struct {
	err error
}

func (l denyLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return false, l.err
}

type testServer struct {
	engine   *gin.Engine
	chapters *store.ChapterRepository
	factory  *staticFactory
}

func newTestServer(t *testing.T, limiter middleware.RateLimiter, chunks ...string) *testServer {
	t.Helper()

	client, err := store.NewClient(&config.DatabaseConfig{
		Driver:   store.DriverSQLite,
		SQLite:   config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "api.db")},
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, client.AutoMigrate(context.Background()))
	t.Cleanup(func() { _ = client.Close() })

	novels := store.NewNovelRepository(client)
	chapters := store.NewChapterRepository(client)
	factory := &staticFactory{model: &streamModel{chunks: chunks}}
	registry := workflowprompt.NewRegistry()

	handlers := &RouterHandlers{
		Health:    handler.NewHealthHandler("test", client, nil),
		Novel:     handler.NewNovelHandler(novels),
		Character: handler.NewCharacterHandler(store.NewCharacterRepository(client)),
		Chapter:   handler.NewChapterHandler(chapters),
		Generation: handler.NewGenerationHandler(
			story.NewChapterStreamer(novels, chapters, store.NewTxManager(client), chain.NewChapterChain(factory, registry)),
			story.NewOutlineStreamer(chain.NewOutlineChain(factory, registry)),
		),
	}

	cfg := &config.Config{
		App: config.AppConfig{Name: "dreamwriter-api", Env: "test"},
		Security: config.SecurityConfig{
			RateLimit: config.RateLimitConfig{Enabled: true, Limit: 10, Window: time.Minute},
		},
	}

	return &testServer{
		engine:   NewWithDeps(cfg, handlers, limiter).Engine(),
		chapters: chapters,
		factory:  factory,
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestNovelCRUD(t *testing.T) {
	s := newTestServer(t, nil)

	w, env := s.do(t, http.MethodPost, "/api/novels", map[string]string{"title": "长夜", "genre": "玄幻"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	w, env = s.do(t, http.MethodPut, "/api/novels/"+id, map[string]string{"outline": "少年出山"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.Equal(t, "长夜", updated["title"])
	require.Equal(t, "玄幻", updated["genre"])
	require.Equal(t, "少年出山", updated["outline"])

	w, env = s.do(t, http.MethodGet, "/api/novels", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)

	w, env = s.do(t, http.MethodDelete, "/api/novels/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Novel deleted"}`, string(env.Data))

	w, env = s.do(t, http.MethodGet, "/api/novels/"+id, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Novel not found", env.Message)

	w, _ = s.do(t, http.MethodDelete, "/api/novels/"+id, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateNovelRequiresTitle(t *testing.T) {
	s := newTestServer(t, nil)

	w, env := s.do(t, http.MethodPost, "/api/novels", map[string]string{"genre": "玄幻"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "invalid request body", env.Message)

	w, _ = s.do(t, http.MethodPost, "/api/novels", map[string]string{"title": ""})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/novels", map[string]string{"title": strings.Repeat("长", 400), "genre": strings.Repeat("g", 200)})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/characters", map[string]string{"novel_id": "n-1", "name": ""})
	require.Equal(t, http.StatusCreated, w.Code)
}

type novelBody struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Genre       string    `json:"genre"`
	Outline     string    `json:"outline"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func TestNovelPartialUpdateTouchesOnlySuppliedFields(t *testing.T) {
	s := newTestServer(t, nil)

	w, _ := s.do(t, http.MethodPost, "/api/novels", map[string]string{
		"id": "n-1", "title": "长夜", "genre": "玄幻", "description": "林舟：少年剑客",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := s.do(t, http.MethodGet, "/api/novels/n-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var before novelBody
	require.NoError(t, json.Unmarshal(env.Data, &before))

	time.Sleep(20 * time.Millisecond)
	w, _ = s.do(t, http.MethodPut, "/api/novels/n-1", map[string]string{"outline": "少年出山"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/novels/n-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var after novelBody
	require.NoError(t, json.Unmarshal(env.Data, &after))

	require.Equal(t, "少年出山", after.Outline)
	require.Equal(t, before.Title, after.Title)
	require.Equal(t, before.Genre, after.Genre)
	require.Equal(t, before.Description, after.Description)
	require.True(t, after.CreatedAt.Equal(before.CreatedAt))
	require.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestCreateDuplicateIDReturnsConflict(t *testing.T) {
	s := newTestServer(t, nil)

	w, _ := s.do(t, http.MethodPost, "/api/novels", map[string]string{"id": "n-1", "title": "长夜"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, env := s.do(t, http.MethodPost, "/api/novels", map[string]string{"id": "n-1", "title": "又一次"})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "Novel already exists", env.Message)

	chapter := map[string]any{"id": "c-1", "novel_id": "n-1", "order": 1}
	w, _ = s.do(t, http.MethodPost, "/api/chapters", chapter)
	require.Equal(t, http.StatusCreated, w.Code)
	w, env = s.do(t, http.MethodPost, "/api/chapters", chapter)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "Chapter already exists", env.Message)
}

func TestCharacterLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	w, _ := s.do(t, http.MethodPost, "/api/characters", map[string]string{
		"id": "ch-1", "novel_id": "n-1", "name": "林舟", "role": "主角",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := s.do(t, http.MethodGet, "/api/novels/n-1/characters", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	require.Equal(t, "林舟", list[0]["name"])

	w, env = s.do(t, http.MethodPut, "/api/characters/ch-1", map[string]string{"traits": "沉默"})
	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Equal(t, "主角", got["role"])
	require.Equal(t, "沉默", got["traits"])

	w, env = s.do(t, http.MethodDelete, "/api/characters/ch-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Character deleted"}`, string(env.Data))

	w, env = s.do(t, http.MethodGet, "/api/characters/ch-1", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Character not found", env.Message)
}

func TestChaptersListedByOrder(t *testing.T) {
	s := newTestServer(t, nil)

	for _, c := range []map[string]any{
		{"id": "c-2", "novel_id": "n-1", "title": "二", "order": 2},
		{"id": "c-1", "novel_id": "n-1", "title": "一", "order": 1},
		{"id": "x-1", "novel_id": "n-2", "title": "别的", "order": 1},
	} {
		w, _ := s.do(t, http.MethodPost, "/api/chapters", c)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, env := s.do(t, http.MethodGet, "/api/novels/n-1/chapters", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	require.Equal(t, "c-1", list[0]["id"])
	require.Equal(t, "c-2", list[1]["id"])
	require.Equal(t, entity.ChapterStatusDraft, list[0]["status"])

	w, _ = s.do(t, http.MethodPut, "/api/chapters/missing", map[string]string{"title": "x"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateRequiresBearer(t *testing.T) {
	s := newTestServer(t, nil, "x")
	body := map[string]string{"novel_id": "n-1"}

	for _, header := range []string{"", "Token abc", "Bearer ", "Bearer    "} {
		w, env := s.do(t, http.MethodPost, "/api/generate/chapter", body, "Authorization", header)
		require.Equal(t, http.StatusUnauthorized, w.Code, header)
		require.Equal(t, "Missing or invalid API Key", env.Message)
	}
	require.Empty(t, s.factory.specs)
}

func TestGenerateChapterUnknownNovel(t *testing.T) {
	s := newTestServer(t, nil, "x")

	w, _ := s.do(t, http.MethodPost, "/api/generate/chapter",
		map[string]string{"novel_id": "missing", "chapter_id": "c-1"},
		"Authorization", "Bearer sk-test")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	require.Equal(t, "data: [Error] Novel not found\n\ndata: [DONE]\n\n", w.Body.String())
}

func TestGenerateChapterStreamsAndPersists(t *testing.T) {
	s := newTestServer(t, nil, "夜色", "", "<渐深>")

	w, _ := s.do(t, http.MethodPost, "/api/novels", map[string]string{"id": "n-1", "title": "长夜"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/generate/chapter", map[string]string{
		"novel_id":      "n-1",
		"chapter_id":    "c-1",
		"chapter_title": "第一章",
		"model_name":    "m-1",
		"base_url":      "https://llm.example.com/v1",
	}, "Authorization", "Bearer sk-test")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t,
		"data: {\"text\":\"夜色\"}\n\ndata: {\"text\":\"<渐深>\"}\n\ndata: [DONE]\n\n",
		w.Body.String())

	require.Len(t, s.factory.specs, 1)
	require.Equal(t, workflowport.ModelSpec{APIKey: "sk-test", BaseURL: "https://llm.example.com/v1", Model: "m-1"}, s.factory.specs[0])

	chapter, err := s.chapters.GetByID(context.Background(), "c-1")
	require.NoError(t, err)
	require.NotNil(t, chapter)
	require.Equal(t, "夜色<渐深>", chapter.Content)
	require.Equal(t, 1, chapter.Order)
	require.Equal(t, entity.ChapterStatusCompleted, chapter.Status)
}

func TestGenerateOutlineStreams(t *testing.T) {
	s := newTestServer(t, nil, "一、世界观")

	w, _ := s.do(t, http.MethodPost, "/api/generate/outline",
		map[string]string{"topic": "边城"},
		"Authorization", "Bearer sk-test")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "data: {\"text\":\"一、世界观\"}\n\ndata: [DONE]\n\n", w.Body.String())
}

func TestGenerateRateLimited(t *testing.T) {
	s := newTestServer(t, denyLimiter{}, "x")

	w, _ := s.do(t, http.MethodPost, "/api/generate/chapter",
		map[string]string{"novel_id": "n-1"},
		"Authorization", "Bearer sk-test")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Empty(t, s.factory.specs)
}

func TestRateLimiterFailureLetsRequestsThrough(t *testing.T) {
	s := newTestServer(t, denyLimiter{err: errors.New("redis down")}, "x")

	w, _ := s.do(t, http.MethodPost, "/api/generate/outline",
		map[string]string{"topic": "边城"},
		"Authorization", "Bearer sk-test")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, s.factory.specs, 1)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/health", "/live", "/ready"} {
		w, _ := s.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
	}
}
