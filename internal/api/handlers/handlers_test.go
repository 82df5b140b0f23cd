package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/api"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/database"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/generation"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/llm"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/services"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/styles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubImageProvider struct {
	counter atomic.Int64
}

func (s *stubImageProvider) Generate(_ context.Context, _ string, _ map[string]any) ([]string, string, error) {
	n := s.counter.Add(1)
	return []string{fmt.Sprintf("https://replicate.delivery/out-%d.webp", n)},
		fmt.Sprintf("pred-%d", n), nil
}

type stubLLM struct {
	calls atomic.Int64
}

func (s *stubLLM) Name() string { return "stub" }

func (s *stubLLM) Complete(_ context.Context, _ *llm.CompletionRequest) (string, error) {
	return fmt.Sprintf("MARIUS stub prompt %d", s.calls.Add(1)), nil
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return setupTestRouterWith(t, &stubImageProvider{})
}

func setupTestRouterWith(t *testing.T, imageProvider generation.ImageProvider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect("", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	configSvc := services.NewConfigService(db)
	predictionSvc := services.NewPredictionService(db)
	manager, err := styles.NewManager()
	require.NoError(t, err)

	orch := generation.NewOrchestrator(configSvc, predictionSvc, imageProvider)
	synth := generation.NewSynthesizer(&stubLLM{}, manager, "gpt-4o-mini", "gpt-4o")
	engine := generation.NewEngine(orch, synth, manager, configSvc, predictionSvc)

	return api.SetupRouter(api.Dependencies{
		DB:           db,
		Engine:       engine,
		ConfigSvc:    configSvc,
		Predictions:  predictionSvc,
		StyleManager: manager,
		Version:      "test",
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func configureUser(t *testing.T, router *gin.Engine, userID int64) {
	t.Helper()
	for key, value := range map[string]string{
		"trigger_word":   "MARIUS",
		"model_endpoint": "owner/model:abc123",
	} {
		w := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/users/%d/config", userID),
			map[string]string{"key": key, "value": value})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
}

func TestHealthCheck(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeBody(t, w)["status"])
}

func TestGetConfigDefaults(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/users/42/config", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, false, body["configured"])

	cfg := body["config"].(map[string]any)
	assert.Equal(t, "4:5", cfg["aspect_ratio"])
	assert.Equal(t, "", cfg["trigger_word"])
}

func TestSetConfigValidAndInvalid(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/v1/users/42/config",
		map[string]string{"key": "num_outputs", "value": "3"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decodeBody(t, w)["value"])

	// out of range
	w = doJSON(t, router, http.MethodPut, "/api/v1/users/42/config",
		map[string]string{"key": "num_outputs", "value": "99"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "range_error", decodeBody(t, w)["reason"])

	// unknown key
	w = doJSON(t, router, http.MethodPut, "/api/v1/users/42/config",
		map[string]string{"key": "bogus", "value": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unknown_parameter", decodeBody(t, w)["reason"])
}

func TestGenerateRequiresConfiguration(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/users/42/generations",
		map[string]string{"command": "un gato espacial"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGenerateSingle(t *testing.T) {
	router := setupTestRouter(t)
	configureUser(t, router, 42)

	w := doJSON(t, router, http.MethodPost, "/api/v1/users/42/generations",
		map[string]string{"command": "un gato espacial"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.EqualValues(t, 1, body["succeeded"])
	assert.EqualValues(t, 0, body["failed"])

	results := body["results"].([]any)
	first := results[0].(map[string]any)
	assert.Equal(t, "MARIUS un gato espacial", first["prompt"])
}

func TestGenerateInvalidCommand(t *testing.T) {
	router := setupTestRouter(t)
	configureUser(t, router, 42)

	w := doJSON(t, router, http.MethodPost, "/api/v1/users/42/generations",
		map[string]string{"command": "styles=urban un retrato"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLastGenerationLifecycle(t *testing.T) {
	router := setupTestRouter(t)
	configureUser(t, router, 42)

	w := doJSON(t, router, http.MethodGet, "/api/v1/users/42/generations/last", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/users/42/generations",
		map[string]string{"command": "en la playa"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/users/42/generations/last", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MARIUS en la playa", decodeBody(t, w)["prompt"])
}

func TestListPredictions(t *testing.T) {
	router := setupTestRouter(t)
	configureUser(t, router, 42)

	w := doJSON(t, router, http.MethodGet, "/api/v1/users/42/predictions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decodeBody(t, w)["count"])

	w = doJSON(t, router, http.MethodPost, "/api/v1/users/42/generations",
		map[string]string{"command": "2 en el bosque"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/users/42/predictions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.EqualValues(t, 2, body["count"])
	predictions := body["predictions"].([]any)
	require.Len(t, predictions, 2)
	first := predictions[0].(map[string]any)
	assert.Equal(t, "MARIUS en el bosque", first["prompt"])
}

func TestGetPredictionNotFound(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/predictions/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVariationsWithoutHistory(t *testing.T) {
	router := setupTestRouter(t)
	configureUser(t, router, 42)

	w := doJSON(t, router, http.MethodPost, "/api/v1/users/42/variations",
		map[string]any{"count": 2})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVariationsFromLast(t *testing.T) {
	router := setupTestRouter(t)
	configureUser(t, router, 42)

	w := doJSON(t, router, http.MethodPost, "/api/v1/users/42/generations",
		map[string]string{"command": "en la montaña"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/users/42/variations",
		map[string]any{"count": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decodeBody(t, w)["succeeded"])
}

func TestListStyles(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/styles", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	available := body["available"].([]any)
	assert.Len(t, available, 11)
	assert.Contains(t, available, "random")
}

func TestListParameters(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/parameters", nil)
	require.Equal(t, http.StatusOK, w.Code)

	params := decodeBody(t, w)["parameters"].([]any)
	assert.Len(t, params, 13)
}

// cancelAwareProvider refuses to work once its context is canceled, like a
// real HTTP client would
type cancelAwareProvider struct {
	stub stubImageProvider
}

func (p *cancelAwareProvider) Generate(ctx context.Context, modelEndpoint string, input map[string]any) ([]string, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	return p.stub.Generate(ctx, modelEndpoint, input)
}

func TestGenerateSurvivesClientDisconnect(t *testing.T) {
	router := setupTestRouterWith(t, &cancelAwareProvider{})
	configureUser(t, router, 42)

	raw, err := json.Marshal(map[string]string{"command": "un gato espacial"})
	require.NoError(t, err)

	// The request context is already canceled, as after a client disconnect.
	// The generation must still run and persist.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/42/generations", bytes.NewReader(raw)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decodeBody(t, w)["succeeded"])

	w = doJSON(t, router, http.MethodGet, "/api/v1/users/42/generations/last", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MARIUS un gato espacial", decodeBody(t, w)["prompt"])
}

func TestInvalidUserID(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/users/abc/config", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
