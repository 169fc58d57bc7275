package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"smritikosha/memory-api/model"
	"smritikosha/memory-api/security"
	"smritikosha/memory-api/service"
	"smritikosha/memory-api/storage"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/viper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeStore keeps objects in memory and hands out deterministic URLs
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Put(_ context.Context, bucket, key string, body io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucket+"/"+key] = data
	return nil
}

func (s *fakeStore) PresignGet(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://signed.example/" + bucket + "/" + key, nil
}

func (s *fakeStore) Exists(_ context.Context, bucket, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[bucket+"/"+key]
	return ok, nil
}

func (s *fakeStore) Delete(_ context.Context, bucket string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.objects, bucket+"/"+k)
	}
	return nil
}

func (s *fakeStore) get(bucket, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[bucket+"/"+key]
	return data, ok
}

// fakeRenderer returns canned bytes and counts invocations
type fakeRenderer struct {
	mu      sync.Mutex
	renders int
	err     error
}

func (r *fakeRenderer) Render(_ context.Context, _ string, _ model.RenderParams) (*service.RenderResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}

	r.renders++
	return &service.RenderResult{
		MP4:             []byte("fake mp4 bytes"),
		Poster:          []byte("fake jpeg bytes"),
		DurationSeconds: 8.5,
		Checksum:        "deadbeef",
	}, nil
}

func (r *fakeRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders
}

// fakeAIClient serves canned generative responses
type fakeAIClient struct {
	chatResponse string
	chatErr      error
	imageURL     string
	imageErr     error
}

func (f *fakeAIClient) Chat(_ context.Context, _ string) (string, error) {
	return f.chatResponse, f.chatErr
}

func (f *fakeAIClient) GenerateImage(_ context.Context, _ string) (string, error) {
	return f.imageURL, f.imageErr
}

// h is shorthand for JSON request bodies in tests
type h = map[string]any

type testAPI struct {
	*API
	store    *fakeStore
	renderer *fakeRenderer
	ai       *fakeAIClient
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	gin.SetMode(gin.TestMode)

	viper.Set("jwt.secret", "test-secret")
	viper.Set("upload.max_size", int64(25<<20))
	viper.Set("host.public_url", "http://localhost:8080")
	viper.Set("s3.endpoint", "https://s3.example")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", gonanoid.Must())
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = d.AutoMigrate(
		&model.User{},
		&model.Memory{},
		&model.MemoryImage{},
		&model.MemorySummary{},
		&model.Reel{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	store := newFakeStore()
	renderer := &fakeRenderer{}
	aiClient := &fakeAIClient{}

	buckets := storage.Buckets{
		Images:       "memory-images",
		ReelsPrivate: "reels-private",
		ReelsPublic:  "reels-public",
	}

	a := &API{
		DB:       d,
		Router:   gin.New(),
		Argon:    security.New(),
		Store:    store,
		Buckets:  buckets,
		AI:       aiClient,
		Renderer: renderer,
		Flow: &service.FlowBuilder{
			DB:            d,
			Store:         store,
			Buckets:       buckets,
			AI:            aiClient,
			StylizeBudget: 2,
		},
	}
	a.mountRoutes()

	return &testAPI{API: a, store: store, renderer: renderer, ai: aiClient}
}

// newTestUser inserts a user and returns its ID and a valid bearer token
func (a *testAPI) newTestUser(t *testing.T) (string, string) {
	t.Helper()

	user := model.User{
		ID:           gonanoid.Must(),
		Email:        gonanoid.Must() + "@example.com",
		PasswordHash: "unused",
	}

	if err := a.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	token, err := makeToken(user.ID)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}

	return user.ID, token
}

func (a *testAPI) newTestMemory(t *testing.T, userID, title string) string {
	t.Helper()

	m := model.Memory{
		ID:          gonanoid.Must(),
		UserID:      userID,
		Title:       title,
		Description: "A long enough description of what happened that day.",
	}

	if err := a.DB.Create(&m).Error; err != nil {
		t.Fatalf("failed to create test memory: %v", err)
	}

	return m.ID
}

func (a *testAPI) newTestImage(t *testing.T, userID, memoryID string) string {
	t.Helper()

	img := model.MemoryImage{
		ID:        gonanoid.Must(),
		MemoryID:  memoryID,
		UserID:    userID,
		ImagePath: userID + "/123_photo.jpg",
		Location:  "Kyoto",
	}

	if err := a.DB.Create(&img).Error; err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}

	return img.ID
}

// do runs a JSON request against the router
func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
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
	a.Router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, w.Body.String())
	}
	return out
}
