package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"smart_hub/internal/models"
	"smart_hub/internal/service"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(ctx context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockSettings struct {
	pref    models.Preference
	created bool
	err     error
	getErr  error

	lastInput   service.PreferenceInput
	upsertCalls int
}

func (m *mockSettings) Upsert(ctx context.Context, in service.PreferenceInput) (models.Preference, bool, error) {
	m.upsertCalls++
	m.lastInput = in
	return m.pref, m.created, m.err
}
func (m *mockSettings) Get(ctx context.Context) (models.Preference, error) {
	return m.pref, m.getErr
}

type mockSensor struct {
	sample     models.Sample
	recordErr  error
	history    []models.Sample
	historyErr error

	lastInput      service.SampleInput
	lastFabricated models.Sample
	lastSize       int
	recordCalls    int
}

func (m *mockSensor) Record(ctx context.Context, in service.SampleInput) (models.Sample, error) {
	m.recordCalls++
	m.lastInput = in
	return m.sample, m.recordErr
}
func (m *mockSensor) RecordFabricated(ctx context.Context, s models.Sample) (models.Sample, error) {
	m.lastFabricated = s
	if m.recordErr != nil {
		return models.Sample{}, m.recordErr
	}
	return s, nil
}
func (m *mockSensor) History(ctx context.Context, size int) ([]models.Sample, error) {
	m.lastSize = size
	return m.history, m.historyErr
}

type mockDecision struct {
	mu         sync.Mutex
	decision   models.Decision
	err        error
	publishErr error

	decideCalls int
	published   []models.Sample
}

func (m *mockDecision) Decide(ctx context.Context) (models.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decideCalls++
	return m.decision, m.err
}
func (m *mockDecision) Publish(ctx context.Context, s models.Sample) (models.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, s)
	return m.decision, m.publishErr
}
func (m *mockDecision) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decideCalls
}

type mockEventLog struct {
	resp     []models.Event
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.Event, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	return newTestRouterWith(s, Options{})
}

func newTestRouterWith(s *service.Service, opts Options) *gin.Engine {
	h := NewHandler(s, nil, opts)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
