package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cognify/backend/config"
	"cognify/backend/internal/api/middleware"
	"cognify/backend/internal/dto"
	"cognify/backend/internal/model"
	"cognify/backend/internal/service"
	apperrors "cognify/backend/pkg/errors"
	"cognify/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	registerResult *dto.MasterResponse
	registerErr    error
	loginResult    *dto.LoginResponse
	loginErr       error
	logoutErr      error
	logoutJTI      string
	changePassErr  error
	currentResult  *dto.MasterResponse
	currentErr     error
}

func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*dto.MasterResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) Authenticate(_ context.Context, _, _ string) (*model.Master, error) {
	return nil, service.ErrInvalidCredentials
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.LoginResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, jti string, _ time.Time) error {
	m.logoutJTI = jti
	return m.logoutErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}
func (m *mockAuthService) Current(_ context.Context, _ string) (*dto.MasterResponse, error) {
	return m.currentResult, m.currentErr
}

// ── Mock OrbitService ──

type mockOrbitService struct {
	createResult *dto.OrbitResponse
	createErr    error
	getResult    *dto.OrbitResponse
	getErr       error
	listResult   *dto.PageResult[dto.OrbitResponse]
	listErr      error
	deleteErr    error
}

func (m *mockOrbitService) Create(_ context.Context, _ *dto.CreateOrbitRequest) (*dto.OrbitResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockOrbitService) Get(_ context.Context, _ string) (*dto.OrbitResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockOrbitService) List(_ context.Context, _ *dto.OrbitListRequest) (*dto.PageResult[dto.OrbitResponse], error) {
	return m.listResult, m.listErr
}
func (m *mockOrbitService) Search(_ context.Context, _ string) ([]dto.OrbitResponse, error) {
	return nil, nil
}
func (m *mockOrbitService) Update(_ context.Context, _ string, _ *dto.UpdateOrbitRequest) (*dto.OrbitResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockOrbitService) Activate(_ context.Context, _ string) (*dto.OrbitResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockOrbitService) Deactivate(_ context.Context, _ string) (*dto.OrbitResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockOrbitService) Archive(_ context.Context, _ string) (*dto.OrbitResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockOrbitService) Delete(_ context.Context, _ string) error {
	return m.deleteErr
}

// ── Mock ParticipantService ──

type mockParticipantService struct {
	selectableResult []dto.ParticipantBrief
	excluded         string
	getErr           error
}

func (m *mockParticipantService) Create(_ context.Context, _ *dto.CreateParticipantRequest) (*dto.ParticipantResponse, error) {
	return &dto.ParticipantResponse{}, nil
}
func (m *mockParticipantService) Get(_ context.Context, _ string) (*dto.ParticipantResponse, error) {
	return nil, m.getErr
}
func (m *mockParticipantService) List(_ context.Context, _ *dto.ParticipantListRequest) (*dto.PageResult[dto.ParticipantResponse], error) {
	return &dto.PageResult[dto.ParticipantResponse]{Page: 1, PageSize: 20}, nil
}
func (m *mockParticipantService) Search(_ context.Context, _ string) ([]dto.ParticipantResponse, error) {
	return nil, nil
}
func (m *mockParticipantService) Selectable(_ context.Context, excludeID string) ([]dto.ParticipantBrief, error) {
	m.excluded = excludeID
	return m.selectableResult, nil
}
func (m *mockParticipantService) Update(_ context.Context, _ string, _ *dto.UpdateParticipantRequest) (*dto.ParticipantResponse, error) {
	return nil, m.getErr
}
func (m *mockParticipantService) Activate(_ context.Context, _ string) (*dto.ParticipantResponse, error) {
	return nil, m.getErr
}
func (m *mockParticipantService) Deactivate(_ context.Context, _ string) (*dto.ParticipantResponse, error) {
	return nil, m.getErr
}
func (m *mockParticipantService) Delete(_ context.Context, _ string) error {
	return m.getErr
}

// ── Mock TopicService ──

type mockTopicService struct {
	getResult *dto.TopicDetailResponse
	getErr    error
}

func (m *mockTopicService) Create(_ context.Context, _ *dto.CreateTopicRequest) (*dto.TopicResponse, error) {
	return nil, m.getErr
}
func (m *mockTopicService) Get(_ context.Context, _ string) (*dto.TopicDetailResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockTopicService) List(_ context.Context, _ *dto.TopicListRequest) (*dto.PageResult[dto.TopicResponse], error) {
	return &dto.PageResult[dto.TopicResponse]{Page: 1, PageSize: 20}, m.getErr
}
func (m *mockTopicService) Update(_ context.Context, _ string, _ *dto.UpdateTopicRequest) (*dto.TopicResponse, error) {
	return nil, m.getErr
}
func (m *mockTopicService) Activate(_ context.Context, _ string) (*dto.TopicResponse, error) {
	return nil, m.getErr
}
func (m *mockTopicService) Deactivate(_ context.Context, _ string) (*dto.TopicResponse, error) {
	return nil, m.getErr
}
func (m *mockTopicService) Delete(_ context.Context, _ string) error {
	return m.getErr
}

// ── Mock QuestionService ──

type mockQuestionService struct {
	answerResult *dto.AnswerResponse
	err          error
	gotTopic     string
	gotQuestion  string
	gotAnswer    string
}

func (m *mockQuestionService) AddQuestion(_ context.Context, _ string, _ *dto.CreateQuestionRequest) (*dto.QuestionResponse, error) {
	return &dto.QuestionResponse{}, m.err
}
func (m *mockQuestionService) GetQuestion(_ context.Context, _, _ string) (*dto.QuestionResponse, error) {
	return &dto.QuestionResponse{}, m.err
}
func (m *mockQuestionService) UpdateQuestion(_ context.Context, _, _ string, _ *dto.UpdateQuestionRequest) (*dto.QuestionResponse, error) {
	return &dto.QuestionResponse{}, m.err
}
func (m *mockQuestionService) DeleteQuestion(_ context.Context, _, _ string) error {
	return m.err
}
func (m *mockQuestionService) AddAnswer(_ context.Context, _, _ string, _ *dto.CreateAnswerRequest) (*dto.AnswerResponse, error) {
	return m.answerResult, m.err
}
func (m *mockQuestionService) UpdateAnswer(_ context.Context, _, _, _ string, _ *dto.UpdateAnswerRequest) (*dto.AnswerResponse, error) {
	return m.answerResult, m.err
}
func (m *mockQuestionService) MarkCorrect(_ context.Context, topicSlug, questionID, answerID string) (*dto.AnswerResponse, error) {
	m.gotTopic, m.gotQuestion, m.gotAnswer = topicSlug, questionID, answerID
	return m.answerResult, m.err
}
func (m *mockQuestionService) DeleteAnswer(_ context.Context, _, _, _ string) error {
	return m.err
}

// ── Mock DashboardService ──

type mockDashboardService struct {
	dashboardResult *dto.DashboardResponse
	gotMasterID     string
	createErr       error
}

func (m *mockDashboardService) Dashboard(_ context.Context, masterID string) (*dto.DashboardResponse, error) {
	m.gotMasterID = masterID
	return m.dashboardResult, nil
}
func (m *mockDashboardService) ListQuotes(_ context.Context) ([]dto.QuoteResponse, error) {
	return []dto.QuoteResponse{}, nil
}
func (m *mockDashboardService) CreateQuote(_ context.Context, _ *dto.CreateQuoteRequest) (*dto.QuoteResponse, error) {
	return &dto.QuoteResponse{}, m.createErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportTopic(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:  "test-secret-key-for-unit-testing",
		SessionTTL: time.Hour,
		LoginPath:  "/api/v1/auth/login",
		Cookie:     config.CookieConfig{Name: "cognify_session", SameSite: "Lax"},
	}
}

// withSession 模拟会话中间件注入的上下文
func withSession(c *gin.Context) {
	c.Set(middleware.CtxMasterID, "test-master-id")
	c.Set(middleware.CtxUsername, "admin")
	c.Set(middleware.CtxTokenJTI, "test-jti")
	c.Set(middleware.CtxTokenExp, time.Now().Add(time.Hour))
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.LoginResponse{Token: "test-session-token", Master: dto.MasterResponse{Username: "admin"}},
	}
	h := NewAuthHandler(mock, testAuthConfig(), zap.NewNop())

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := serve(r, http.MethodPost, "/auth/login", jsonBody(dto.LoginRequest{Username: "admin", Password: "Secret123"}))

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际: %d", w.Code)
	}
	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "cognify_session" {
			found = c
		}
	}
	if found == nil {
		t.Fatal("期望设置会话 Cookie")
	}
	if found.Value != "test-session-token" {
		t.Errorf("期望 Cookie 值 test-session-token，实际: %s", found.Value)
	}
	if !found.HttpOnly {
		t.Error("会话 Cookie 应为 HttpOnly")
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	for _, err := range []error{service.ErrWrongPassword, service.ErrAccountInactive, service.ErrAccountNotFound} {
		t.Run(err.Error(), func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{loginErr: err}, testAuthConfig(), zap.NewNop())

			r := gin.New()
			r.POST("/auth/login", h.Login)
			w := serve(r, http.MethodPost, "/auth/login", jsonBody(dto.LoginRequest{Username: "admin", Password: "x"}))

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("期望 401，实际: %d", w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != response.CodeBadCredentials || resp.Message != "Invalid credentials" {
				t.Errorf("期望统一的凭据错误，实际: %d %s", resp.Code, resp.Message)
			}
		})
	}
}

func TestAuthHandler_Login_MissingField(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig(), zap.NewNop())

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := serve(r, http.MethodPost, "/auth/login", jsonBody(map[string]string{"username": "admin"}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，实际: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"field":"password"`) {
		t.Errorf("期望 details 指出 password 字段，实际: %s", w.Body.String())
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig(), zap.NewNop())

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := serve(r, http.MethodPost, "/auth/login", strings.NewReader("invalid json"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际: %d", w.Code)
	}
}

func TestAuthHandler_Register_Closed(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{registerErr: service.ErrRegistrationClosed}, testAuthConfig(), zap.NewNop())

	r := gin.New()
	r.POST("/auth/register", h.Register)
	w := serve(r, http.MethodPost, "/auth/register", jsonBody(dto.RegisterRequest{Username: "a", Password: "b"}))

	if w.Code != http.StatusForbidden {
		t.Errorf("期望 403，实际: %d", w.Code)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	verr := apperrors.Invalid(service.ErrUsernameExists, "username", "a user with that username already exists")
	h := NewAuthHandler(&mockAuthService{registerErr: verr}, testAuthConfig(), zap.NewNop())

	r := gin.New()
	r.POST("/auth/register", h.Register)
	w := serve(r, http.MethodPost, "/auth/register", jsonBody(dto.RegisterRequest{Username: "admin", Password: "Secret123"}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，实际: %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != response.CodeValidation {
		t.Errorf("期望错误码 %d，实际: %d", response.CodeValidation, resp.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock, testAuthConfig(), zap.NewNop())

	r := gin.New()
	r.POST("/auth/logout", func(c *gin.Context) { withSession(c) }, h.Logout)
	w := serve(r, http.MethodPost, "/auth/logout", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际: %d", w.Code)
	}
	if mock.logoutJTI != "test-jti" {
		t.Errorf("期望吊销 test-jti，实际: %q", mock.logoutJTI)
	}
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "cognify_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("期望清除会话 Cookie")
	}
}

func TestAuthHandler_Me_NoSession(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig(), zap.NewNop())

	r := gin.New()
	r.GET("/auth/me", h.Me)
	w := serve(r, http.MethodGet, "/auth/me", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际: %d", w.Code)
	}
}

func TestAuthHandler_ChangePassword_WrongOld(t *testing.T) {
	verr := apperrors.Invalid(service.ErrWrongPassword, "old_password", "current password is incorrect")
	h := NewAuthHandler(&mockAuthService{changePassErr: verr}, testAuthConfig(), zap.NewNop())

	r := gin.New()
	r.PUT("/auth/password", func(c *gin.Context) { withSession(c) }, h.ChangePassword)
	w := serve(r, http.MethodPut, "/auth/password", jsonBody(dto.ChangePasswordRequest{OldPassword: "x", NewPassword: "NewSecret123"}))

	// 字段级错误优先于认证类别
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际: %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// OrbitHandler Tests
// ═══════════════════════════════════════════════════════════

func TestOrbitHandler_List(t *testing.T) {
	mock := &mockOrbitService{listResult: &dto.PageResult[dto.OrbitResponse]{
		List:  []dto.OrbitResponse{{Name: "Distributed Systems", Slug: "distributed-systems"}},
		Total: 1, Page: 1, PageSize: 20,
	}}
	h := NewOrbitHandler(mock, zap.NewNop())

	r := gin.New()
	r.GET("/orbits", h.ListOrbits)
	w := serve(r, http.MethodGet, "/orbits", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"total":1`) {
		t.Errorf("期望分页信息，实际: %s", w.Body.String())
	}
}

func TestOrbitHandler_List_BadStatus(t *testing.T) {
	h := NewOrbitHandler(&mockOrbitService{}, zap.NewNop())

	r := gin.New()
	r.GET("/orbits", h.ListOrbits)
	w := serve(r, http.MethodGet, "/orbits?status=bogus", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际: %d", w.Code)
	}
}

func TestOrbitHandler_Get_NotFound(t *testing.T) {
	h := NewOrbitHandler(&mockOrbitService{getErr: service.ErrOrbitNotFound}, zap.NewNop())

	r := gin.New()
	r.GET("/orbits/:slug", h.GetOrbit)
	w := serve(r, http.MethodGet, "/orbits/missing", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("期望 404，实际: %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != response.CodeNotFound {
		t.Errorf("期望错误码 %d，实际: %d", response.CodeNotFound, resp.Code)
	}
}

func TestOrbitHandler_Create_Validation(t *testing.T) {
	verr := apperrors.Invalid(service.ErrOrbitNameExists, "name", "orbit with this name already exists")
	h := NewOrbitHandler(&mockOrbitService{createErr: verr}, zap.NewNop())

	r := gin.New()
	r.POST("/orbits", h.CreateOrbit)
	w := serve(r, http.MethodPost, "/orbits", jsonBody(dto.CreateOrbitRequest{Name: "Dup"}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，实际: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"field":"name"`) {
		t.Errorf("期望 details 含 name 字段，实际: %s", w.Body.String())
	}
}

func TestOrbitHandler_Delete_InternalError(t *testing.T) {
	h := NewOrbitHandler(&mockOrbitService{deleteErr: errors.New("db down")}, zap.NewNop())

	r := gin.New()
	r.DELETE("/orbits/:slug", h.DeleteOrbit)
	w := serve(r, http.MethodDelete, "/orbits/x", nil)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("期望 500，实际: %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ParticipantHandler Tests
// ═══════════════════════════════════════════════════════════

func TestParticipantHandler_Selectable(t *testing.T) {
	mock := &mockParticipantService{selectableResult: []dto.ParticipantBrief{{ID: "p2", Nickname: "nancy"}}}
	h := NewParticipantHandler(mock, zap.NewNop())

	r := gin.New()
	r.GET("/participants/selectable", h.Selectable)
	w := serve(r, http.MethodGet, "/participants/selectable?exclude=p1", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际: %d", w.Code)
	}
	if mock.excluded != "p1" {
		t.Errorf("期望排除 p1，实际: %q", mock.excluded)
	}
}

func TestParticipantHandler_Get_NotFound(t *testing.T) {
	h := NewParticipantHandler(&mockParticipantService{getErr: service.ErrParticipantNotFound}, zap.NewNop())

	r := gin.New()
	r.GET("/participants/:id", h.GetParticipant)
	w := serve(r, http.MethodGet, "/participants/nope", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际: %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// TopicHandler Tests
// ═══════════════════════════════════════════════════════════

func TestTopicHandler_Get(t *testing.T) {
	mock := &mockTopicService{getResult: &dto.TopicDetailResponse{
		TopicResponse: dto.TopicResponse{Slug: "replication-strategies", Title: "Replication Strategies"},
	}}
	h := NewTopicHandler(mock, &mockExportService{}, zap.NewNop())

	r := gin.New()
	r.GET("/topics/:slug", h.GetTopic)
	w := serve(r, http.MethodGet, "/topics/replication-strategies", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Replication Strategies") {
		t.Errorf("期望返回主题，实际: %s", w.Body.String())
	}
}

func TestTopicHandler_Export(t *testing.T) {
	tests := []struct {
		name     string
		mock     *mockExportService
		wantCode int
	}{
		{"导出成功", &mockExportService{buf: bytes.NewBufferString("xlsx"), filename: "topic_x.xlsx"}, http.StatusOK},
		{"主题无问题", &mockExportService{err: service.ErrExportNoQuestions}, http.StatusBadRequest},
		{"主题不存在", &mockExportService{err: service.ErrTopicNotFound}, http.StatusNotFound},
		{"生成失败", &mockExportService{err: service.ErrExportGenerateFail}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTopicHandler(&mockTopicService{}, tt.mock, zap.NewNop())

			r := gin.New()
			r.GET("/topics/:slug/export", h.ExportTopic)
			w := serve(r, http.MethodGet, "/topics/x/export", nil)

			if w.Code != tt.wantCode {
				t.Fatalf("期望 %d，实际: %d", tt.wantCode, w.Code)
			}
			if tt.wantCode == http.StatusOK {
				if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
					t.Errorf("期望 xlsx Content-Type，实际: %s", ct)
				}
				if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "topic_x.xlsx") {
					t.Errorf("期望附件文件名，实际: %s", cd)
				}
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// QuestionHandler Tests
// ═══════════════════════════════════════════════════════════

func TestQuestionHandler_MarkCorrect(t *testing.T) {
	mock := &mockQuestionService{answerResult: &dto.AnswerResponse{ID: "a1", IsCorrect: true}}
	h := NewQuestionHandler(mock, zap.NewNop())

	r := gin.New()
	r.POST("/topics/:slug/questions/:question_id/answers/:answer_id/correct", h.MarkCorrect)
	w := serve(r, http.MethodPost, "/topics/t/questions/q1/answers/a1/correct", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际: %d", w.Code)
	}
	if mock.gotTopic != "t" || mock.gotQuestion != "q1" || mock.gotAnswer != "a1" {
		t.Errorf("路径参数传递错误: %s/%s/%s", mock.gotTopic, mock.gotQuestion, mock.gotAnswer)
	}
}

func TestQuestionHandler_AnswerParentMismatch(t *testing.T) {
	mock := &mockQuestionService{err: service.ErrAnswerNotFound}
	h := NewQuestionHandler(mock, zap.NewNop())

	r := gin.New()
	r.DELETE("/topics/:slug/questions/:question_id/answers/:answer_id", h.DeleteAnswer)
	w := serve(r, http.MethodDelete, "/topics/t/questions/q2/answers/a1", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际: %d", w.Code)
	}
}

func TestQuestionHandler_AddQuestion_TooShort(t *testing.T) {
	verr := apperrors.Invalid(service.ErrTextTooShort, "question_text", "must be at least 10 characters")
	h := NewQuestionHandler(&mockQuestionService{err: verr}, zap.NewNop())

	r := gin.New()
	r.POST("/topics/:slug/questions", h.AddQuestion)
	w := serve(r, http.MethodPost, "/topics/t/questions", jsonBody(dto.CreateQuestionRequest{QuestionText: "short"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际: %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// DashboardHandler Tests
// ═══════════════════════════════════════════════════════════

func TestDashboardHandler_Dashboard(t *testing.T) {
	mock := &mockDashboardService{dashboardResult: &dto.DashboardResponse{Username: "admin"}}
	h := NewDashboardHandler(mock, zap.NewNop())

	r := gin.New()
	r.GET("/dashboard", func(c *gin.Context) { withSession(c) }, h.Dashboard)
	w := serve(r, http.MethodGet, "/dashboard", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际: %d", w.Code)
	}
	if mock.gotMasterID != "test-master-id" {
		t.Errorf("期望使用会话 master_id，实际: %q", mock.gotMasterID)
	}
}

func TestDashboardHandler_CreateQuote_Blank(t *testing.T) {
	h := NewDashboardHandler(&mockDashboardService{}, zap.NewNop())

	r := gin.New()
	r.POST("/quotes", h.CreateQuote)
	w := serve(r, http.MethodPost, "/quotes", jsonBody(map[string]string{"author": "anon"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("缺少 quote 期望 400，实际: %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// 错误映射
// ═══════════════════════════════════════════════════════════

func TestNotFoundMessage(t *testing.T) {
	err := fmt.Errorf("wrap: %w", service.ErrTopicNotFound)
	if got := notFoundMessage(err); strings.Contains(got, "not found") {
		t.Errorf("期望去掉类别后缀，实际: %q", got)
	}
}
