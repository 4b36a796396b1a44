package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/edu_center_app/internal/apperrors"
	"github.com/SscSPs/edu_center_app/internal/core/domain"
	portssvc "github.com/SscSPs/edu_center_app/internal/core/ports/services"
	"github.com/SscSPs/edu_center_app/internal/dto"
	"github.com/SscSPs/edu_center_app/internal/handlers"
	"github.com/SscSPs/edu_center_app/internal/middleware"
	"github.com/SscSPs/edu_center_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock JournalService ---
type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) GenerateWeeklyJournal(ctx context.Context, p domain.Principal, groupID string, weekNumber int) (*domain.GenerateResult, error) {
	args := m.Called(ctx, p, groupID, weekNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GenerateResult), args.Error(1)
}

func (m *MockJournalService) GetJournal(ctx context.Context, p domain.Principal, groupID string, weekNumber int) (*domain.JournalView, error) {
	args := m.Called(ctx, p, groupID, weekNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalView), args.Error(1)
}

func (m *MockJournalService) GetLatestJournal(ctx context.Context, p domain.Principal, groupID string) (*domain.JournalView, error) {
	args := m.Called(ctx, p, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalView), args.Error(1)
}

func (m *MockJournalService) GetJournalByDate(ctx context.Context, p domain.Principal, groupID string, date time.Time) (*domain.JournalView, error) {
	args := m.Called(ctx, p, groupID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalView), args.Error(1)
}

func (m *MockJournalService) GetGroupWeekNumbers(ctx context.Context, p domain.Principal, groupID string) ([]int, error) {
	args := m.Called(ctx, p, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockJournalService) UpdateEntry(ctx context.Context, p domain.Principal, entryID string, patch domain.EntryPatch) (*domain.JournalEntry, error) {
	args := m.Called(ctx, p, entryID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) BackfillCurrentWeekForStudent(ctx context.Context, p domain.Principal, groupID, studentID string) (int, error) {
	args := m.Called(ctx, p, groupID, studentID)
	return args.Int(0), args.Error(1)
}

func (m *MockJournalService) BackfillCurrentWeekForStudents(ctx context.Context, p domain.Principal, groupID string, studentIDs []string) (int, error) {
	args := m.Called(ctx, p, groupID, studentIDs)
	return args.Int(0), args.Error(1)
}

func (m *MockJournalService) RemoveFutureEntriesForStudent(ctx context.Context, p domain.Principal, groupID, studentID string) (int64, error) {
	args := m.Called(ctx, p, groupID, studentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJournalService) OnStudentJoined(ctx context.Context, groupID, studentID string) {
	m.Called(ctx, groupID, studentID)
}

func (m *MockJournalService) OnStudentLeft(ctx context.Context, groupID, studentID string) {
	m.Called(ctx, groupID, studentID)
}

func (m *MockJournalService) ReconcileGroup(ctx context.Context, p domain.Principal, groupID string) (*domain.ReconcileResult, error) {
	args := m.Called(ctx, p, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconcileResult), args.Error(1)
}

func (m *MockJournalService) GetStudentWeekTotals(ctx context.Context, p domain.Principal, groupID string, weekNumber int) ([]domain.StudentWeekTotal, error) {
	args := m.Called(ctx, p, groupID, weekNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StudentWeekTotal), args.Error(1)
}

func (m *MockJournalService) GetGroupWeeklyTotals(ctx context.Context, p domain.Principal, groupID string, weekNumber *int) (*domain.GroupWeeklyTotals, error) {
	args := m.Called(ctx, p, groupID, weekNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupWeeklyTotals), args.Error(1)
}

func (m *MockJournalService) GetGroupPassStats(ctx context.Context, p domain.Principal, groupID string, threshold *decimal.Decimal) (*domain.PassStats, error) {
	args := m.Called(ctx, p, groupID, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PassStats), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

// --- Mock AccessGate ---
type MockAccessGate struct {
	mock.Mock
}

func (m *MockAccessGate) AuthorizeGroupAccess(ctx context.Context, p domain.Principal, groupID string, capability domain.Capability) (*domain.Group, error) {
	args := m.Called(ctx, p, groupID, capability)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

var _ portssvc.AccessGateSvc = (*MockAccessGate)(nil)

// --- Test Suite ---
type HandlersTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockJournal *MockJournalService
	mockAccess  *MockAccessGate
	jwtSecret   string
	issuer      string
}

func (suite *HandlersTestSuite) SetupSuite() {
	suite.Require().NoError(dto.RegisterValidators())
}

func (suite *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.issuer = "edu-test"

	suite.mockJournal = new(MockJournalService)
	suite.mockAccess = new(MockAccessGate)

	v1 := suite.router.Group("/api/v1", middleware.AuthMiddleware(suite.jwtSecret, suite.issuer))
	handlers.RegisterAPIRoutes(v1, &portssvc.ServiceContainer{Journal: suite.mockJournal, Access: suite.mockAccess})
}

// generateTestToken creates a signed mentor token for testing.
func (suite *HandlersTestSuite) generateTestToken(principalID string) string {
	claims := middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    suite.issuer,
			Subject:   principalID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		PrincipalType: "mentor",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *HandlersTestSuite) do(method, url string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken("mentor-1"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func isMentor1(p domain.Principal) bool {
	return p.ID == "mentor-1" && p.Type == domain.PrincipalMentor
}

func sampleJournal() *domain.Journal {
	return &domain.Journal{
		JournalID:  "j1",
		GroupID:    "g1",
		WeekNumber: 1,
		WeekStart:  time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		WeekEnd:    time.Date(2025, 3, 14, 23, 59, 59, 0, time.UTC),
	}
}

// --- Test Cases ---

func (suite *HandlersTestSuite) TestMissingToken() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/groups/g1/weeks", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockJournal.AssertNotCalled(suite.T(), "GetGroupWeekNumbers", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestRegisterRoutes_HealthAndSwagger() {
	services := &portssvc.ServiceContainer{Journal: suite.mockJournal, Access: suite.mockAccess}
	get := func(r *gin.Engine, url string) int {
		req, _ := http.NewRequest(http.MethodGet, url, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	prod := gin.New()
	handlers.RegisterRoutes(prod, &config.Config{JWTSecret: suite.jwtSecret, JWTIssuer: suite.issuer, IsProduction: true}, services)
	suite.Equal(http.StatusOK, get(prod, "/health"))
	suite.Equal(http.StatusNotFound, get(prod, "/swagger/index.html"))
	suite.Equal(http.StatusUnauthorized, get(prod, "/api/v1/groups/g1/weeks"))
}

func (suite *HandlersTestSuite) TestGenerateJournal_Created() {
	suite.mockJournal.On("GenerateWeeklyJournal", mock.Anything, mock.MatchedBy(isMentor1), "g1", 1).
		Return(&domain.GenerateResult{Status: domain.GenerateCreated, Journal: sampleJournal(), EntriesCreated: 12}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/groups/g1/journals", dto.GenerateJournalRequest{WeekNumber: 1})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.GenerateJournalResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("CREATED", resp.Status)
	suite.Equal(12, resp.EntriesCreated)
	suite.Equal("j1", resp.Journal.JournalID)
	suite.mockJournal.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestGenerateJournal_AlreadyExistsIsOK() {
	suite.mockJournal.On("GenerateWeeklyJournal", mock.Anything, mock.Anything, "g1", 1).
		Return(&domain.GenerateResult{Status: domain.GenerateAlreadyExists, Journal: sampleJournal()}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/groups/g1/journals", dto.GenerateJournalRequest{WeekNumber: 1})

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestGenerateJournal_ErrorMapping() {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"sequence", fmt.Errorf("%w: week 3 is out of sequence", apperrors.ErrValidation), http.StatusBadRequest},
		{"not found", apperrors.ErrNotFound, http.StatusNotFound},
		{"forbidden", apperrors.NewForbiddenError("no access"), http.StatusForbidden},
		{"busy", apperrors.NewConflictError("generation in progress"), http.StatusConflict},
		{"store", apperrors.NewAppError(http.StatusInternalServerError, "db down", nil), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			suite.SetupTest()
			suite.mockJournal.On("GenerateWeeklyJournal", mock.Anything, mock.Anything, "g1", 3).Return(nil, tc.err).Once()

			w := suite.do(http.MethodPost, "/api/v1/groups/g1/journals", dto.GenerateJournalRequest{WeekNumber: 3})

			suite.Equal(tc.status, w.Code)
		})
	}
}

func (suite *HandlersTestSuite) TestGenerateJournal_BadBody() {
	w := suite.do(http.MethodPost, "/api/v1/groups/g1/journals", map[string]any{"weekNumber": 0})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockJournal.AssertNotCalled(suite.T(), "GenerateWeeklyJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestGetJournal() {
	view := &domain.JournalView{
		Journal: *sampleJournal(),
		Students: []domain.StudentWeekProgress{
			{StudentID: "s1", FullName: "Alice", IsMembershipActive: true, WeeklyTotal: decimal.NewFromInt(11), Rank: 1},
		},
	}
	suite.mockJournal.On("GetJournal", mock.Anything, mock.Anything, "g1", 2).Return(view, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/groups/g1/journals/2", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.JournalViewResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Students, 1)
	suite.True(resp.Students[0].WeeklyTotal.Equal(decimal.NewFromInt(11)))
}

func (suite *HandlersTestSuite) TestGetJournal_InvalidWeek() {
	w := suite.do(http.MethodGet, "/api/v1/groups/g1/journals/abc", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestGetLatestJournal_NotFound() {
	suite.mockJournal.On("GetLatestJournal", mock.Anything, mock.Anything, "g1").Return(nil, apperrors.ErrNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/groups/g1/journals/latest", nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockJournal.AssertNotCalled(suite.T(), "GetJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestGetJournalByDate() {
	date := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	suite.mockJournal.On("GetJournalByDate", mock.Anything, mock.Anything, "g1", date).
		Return(&domain.JournalView{Journal: *sampleJournal()}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/groups/g1/journals/by-date?date=2025-03-05", nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/groups/g1/journals/by-date?date=05.03.2025", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockJournal.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestListWeekNumbers_EmptyIsArray() {
	suite.mockJournal.On("GetGroupWeekNumbers", mock.Anything, mock.Anything, "g1").Return([]int(nil), nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/groups/g1/weeks", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"groupID":"g1","weeks":[]}`, w.Body.String())
}

func (suite *HandlersTestSuite) TestUpdateEntry() {
	grade := decimal.NewFromInt(5)
	suite.mockJournal.On("UpdateEntry", mock.Anything, mock.Anything, "e1", mock.MatchedBy(func(p domain.EntryPatch) bool {
		return p.Grade != nil && p.Grade.Equal(grade) && p.Attendance != nil && *p.Attendance == domain.AttendancePresent
	})).Return(&domain.JournalEntry{EntryID: "e1", Attendance: domain.AttendancePresent, Grade: &grade}, nil).Once()

	w := suite.do(http.MethodPatch, "/api/v1/entries/e1", map[string]any{"attendance": "PRESENT", "grade": "5"})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.EntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("PRESENT", resp.Attendance)
	suite.mockJournal.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestUpdateEntry_UnknownAttendance() {
	w := suite.do(http.MethodPatch, "/api/v1/entries/e1", map[string]any{"attendance": "ASLEEP"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockJournal.AssertNotCalled(suite.T(), "UpdateEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestGroupTotals_WeekQuery() {
	suite.mockJournal.On("GetGroupWeeklyTotals", mock.Anything, mock.Anything, "g1", mock.MatchedBy(func(w *int) bool {
		return w != nil && *w == 2
	})).Return(&domain.GroupWeeklyTotals{GroupID: "g1"}, nil).Once()
	suite.mockJournal.On("GetGroupWeeklyTotals", mock.Anything, mock.Anything, "g1", (*int)(nil)).
		Return(&domain.GroupWeeklyTotals{GroupID: "g1"}, nil).Once()

	suite.Equal(http.StatusOK, suite.do(http.MethodGet, "/api/v1/groups/g1/totals?week=2", nil).Code)
	suite.Equal(http.StatusOK, suite.do(http.MethodGet, "/api/v1/groups/g1/totals", nil).Code)
	suite.Equal(http.StatusBadRequest, suite.do(http.MethodGet, "/api/v1/groups/g1/totals?week=0", nil).Code)
	suite.mockJournal.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestStudentWeekTotals() {
	totals := []domain.StudentWeekTotal{{StudentID: "s1", WeekNumber: 1, WeeklyTotal: decimal.NewFromInt(11), HasEntries: true}}
	suite.mockJournal.On("GetStudentWeekTotals", mock.Anything, mock.Anything, "g1", 1).Return(totals, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/groups/g1/weeks/1/totals", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp []domain.StudentWeekTotal
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp, 1)
	suite.True(resp[0].WeeklyTotal.Equal(decimal.NewFromInt(11)))
}

func (suite *HandlersTestSuite) TestPassStats_Threshold() {
	suite.mockJournal.On("GetGroupPassStats", mock.Anything, mock.Anything, "g1", mock.MatchedBy(func(t *decimal.Decimal) bool {
		return t != nil && t.Equal(decimal.RequireFromString("72.5"))
	})).Return(&domain.PassStats{GroupID: "g1", PassedCount: 3, TotalStudents: 5}, nil).Once()
	suite.mockJournal.On("GetGroupPassStats", mock.Anything, mock.Anything, "g1", (*decimal.Decimal)(nil)).
		Return(&domain.PassStats{GroupID: "g1"}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/groups/g1/pass-stats?threshold=72.5", nil)
	suite.Equal(http.StatusOK, w.Code)
	var stats domain.PassStats
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &stats))
	suite.Equal(3, stats.PassedCount)
	suite.Equal(5, stats.TotalStudents)

	suite.Equal(http.StatusOK, suite.do(http.MethodGet, "/api/v1/groups/g1/pass-stats", nil).Code)
	suite.Equal(http.StatusBadRequest, suite.do(http.MethodGet, "/api/v1/groups/g1/pass-stats?threshold=high", nil).Code)
	suite.mockJournal.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestBackfill() {
	suite.mockJournal.On("BackfillCurrentWeekForStudents", mock.Anything, mock.Anything, "g1", []string{"s1", "s2"}).Return(6, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/groups/g1/members/backfill", dto.BackfillRequest{StudentIDs: []string{"s1", "s2"}})

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"entriesCreated":6}`, w.Body.String())
	suite.Equal(http.StatusBadRequest, suite.do(http.MethodPost, "/api/v1/groups/g1/members/backfill", map[string]any{}).Code)
}

func (suite *HandlersTestSuite) TestStudentJoined_AuthorizedFiresHook() {
	suite.mockAccess.On("AuthorizeGroupAccess", mock.Anything, mock.MatchedBy(isMentor1), "g1", domain.CapabilityWrite).
		Return(&domain.Group{GroupID: "g1"}, nil).Once()
	suite.mockJournal.On("OnStudentJoined", mock.Anything, "g1", "s9").Once()

	w := suite.do(http.MethodPost, "/api/v1/groups/g1/members/s9/joined", nil)

	suite.Equal(http.StatusAccepted, w.Code)
	suite.mockJournal.AssertExpectations(suite.T())
	suite.mockAccess.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestStudentLeft_ForbiddenSkipsHook() {
	suite.mockAccess.On("AuthorizeGroupAccess", mock.Anything, mock.Anything, "g1", domain.CapabilityWrite).
		Return(nil, apperrors.NewForbiddenError("students cannot write")).Once()

	w := suite.do(http.MethodPost, "/api/v1/groups/g1/members/s9/left", nil)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockJournal.AssertNotCalled(suite.T(), "OnStudentLeft", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestReconcile() {
	suite.mockJournal.On("ReconcileGroup", mock.Anything, mock.Anything, "g1").
		Return(&domain.ReconcileResult{GroupID: "g1", EntriesCreated: 12, EntriesRemoved: 6}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/groups/g1/reconcile", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"groupID":"g1","entriesCreated":12,"entriesRemoved":6}`, w.Body.String())
}

// --- Run Test Suite ---
func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
