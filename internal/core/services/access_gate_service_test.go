package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/edu_center_app/internal/apperrors"
	"github.com/SscSPs/edu_center_app/internal/core/domain"
	portssvc "github.com/SscSPs/edu_center_app/internal/core/ports/services"
	"github.com/SscSPs/edu_center_app/internal/core/services"
)

type AccessGateServiceTestSuite struct {
	suite.Suite
	mockRepo *MockGroupRepository
	gate     portssvc.AccessGateSvc
	ctx      context.Context
	group    *domain.Group
}

func (s *AccessGateServiceTestSuite) SetupTest() {
	s.mockRepo = new(MockGroupRepository)
	s.gate = services.NewAccessGateService(s.mockRepo)
	s.ctx = context.Background()
	mentor := "mentor-primary"
	s.group = &domain.Group{GroupID: "g1", CenterID: "center-1", MentorID: &mentor, TotalWeeks: 10}
}

func (s *AccessGateServiceTestSuite) TearDownTest() {
	s.mockRepo.AssertExpectations(s.T())
}

func TestAccessGateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccessGateServiceTestSuite))
}

func strPtr(v string) *string { return &v }

func (s *AccessGateServiceTestSuite) TestGroupNotFound() {
	s.mockRepo.On("FindGroupByID", s.ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.gate.AuthorizeGroupAccess(s.ctx, domain.SystemPrincipal(), "missing", domain.CapabilityRead)
	s.Require().Error(err)
	s.True(errors.Is(err, apperrors.ErrNotFound))
}

func (s *AccessGateServiceTestSuite) TestAdminWithoutCenterScopeIsAllowed() {
	s.mockRepo.On("FindGroupByID", s.ctx, "g1").Return(s.group, nil).Once()

	p := domain.Principal{ID: "admin-1", Type: domain.PrincipalAdmin, Roles: []domain.Role{domain.RoleSuperAdmin}}
	group, err := s.gate.AuthorizeGroupAccess(s.ctx, p, "g1", domain.CapabilityWrite)
	s.Require().NoError(err)
	s.Equal("g1", group.GroupID)
}

func (s *AccessGateServiceTestSuite) TestCenterMatchShortcut() {
	s.mockRepo.On("FindGroupByID", s.ctx, "g1").Return(s.group, nil).Once()

	// No membership lookups are expected: the center match decides.
	p := domain.Principal{ID: "student-9", Type: domain.PrincipalStudent, CenterID: strPtr("center-1")}
	_, err := s.gate.AuthorizeGroupAccess(s.ctx, p, "g1", domain.CapabilityRead)
	s.NoError(err)
}

func (s *AccessGateServiceTestSuite) TestAdminOfOtherCenterSeesNotFound() {
	s.mockRepo.On("FindGroupByID", s.ctx, "g1").Return(s.group, nil).Once()

	p := domain.Principal{ID: "admin-2", Type: domain.PrincipalAdmin, Roles: []domain.Role{domain.RoleCenterAdmin}, CenterID: strPtr("center-2")}
	_, err := s.gate.AuthorizeGroupAccess(s.ctx, p, "g1", domain.CapabilityRead)
	s.Require().Error(err)
	s.True(errors.Is(err, apperrors.ErrNotFound))
}

func (s *AccessGateServiceTestSuite) TestPrimaryMentorIsAllowed() {
	s.mockRepo.On("FindGroupByID", s.ctx, "g1").Return(s.group, nil).Once()

	p := domain.Principal{ID: "mentor-primary", Type: domain.PrincipalMentor, CenterID: strPtr("center-2")}
	_, err := s.gate.AuthorizeGroupAccess(s.ctx, p, "g1", domain.CapabilityWrite)
	s.NoError(err)
}

func (s *AccessGateServiceTestSuite) TestCoMentorAssignment() {
	s.mockRepo.On("FindGroupByID", s.ctx, "g1").Return(s.group, nil).Times(3)
	s.mockRepo.On("FindMentorAssignment", s.ctx, "g1", "co-active").
		Return(&domain.MentorAssignment{GroupID: "g1", MentorID: "co-active", IsActive: true}, nil).Once()
	s.mockRepo.On("FindMentorAssignment", s.ctx, "g1", "co-deleted").
		Return(&domain.MentorAssignment{GroupID: "g1", MentorID: "co-deleted", IsActive: true, IsDeleted: true}, nil).Once()
	s.mockRepo.On("FindMentorAssignment", s.ctx, "g1", "stranger").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.gate.AuthorizeGroupAccess(s.ctx, domain.Principal{ID: "co-active", Type: domain.PrincipalMentor}, "g1", domain.CapabilityWrite)
	s.NoError(err)

	_, err = s.gate.AuthorizeGroupAccess(s.ctx, domain.Principal{ID: "co-deleted", Type: domain.PrincipalMentor}, "g1", domain.CapabilityRead)
	s.True(errors.Is(err, apperrors.ErrForbidden))

	_, err = s.gate.AuthorizeGroupAccess(s.ctx, domain.Principal{ID: "stranger", Type: domain.PrincipalMentor}, "g1", domain.CapabilityRead)
	s.True(errors.Is(err, apperrors.ErrForbidden))
}

func (s *AccessGateServiceTestSuite) TestStudentMembership() {
	s.mockRepo.On("FindGroupByID", s.ctx, "g1").Return(s.group, nil).Times(3)
	s.mockRepo.On("FindMembership", s.ctx, "g1", "active").
		Return(&domain.GroupMembership{GroupID: "g1", StudentID: "active", IsActive: true}, nil).Once()
	s.mockRepo.On("FindMembership", s.ctx, "g1", "left").
		Return(&domain.GroupMembership{GroupID: "g1", StudentID: "left", IsActive: false}, nil).Once()

	_, err := s.gate.AuthorizeGroupAccess(s.ctx, domain.Principal{ID: "active", Type: domain.PrincipalStudent}, "g1", domain.CapabilityRead)
	s.NoError(err)

	_, err = s.gate.AuthorizeGroupAccess(s.ctx, domain.Principal{ID: "left", Type: domain.PrincipalStudent}, "g1", domain.CapabilityRead)
	s.True(errors.Is(err, apperrors.ErrForbidden))

	// Students never write, even inside their own center.
	_, err = s.gate.AuthorizeGroupAccess(s.ctx, domain.Principal{ID: "active", Type: domain.PrincipalStudent, CenterID: strPtr("center-1")}, "g1", domain.CapabilityWrite)
	s.True(errors.Is(err, apperrors.ErrForbidden))
}

func (s *AccessGateServiceTestSuite) TestMissingPrincipalIDIsDenied() {
	s.mockRepo.On("FindGroupByID", s.ctx, "g1").Return(s.group, nil).Once()

	_, err := s.gate.AuthorizeGroupAccess(s.ctx, domain.Principal{Type: domain.PrincipalMentor}, "g1", domain.CapabilityRead)
	s.True(errors.Is(err, apperrors.ErrForbidden))
}

func (s *AccessGateServiceTestSuite) TestStoreFailureIsNotMaskedAsDenial() {
	storeErr := errors.New("connection reset")
	s.mockRepo.On("FindGroupByID", s.ctx, "g1").Return(s.group, nil).Once()
	s.mockRepo.On("FindMembership", s.ctx, "g1", "s1").Return(nil, storeErr).Once()

	_, err := s.gate.AuthorizeGroupAccess(s.ctx, domain.Principal{ID: "s1", Type: domain.PrincipalStudent}, "g1", domain.CapabilityRead)
	s.Require().Error(err)
	s.True(errors.Is(err, storeErr))
	s.False(errors.Is(err, apperrors.ErrForbidden))
}
