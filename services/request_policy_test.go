package services

import (
	"testing"

	"github.com/kendall-kelly/campus-requests-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelFromHeader(t *testing.T) {
	tests := []struct {
		header string
		want   Channel
	}{
		{"mobile", ChannelMobile},
		{"Mobile", ChannelMobile},
		{" MOBILE ", ChannelMobile},
		{"web", ChannelWeb},
		{"", ChannelWeb},
		{"ios", ChannelWeb},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, ChannelFromHeader(tt.header))
		})
	}
}

func TestRequestPolicy_Evaluate(t *testing.T) {
	transcript := &models.RequestType{ID: 1, Name: "Transcript", UnitPrice: 10}
	enrollment := &models.RequestType{ID: 2, Name: "Enrollment Proof", UnitPrice: 5}
	certificate := &models.RequestType{ID: 3, Name: "Graduation Certificate", UnitPrice: 50}

	policy := NewRequestPolicy(DefaultMaxRequestCount)

	tests := []struct {
		name      string
		in        PolicyInput
		wantKind  ErrorKind
		wantCode  string
		wantCount int
		wantTotal float64
	}{
		{
			name:      "student transcript from mobile",
			in:        PolicyInput{Role: models.RoleStudent, Channel: ChannelMobile, RequestType: transcript, Count: 2},
			wantCount: 2,
			wantTotal: 20,
		},
		{
			name:     "web channel denied before anything else",
			in:       PolicyInput{Role: models.RoleStudent, Channel: ChannelWeb, RequestType: transcript, Count: 2},
			wantKind: KindPolicy,
			wantCode: CodeChannelNotAllowed,
		},
		{
			name:     "web channel denied even for a missing type",
			in:       PolicyInput{Role: models.RoleStudent, Channel: ChannelWeb, RequestTypeID: 99, Count: 2},
			wantKind: KindPolicy,
			wantCode: CodeChannelNotAllowed,
		},
		{
			name:     "admin denied",
			in:       PolicyInput{Role: models.RoleAdmin, Channel: ChannelMobile, RequestType: transcript, Count: 1},
			wantKind: KindPolicy,
			wantCode: CodeRoleNotAllowed,
		},
		{
			name:     "admin denied even for a missing type and bad count",
			in:       PolicyInput{Role: models.RoleAdmin, Channel: ChannelMobile, RequestTypeID: 99, Count: 0},
			wantKind: KindPolicy,
			wantCode: CodeRoleNotAllowed,
		},
		{
			name:     "missing type",
			in:       PolicyInput{Role: models.RoleStudent, Channel: ChannelMobile, RequestTypeID: 99, Count: 1},
			wantKind: KindNotFound,
			wantCode: CodeRequestTypeNotFound,
		},
		{
			name:     "student cannot request graduation certificate",
			in:       PolicyInput{Role: models.RoleStudent, Channel: ChannelMobile, RequestType: certificate, Count: 1},
			wantKind: KindPolicy,
			wantCode: CodeTypeRestricted,
		},
		{
			name:     "graduate cannot request enrollment",
			in:       PolicyInput{Role: models.RoleGraduate, Channel: ChannelMobile, RequestType: enrollment, Count: 1},
			wantKind: KindPolicy,
			wantCode: CodeTypeRestricted,
		},
		{
			name:      "graduate count is clamped to one",
			in:        PolicyInput{Role: models.RoleGraduate, Channel: ChannelMobile, RequestType: certificate, Count: 3},
			wantCount: 1,
			wantTotal: 50,
		},
		{
			name:      "graduate count of zero is still one",
			in:        PolicyInput{Role: models.RoleGraduate, Channel: ChannelMobile, RequestType: certificate, Count: 0},
			wantCount: 1,
			wantTotal: 50,
		},
		{
			name:     "student count zero",
			in:       PolicyInput{Role: models.RoleStudent, Channel: ChannelMobile, RequestType: transcript, Count: 0},
			wantKind: KindValidation,
			wantCode: CodeInvalidCount,
		},
		{
			name:     "student count above maximum",
			in:       PolicyInput{Role: models.RoleStudent, Channel: ChannelMobile, RequestType: transcript, Count: 6},
			wantKind: KindValidation,
			wantCode: CodeInvalidCount,
		},
		{
			name:      "student count at maximum",
			in:        PolicyInput{Role: models.RoleStudent, Channel: ChannelMobile, RequestType: transcript, Count: 5},
			wantCount: 5,
			wantTotal: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowance, err := policy.Evaluate(tt.in)
			if tt.wantKind != "" {
				assertKind(t, err, tt.wantKind, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, allowance.EffectiveCount)
			assert.InDelta(t, tt.wantTotal, allowance.TotalPrice, 0.001)
		})
	}
}

func TestRequestPolicy_ConfiguredMaximum(t *testing.T) {
	transcript := &models.RequestType{ID: 1, Name: "Transcript", UnitPrice: 1.1}

	policy := NewRequestPolicy(10)
	allowance, err := policy.Evaluate(PolicyInput{
		Role: models.RoleStudent, Channel: ChannelMobile, RequestType: transcript, Count: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 11.0, allowance.TotalPrice)

	assert.Equal(t, DefaultMaxRequestCount, NewRequestPolicy(0).MaxCount)
}

func TestMatchesName(t *testing.T) {
	assert.True(t, MatchesName(&models.RequestType{Name: "Official GRADUATION Certificate"}, GraduationCertificateKeyword))
	assert.True(t, MatchesName(&models.RequestType{Name: "Proof of enrollment"}, EnrollmentKeyword))
	assert.False(t, MatchesName(&models.RequestType{Name: "Transcript"}, EnrollmentKeyword))
	assert.False(t, MatchesName(nil, EnrollmentKeyword))
}

func TestAuthorize(t *testing.T) {
	student := Actor{ID: 1, Role: models.RoleStudent}
	admin := Actor{ID: 2, Role: models.RoleAdmin}

	assert.NoError(t, Authorize(student, CapabilityManageOwnRequests))
	assertKind(t, Authorize(student, CapabilityReviewRequests), KindForbidden, CodeForbidden)
	assert.NoError(t, Authorize(admin, CapabilityReviewRequests))
	assertKind(t, Authorize(admin, CapabilityManageOwnRequests), KindForbidden, CodeForbidden)
	assertKind(t, Authorize(Actor{}, CapabilityManageOwnRequests), KindForbidden, CodeForbidden)
}
