package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/kendall-kelly/campus-requests-api/models"
)

// DefaultMaxRequestCount is the upper bound on copies per request when none is configured
const DefaultMaxRequestCount = 5

// Name fragments that restrict which roles may request a catalog entry
const (
	GraduationCertificateKeyword = "graduation certificate"
	EnrollmentKeyword            = "enrollment"
)

// Channel identifies the client a submission originated from
type Channel string

const (
	ChannelMobile Channel = "mobile"
	ChannelWeb    Channel = "web"
)

// ChannelFromHeader maps the X-From header value to a channel.
// Only "mobile" is recognised; anything else counts as web.
func ChannelFromHeader(value string) Channel {
	if strings.EqualFold(strings.TrimSpace(value), string(ChannelMobile)) {
		return ChannelMobile
	}
	return ChannelWeb
}

// PolicyInput carries everything the policy needs to decide on a submission.
// RequestType is nil when the requested catalog entry does not exist.
type PolicyInput struct {
	Role          string
	Channel       Channel
	RequestTypeID uint
	RequestType   *models.RequestType
	Count         int
}

// Allowance is the outcome of an accepted submission
type Allowance struct {
	EffectiveCount int
	TotalPrice     float64
}

// RequestPolicy decides whether a submission may proceed. It has no side effects.
type RequestPolicy struct {
	MaxCount int
}

// NewRequestPolicy returns a policy bounded by maxCount, falling back to DefaultMaxRequestCount
func NewRequestPolicy(maxCount int) RequestPolicy {
	if maxCount < 1 {
		maxCount = DefaultMaxRequestCount
	}
	return RequestPolicy{MaxCount: maxCount}
}

type policyRule func(p RequestPolicy, in PolicyInput) *AppError

// Evaluated in order; the first rule that fails decides the outcome.
var submissionRules = []policyRule{
	channelGate,
	roleGate,
	catalogPresence,
	catalogRestriction,
	quantityRange,
}

// Evaluate runs the submission rules and returns the normalized count and price
func (p RequestPolicy) Evaluate(in PolicyInput) (Allowance, error) {
	for _, rule := range submissionRules {
		if err := rule(p, in); err != nil {
			return Allowance{}, err
		}
	}

	count := in.Count
	if in.Role == models.RoleGraduate {
		count = 1
	}

	return Allowance{
		EffectiveCount: count,
		TotalPrice:     roundPrice(in.RequestType.UnitPrice * float64(count)),
	}, nil
}

func channelGate(_ RequestPolicy, in PolicyInput) *AppError {
	if in.Channel != ChannelMobile {
		return NewPolicyError(CodeChannelNotAllowed, "Submitting requests from the web is not allowed")
	}
	return nil
}

func roleGate(_ RequestPolicy, in PolicyInput) *AppError {
	if in.Role == models.RoleAdmin {
		return NewPolicyError(CodeRoleNotAllowed, "Admins cannot submit requests")
	}
	if in.Role != models.RoleStudent && in.Role != models.RoleGraduate {
		return NewPolicyError(CodeRoleNotAllowed, "Only students and graduates can submit requests")
	}
	return nil
}

func catalogPresence(_ RequestPolicy, in PolicyInput) *AppError {
	if in.RequestType == nil {
		return NewNotFoundError(CodeRequestTypeNotFound, "Request type", in.RequestTypeID)
	}
	return nil
}

func catalogRestriction(_ RequestPolicy, in PolicyInput) *AppError {
	switch in.Role {
	case models.RoleStudent:
		if MatchesName(in.RequestType, GraduationCertificateKeyword) {
			return NewPolicyError(CodeTypeRestricted, "Students cannot request a graduation certificate")
		}
	case models.RoleGraduate:
		if MatchesName(in.RequestType, EnrollmentKeyword) {
			return NewPolicyError(CodeTypeRestricted, "Graduates cannot request an enrollment proof")
		}
	}
	return nil
}

func quantityRange(p RequestPolicy, in PolicyInput) *AppError {
	if in.Role == models.RoleGraduate {
		return nil
	}
	limit := p.MaxCount
	if limit < 1 {
		limit = DefaultMaxRequestCount
	}
	if in.Count < 1 || in.Count > limit {
		err := NewValidationError(fmt.Sprintf("count must be between 1 and %d", limit), map[string]string{
			"count": fmt.Sprintf("must be between 1 and %d", limit),
		})
		err.Code = CodeInvalidCount
		return err
	}
	return nil
}

// MatchesName reports whether the request type name contains fragment, ignoring case
func MatchesName(rt *models.RequestType, fragment string) bool {
	if rt == nil {
		return false
	}
	return strings.Contains(strings.ToLower(rt.Name), strings.ToLower(fragment))
}

func roundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}
