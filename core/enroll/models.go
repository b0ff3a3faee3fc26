package enroll

import (
	"time"

	"github.com/elimuhub/elimu/core"
)

// Enrollment statuses. A record is created pending and transitions exactly
// once, to approved or rejected; both are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Review decisions accepted by Service.Review.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

type (
	// UserRef denormalizes the submitter onto the enrollment so admin lists
	// and notification emails need no extra lookup.
	UserRef struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}

	CourseRef struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	// Payment carries the user-supplied proof of payment. TransactionID is
	// unique across all enrollments.
	Payment struct {
		Amount        float64 `json:"amount"`
		Currency      string  `json:"currency,omitempty"`
		Method        string  `json:"method"`
		TransactionID string  `json:"transaction_id"`
		ProofURL      string  `json:"proof_url,omitempty"`
		ProofFilename string  `json:"proof_filename,omitempty"`
		ProofMimeType string  `json:"proof_mime_type,omitempty"`
	}

	// Review holds the admin decision metadata; zero until the record leaves
	// the pending status.
	Review struct {
		Notes      string    `json:"notes,omitempty"`
		ReviewedBy string    `json:"reviewed_by,omitempty"`
		ReviewedAt time.Time `json:"reviewed_at,omitempty"` // UTC
	}

	Enrollment struct {
		ID          string    `json:"id"`
		User        UserRef   `json:"user"`
		Course      CourseRef `json:"course"`
		Payment     Payment   `json:"payment"`
		CouponCode  string    `json:"coupon_code,omitempty"`
		Discount    float64   `json:"discount,omitempty"`
		Status      string    `json:"status"`
		Review      Review    `json:"review"`
		SubmittedAt time.Time `json:"submitted_at"` // UTC
		UpdatedAt   time.Time `json:"updated_at"`   // UTC
	}

	// CourseAccess asserts that a user may access a course; created only as a
	// side effect of an enrollment transitioning to approved. No removal path.
	CourseAccess struct {
		ID             string    `json:"id"`
		UserID         string    `json:"user_id"`
		CourseID       string    `json:"course_id"`
		EnrollmentID   string    `json:"enrollment_id"`
		GrantedAt      time.Time `json:"granted_at"` // UTC
		ExpiresAt      time.Time `json:"expires_at,omitempty"`
		LastAccessedAt time.Time `json:"last_accessed_at,omitempty"`
	}
)

func (e *Enrollment) IsPending() bool { return e.Status == StatusPending }

// NewEnrollment contains the payment-proof form filled by the user.
type NewEnrollment struct {
	UserID        string  `json:"user_id" validate:"required"`
	CourseID      string  `json:"course_id" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Currency      string  `json:"currency"`
	Method        string  `json:"method" validate:"required"`
	TransactionID string  `json:"transaction_id" validate:"required"`
	ProofURL      string  `json:"proof_url" validate:"omitempty,url"`
	ProofFilename string  `json:"proof_filename"`
	ProofMimeType string  `json:"proof_mime_type"`
	CouponCode    string  `json:"coupon_code"`
	Discount      float64 `json:"discount" validate:"gte=0"`
}

func (ne *NewEnrollment) Validate() error {
	ne.Method = core.CleanString(ne.Method, true /* lower */)
	ne.TransactionID = core.CleanString(ne.TransactionID)
	ne.CouponCode = core.CleanString(ne.CouponCode, true /* lower */)
	return core.Validate.Struct(ne)
}

// ReviewEnrollment is the admin's decision on a pending enrollment.
type ReviewEnrollment struct {
	Decision   string `json:"decision" validate:"required"`
	Notes      string `json:"notes"`
	ReviewedBy string `json:"reviewed_by"`
}

func (re *ReviewEnrollment) Validate() error {
	re.Decision = core.CleanString(re.Decision, true /* lower */)
	re.Notes = core.CleanString(re.Notes)
	return core.Validate.Struct(re)
}

// QueryFilter narrows enrollment lists; zero-valued fields are ignored.
type QueryFilter struct {
	Status   string `query:"status"`
	UserID   string `query:"user_id"`
	CourseID string `query:"course_id"`
}

func (f *QueryFilter) Clean() {
	f.Status = core.CleanString(f.Status, true /* lower */)
	f.UserID = core.CleanString(f.UserID)
	f.CourseID = core.CleanString(f.CourseID)
}
