package enroll

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/elimuhub/elimu/core"
)

var (
	ErrNotFound            = errors.New("enrollment not found")
	ErrInvalidDecision     = errors.New("decision must be approve or reject")
	ErrAlreadyReviewed     = errors.New("enrollment has already been reviewed")
	ErrTransactionIDExists = errors.New("an enrollment with this transaction id already exists")
	ErrAccessExists        = errors.New("course access already granted for this enrollment")
)

type (
	Repository interface {
		// CreateEnrollment fails with ErrTransactionIDExists when another
		// record carries the same payment transaction id.
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		GetEnrollmentByID(ctx context.Context, id string) (Enrollment, error)
		// FilterEnrollments applies AND on the non-zero QueryFilter fields,
		// newest submissions first.
		FilterEnrollments(ctx context.Context, filter QueryFilter) ([]Enrollment, error)
		UpdateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)

		// CreateCourseAccess enforces at most one grant per enrollment.
		CreateCourseAccess(ctx context.Context, access CourseAccess) (CourseAccess, error)
		QueryCourseAccessesByUser(ctx context.Context, userID string) ([]CourseAccess, error)
		TouchCourseAccess(ctx context.Context, id string, at time.Time) error
	}

	// UserEnrollments is the slice of the user service this workflow needs.
	UserEnrollments interface {
		AppendEnrollment(ctx context.Context, userID, enrollmentID string) error
	}

	Service struct {
		repo    Repository
		users   UserEnrollments
		mailSvc core.EmailService
		logger  core.Logger
	}

	// SubmitResult reports the submission outcome; NotificationSent is false
	// when the confirmation email could not be delivered (the submission
	// itself still succeeded).
	SubmitResult struct {
		Enrollment       Enrollment `json:"enrollment"`
		NotificationSent bool       `json:"notification_sent"`
	}

	// ReviewResult reports the review outcome. AccessGranted is true only for
	// approvals. NotificationSent is false when the status email could not be
	// delivered; the review itself still succeeded.
	ReviewResult struct {
		Enrollment       Enrollment `json:"enrollment"`
		AccessGranted    bool       `json:"access_granted"`
		NotificationSent bool       `json:"notification_sent"`
	}
)

func NewService(repo Repository, users UserEnrollments, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, users: users, mailSvc: mailSvc, logger: logger}
}

// emailData is the flat record consumed by the enrollment email templates.
type emailData struct {
	UserName      string
	CourseName    string
	EnrollmentID  string
	Amount        string
	PaymentMethod string
	TransactionID string
	CourseLink    string
	Notes         string
}

// NewEnrollmentID returns a string token combining the submission timestamp
// with a random suffix.
func NewEnrollmentID(at time.Time) string {
	suffix := strings.SplitN(uuid.New().String(), "-", 2)[0]
	return fmt.Sprintf("ENR-%d-%s", at.UnixNano()/int64(time.Millisecond), suffix)
}

// Submit persists a pending enrollment from the user-filled payment-proof
// form, then notifies the submitter and the admin inbox. Email failures are
// logged and reported via SubmitResult.NotificationSent, never as a
// submission failure.
func (svc *Service) Submit(ctx context.Context, usr UserRef, course CourseRef, ne NewEnrollment) (SubmitResult, error) {
	now := time.Now().UTC()
	enr := Enrollment{
		ID:     NewEnrollmentID(now),
		User:   usr,
		Course: course,
		Payment: Payment{
			Amount:        ne.Amount,
			Currency:      ne.Currency,
			Method:        ne.Method,
			TransactionID: ne.TransactionID,
			ProofURL:      ne.ProofURL,
			ProofFilename: ne.ProofFilename,
			ProofMimeType: ne.ProofMimeType,
		},
		CouponCode:  ne.CouponCode,
		Discount:    ne.Discount,
		Status:      StatusPending,
		SubmittedAt: now,
		UpdatedAt:   now,
	}

	enr, err := svc.repo.CreateEnrollment(ctx, enr)
	if err != nil {
		if errors.Cause(err) == ErrTransactionIDExists {
			return SubmitResult{}, core.NewValidationError(err,
				core.FieldError{Field: "transaction_id", Error: ErrTransactionIDExists.Error()})
		}
		return SubmitResult{}, errors.Wrap(err, "creating enrollment")
	}

	if err = svc.users.AppendEnrollment(ctx, usr.ID, enr.ID); err != nil {
		return SubmitResult{}, errors.Wrap(err, "appending enrollment to user")
	}

	res := SubmitResult{Enrollment: enr, NotificationSent: true}
	data := svc.emailData(enr)
	err = svc.mailSvc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
			Subject:      "Enrollment received",
			TemplateName: "enrollment-submitted",
			TemplateData: data,
		},
		&core.EmailMessage{
			To:      []mail.Address{core.Conf.AdminEmail},
			Subject: "New enrollment pending review",
			BodyStr: fmt.Sprintf(
				"%s (%s) submitted enrollment %s for %q. Amount: %s via %s, transaction %s.",
				usr.Name, usr.Email, enr.ID, course.Name, data.Amount, data.PaymentMethod, data.TransactionID,
			),
		},
	)
	if err != nil {
		svc.logger.Error("sending enrollment submission emails", err)
		res.NotificationSent = false
	}
	return res, nil
}

// Review applies the admin decision on a pending enrollment.
//
// pending -> approved or pending -> rejected; both terminal. Re-reviewing a
// record in a terminal status fails with ErrAlreadyReviewed, which also makes
// the access grant at-most-once. The status update, the access grant and the
// email are sequential with no transaction tying them together; a crash in
// between can leave partial state (the storage's unique grant index caps the
// damage at a missing, re-creatable grant).
func (svc *Service) Review(ctx context.Context, id string, re ReviewEnrollment) (ReviewResult, error) {
	if re.Decision != DecisionApprove && re.Decision != DecisionReject {
		return ReviewResult{}, ErrInvalidDecision
	}

	enr, err := svc.repo.GetEnrollmentByID(ctx, id)
	if err != nil {
		return ReviewResult{}, err
	}
	if !enr.IsPending() {
		return ReviewResult{}, ErrAlreadyReviewed
	}

	now := time.Now().UTC()
	enr.Status = StatusApproved
	templateName := "enrollment-approved"
	subject := "Your enrollment has been approved"
	if re.Decision == DecisionReject {
		enr.Status = StatusRejected
		templateName = "enrollment-rejected"
		subject = "Your enrollment could not be approved"
	}
	enr.Review = Review{
		Notes:      re.Notes,
		ReviewedBy: re.ReviewedBy,
		ReviewedAt: now,
	}
	enr.UpdatedAt = now

	enr, err = svc.repo.UpdateEnrollment(ctx, enr)
	if err != nil {
		return ReviewResult{}, errors.Wrap(err, "updating enrollment")
	}

	res := ReviewResult{Enrollment: enr, NotificationSent: true}
	if enr.Status == StatusApproved {
		access := CourseAccess{
			ID:           uuid.New().String(),
			UserID:       enr.User.ID,
			CourseID:     enr.Course.ID,
			EnrollmentID: enr.ID,
			GrantedAt:    now,
		}
		if _, err = svc.repo.CreateCourseAccess(ctx, access); err != nil {
			return ReviewResult{}, errors.Wrap(err, "granting course access")
		}
		res.AccessGranted = true
	}

	data := svc.emailData(enr)
	err = svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: enr.User.Name, Address: enr.User.Email}},
		Subject:      subject,
		TemplateName: templateName,
		TemplateData: data,
	})
	if err != nil {
		// email failure never fails the review
		svc.logger.Error("sending enrollment review email", err)
		res.NotificationSent = false
	}
	return res, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Enrollment, error) {
	return svc.repo.GetEnrollmentByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Enrollment, error) {
	filter.Clean()
	return svc.repo.FilterEnrollments(ctx, filter)
}

// CourseAccessesForUser powers the user dashboard.
func (svc *Service) CourseAccessesForUser(ctx context.Context, userID string) ([]CourseAccess, error) {
	return svc.repo.QueryCourseAccessesByUser(ctx, userID)
}

// TouchAccess records that the user opened a granted course.
func (svc *Service) TouchAccess(ctx context.Context, id string) error {
	return svc.repo.TouchCourseAccess(ctx, id, time.Now().UTC())
}

func (svc *Service) emailData(enr Enrollment) emailData {
	currency := enr.Payment.Currency
	if currency == "" {
		currency = "usd"
	}
	return emailData{
		UserName:      enr.User.Name,
		CourseName:    enr.Course.Name,
		EnrollmentID:  enr.ID,
		Amount:        fmt.Sprintf("%.2f %s", enr.Payment.Amount, strings.ToUpper(currency)),
		PaymentMethod: enr.Payment.Method,
		TransactionID: enr.Payment.TransactionID,
		CourseLink:    fmt.Sprintf("%s/courses/%s", core.Conf.FrontendBaseURL, enr.Course.ID),
		Notes:         enr.Review.Notes,
	}
}
