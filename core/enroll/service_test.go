package enroll_test

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elimuhub/elimu/core"
	"github.com/elimuhub/elimu/core/enroll"
	"github.com/elimuhub/elimu/core/user"
	emailsvc "github.com/elimuhub/elimu/services/email"
	inmemdb "github.com/elimuhub/elimu/storage/inmem"
)

var nopLogger = core.NewStdLogger(log.New(io.Discard, "", 0))

// failingMailService simulates an unreachable email provider.
type failingMailService struct{}

func (failingMailService) SendMessages(...*core.EmailMessage) error {
	return errors.New("smtp down")
}

func setup(t *testing.T, mailSvc core.EmailService) (*enroll.Service, *user.Service, enroll.Repository) {
	t.Helper()
	db := inmemdb.Open()
	usrSvc := user.NewService(inmemdb.NewUserRepository(db))
	repo := inmemdb.NewEnrollmentRepository(db)
	return enroll.NewService(repo, usrSvc, mailSvc, nopLogger), usrSvc, repo
}

func createUser(t *testing.T, usrSvc *user.Service, uid, email, name string) user.User {
	t.Helper()
	usr, err := usrSvc.Sync(context.Background(), user.SyncUser{UID: uid, Email: email, Name: name})
	require.NoError(t, err)
	return usr
}

func submit(t *testing.T, svc *enroll.Service, usr user.User, txnID string) enroll.SubmitResult {
	t.Helper()
	res, err := svc.Submit(
		context.Background(),
		enroll.UserRef{ID: usr.ID, Email: usr.Email, Name: usr.Name},
		enroll.CourseRef{ID: "crs1", Name: "Intro to Go"},
		enroll.NewEnrollment{
			UserID:        usr.ID,
			CourseID:      "crs1",
			Amount:        49.99,
			Method:        "mpesa",
			TransactionID: txnID,
		},
	)
	require.NoError(t, err)
	return res
}

func TestService_Submit(t *testing.T) {
	emailsvc.ClearSentMessages()
	svc, usrSvc, _ := setup(t, emailsvc.NewConsoleServiceMock())
	usr := createUser(t, usrSvc, "uid1", "jane@test.cd", "Jane")

	res := submit(t, svc, usr, "TXN-001")

	enr := res.Enrollment
	assert.Equal(t, enroll.StatusPending, enr.Status)
	assert.True(t, strings.HasPrefix(enr.ID, "ENR-"))
	assert.Equal(t, usr.ID, enr.User.ID)
	assert.True(t, enr.Review.ReviewedAt.IsZero())
	assert.True(t, res.NotificationSent)

	// enrollment is linked to the user's profile
	usr, err := usrSvc.GetByID(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{enr.ID}, usr.EnrollmentIDs)

	// one email to the submitter, one to the admin inbox
	require.Len(t, emailsvc.SentMessages, 2)
	assert.Equal(t, usr.Email, emailsvc.SentMessages[0].To[0].Address)
	assert.Contains(t, emailsvc.SentMessages[0].TextContent, "Intro to Go")
	assert.Equal(t, core.Conf.AdminEmail.Address, emailsvc.SentMessages[1].To[0].Address)
}

func TestService_Submit_duplicateTransactionID(t *testing.T) {
	emailsvc.ClearSentMessages()
	svc, usrSvc, _ := setup(t, emailsvc.NewConsoleServiceMock())
	usr := createUser(t, usrSvc, "uid1", "jane@test.cd", "Jane")

	submit(t, svc, usr, "TXN-001")

	_, err := svc.Submit(
		context.Background(),
		enroll.UserRef{ID: usr.ID, Email: usr.Email, Name: usr.Name},
		enroll.CourseRef{ID: "crs1", Name: "Intro to Go"},
		enroll.NewEnrollment{
			UserID:        usr.ID,
			CourseID:      "crs1",
			Amount:        49.99,
			Method:        "mpesa",
			TransactionID: "TXN-001",
		},
	)
	require.Error(t, err)
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, "transaction_id", vErr.Fields[0].Field)
}

func TestService_Submit_emailFailureDoesNotFailSubmission(t *testing.T) {
	svc, usrSvc, _ := setup(t, failingMailService{})
	usr := createUser(t, usrSvc, "uid1", "jane@test.cd", "Jane")

	res := submit(t, svc, usr, "TXN-001")
	assert.Equal(t, enroll.StatusPending, res.Enrollment.Status)
	assert.False(t, res.NotificationSent)
}

func TestService_Review_approve(t *testing.T) {
	emailsvc.ClearSentMessages()
	svc, usrSvc, _ := setup(t, emailsvc.NewConsoleServiceMock())
	usr := createUser(t, usrSvc, "uid1", "jane@test.cd", "Jane")
	enr := submit(t, svc, usr, "TXN-001").Enrollment

	res, err := svc.Review(context.Background(), enr.ID, enroll.ReviewEnrollment{
		Decision:   enroll.DecisionApprove,
		Notes:      "looks good",
		ReviewedBy: "admin1",
	})
	require.NoError(t, err)

	assert.Equal(t, enroll.StatusApproved, res.Enrollment.Status)
	assert.Equal(t, "admin1", res.Enrollment.Review.ReviewedBy)
	assert.False(t, res.Enrollment.Review.ReviewedAt.IsZero())
	assert.True(t, res.AccessGranted)
	assert.True(t, res.NotificationSent)

	// exactly one access grant, tied to the enrollment
	accesses, err := svc.CourseAccessesForUser(context.Background(), usr.ID)
	require.NoError(t, err)
	require.Len(t, accesses, 1)
	assert.Equal(t, enr.ID, accesses[0].EnrollmentID)
	assert.Equal(t, "crs1", accesses[0].CourseID)
}

func TestService_Review_reject(t *testing.T) {
	emailsvc.ClearSentMessages()
	svc, usrSvc, _ := setup(t, emailsvc.NewConsoleServiceMock())
	usr := createUser(t, usrSvc, "uid1", "jane@test.cd", "Jane")
	enr := submit(t, svc, usr, "TXN-001").Enrollment

	res, err := svc.Review(context.Background(), enr.ID, enroll.ReviewEnrollment{
		Decision: enroll.DecisionReject,
		Notes:    "proof unreadable",
	})
	require.NoError(t, err)

	assert.Equal(t, enroll.StatusRejected, res.Enrollment.Status)
	assert.False(t, res.AccessGranted)

	// no access grant on rejection
	accesses, err := svc.CourseAccessesForUser(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.Empty(t, accesses)
}

func TestService_Review_notFound(t *testing.T) {
	svc, _, _ := setup(t, emailsvc.NewConsoleServiceMock())

	_, err := svc.Review(context.Background(), "nope", enroll.ReviewEnrollment{Decision: enroll.DecisionApprove})
	assert.Equal(t, enroll.ErrNotFound, errors.Cause(err))
}

func TestService_Review_invalidDecision(t *testing.T) {
	svc, usrSvc, _ := setup(t, emailsvc.NewConsoleServiceMock())
	usr := createUser(t, usrSvc, "uid1", "jane@test.cd", "Jane")
	enr := submit(t, svc, usr, "TXN-001").Enrollment

	_, err := svc.Review(context.Background(), enr.ID, enroll.ReviewEnrollment{Decision: "maybe"})
	assert.Equal(t, enroll.ErrInvalidDecision, errors.Cause(err))

	// record untouched
	enr, err = svc.GetByID(context.Background(), enr.ID)
	require.NoError(t, err)
	assert.Equal(t, enroll.StatusPending, enr.Status)
	assert.True(t, enr.Review.ReviewedAt.IsZero())
}

func TestService_Review_terminalStatusesAreFinal(t *testing.T) {
	svc, usrSvc, _ := setup(t, emailsvc.NewConsoleServiceMock())
	usr := createUser(t, usrSvc, "uid1", "jane@test.cd", "Jane")
	enr := submit(t, svc, usr, "TXN-001").Enrollment

	_, err := svc.Review(context.Background(), enr.ID, enroll.ReviewEnrollment{Decision: enroll.DecisionApprove})
	require.NoError(t, err)

	for _, decision := range []string{enroll.DecisionApprove, enroll.DecisionReject} {
		_, err = svc.Review(context.Background(), enr.ID, enroll.ReviewEnrollment{Decision: decision})
		assert.Equal(t, enroll.ErrAlreadyReviewed, errors.Cause(err))
	}

	// still exactly one access grant
	accesses, err := svc.CourseAccessesForUser(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.Len(t, accesses, 1)
}

func TestService_Review_emailFailureDoesNotFailReview(t *testing.T) {
	svc, usrSvc, _ := setup(t, failingMailService{})
	usr := createUser(t, usrSvc, "uid1", "jane@test.cd", "Jane")
	enr := submit(t, svc, usr, "TXN-001").Enrollment

	res, err := svc.Review(context.Background(), enr.ID, enroll.ReviewEnrollment{Decision: enroll.DecisionApprove})
	require.NoError(t, err)
	assert.Equal(t, enroll.StatusApproved, res.Enrollment.Status)
	assert.True(t, res.AccessGranted)
	assert.False(t, res.NotificationSent)
}

func TestService_TouchAccess(t *testing.T) {
	svc, usrSvc, _ := setup(t, emailsvc.NewConsoleServiceMock())
	usr := createUser(t, usrSvc, "uid1", "jane@test.cd", "Jane")
	enr := submit(t, svc, usr, "TXN-001").Enrollment

	_, err := svc.Review(context.Background(), enr.ID, enroll.ReviewEnrollment{Decision: enroll.DecisionApprove})
	require.NoError(t, err)

	accesses, err := svc.CourseAccessesForUser(context.Background(), usr.ID)
	require.NoError(t, err)
	require.Len(t, accesses, 1)
	require.True(t, accesses[0].LastAccessedAt.IsZero())

	before := time.Now().UTC()
	require.NoError(t, svc.TouchAccess(context.Background(), accesses[0].ID))

	accesses, err = svc.CourseAccessesForUser(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.False(t, accesses[0].LastAccessedAt.Before(before))
}

func TestService_Filter(t *testing.T) {
	svc, usrSvc, _ := setup(t, emailsvc.NewConsoleServiceMock())
	jane := createUser(t, usrSvc, "uid1", "jane@test.cd", "Jane")
	john := createUser(t, usrSvc, "uid2", "john@test.cd", "John")

	e1 := submit(t, svc, jane, "TXN-001").Enrollment
	e2 := submit(t, svc, john, "TXN-002").Enrollment

	_, err := svc.Review(context.Background(), e1.ID, enroll.ReviewEnrollment{Decision: enroll.DecisionApprove})
	require.NoError(t, err)

	got, err := svc.Filter(context.Background(), enroll.QueryFilter{Status: enroll.StatusPending})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, e2.ID, got[0].ID)

	got, err = svc.Filter(context.Background(), enroll.QueryFilter{UserID: jane.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, e1.ID, got[0].ID)
}
