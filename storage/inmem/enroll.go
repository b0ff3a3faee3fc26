package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/elimuhub/elimu/core/enroll"
)

type enrollmentRepository struct {
	db *DB
}

var _ enroll.Repository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(db *DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (repo enrollmentRepository) CreateEnrollment(_ context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for _, stored := range repo.db.enrollments {
		if stored.Payment.TransactionID == enr.Payment.TransactionID {
			return enroll.Enrollment{}, enroll.ErrTransactionIDExists
		}
	}
	repo.db.enrollments[enr.ID] = enr
	return enr, nil
}

func (repo enrollmentRepository) GetEnrollmentByID(_ context.Context, id string) (enroll.Enrollment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	if enr, ok := repo.db.enrollments[id]; ok {
		return enr, nil
	}
	return enroll.Enrollment{}, enroll.ErrNotFound
}

func (repo enrollmentRepository) FilterEnrollments(_ context.Context, filter enroll.QueryFilter) ([]enroll.Enrollment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	enrs := make([]enroll.Enrollment, 0)
	for _, enr := range repo.db.enrollments {
		if filter.Status != "" && enr.Status != filter.Status {
			continue
		}
		if filter.UserID != "" && enr.User.ID != filter.UserID {
			continue
		}
		if filter.CourseID != "" && enr.Course.ID != filter.CourseID {
			continue
		}
		enrs = append(enrs, enr)
	}
	sort.Slice(enrs, func(i, j int) bool { return enrs[i].SubmittedAt.After(enrs[j].SubmittedAt) })
	return enrs, nil
}

func (repo enrollmentRepository) UpdateEnrollment(_ context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	if _, ok := repo.db.enrollments[enr.ID]; !ok {
		return enroll.Enrollment{}, enroll.ErrNotFound
	}
	repo.db.enrollments[enr.ID] = enr
	return enr, nil
}

func (repo enrollmentRepository) CreateCourseAccess(_ context.Context, access enroll.CourseAccess) (enroll.CourseAccess, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for _, stored := range repo.db.accesses {
		if stored.EnrollmentID == access.EnrollmentID {
			return enroll.CourseAccess{}, enroll.ErrAccessExists
		}
	}
	repo.db.accesses[access.ID] = access
	return access, nil
}

func (repo enrollmentRepository) QueryCourseAccessesByUser(_ context.Context, userID string) ([]enroll.CourseAccess, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	accesses := make([]enroll.CourseAccess, 0)
	for _, access := range repo.db.accesses {
		if access.UserID == userID {
			accesses = append(accesses, access)
		}
	}
	sort.Slice(accesses, func(i, j int) bool { return accesses[i].GrantedAt.After(accesses[j].GrantedAt) })
	return accesses, nil
}

func (repo enrollmentRepository) TouchCourseAccess(_ context.Context, id string, at time.Time) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	access, ok := repo.db.accesses[id]
	if !ok {
		return enroll.ErrNotFound
	}
	access.LastAccessedAt = at
	repo.db.accesses[id] = access
	return nil
}
