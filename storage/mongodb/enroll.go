package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/elimuhub/elimu/core/enroll"
)

type (
	enrollmentDoc struct {
		ID          string     `bson:"_id"`
		User        userRef    `bson:"user"`
		Course      courseRef  `bson:"course"`
		Payment     paymentDoc `bson:"payment"`
		CouponCode  string     `bson:"coupon_code,omitempty"`
		Discount    float64    `bson:"discount,omitempty"`
		Status      string     `bson:"status"`
		Review      reviewDoc  `bson:"review,omitempty"`
		SubmittedAt time.Time  `bson:"submitted_at"`
		UpdatedAt   time.Time  `bson:"updated_at"`
	}

	userRef struct {
		ID    string `bson:"id"`
		Email string `bson:"email"`
		Name  string `bson:"name"`
	}

	courseRef struct {
		ID   string `bson:"id"`
		Name string `bson:"name"`
	}

	paymentDoc struct {
		Amount        float64 `bson:"amount"`
		Currency      string  `bson:"currency,omitempty"`
		Method        string  `bson:"method"`
		TransactionID string  `bson:"transaction_id"`
		ProofURL      string  `bson:"proof_url,omitempty"`
		ProofFilename string  `bson:"proof_filename,omitempty"`
		ProofMimeType string  `bson:"proof_mime_type,omitempty"`
	}

	reviewDoc struct {
		Notes      string    `bson:"notes,omitempty"`
		ReviewedBy string    `bson:"reviewed_by,omitempty"`
		ReviewedAt time.Time `bson:"reviewed_at,omitempty"`
	}

	accessDoc struct {
		ID             string    `bson:"_id"`
		UserID         string    `bson:"user_id"`
		CourseID       string    `bson:"course_id"`
		EnrollmentID   string    `bson:"enrollment_id"`
		GrantedAt      time.Time `bson:"granted_at"`
		ExpiresAt      time.Time `bson:"expires_at,omitempty"`
		LastAccessedAt time.Time `bson:"last_accessed_at,omitempty"`
	}
)

type enrollmentRepository struct {
	enrollments *mongo.Collection
	accesses    *mongo.Collection
}

var _ enroll.Repository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(db *DB) *enrollmentRepository {
	return &enrollmentRepository{
		enrollments: db.db.Collection(colEnrollments),
		accesses:    db.db.Collection(colAccesses),
	}
}

func (repo enrollmentRepository) doc(enr enroll.Enrollment) enrollmentDoc {
	return enrollmentDoc{
		ID:     enr.ID,
		User:   userRef(enr.User),
		Course: courseRef(enr.Course),
		Payment: paymentDoc{
			Amount:        enr.Payment.Amount,
			Currency:      enr.Payment.Currency,
			Method:        enr.Payment.Method,
			TransactionID: enr.Payment.TransactionID,
			ProofURL:      enr.Payment.ProofURL,
			ProofFilename: enr.Payment.ProofFilename,
			ProofMimeType: enr.Payment.ProofMimeType,
		},
		CouponCode: enr.CouponCode,
		Discount:   enr.Discount,
		Status:     enr.Status,
		Review: reviewDoc{
			Notes:      enr.Review.Notes,
			ReviewedBy: enr.Review.ReviewedBy,
			ReviewedAt: utc(enr.Review.ReviewedAt),
		},
		SubmittedAt: utc(enr.SubmittedAt),
		UpdatedAt:   utc(enr.UpdatedAt),
	}
}

func (repo enrollmentRepository) undoc(doc enrollmentDoc) enroll.Enrollment {
	return enroll.Enrollment{
		ID:     doc.ID,
		User:   enroll.UserRef(doc.User),
		Course: enroll.CourseRef(doc.Course),
		Payment: enroll.Payment{
			Amount:        doc.Payment.Amount,
			Currency:      doc.Payment.Currency,
			Method:        doc.Payment.Method,
			TransactionID: doc.Payment.TransactionID,
			ProofURL:      doc.Payment.ProofURL,
			ProofFilename: doc.Payment.ProofFilename,
			ProofMimeType: doc.Payment.ProofMimeType,
		},
		CouponCode: doc.CouponCode,
		Discount:   doc.Discount,
		Status:     doc.Status,
		Review: enroll.Review{
			Notes:      doc.Review.Notes,
			ReviewedBy: doc.Review.ReviewedBy,
			ReviewedAt: doc.Review.ReviewedAt,
		},
		SubmittedAt: doc.SubmittedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

func (repo enrollmentRepository) CreateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	if _, err := repo.enrollments.InsertOne(ctx, repo.doc(enr)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return enroll.Enrollment{}, enroll.ErrTransactionIDExists
		}
		return enroll.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo enrollmentRepository) GetEnrollmentByID(ctx context.Context, id string) (enroll.Enrollment, error) {
	var doc enrollmentDoc
	if err := repo.enrollments.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return enroll.Enrollment{}, enroll.ErrNotFound
		}
		return enroll.Enrollment{}, errors.Wrap(err, "finding enrollment")
	}
	return repo.undoc(doc), nil
}

func (repo enrollmentRepository) FilterEnrollments(ctx context.Context, filter enroll.QueryFilter) ([]enroll.Enrollment, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.UserID != "" {
		query["user.id"] = filter.UserID
	}
	if filter.CourseID != "" {
		query["course.id"] = filter.CourseID
	}

	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	cursor, err := repo.enrollments.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	defer cursor.Close(ctx)

	var docs []enrollmentDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding enrollments")
	}
	enrs := make([]enroll.Enrollment, 0, len(docs))
	for _, doc := range docs {
		enrs = append(enrs, repo.undoc(doc))
	}
	return enrs, nil
}

func (repo enrollmentRepository) UpdateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	update := bson.M{"$set": bson.M{
		"status": enr.Status,
		"review": reviewDoc{
			Notes:      enr.Review.Notes,
			ReviewedBy: enr.Review.ReviewedBy,
			ReviewedAt: utc(enr.Review.ReviewedAt),
		},
		"updated_at": utc(enr.UpdatedAt),
	}}
	res, err := repo.enrollments.UpdateOne(ctx, bson.M{"_id": enr.ID}, update)
	if err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "updating enrollment")
	}
	if res.MatchedCount == 0 {
		return enroll.Enrollment{}, enroll.ErrNotFound
	}
	return repo.GetEnrollmentByID(ctx, enr.ID)
}

func (repo enrollmentRepository) CreateCourseAccess(ctx context.Context, access enroll.CourseAccess) (enroll.CourseAccess, error) {
	doc := accessDoc{
		ID:             access.ID,
		UserID:         access.UserID,
		CourseID:       access.CourseID,
		EnrollmentID:   access.EnrollmentID,
		GrantedAt:      utc(access.GrantedAt),
		ExpiresAt:      utc(access.ExpiresAt),
		LastAccessedAt: utc(access.LastAccessedAt),
	}
	if _, err := repo.accesses.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return enroll.CourseAccess{}, enroll.ErrAccessExists
		}
		return enroll.CourseAccess{}, errors.Wrap(err, "inserting course access")
	}
	return access, nil
}

func (repo enrollmentRepository) QueryCourseAccessesByUser(ctx context.Context, userID string) ([]enroll.CourseAccess, error) {
	opts := options.Find().SetSort(bson.D{{Key: "granted_at", Value: -1}})
	cursor, err := repo.accesses.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying course accesses")
	}
	defer cursor.Close(ctx)

	var docs []accessDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding course accesses")
	}
	accesses := make([]enroll.CourseAccess, 0, len(docs))
	for _, doc := range docs {
		accesses = append(accesses, enroll.CourseAccess{
			ID:             doc.ID,
			UserID:         doc.UserID,
			CourseID:       doc.CourseID,
			EnrollmentID:   doc.EnrollmentID,
			GrantedAt:      doc.GrantedAt,
			ExpiresAt:      doc.ExpiresAt,
			LastAccessedAt: doc.LastAccessedAt,
		})
	}
	return accesses, nil
}

func (repo enrollmentRepository) TouchCourseAccess(ctx context.Context, id string, at time.Time) error {
	res, err := repo.accesses.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_accessed_at": utc(at)}})
	if err != nil {
		return errors.Wrap(err, "touching course access")
	}
	if res.MatchedCount == 0 {
		return enroll.ErrNotFound
	}
	return nil
}
