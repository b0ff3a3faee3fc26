package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/elimuhub/elimu/core/user"
)

type userDoc struct {
	ID            string    `bson:"_id"`
	UID           string    `bson:"uid"`
	Email         string    `bson:"email"`
	Name          string    `bson:"name"`
	Avatar        string    `bson:"avatar,omitempty"`
	Role          string    `bson:"role"`
	EnrollmentIDs []string  `bson:"enrollment_ids,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
	LastLogin     time.Time `bson:"last_login"`
}

type userRepository struct {
	col *mongo.Collection
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{col: db.db.Collection(colUsers)}
}

func (repo userRepository) doc(usr user.User) userDoc {
	return userDoc{
		ID:            usr.ID,
		UID:           usr.UID,
		Email:         usr.Email,
		Name:          usr.Name,
		Avatar:        usr.Avatar,
		Role:          usr.Role,
		EnrollmentIDs: usr.EnrollmentIDs,
		CreatedAt:     utc(usr.CreatedAt),
		UpdatedAt:     utc(usr.UpdatedAt),
		LastLogin:     utc(usr.LastLogin),
	}
}

func (repo userRepository) undoc(doc userDoc) user.User {
	return user.User{
		ID:            doc.ID,
		UID:           doc.UID,
		Email:         doc.Email,
		Name:          doc.Name,
		Avatar:        doc.Avatar,
		Role:          doc.Role,
		EnrollmentIDs: doc.EnrollmentIDs,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
		LastLogin:     doc.LastLogin,
	}
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if _, err := repo.col.InsertOne(ctx, repo.doc(usr)); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) getOne(ctx context.Context, filter bson.M) (user.User, error) {
	var doc userDoc
	if err := repo.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user")
	}
	return repo.undoc(doc), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getOne(ctx, bson.M{"_id": id})
}

func (repo userRepository) GetUserByUID(ctx context.Context, uid string) (user.User, error) {
	return repo.getOne(ctx, bson.M{"uid": uid})
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	cursor, err := repo.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	defer cursor.Close(ctx)

	var docs []userDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding users")
	}
	users := make([]user.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, repo.undoc(doc))
	}
	return users, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	update := bson.M{"$set": bson.M{
		"email":      usr.Email,
		"name":       usr.Name,
		"avatar":     usr.Avatar,
		"role":       usr.Role,
		"updated_at": utc(usr.UpdatedAt),
		"last_login": utc(usr.LastLogin),
	}}
	res, err := repo.col.UpdateOne(ctx, bson.M{"_id": usr.ID}, update)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if res.MatchedCount == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo userRepository) AppendUserEnrollment(ctx context.Context, id, enrollmentID string) error {
	res, err := repo.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"enrollment_ids": enrollmentID}})
	if err != nil {
		return errors.Wrap(err, "appending user enrollment")
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}
