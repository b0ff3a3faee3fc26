// Package mongorepos implements the domain Repository interfaces on MongoDB.
package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/elimuhub/elimu/core"
)

// Collection names.
const (
	colUsers       = "users"
	colCourses     = "courses"
	colModules     = "modules"
	colVideos      = "videos"
	colEnrollments = "enrollments"
	colAccesses    = "course_access"
)

type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

func Open(ctx context.Context, conf *core.Config) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, conf.Database.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Database.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "pinging mongodb")
	}
	return &DB{client: client, db: client.Database(conf.Database.Name)}, nil
}

func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique indexes the domain invariants rely on:
// one user per identity-provider UID, one enrollment per payment transaction
// id, and at most one course-access grant per enrollment.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	unique := func(key string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: key, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
	}
	plain := func(key string) mongo.IndexModel {
		return mongo.IndexModel{Keys: bson.D{{Key: key, Value: 1}}}
	}

	for col, models := range map[string][]mongo.IndexModel{
		colUsers:       {unique("uid")},
		colEnrollments: {unique("payment.transaction_id"), plain("user.id"), plain("status")},
		colAccesses:    {unique("enrollment_id"), plain("user_id")},
		colModules:     {plain("course_id")},
		colVideos:      {plain("module_id")},
	} {
		if _, err := d.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", col)
		}
	}
	return nil
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
