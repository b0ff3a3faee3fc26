package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/elimuhub/elimu/core/catalog"
)

type (
	courseDoc struct {
		ID          string    `bson:"_id"`
		Title       string    `bson:"title"`
		Description string    `bson:"description,omitempty"`
		Thumbnail   string    `bson:"thumbnail,omitempty"`
		Price       float64   `bson:"price"`
		Currency    string    `bson:"currency,omitempty"`
		IsPublished bool      `bson:"is_published"`
		CreatedAt   time.Time `bson:"created_at"`
		UpdatedAt   time.Time `bson:"updated_at"`
	}

	moduleDoc struct {
		ID        string    `bson:"_id"`
		CourseID  string    `bson:"course_id"`
		Title     string    `bson:"title"`
		Order     int       `bson:"order"`
		CreatedAt time.Time `bson:"created_at"`
		UpdatedAt time.Time `bson:"updated_at"`
	}

	videoDoc struct {
		ID        string        `bson:"_id"`
		ModuleID  string        `bson:"module_id"`
		Title     string        `bson:"title"`
		URL       string        `bson:"url"`
		Duration  time.Duration `bson:"duration,omitempty"`
		Order     int           `bson:"order"`
		CreatedAt time.Time     `bson:"created_at"`
		UpdatedAt time.Time     `bson:"updated_at"`
	}
)

type catalogRepository struct {
	courses *mongo.Collection
	modules *mongo.Collection
	videos  *mongo.Collection
}

var _ catalog.Repository = (*catalogRepository)(nil)

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{
		courses: db.db.Collection(colCourses),
		modules: db.db.Collection(colModules),
		videos:  db.db.Collection(colVideos),
	}
}

// Courses

func (repo catalogRepository) courseDoc(c catalog.Course) courseDoc {
	return courseDoc{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Thumbnail:   c.Thumbnail,
		Price:       c.Price,
		Currency:    c.Currency,
		IsPublished: c.IsPublished,
		CreatedAt:   utc(c.CreatedAt),
		UpdatedAt:   utc(c.UpdatedAt),
	}
}

func (repo catalogRepository) unCourseDoc(doc courseDoc) catalog.Course {
	return catalog.Course{
		ID:          doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		Thumbnail:   doc.Thumbnail,
		Price:       doc.Price,
		Currency:    doc.Currency,
		IsPublished: doc.IsPublished,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

func (repo catalogRepository) CreateCourse(ctx context.Context, course catalog.Course) (catalog.Course, error) {
	if _, err := repo.courses.InsertOne(ctx, repo.courseDoc(course)); err != nil {
		return catalog.Course{}, errors.Wrap(err, "inserting course")
	}
	return course, nil
}

func (repo catalogRepository) GetCourseByID(ctx context.Context, id string) (catalog.Course, error) {
	var doc courseDoc
	if err := repo.courses.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return catalog.Course{}, catalog.ErrCourseNotFound
		}
		return catalog.Course{}, errors.Wrap(err, "finding course")
	}
	return repo.unCourseDoc(doc), nil
}

func (repo catalogRepository) QueryAllCourses(ctx context.Context) ([]catalog.Course, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := repo.courses.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	defer cursor.Close(ctx)

	var docs []courseDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding courses")
	}
	courses := make([]catalog.Course, 0, len(docs))
	for _, doc := range docs {
		courses = append(courses, repo.unCourseDoc(doc))
	}
	return courses, nil
}

func (repo catalogRepository) UpdateCourse(ctx context.Context, course catalog.Course) (catalog.Course, error) {
	update := bson.M{"$set": bson.M{
		"title":        course.Title,
		"description":  course.Description,
		"thumbnail":    course.Thumbnail,
		"price":        course.Price,
		"currency":     course.Currency,
		"is_published": course.IsPublished,
		"updated_at":   utc(course.UpdatedAt),
	}}
	res, err := repo.courses.UpdateOne(ctx, bson.M{"_id": course.ID}, update)
	if err != nil {
		return catalog.Course{}, errors.Wrap(err, "updating course")
	}
	if res.MatchedCount == 0 {
		return catalog.Course{}, catalog.ErrCourseNotFound
	}
	return repo.GetCourseByID(ctx, course.ID)
}

func (repo catalogRepository) DeleteCourse(ctx context.Context, id string) error {
	mods, err := repo.QueryModulesByCourse(ctx, id)
	if err != nil {
		return err
	}
	for _, mod := range mods {
		if _, err = repo.videos.DeleteMany(ctx, bson.M{"module_id": mod.ID}); err != nil {
			return errors.Wrap(err, "deleting course videos")
		}
	}
	if _, err = repo.modules.DeleteMany(ctx, bson.M{"course_id": id}); err != nil {
		return errors.Wrap(err, "deleting course modules")
	}
	res, err := repo.courses.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if res.DeletedCount == 0 {
		return catalog.ErrCourseNotFound
	}
	return nil
}

func (repo catalogRepository) TouchCourse(ctx context.Context, id string, at time.Time) error {
	res, err := repo.courses.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"updated_at": utc(at)}})
	if err != nil {
		return errors.Wrap(err, "touching course")
	}
	if res.MatchedCount == 0 {
		return catalog.ErrCourseNotFound
	}
	return nil
}

// Modules

func (repo catalogRepository) moduleDoc(m catalog.Module) moduleDoc {
	return moduleDoc{
		ID:        m.ID,
		CourseID:  m.CourseID,
		Title:     m.Title,
		Order:     m.Order,
		CreatedAt: utc(m.CreatedAt),
		UpdatedAt: utc(m.UpdatedAt),
	}
}

func (repo catalogRepository) unModuleDoc(doc moduleDoc) catalog.Module {
	return catalog.Module{
		ID:        doc.ID,
		CourseID:  doc.CourseID,
		Title:     doc.Title,
		Order:     doc.Order,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func (repo catalogRepository) CreateModule(ctx context.Context, mod catalog.Module) (catalog.Module, error) {
	if _, err := repo.modules.InsertOne(ctx, repo.moduleDoc(mod)); err != nil {
		return catalog.Module{}, errors.Wrap(err, "inserting module")
	}
	return mod, nil
}

func (repo catalogRepository) GetModuleByID(ctx context.Context, id string) (catalog.Module, error) {
	var doc moduleDoc
	if err := repo.modules.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return catalog.Module{}, catalog.ErrModuleNotFound
		}
		return catalog.Module{}, errors.Wrap(err, "finding module")
	}
	return repo.unModuleDoc(doc), nil
}

func (repo catalogRepository) QueryModulesByCourse(ctx context.Context, courseID string) ([]catalog.Module, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cursor, err := repo.modules.Find(ctx, bson.M{"course_id": courseID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying modules")
	}
	defer cursor.Close(ctx)

	var docs []moduleDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding modules")
	}
	mods := make([]catalog.Module, 0, len(docs))
	for _, doc := range docs {
		mods = append(mods, repo.unModuleDoc(doc))
	}
	return mods, nil
}

func (repo catalogRepository) CountModulesByCourse(ctx context.Context, courseID string) (int, error) {
	count, err := repo.modules.CountDocuments(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return 0, errors.Wrap(err, "counting modules")
	}
	return int(count), nil
}

func (repo catalogRepository) UpdateModule(ctx context.Context, mod catalog.Module) (catalog.Module, error) {
	update := bson.M{"$set": bson.M{
		"title":      mod.Title,
		"order":      mod.Order,
		"updated_at": utc(mod.UpdatedAt),
	}}
	res, err := repo.modules.UpdateOne(ctx, bson.M{"_id": mod.ID}, update)
	if err != nil {
		return catalog.Module{}, errors.Wrap(err, "updating module")
	}
	if res.MatchedCount == 0 {
		return catalog.Module{}, catalog.ErrModuleNotFound
	}
	return repo.GetModuleByID(ctx, mod.ID)
}

func (repo catalogRepository) DeleteModule(ctx context.Context, id string) error {
	if _, err := repo.videos.DeleteMany(ctx, bson.M{"module_id": id}); err != nil {
		return errors.Wrap(err, "deleting module videos")
	}
	res, err := repo.modules.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting module")
	}
	if res.DeletedCount == 0 {
		return catalog.ErrModuleNotFound
	}
	return nil
}

func (repo catalogRepository) ResequenceModules(ctx context.Context, courseID string) error {
	mods, err := repo.QueryModulesByCourse(ctx, courseID)
	if err != nil {
		return err
	}
	for i, mod := range mods {
		if mod.Order == i+1 {
			continue
		}
		if _, err = repo.modules.UpdateOne(ctx, bson.M{"_id": mod.ID}, bson.M{"$set": bson.M{"order": i + 1}}); err != nil {
			return errors.Wrap(err, "resequencing modules")
		}
	}
	return nil
}

func (repo catalogRepository) TouchModule(ctx context.Context, id string, at time.Time) error {
	res, err := repo.modules.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"updated_at": utc(at)}})
	if err != nil {
		return errors.Wrap(err, "touching module")
	}
	if res.MatchedCount == 0 {
		return catalog.ErrModuleNotFound
	}
	return nil
}

// Videos

func (repo catalogRepository) videoDoc(v catalog.Video) videoDoc {
	return videoDoc{
		ID:        v.ID,
		ModuleID:  v.ModuleID,
		Title:     v.Title,
		URL:       v.URL,
		Duration:  v.Duration,
		Order:     v.Order,
		CreatedAt: utc(v.CreatedAt),
		UpdatedAt: utc(v.UpdatedAt),
	}
}

func (repo catalogRepository) unVideoDoc(doc videoDoc) catalog.Video {
	return catalog.Video{
		ID:        doc.ID,
		ModuleID:  doc.ModuleID,
		Title:     doc.Title,
		URL:       doc.URL,
		Duration:  doc.Duration,
		Order:     doc.Order,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func (repo catalogRepository) CreateVideo(ctx context.Context, vid catalog.Video) (catalog.Video, error) {
	if _, err := repo.videos.InsertOne(ctx, repo.videoDoc(vid)); err != nil {
		return catalog.Video{}, errors.Wrap(err, "inserting video")
	}
	return vid, nil
}

func (repo catalogRepository) GetVideoByID(ctx context.Context, id string) (catalog.Video, error) {
	var doc videoDoc
	if err := repo.videos.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return catalog.Video{}, catalog.ErrVideoNotFound
		}
		return catalog.Video{}, errors.Wrap(err, "finding video")
	}
	return repo.unVideoDoc(doc), nil
}

func (repo catalogRepository) QueryVideosByModule(ctx context.Context, moduleID string) ([]catalog.Video, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cursor, err := repo.videos.Find(ctx, bson.M{"module_id": moduleID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying videos")
	}
	defer cursor.Close(ctx)

	var docs []videoDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding videos")
	}
	vids := make([]catalog.Video, 0, len(docs))
	for _, doc := range docs {
		vids = append(vids, repo.unVideoDoc(doc))
	}
	return vids, nil
}

func (repo catalogRepository) CountVideosByModule(ctx context.Context, moduleID string) (int, error) {
	count, err := repo.videos.CountDocuments(ctx, bson.M{"module_id": moduleID})
	if err != nil {
		return 0, errors.Wrap(err, "counting videos")
	}
	return int(count), nil
}

func (repo catalogRepository) UpdateVideo(ctx context.Context, vid catalog.Video) (catalog.Video, error) {
	update := bson.M{"$set": bson.M{
		"title":      vid.Title,
		"url":        vid.URL,
		"duration":   vid.Duration,
		"order":      vid.Order,
		"updated_at": utc(vid.UpdatedAt),
	}}
	res, err := repo.videos.UpdateOne(ctx, bson.M{"_id": vid.ID}, update)
	if err != nil {
		return catalog.Video{}, errors.Wrap(err, "updating video")
	}
	if res.MatchedCount == 0 {
		return catalog.Video{}, catalog.ErrVideoNotFound
	}
	return repo.GetVideoByID(ctx, vid.ID)
}

func (repo catalogRepository) DeleteVideo(ctx context.Context, id string) error {
	res, err := repo.videos.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting video")
	}
	if res.DeletedCount == 0 {
		return catalog.ErrVideoNotFound
	}
	return nil
}

func (repo catalogRepository) ResequenceVideos(ctx context.Context, moduleID string) error {
	vids, err := repo.QueryVideosByModule(ctx, moduleID)
	if err != nil {
		return err
	}
	for i, vid := range vids {
		if vid.Order == i+1 {
			continue
		}
		if _, err = repo.videos.UpdateOne(ctx, bson.M{"_id": vid.ID}, bson.M{"$set": bson.M{"order": i + 1}}); err != nil {
			return errors.Wrap(err, "resequencing videos")
		}
	}
	return nil
}
