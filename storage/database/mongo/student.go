package mongorepos

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/schoolmate/backend/core"
	"github.com/schoolmate/backend/core/student"
)

type studentDoc struct {
	ID                string    `bson:"_id"`
	Seq               int64     `bson:"seq"`
	AccountID         string    `bson:"account_id"`
	Name              string    `bson:"name"`
	PersonalEmail     string    `bson:"personal_email"`
	Age               int       `bson:"age"`
	Gender            string    `bson:"gender"`
	Grade             int       `bson:"grade"`
	Section           string    `bson:"section"`
	GeneratedEmail    string    `bson:"generated_email"`
	GeneratedPassword string    `bson:"generated_password"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

func (d studentDoc) profile() student.Profile {
	return student.Profile{
		ID:                d.ID,
		AccountID:         d.AccountID,
		Name:              d.Name,
		PersonalEmail:     d.PersonalEmail,
		Age:               d.Age,
		Gender:            d.Gender,
		Grade:             d.Grade,
		Section:           d.Section,
		GeneratedEmail:    d.GeneratedEmail,
		GeneratedPassword: d.GeneratedPassword,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *mongo.Database) student.Repository {
	return &studentRepository{db: db, coll: db.Collection(studentsCollection)}
}

func (repo *studentRepository) CheckPersonalEmailUniqueness(ctx context.Context, email string) error {
	cnt, err := repo.coll.CountDocuments(ctx, bson.M{"personal_email": email}, options.Count().SetLimit(1))
	if err != nil {
		return errors.Wrap(err, "checking personal email uniqueness")
	}
	if cnt > 0 {
		return student.ErrPersonalEmailExists
	}
	return nil
}

func (repo *studentRepository) CreateProfile(ctx context.Context, prof student.Profile) (student.Profile, error) {
	seq, err := nextSeq(ctx, repo.db, studentsCollection)
	if err != nil {
		return student.Profile{}, err
	}

	prof.ID = uuid.New().String()
	prof.Account = nil
	doc := studentDoc{
		ID:                prof.ID,
		Seq:               seq,
		AccountID:         prof.AccountID,
		Name:              prof.Name,
		PersonalEmail:     prof.PersonalEmail,
		Age:               prof.Age,
		Gender:            prof.Gender,
		Grade:             prof.Grade,
		Section:           prof.Section,
		GeneratedEmail:    prof.GeneratedEmail,
		GeneratedPassword: prof.GeneratedPassword,
		CreatedAt:         prof.CreatedAt.UTC(),
		UpdatedAt:         prof.UpdatedAt.UTC(),
	}
	if _, err = repo.coll.InsertOne(ctx, doc); err != nil {
		if isDuplicateKey(err, "personal_email") {
			return student.Profile{}, student.ErrPersonalEmailExists
		}
		return student.Profile{}, errors.Wrap(err, "inserting student")
	}
	return prof, nil
}

func (repo *studentRepository) QueryProfiles(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Profile, error) {
	q := bson.M{}
	if filter != nil {
		if filter.Search != "" {
			re := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
			q["$or"] = bson.A{
				bson.M{"name": re},
				bson.M{"personal_email": re},
				bson.M{"generated_email": re},
			}
		}
		if filter.Grade != nil {
			q["grade"] = *filter.Grade
		}
		if filter.Section != "" {
			q["section"] = filter.Section
		}
		if filter.Gender != "" {
			q["gender"] = filter.Gender
		}
	}

	cur, err := repo.coll.Find(ctx, q, options.Find().SetSort(sortStage(ordering, nil)))
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	var docs []studentDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding students")
	}
	profiles := make([]student.Profile, 0, len(docs))
	for _, d := range docs {
		profiles = append(profiles, d.profile())
	}
	return profiles, nil
}

func (repo *studentRepository) GetProfile(ctx context.Context, id string) (student.Profile, error) {
	var doc studentDoc
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return student.Profile{}, student.ErrNotFound
		}
		return student.Profile{}, errors.Wrap(err, "finding student")
	}
	return doc.profile(), nil
}

func (repo *studentRepository) UpdateProfile(ctx context.Context, prof student.Profile) (student.Profile, error) {
	update := bson.M{"$set": bson.M{
		"name":       prof.Name,
		"age":        prof.Age,
		"gender":     prof.Gender,
		"grade":      prof.Grade,
		"section":    prof.Section,
		"updated_at": prof.UpdatedAt.UTC(),
	}}
	res, err := repo.coll.UpdateByID(ctx, prof.ID, update)
	if err != nil {
		return student.Profile{}, errors.Wrap(err, "updating student")
	}
	if res.MatchedCount == 0 {
		return student.Profile{}, student.ErrNotFound
	}
	return prof, nil
}

func (repo *studentRepository) DeleteProfile(ctx context.Context, id string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if res.DeletedCount == 0 {
		return student.ErrNotFound
	}
	return nil
}
