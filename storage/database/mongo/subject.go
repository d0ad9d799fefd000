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
	"github.com/schoolmate/backend/core/subject"
)

const subjectCodeCounter = "subject_code"

var subjectSortKeys = map[string]string{"code": "code_num"}

type subjectDoc struct {
	ID        string    `bson:"_id"`
	Seq       int64     `bson:"seq"`
	Code      string    `bson:"code"`
	CodeNum   int64     `bson:"code_num"`
	Name      string    `bson:"name"`
	Grade     int       `bson:"grade"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d subjectDoc) offering() subject.Offering {
	return subject.Offering{
		ID:        d.ID,
		Code:      d.Code,
		Name:      d.Name,
		Grade:     d.Grade,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type subjectRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *mongo.Database) subject.Repository {
	return &subjectRepository{db: db, coll: db.Collection(subjectsCollection)}
}

func (repo *subjectRepository) NextCodeSequence(ctx context.Context) (int64, error) {
	return nextSeq(ctx, repo.db, subjectCodeCounter)
}

func (repo *subjectRepository) CreateOffering(ctx context.Context, off subject.Offering) (subject.Offering, error) {
	seq, err := nextSeq(ctx, repo.db, subjectsCollection)
	if err != nil {
		return subject.Offering{}, err
	}

	off.ID = uuid.New().String()
	doc := subjectDoc{
		ID:        off.ID,
		Seq:       seq,
		Code:      off.Code,
		CodeNum:   subject.CodeNumber(off.Code),
		Name:      off.Name,
		Grade:     off.Grade,
		CreatedAt: off.CreatedAt.UTC(),
		UpdatedAt: off.UpdatedAt.UTC(),
	}
	if _, err = repo.coll.InsertOne(ctx, doc); err != nil {
		if isDuplicateKey(err, "code") {
			return subject.Offering{}, subject.ErrCodeExists
		}
		return subject.Offering{}, errors.Wrap(err, "inserting subject")
	}
	return off, nil
}

func (repo *subjectRepository) QueryOfferings(ctx context.Context, filter *subject.QueryFilter, ordering []core.DBOrdering) ([]subject.Offering, error) {
	q := bson.M{}
	if filter != nil {
		if filter.Search != "" {
			re := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
			q["$or"] = bson.A{bson.M{"name": re}, bson.M{"code": re}}
		}
		if filter.Grade != nil {
			q["grade"] = *filter.Grade
		}
	}

	cur, err := repo.coll.Find(ctx, q, options.Find().SetSort(sortStage(ordering, subjectSortKeys)))
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	var docs []subjectDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding subjects")
	}
	offerings := make([]subject.Offering, 0, len(docs))
	for _, d := range docs {
		offerings = append(offerings, d.offering())
	}
	return offerings, nil
}

func (repo *subjectRepository) GetOffering(ctx context.Context, id string) (subject.Offering, error) {
	var doc subjectDoc
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return subject.Offering{}, subject.ErrNotFound
		}
		return subject.Offering{}, errors.Wrap(err, "finding subject")
	}
	return doc.offering(), nil
}

func (repo *subjectRepository) UpdateOffering(ctx context.Context, off subject.Offering) (subject.Offering, error) {
	update := bson.M{"$set": bson.M{"name": off.Name, "grade": off.Grade, "updated_at": off.UpdatedAt.UTC()}}
	res, err := repo.coll.UpdateByID(ctx, off.ID, update)
	if err != nil {
		return subject.Offering{}, errors.Wrap(err, "updating subject")
	}
	if res.MatchedCount == 0 {
		return subject.Offering{}, subject.ErrNotFound
	}
	return off, nil
}

func (repo *subjectRepository) DeleteOffering(ctx context.Context, id string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	if res.DeletedCount == 0 {
		return subject.ErrNotFound
	}
	return nil
}
