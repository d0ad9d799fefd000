package mongorepos

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/schoolmate/backend/core"
)

const (
	usersCollection    = "users"
	studentsCollection = "students"
	subjectsCollection = "subjects"
	countersCollection = "counters"

	connectTimeout = 10 * time.Second
)

// Open connects to the configured MongoDB deployment and creates the indexes the repositories rely on.
func Open(ctx context.Context, conf *core.Config) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Mongo.URI))
	if err != nil {
		return nil, nil, errors.Wrap(err, "connecting to mongodb")
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, errors.Wrap(err, "pinging mongodb")
	}

	db := client.Database(conf.Mongo.Database)
	if err = ensureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, db, nil
}

// ensureIndexes creates the unique indexes backing the uniqueness of emails, handles and codes.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		studentsCollection: {
			{Keys: bson.D{{Key: "personal_email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "generated_email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "account_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "seq", Value: 1}}},
		},
		subjectsCollection: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "seq", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", coll)
		}
	}
	return nil
}

// nextSeq atomically increments and returns the counter named name.
func nextSeq(ctx context.Context, db *mongo.Database, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := db.Collection(countersCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts).
		Decode(&counter)
	if err != nil {
		return 0, errors.Wrapf(err, "incrementing %s counter", name)
	}
	return counter.Seq, nil
}

// isDuplicateKey reports whether err violates a unique index, on the key named field if not empty.
func isDuplicateKey(err error, field string) bool {
	return mongo.IsDuplicateKeyError(err) && (field == "" || strings.Contains(err.Error(), field))
}

// sortStage returns the sort document for ordering, falling back to insertion order.
// keys renames the fields stored under another key.
func sortStage(ordering []core.DBOrdering, keys map[string]string) bson.D {
	sort := make(bson.D, 0, len(ordering)+1)
	for _, ord := range ordering {
		dir := 1
		if !ord.Ascending {
			dir = -1
		}
		key := ord.Field
		if k, ok := keys[key]; ok {
			key = k
		}
		sort = append(sort, bson.E{Key: key, Value: dir})
	}
	return append(sort, bson.E{Key: "seq", Value: 1})
}
