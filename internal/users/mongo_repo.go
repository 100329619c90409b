package users

import (
	"context"
	"errors"

	"github.com/angelmondragon/usermanagement/pkg/db/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const emailIndexName = "uniq_users_email"

type documentCollection interface {
	InsertOne(ctx context.Context, document any, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
}

type indexCreator interface {
	CreateOne(ctx context.Context, model mongo.IndexModel, opts ...*options.CreateIndexesOptions) (string, error)
}

// userDocument is the stored shape: the user fields plus the ObjectID key.
type userDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	models.User `bson:",inline"`
}

func (d userDocument) toModel() *models.User {
	user := d.User
	user.ID = d.ID.Hex()
	return &user
}

// MongoRepository persists users as documents in a single collection.
type MongoRepository struct {
	coll    documentCollection
	indexes indexCreator
}

// NewMongoRepository binds the repository to a collection.
func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll, indexes: coll.Indexes()}
}

// EnsureIndexes creates the unique email index backing duplicate detection.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.indexes.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(emailIndexName),
	})
	return err
}

func (r *MongoRepository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	doc := userDocument{ID: primitive.NewObjectID(), User: *dto.ToModel()}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

// FindByID treats ids that are not ObjectID hex strings as absent.
func (r *MongoRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrRecordNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.D) (*models.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}
