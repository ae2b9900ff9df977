package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"permission-engine/internal/config"
	"permission-engine/internal/repository/model"
	"permission-engine/internal/repository/registrytypes"
)

const (
	databaseName = "permission-engine"

	groupCollectionName = "groups"
	userCollectionName  = "users"
)

type mongoRepository struct {
	logger   *zap.SugaredLogger
	database *mongo.Database

	groupCollection *mongo.Collection
	userCollection  *mongo.Collection
}

func NewMongoRepository(ctx context.Context, logger *zap.SugaredLogger, wg *sync.WaitGroup, cfg config.MongoDBConfig) (Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetRegistry(createCodecRegistry()))
	if err != nil {
		return nil, err
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Errorw("failed to disconnect from mongo", "error", err)
		}
	}()

	database := client.Database(databaseName)
	return &mongoRepository{
		logger:          logger,
		database:        database,
		groupCollection: database.Collection(groupCollectionName),
		userCollection:  database.Collection(userCollectionName),
	}, nil
}

func (m *mongoRepository) GetAllGroups(ctx context.Context) ([]*model.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := m.groupCollection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	var result []model.Group
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}

	groups := make([]*model.Group, len(result))
	for i := range result {
		groups[i] = &result[i]
	}
	return groups, nil
}

func (m *mongoRepository) GetGroup(ctx context.Context, name string) (*model.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var group model.Group
	err := m.groupCollection.FindOne(ctx, bson.M{"_id": name}).Decode(&group)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (m *mongoRepository) SaveGroup(ctx context.Context, group *model.Group) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := m.groupCollection.ReplaceOne(ctx, bson.M{"_id": group.Name}, group, options.Replace().SetUpsert(true))
	return err
}

func (m *mongoRepository) DeleteGroup(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := m.groupCollection.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (m *mongoRepository) DoesGroupExist(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := m.groupCollection.CountDocuments(ctx, bson.M{"_id": name})
	return count > 0, err
}

func (m *mongoRepository) GroupCount(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return m.groupCollection.CountDocuments(ctx, bson.D{})
}

func (m *mongoRepository) GetAllUsers(ctx context.Context) ([]*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := m.userCollection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	var result []model.User
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}

	users := make([]*model.User, len(result))
	for i := range result {
		users[i] = &result[i]
	}
	return users, nil
}

func (m *mongoRepository) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user model.User
	err := m.userCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (m *mongoRepository) SaveUser(ctx context.Context, user *model.User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := m.userCollection.ReplaceOne(ctx, bson.M{"_id": user.Id}, user, options.Replace().SetUpsert(true))
	return err
}

func (m *mongoRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := m.userCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (m *mongoRepository) DoesUserExist(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := m.userCollection.CountDocuments(ctx, bson.M{"_id": id})
	return count > 0, err
}

func (m *mongoRepository) UserCount(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return m.userCollection.CountDocuments(ctx, bson.D{})
}

func createCodecRegistry() *bsoncodec.Registry {
	return bson.NewRegistryBuilder().
		RegisterTypeEncoder(registrytypes.UUIDType, bsoncodec.ValueEncoderFunc(registrytypes.UuidEncodeValue)).
		RegisterTypeDecoder(registrytypes.UUIDType, bsoncodec.ValueDecoderFunc(registrytypes.UuidDecodeValue)).
		Build()
}
