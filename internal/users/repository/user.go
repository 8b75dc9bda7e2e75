package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	userserrors "slotly/internal/users/errors"
	"slotly/pkg/config"
	"slotly/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "Users"
)

// UserDirectory is a read-only view over the users owned by the identity service.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type mongoUserDirectory struct {
	collection  *mongo.Collection
	readTimeout time.Duration
}

func NewMongoUserDirectory(cfg *config.Config) UserDirectory {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return NewUserDirectory(db.Collection(CollectionName), cfg.ReadTimeout)
}

func NewUserDirectory(collection *mongo.Collection, readTimeout time.Duration) UserDirectory {
	return &mongoUserDirectory{
		collection:  collection,
		readTimeout: readTimeout,
	}
}

func (r *mongoUserDirectory) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.readTimeout)
	defer cancel()

	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, userserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}
