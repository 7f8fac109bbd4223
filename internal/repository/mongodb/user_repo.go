package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/dom/videotube-backend/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userRepository struct {
	users *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *userRepository {
	return &userRepository{users: db.Collection(usersCollection)}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.users.InsertOne(ctx, newUserDocument(user))
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateUser
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}, options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

func (r *userRepository) SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	return r.set(ctx, id, bson.M{"refreshToken": token})
}

func (r *userRepository) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.set(ctx, id, bson.M{"password": hash})
}

func (r *userRepository) SetMedia(ctx context.Context, id uuid.UUID, field domain.MediaField, url string) (*domain.User, error) {
	var doc userDocument
	err := r.users.FindOneAndUpdate(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M{mediaKey(field): url, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, translate(err)
	}
	return doc.toDomain(), nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*domain.User, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toDomain(), nil
}

func (r *userRepository) set(ctx context.Context, id uuid.UUID, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	res, err := r.users.UpdateByID(ctx, id.String(), bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrUserNotFound
	}
	return err
}
