package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/imelnik/peerview/internal/domain"
)

type userDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"name"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
	Role     string             `bson:"role"`
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           domain.UserID(d.ID.Hex()),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         domain.Role(d.Role),
	}
}

type mongoUsers struct {
	col *mongo.Collection
}

func (s *mongoUsers) Create(ctx context.Context, u *domain.User) error {
	doc := userDoc{
		Name:     u.Name,
		Email:    u.Email,
		Password: u.PasswordHash,
		Role:     string(u.Role),
	}
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = domain.UserID(res.InsertedID.(primitive.ObjectID).Hex())
	return nil
}

func (s *mongoUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var doc userDoc
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *mongoUsers) FindByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	oid, err := parseObjectID(string(id))
	if err != nil {
		return nil, err
	}
	var doc userDoc
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return doc.toDomain(), nil
}
