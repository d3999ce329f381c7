package service

import (
	"context"
	"errors"
	"time"

	usermodel "PChat/module/user/model"
	"PChat/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errs.New("username already taken")
	ErrInvalidCredentials = errs.New("invalid username or password")
)

// Store wraps the users collection.
type Store struct {
	coll *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{coll: db.Collection(usermodel.UserCollection)}
}

// Register creates a user with a bcrypt-hashed password.
func (s *Store) Register(ctx context.Context, username, password string) (usermodel.User, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{"username": username})
	if err != nil {
		return usermodel.User{}, errs.WrapMsg(err, "count users failed", "username", username)
	}
	if count > 0 {
		return usermodel.User{}, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return usermodel.User{}, errs.WrapMsg(err, "hash password failed")
	}

	u := usermodel.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		return usermodel.User{}, errs.WrapMsg(err, "insert user failed", "username", username)
	}
	return u, nil
}

// Authenticate verifies a username/password pair.
func (s *Store) Authenticate(ctx context.Context, username, password string) (usermodel.User, error) {
	var u usermodel.User
	err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return usermodel.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return usermodel.User{}, errs.WrapMsg(err, "find user failed", "username", username)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return usermodel.User{}, ErrInvalidCredentials
	}
	return u, nil
}
