package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/utils"
)

// UserRepo persists account documents in the 'users' collection.
type UserRepo struct{ col *mongo.Collection }

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{col: db.Collection("users")}
}

// Create validates the new account, hashes the plaintext password exactly
// once, stamps timestamps and inserts the document.  A duplicate email is
// reported as ErrEmailExists and leaves the collection untouched; the unique
// index resolves races between concurrent registrations for the same address.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) (*model.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if err := u.ValidateNew(password); err != nil {
		return nil, err
	}
	// Hashing is an explicit step of the create path, not a save hook:
	// nothing else in this repository ever rewrites password_hash.
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash

	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email, including the password hash.
// This is the login lookup; profile and listing paths never serialize the
// hash because responses are built from model.PublicUser.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a user by its hex object id.  A malformed id cannot match
// any document and is treated as a miss.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var u model.User
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ListAll returns every account document.  Unpaginated; acceptable at the
// current scale of the service.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetPassword hashes and stores a new password for the given account.  This
// is the only write path besides Create that touches password_hash, so an
// unchanged password can never be hashed a second time.
func (r *UserRepo) SetPassword(ctx context.Context, id, plain string, cost int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	if len(plain) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	hash, err := utils.HashPassword(plain, cost)
	if err != nil {
		return err
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
