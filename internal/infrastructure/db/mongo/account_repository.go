package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/squidpro/auth-system/internal/core/domain"
)

const accountCollection = "accounts"

// MongoAccountRepository persists account records. Username and email
// uniqueness is enforced by unique indexes, so concurrent registrations for
// the same value resolve to exactly one winner at insert time without any
// application-level locking.
type MongoAccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *MongoAccountRepository {
	return &MongoAccountRepository{coll: db.Collection(accountCollection)}
}

// EnsureIndexes creates the unique indexes registration correctness depends
// on. Call once at startup before serving traffic.
func (r *MongoAccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("username_1"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_1"),
		},
		{
			Keys:    bson.D{{Key: "legacy_keys.key", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("legacy_keys_key_1"),
		},
	})
	if err != nil {
		return fmt.Errorf("create account indexes: %w", err)
	}
	return nil
}

type mongoLegacyKey struct {
	Key       string `bson:"key"`
	Role      string `bson:"role"`
	CreatedAt int64  `bson:"created_at"`
}

type mongoAccount struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Username        string             `bson:"username"`
	Name            string             `bson:"name"`
	Email           string             `bson:"email"`
	PasswordHash    string             `bson:"password_hash"`
	StellarAddress  string             `bson:"stellar_address"`
	Roles           []string           `bson:"roles"`
	LegacyKeys      []mongoLegacyKey   `bson:"legacy_keys"`
	Specializations []string           `bson:"specializations,omitempty"`
	CreatedAt       int64              `bson:"created_at"`
	UpdatedAt       int64              `bson:"updated_at"`
}

func (r *MongoAccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	doc := toMongoAccount(account)

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateError(err)
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	created := *account
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *MongoAccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoAccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoAccountRepository) FindByLegacyKey(ctx context.Context, key string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"legacy_keys.key": key})
}

func (r *MongoAccountRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"username": username}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count username: %w", err)
	}
	return n > 0, nil
}

func (r *MongoAccountRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count email: %w", err)
	}
	return n > 0, nil
}

// AddRole grants a role with a single conditional update. The roles filter
// makes the grant idempotent under concurrent requests: only the update that
// matches the role-absent document pushes a key.
func (r *MongoAccountRepository) AddRole(ctx context.Context, accountID string, role domain.Role, key domain.LegacyAPIKey) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "roles": bson.M{"$ne": string(role)}},
		bson.M{
			"$push": bson.M{
				"roles": string(role),
				"legacy_keys": mongoLegacyKey{
					Key:       key.Key,
					Role:      string(key.Role),
					CreatedAt: key.CreatedAt.Unix(),
				},
			},
			"$set": bson.M{"updated_at": time.Now().UTC().Unix()},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("add role: %w", err)
	}
	_ = res // MatchedCount == 0 means the role was already held; a no-op

	return r.FindByID(ctx, accountID)
}

func (r *MongoAccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var ma mongoAccount
	if err := r.coll.FindOne(ctx, filter).Decode(&ma); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return fromMongoAccount(&ma), nil
}

// duplicateError narrows a duplicate-key error to the violated field using
// the index name embedded in the server message.
func duplicateError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "username_1"):
		return domain.ErrDuplicateUsername
	case strings.Contains(msg, "email_1"):
		return domain.ErrDuplicateEmail
	default:
		return fmt.Errorf("insert account: %w", err)
	}
}

func toMongoAccount(a *domain.Account) mongoAccount {
	keys := make([]mongoLegacyKey, 0, len(a.LegacyKeys))
	for _, k := range a.LegacyKeys {
		keys = append(keys, mongoLegacyKey{Key: k.Key, Role: string(k.Role), CreatedAt: k.CreatedAt.Unix()})
	}
	roles := make([]string, 0, len(a.Roles))
	for _, role := range a.Roles {
		roles = append(roles, string(role))
	}
	return mongoAccount{
		Username:        a.Username,
		Name:            a.Name,
		Email:           a.Email,
		PasswordHash:    a.PasswordHash,
		StellarAddress:  a.StellarAddress,
		Roles:           roles,
		LegacyKeys:      keys,
		Specializations: a.Specializations,
		CreatedAt:       a.CreatedAt.Unix(),
		UpdatedAt:       a.UpdatedAt.Unix(),
	}
}

func fromMongoAccount(ma *mongoAccount) *domain.Account {
	keys := make([]domain.LegacyAPIKey, 0, len(ma.LegacyKeys))
	for _, k := range ma.LegacyKeys {
		keys = append(keys, domain.LegacyAPIKey{Key: k.Key, Role: domain.Role(k.Role), CreatedAt: unixToTime(k.CreatedAt)})
	}
	roles := make([]domain.Role, 0, len(ma.Roles))
	for _, role := range ma.Roles {
		roles = append(roles, domain.Role(role))
	}
	return &domain.Account{
		ID:              ma.ID.Hex(),
		Username:        ma.Username,
		Name:            ma.Name,
		Email:           ma.Email,
		PasswordHash:    ma.PasswordHash,
		StellarAddress:  ma.StellarAddress,
		Roles:           roles,
		LegacyKeys:      keys,
		Specializations: ma.Specializations,
		CreatedAt:       unixToTime(ma.CreatedAt),
		UpdatedAt:       unixToTime(ma.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
