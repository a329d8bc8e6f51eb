package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/postboard/blog-api/internal/core/domain"
	"github.com/postboard/blog-api/internal/core/ports"
)

type UserRepository struct {
	col     *mongo.Collection
	posts   *mongo.Collection
	ids     sequence
	timeout time.Duration
}

var _ ports.UserRepository = (*UserRepository)(nil)

// NewUserRepository bounds every call by timeout, or defaultTimeout when zero.
func NewUserRepository(db *mongo.Database, timeout time.Duration) *UserRepository {
	return &UserRepository{
		col:     db.Collection(collectionUsers),
		posts:   db.Collection(collectionPosts),
		ids:     newSequence(db, collectionUsers),
		timeout: orDefault(timeout),
	}
}

// Create assigns the next user id and inserts the document.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	id, err := r.ids.next(ctx)
	if err != nil {
		return err
	}
	u.ID = id

	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete removes the user's posts, then the user.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.posts.DeleteMany(ctx, bson.M{"author_id": id}); err != nil {
		return fmt.Errorf("delete user posts: %w", err)
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var u domain.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []int64) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

// IdentityTaken reports whether another user already owns email or username.
func (r *UserRepository) IdentityTaken(ctx context.Context, email, username string, excludeID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	or := bson.A{}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if len(or) == 0 {
		return false, nil
	}

	filter := bson.M{"$or": or}
	if excludeID != 0 {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check user identity: %w", err)
	}
	return n > 0, nil
}

func (r *UserRepository) Find(ctx context.Context, f domain.UserFilter, opts ports.FindOptions) ([]*domain.User, error) {
	return r.find(ctx, userFilter(f), findOptions(opts))
}

func (r *UserRepository) Count(ctx context.Context, f domain.UserFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, userFilter(f))
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// TopByPostCount joins each user with their posts and ranks by post count.
// Users without posts rank with zero.
func (r *UserRepository) TopByPostCount(ctx context.Context, n int) ([]domain.AuthorRank, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionPosts,
			"localField":   "_id",
			"foreignField": "author_id",
			"as":           "posts",
		}}},
		{{Key: "$project", Value: bson.M{
			"name":       1,
			"username":   1,
			"avatar":     1,
			"post_count": bson.M{"$size": "$posts"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "post_count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: n}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("rank authors: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID        int64   `bson:"_id"`
		Name      *string `bson:"name"`
		Username  string  `bson:"username"`
		Avatar    *string `bson:"avatar"`
		PostCount int64   `bson:"post_count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode author ranks: %w", err)
	}

	out := make([]domain.AuthorRank, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.AuthorRank{
			Author: domain.AuthorSummary{
				ID:       row.ID,
				Name:     row.Name,
				Username: row.Username,
				Avatar:   row.Avatar,
			},
			PostCount: row.PostCount,
		})
	}
	return out, nil
}

func (r *UserRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	users := []*domain.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}
