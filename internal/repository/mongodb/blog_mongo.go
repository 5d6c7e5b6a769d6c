package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"blogapi/internal/model"
	"blogapi/internal/repository"
)

// blogDocument is the stored shape of a blog post.
type blogDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Author    string             `bson:"author"`
	Tags      []string           `bson:"tags"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt *time.Time         `bson:"updated_at,omitempty"`
}

func toDocument(p *model.BlogPost) blogDocument {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return blogDocument{
		Title:     p.Title,
		Content:   p.Content,
		Author:    p.Author,
		Tags:      tags,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (d blogDocument) toModel() model.BlogPost {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	var updated *time.Time
	if d.UpdatedAt != nil {
		u := d.UpdatedAt.UTC()
		updated = &u
	}
	return model.BlogPost{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Content:   d.Content,
		Author:    d.Author,
		Tags:      tags,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: updated,
	}
}

// BlogMongo is a MongoDB implementation of repository.BlogRepository.
// Ids are ObjectIDs rendered as 24-character hex strings.
type BlogMongo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewBlogMongo creates a repository over coll. A positive timeout bounds each operation.
func NewBlogMongo(coll *mongo.Collection, timeout time.Duration) *BlogMongo {
	return &BlogMongo{coll: coll, timeout: timeout}
}

var _ repository.BlogRepository = (*BlogMongo)(nil)

func (r *BlogMongo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrInvalidID
	}
	return oid, nil
}

// Insert stores a new document under a freshly generated ObjectID.
func (r *BlogMongo) Insert(ctx context.Context, post *model.BlogPost) (*model.BlogPost, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	doc := toDocument(post)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	out := doc.toModel()
	return &out, nil
}

// FindByID fetches a single post by its hex id.
func (r *BlogMongo) FindByID(ctx context.Context, id string) (*model.BlogPost, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc blogDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	out := doc.toModel()
	return &out, nil
}

// List returns posts sorted by _id, which follows insertion order for generated ObjectIDs.
func (r *BlogMongo) List(ctx context.Context, limit int) ([]model.BlogPost, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := make([]model.BlogPost, 0)
	for cur.Next(ctx) {
		var doc blogDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, doc.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update applies a $set of the present fields and updated_at and returns the
// post as written, using a single findAndModify.
func (r *BlogMongo) Update(ctx context.Context, id string, in model.UpdateBlogInput, updatedAt time.Time) (repository.UpdateResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return repository.UpdateResult{}, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc blogDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, updateDocument(in, updatedAt), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.UpdateResult{}, nil
	}
	if err != nil {
		return repository.UpdateResult{}, err
	}

	// findAndModify has no modified count; updated_at is written on every match.
	post := doc.toModel()
	return repository.UpdateResult{MatchedCount: 1, ModifiedCount: 1, Post: &post}, nil
}

// updateDocument builds {$set: {...}} from the non-nil fields of in.
func updateDocument(in model.UpdateBlogInput, updatedAt time.Time) bson.D {
	set := bson.D{}
	if in.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *in.Title})
	}
	if in.Content != nil {
		set = append(set, bson.E{Key: "content", Value: *in.Content})
	}
	if in.Author != nil {
		set = append(set, bson.E{Key: "author", Value: *in.Author})
	}
	if in.Tags != nil {
		tags := *in.Tags
		if tags == nil {
			tags = []string{}
		}
		set = append(set, bson.E{Key: "tags", Value: tags})
	}
	set = append(set, bson.E{Key: "updated_at", Value: updatedAt})
	return bson.D{{Key: "$set", Value: set}}
}

// Delete removes a post by id and reports the deleted count.
func (r *BlogMongo) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := parseID(id)
	if err != nil {
		return 0, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Ping checks that the primary is reachable.
func (r *BlogMongo) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}
