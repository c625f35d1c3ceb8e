package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mansoorceksport/gymcard/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMemberRepository implements domain.MemberRepository.
// Member ids are ULID strings, so _id is stored as a plain string.
type MongoMemberRepository struct {
	collection *mongo.Collection
}

func NewMongoMemberRepository(db *mongo.Database) *MongoMemberRepository {
	coll := db.Collection("members")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "register_date", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})

	return &MongoMemberRepository{
		collection: coll,
	}
}

func (r *MongoMemberRepository) Create(ctx context.Context, member *domain.MemberRecord) error {
	if member.ID == "" {
		return fmt.Errorf("failed to create member: empty id")
	}
	member.CreatedAt = time.Now()
	member.UpdatedAt = member.CreatedAt

	doc := bson.M(memberToMap(member, mongoFields))
	doc["_id"] = member.ID
	doc["created_at"] = member.CreatedAt
	doc["updated_at"] = member.UpdatedAt

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

func (r *MongoMemberRepository) GetByID(ctx context.Context, id string) (*domain.MemberRecord, error) {
	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return mapBsonToMember(raw), nil
}

func (r *MongoMemberRepository) Update(ctx context.Context, member *domain.MemberRecord) error {
	member.UpdatedAt = time.Now()

	set := bson.M(memberToMap(member, mongoFields))
	set["updated_at"] = member.UpdatedAt
	update := bson.M{"$set": set}
	if member.Remaining == nil {
		update["$unset"] = bson.M{"remaining": ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": member.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

func (r *MongoMemberRepository) UpdateRemaining(ctx context.Context, id string, remaining *int) error {
	update := bson.M{"$set": bson.M{"updated_at": time.Now()}}
	if remaining == nil {
		update["$unset"] = bson.M{"remaining": ""}
	} else {
		update["$set"].(bson.M)["remaining"] = *remaining
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update remaining: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

func (r *MongoMemberRepository) List(ctx context.Context) ([]*domain.MemberRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer cursor.Close(ctx)

	var members []*domain.MemberRecord
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		members = append(members, mapBsonToMember(raw))
	}
	return members, cursor.Err()
}

func mapBsonToMember(raw bson.M) *domain.MemberRecord {
	id, _ := raw["_id"].(string)
	return mapToMember(id, raw, mongoFields)
}
