package message

import (
	"context"
	"time"

	chatmodel "PChat/module/chat/model"
	"PChat/tools/errs"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store wraps the messages collection. No retries here; connectivity and
// write failures propagate to the caller.
type Store struct {
	coll *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{coll: db.Collection(chatmodel.MessageCollection)}
}

// Append persists a new message, assigning its timestamp at write time.
// Sender/text emptiness is the caller's concern.
func (s *Store) Append(ctx context.Context, sender, text string) (chatmodel.Message, error) {
	msg := chatmodel.Message{
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
	if _, err := s.coll.InsertOne(ctx, msg); err != nil {
		return chatmodel.Message{}, errs.WrapMsg(err, "insert message failed", "sender", sender)
	}
	return msg, nil
}

// RecentMessages returns up to limit messages, most-recent-first.
func (s *Store) RecentMessages(ctx context.Context, limit int64) ([]chatmodel.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errs.WrapMsg(err, "find recent messages failed", "limit", limit)
	}
	var out []chatmodel.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.WrapMsg(err, "decode recent messages failed")
	}
	return out, nil
}

// AllRecentAscending returns the same window as RecentMessages but
// oldest-first, for the plain history endpoint.
func (s *Store) AllRecentAscending(ctx context.Context, limit int64) ([]chatmodel.Message, error) {
	msgs, err := s.RecentMessages(ctx, limit)
	if err != nil {
		return nil, err
	}
	return lo.Reverse(msgs), nil
}

// DeleteOlderThan removes every message with timestamp strictly before
// cutoff and reports how many were deleted.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, errs.WrapMsg(err, "delete old messages failed", "cutoff", cutoff)
	}
	return res.DeletedCount, nil
}
