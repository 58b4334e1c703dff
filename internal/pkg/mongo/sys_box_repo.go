package mongo

import (
	"Keystone/internal/pkg/consts"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sysBoxCollection = "sys_box"

type SysBoxRepo interface {
	NotifyFollowed(ctx context.Context, receiverID, senderID uint64) error
	DeleteByUser(ctx context.Context, userID uint64) (int64, error)
}

type sysBoxRepoImpl struct {
	col *mongo.Collection
}

func NewSysBoxRepo(db *mongo.Database) SysBoxRepo {
	return &sysBoxRepoImpl{
		col: db.Collection(sysBoxCollection),
	}
}

// NotifyFollowed 写入一条被关注通知
func (s *sysBoxRepoImpl) NotifyFollowed(ctx context.Context, receiverID, senderID uint64) error {
	_, err := s.col.InsertOne(ctx, &SysBoxModel{
		ReceiverID: receiverID,
		SenderID:   senderID,
		Type:       consts.SysBoxTypeFollow,
		TargetID:   senderID,
		Content:    "关注了你",
		CreatedAt:  time.Now(),
	})
	return err
}

// DeleteByUser 删除该用户收到的和发出的全部通知
func (s *sysBoxRepoImpl) DeleteByUser(ctx context.Context, userID uint64) (int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"receiver_id": userID},
		bson.M{"sender_id": userID},
	}}
	res, err := s.col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func ensureSysBoxIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(sysBoxCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "sender_id", Value: 1}}, Options: options.Index().SetName("idx_sender_id")},
	})
	return err
}
