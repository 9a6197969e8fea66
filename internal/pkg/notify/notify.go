// Package notify 回复提醒的旁路分发：发布到 Redis 频道，由各实例的
// 订阅者推给本地在线连接。分发失败只记日志，绝不影响评论创建本身。
package notify

import (
	"context"
	"encoding/json"
	"log"

	"github.com/go-redis/redis/v8"

	"github.com/qingwen/novel_go_server/internal/pkg/ws"
)

const ChannelCommentReply = "comment_reply"

// ReplyMessage 回复提醒消息
type ReplyMessage struct {
	Type        string `json:"type"`
	RecipientID int64  `json:"recipient_id"`
	ActorID     int64  `json:"actor_id"`
	CommentID   int64  `json:"comment_id"`
}

// Notifier 评论服务消费的提醒接口，fire-and-forget
type Notifier interface {
	NotifyReply(ctx context.Context, recipientID, actorID, commentID int64)
}

// Publisher 把提醒发布到 Redis 频道
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) NotifyReply(ctx context.Context, recipientID, actorID, commentID int64) {
	msg := &ReplyMessage{
		Type:        "comment_reply",
		RecipientID: recipientID,
		ActorID:     actorID,
		CommentID:   commentID,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("notify: marshal reply message failed: %v", err)
		return
	}

	if err := p.client.Publish(ctx, ChannelCommentReply, data).Err(); err != nil {
		log.Printf("notify: publish reply for user %d failed: %v", recipientID, err)
	}
}

// Subscriber 订阅提醒频道，推给本实例的在线用户
type Subscriber struct {
	client *redis.Client
	hub    *ws.Hub
}

func NewSubscriber(client *redis.Client, hub *ws.Hub) *Subscriber {
	return &Subscriber{client: client, hub: hub}
}

// Run 阻塞消费，ctx 取消时退出
func (s *Subscriber) Run(ctx context.Context) error {
	pubsub := s.client.Subscribe(ctx, ChannelCommentReply)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var reply ReplyMessage
			if err := json.Unmarshal([]byte(msg.Payload), &reply); err != nil {
				continue // 忽略解析错误
			}

			if err := s.hub.SendToUser(reply.RecipientID, &ws.Message{
				Type: reply.Type,
				Data: reply,
			}); err != nil {
				log.Printf("notify: push to user %d failed: %v", reply.RecipientID, err)
			}
		}
	}
}

// Nop 测试和离线场景用的空实现
type Nop struct{}

func (Nop) NotifyReply(ctx context.Context, recipientID, actorID, commentID int64) {}

var _ Notifier = (*Publisher)(nil)
var _ Notifier = Nop{}
