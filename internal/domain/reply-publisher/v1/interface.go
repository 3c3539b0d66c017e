package replypublisherv1

import (
	"context"

	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
)

// ReplyPublisher defines the interface for answering a caller on its reply topic.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=replypublisherv1_mock
type ReplyPublisher interface {
	// PublishReply publishes reply once on the topic named by correlationID.
	PublishReply(ctx context.Context, correlationID string, reply commandv1.Reply) error
}
