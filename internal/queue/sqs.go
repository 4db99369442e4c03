package queue

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
)

// SQSSender sends messages to a single SQS queue.
type SQSSender struct {
	client   sqsiface.SQSAPI
	queueURL string
}

// NewSQSSender creates a sender for queueURL.
func NewSQSSender(sess *session.Session, queueURL string) (*SQSSender, error) {
	if queueURL == "" {
		return nil, fmt.Errorf("sqs queue url must be provided")
	}
	return &SQSSender{client: sqs.New(sess), queueURL: queueURL}, nil
}

// Send enqueues body.
func (s *SQSSender) Send(ctx context.Context, body string) error {
	_, err := s.client.SendMessageWithContext(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("sqs send failed: %w", err)
	}
	return nil
}

var _ Sender = (*SQSSender)(nil)
