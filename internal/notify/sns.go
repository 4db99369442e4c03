package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sns/snsiface"
)

// SNSPublisher publishes to a single SNS topic.
type SNSPublisher struct {
	client   snsiface.SNSAPI
	topicARN string
}

// NewSNSPublisher creates a publisher for topicARN.
func NewSNSPublisher(sess *session.Session, topicARN string) (*SNSPublisher, error) {
	if topicARN == "" {
		return nil, fmt.Errorf("sns topic arn must be provided")
	}
	return &SNSPublisher{client: sns.New(sess), topicARN: topicARN}, nil
}

// Publish sends body with subject and returns the SNS message id.
func (p *SNSPublisher) Publish(ctx context.Context, subject, body string) (string, error) {
	out, err := p.client.PublishWithContext(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
	})
	if err != nil {
		return "", fmt.Errorf("sns publish failed: %w", err)
	}
	return aws.StringValue(out.MessageId), nil
}

var _ Publisher = (*SNSPublisher)(nil)
