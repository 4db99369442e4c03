package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sns/snsiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSNS struct {
	snsiface.SNSAPI
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) PublishWithContext(_ aws.Context, in *sns.PublishInput, _ ...request.Option) (*sns.PublishOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

func TestMessageBody(t *testing.T) {
	ts := time.Date(2026, 3, 4, 10, 20, 30, 0, time.UTC)
	body := Message{FileName: "abc.txt", Lines: 482, Bucket: "reports", Timestamp: ts}.Body()

	assert.Contains(t, body, "File Name: abc.txt")
	assert.Contains(t, body, "Line Count: 482")
	assert.Contains(t, body, "Timestamp: 2026-03-04 10:20:30.000000")
	assert.Contains(t, body, "- Bucket: reports")
	assert.Contains(t, body, "- Process: "+ProcessLabel)
}

func TestSNSPublisherPublish(t *testing.T) {
	fake := &fakeSNS{}
	p := &SNSPublisher{client: fake, topicARN: "arn:topic"}

	id, err := p.Publish(context.Background(), Subject, "hello")
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	assert.Equal(t, "arn:topic", aws.StringValue(fake.input.TopicArn))
	assert.Equal(t, Subject, aws.StringValue(fake.input.Subject))
	assert.Equal(t, "hello", aws.StringValue(fake.input.Message))
}

func TestSNSPublisherPublishError(t *testing.T) {
	p := &SNSPublisher{client: &fakeSNS{err: errors.New("throttled")}, topicARN: "arn:topic"}

	_, err := p.Publish(context.Background(), Subject, "hello")
	assert.ErrorContains(t, err, "throttled")
}

func TestNewSNSPublisherRequiresTopic(t *testing.T) {
	_, err := NewSNSPublisher(nil, "")
	assert.Error(t, err)
}
