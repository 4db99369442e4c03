// Package awsutil builds the AWS sessions used by the SNS, SQS and
// S3-compatible clients.
package awsutil

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
)

// NewSession returns a session for region, optionally pointed at a custom
// endpoint (e.g. LocalStack). Credentials come from the default chain.
func NewSession(region, endpoint string) (*session.Session, error) {
	return NewSessionWithCredentials(region, endpoint, nil)
}

// NewSessionWithCredentials is NewSession with explicit credentials; nil
// creds falls back to the default chain. The process environment is never
// modified.
func NewSessionWithCredentials(region, endpoint string, creds *credentials.Credentials) (*session.Session, error) {
	cfg := aws.NewConfig().WithRegion(region)
	if endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint)
	}
	if creds != nil {
		cfg = cfg.WithCredentials(creds)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *cfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("aws session init error: %w", err)
	}
	return sess, nil
}
