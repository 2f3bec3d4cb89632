// Package queue implements the external completion notification: a
// CompletionNotifier backed by AWS SQS.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSConfig configures the completion-notification queue sender.
type SQSConfig struct {
	QueueURL        string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// SQSSender implements interview.CompletionNotifier by publishing a
// completion message to an SQS queue. Disabled (NotifyCompletion is a no-op
// success) when QueueURL is empty, matching the source service's lazy/
// optional initialization.
type SQSSender struct {
	client   *sqs.Client
	queueURL string
}

// NewSQSSender builds a sender from cfg. Returns a disabled sender (every
// call to NotifyCompletion succeeds trivially) if cfg.QueueURL is empty.
func NewSQSSender(ctx context.Context, cfg SQSConfig) (*SQSSender, error) {
	queueURL := strings.TrimSpace(cfg.QueueURL)
	if queueURL == "" {
		return &SQSSender{}, nil
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	loadOptions := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOptions = append(loadOptions, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return &SQSSender{client: client, queueURL: queueURL}, nil
}

// Enabled reports whether this sender has a live queue configured.
func (s *SQSSender) Enabled() bool {
	return s.client != nil && s.queueURL != ""
}

// completionPayload is the message body shape the downstream consumer
// expects: a single candidateInterviewId field.
type completionPayload struct {
	CandidateInterviewID string `json:"candidateInterviewId"`
}

// NotifyCompletion sends the completion message, carrying candidateInterviewId
// both in the JSON body and as a matching string message attribute.
func (s *SQSSender) NotifyCompletion(ctx context.Context, candidateInterviewID string) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	body, err := json.Marshal(completionPayload{CandidateInterviewID: candidateInterviewID})
	if err != nil {
		return "", fmt.Errorf("marshal completion payload: %w", err)
	}

	out, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"candidateInterviewId": {
				DataType:    aws.String("String"),
				StringValue: aws.String(candidateInterviewID),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("send sqs message: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}
