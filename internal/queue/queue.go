package queue

import "context"

// Sender is satisfied by SQSSender. Its method has the same signature as
// interview.CompletionNotifier's, so any Sender can be handed to the
// completion workflow as its notifier.
type Sender interface {
	NotifyCompletion(ctx context.Context, candidateInterviewID string) (messageID string, err error)
}
