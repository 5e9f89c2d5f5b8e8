package analytics

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedAnswer = errors.New("malformed answer")
	ErrUnknownBucket   = errors.New("unknown bucket")
)

// MalformedAnswerError rejects a single answer whose fields are missing, whose
// type disagrees with the question it aggregates into, or whose numeric value
// doesn't parse.
type MalformedAnswerError struct {
	Key    AggregationKey
	Value  string
	Reason string
}

func (e *MalformedAnswerError) Error() string {
	if e.Key.QuestionID == "" {
		return fmt.Sprintf("malformed answer: %s", e.Reason)
	}
	return fmt.Sprintf("malformed answer for %q: %s", e.Key.String(), e.Reason)
}

func (e *MalformedAnswerError) Unwrap() error {
	return ErrMalformedAnswer
}

// UnknownBucketError rejects an MCQ or rating answer that matches no bucket,
// usually a stale option.
type UnknownBucketError struct {
	Key    AggregationKey
	Bucket string
}

func (e *UnknownBucketError) Error() string {
	return fmt.Sprintf("unknown bucket %q for %q", e.Bucket, e.Key.String())
}

func (e *UnknownBucketError) Unwrap() error {
	return ErrUnknownBucket
}
