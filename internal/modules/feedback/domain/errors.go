package domain

import "errors"

var (
	ErrFeedbackNotFound         = errors.New("feedback not found")
	ErrFeedbackAlreadySubmitted = errors.New("feedback already submitted for this order")
	ErrIssueNotFound            = errors.New("issue report not found")
	ErrOrderNotFound            = errors.New("order not found")
	ErrInvalidRating            = errors.New("ratings must be between 1 and 5")
	ErrInvalidStatus            = errors.New("unknown issue status")
)
