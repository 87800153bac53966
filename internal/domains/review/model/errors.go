package model

import "tropharbour-backend/internal/shared/apperror"

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeDuplicateReview = "REV001"
	ErrCodeTourNotFound    = "REV002"
	ErrCodeNotOwner        = "REV003"
)

var (
	ErrDuplicateReview = apperror.Validation("You have already reviewed this tour").WithCode(ErrCodeDuplicateReview)
	ErrTourNotFound    = apperror.NotFound("No tour found with that ID").WithCode(ErrCodeTourNotFound)
	ErrNotOwner        = apperror.Authorization("You can only change your own reviews").WithCode(ErrCodeNotOwner)
)
