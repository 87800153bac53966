package model

import "tropharbour-backend/internal/shared/apperror"

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeLatLng      = "TOUR001"
	ErrCodeInvalidYear = "TOUR002"
)

var (
	ErrLatLng      = apperror.InvalidArgument("Please provide latitude and longitude in the format lat,lng.").WithCode(ErrCodeLatLng)
	ErrInvalidYear = apperror.InvalidArgument("Please provide a valid year").WithCode(ErrCodeInvalidYear)
)
