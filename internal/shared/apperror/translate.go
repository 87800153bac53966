package apperror

import (
	"errors"
	"net/http"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	MsgTokenInvalid = "Invalid token. Please log in again!"
	MsgTokenExpired = "Your token has expired! Please log in again."
)

var quotedValue = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)

// Translate maps store, validation and token errors into the taxonomy.
// Errors that are already AppErrors, or that are not recognised, are
// returned unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return Wrap(KindValidation, "Invalid input data. "+joinValidation(verrs), err)
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return Wrap(KindValidation, "Request body is too large", err)
	}

	switch {
	case mongo.IsDuplicateKeyError(err):
		return Wrap(KindValidation, duplicateMessage(err), err)
	case errors.Is(err, mongo.ErrNoDocuments):
		return Wrap(KindNotFound, "No document found with that ID", err)
	case errors.Is(err, primitive.ErrInvalidHex):
		return Wrap(KindInvalidArgument, "Invalid _id", err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return Wrap(KindAuthentication, MsgTokenExpired, err)
	case isTokenError(err):
		return Wrap(KindAuthentication, MsgTokenInvalid, err)
	}

	return err
}

func isTokenError(err error) bool {
	return errors.Is(err, jwt.ErrTokenMalformed) ||
		errors.Is(err, jwt.ErrTokenSignatureInvalid) ||
		errors.Is(err, jwt.ErrTokenUnverifiable) ||
		errors.Is(err, jwt.ErrTokenInvalidClaims) ||
		errors.Is(err, jwt.ErrTokenNotValidYet)
}

func duplicateMessage(err error) string {
	value := quotedValue.FindString(err.Error())
	if value == "" {
		return "Duplicate field value. Please use another value!"
	}
	return "Duplicate field value: " + value + ". Please use another value!"
}

func joinValidation(verrs validation.Errors) string {
	keys := make([]string, 0, len(verrs))
	for k := range verrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		if verrs[k] == nil {
			continue
		}
		msgs = append(msgs, k+": "+verrs[k].Error())
	}
	return strings.Join(msgs, ". ")
}
