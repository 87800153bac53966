package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tropharbour-backend/internal/shared"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

const DefaultPhoto = "default.jpg"

// ActiveScope hides deactivated accounts from every find.
var ActiveScope = bson.M{"active": bson.M{"$ne": false}}

// Authorize reports whether role is one of allowed.
func Authorize(role Role, allowed ...Role) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                 string             `bson:"name" json:"name"`
	Email                string             `bson:"email" json:"email"`
	Photo                string             `bson:"photo" json:"photo"`
	Role                 Role               `bson:"role" json:"role"`
	Password             string             `bson:"password" json:"-"`
	PasswordChangedAt    *time.Time         `bson:"passwordChangedAt,omitempty" json:"passwordChangedAt,omitempty"`
	PasswordResetToken   string             `bson:"passwordResetToken,omitempty" json:"-"`
	PasswordResetExpires *time.Time         `bson:"passwordResetExpires,omitempty" json:"-"`
	Active               bool               `bson:"active" json:"-"`
	Version              int                `bson:"__v" json:"-"`
}

// New builds a user with the defaults applied. password must already be
// hashed.
func New(name, email, passwordHash string) *User {
	return &User{
		Name:     strings.TrimSpace(name),
		Email:    NormalizeEmail(email),
		Photo:    DefaultPhoto,
		Role:     RoleUser,
		Password: passwordHash,
		Active:   true,
	}
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks the stored shape of a user.
func (u User) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Name, validation.Required.Error("Please tell us your name!")),
		validation.Field(&u.Email,
			validation.Required.Error("Please provide your email"),
			is.EmailFormat.Error("Please provide a valid email"),
		),
		validation.Field(&u.Role, validation.In(RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin).Error("Role is either: user, guide, lead-guide, admin")),
	)
}

// PasswordChangedAfter reports whether the password changed after a token
// issued at iat. Both sides are compared in whole seconds, the resolution
// of the token timestamp.
func (u *User) PasswordChangedAfter(iat time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() > iat.Unix()
}

// Principal is the identity handed to request handlers.
func (u *User) Principal() *shared.Principal {
	return &shared.Principal{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
		Photo: u.Photo,
		Role:  string(u.Role),
	}
}

// Summary is the embedded view of a user inside tours and reviews.
type Summary struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email,omitempty" json:"email,omitempty"`
	Photo string             `bson:"photo" json:"photo"`
	Role  Role               `bson:"role,omitempty" json:"role,omitempty"`
}
