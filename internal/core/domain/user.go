package domain

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	Admin       UserRole = "admin"
	RegularUser UserRole = "user"
)

type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id" swaggertype:"string" example:"665f1c2e8b3a4d0012a3b4c5"`
	Name      string             `json:"name" bson:"name" example:"Ivan Ivanov"`
	Email     string             `json:"email" bson:"email" example:"ivan@example.com"`
	Age       float64            `json:"age" bson:"age" example:"30"`
	Role      UserRole           `json:"role" bson:"role" example:"user"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// UserInput is a candidate record as sent by a client. A nil field was not supplied.
type UserInput struct {
	Name  *string   `json:"name,omitempty" example:"Ivan Ivanov"`
	Email *string   `json:"email,omitempty" example:"ivan@example.com"`
	Age   *float64  `json:"age,omitempty" example:"30"`
	Role  *UserRole `json:"role,omitempty" example:"user" enums:"admin,user"`

	// Mistyped names the fields sent with a JSON type that does not fit, e.g. a string age.
	Mistyped []string `json:"-" swaggerignore:"true"`
}

func (in UserInput) IsMistyped(field string) bool {
	return slices.Contains(in.Mistyped, field)
}

type UserFilter struct {
	Role *UserRole
}
