package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is the persisted record of one activity for one recipient.
type Notification struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID                 string             `bson:"user_id" json:"userId"`
	SenderName             string             `bson:"sender_name" json:"senderName"`
	UserName               string             `bson:"user_name" json:"userName"`
	Message                string             `bson:"message" json:"message"`
	MessageID              string             `bson:"message_id" json:"messageId"` // activity type
	ProductName            string             `bson:"product_name" json:"productName"`
	ProductRevisionVersion string             `bson:"product_revision_version,omitempty" json:"productRevisionVersion,omitempty"`
	ReferenceID            string             `bson:"reference_id,omitempty" json:"referenceId,omitempty"`
	ReferenceType          string             `bson:"reference_type" json:"referenceType"`
	CreatedBy              string             `bson:"created_by" json:"createdBy"`
	SelectionID            string             `bson:"selection_id,omitempty" json:"selectionId,omitempty"`
	Theme                  string             `bson:"theme" json:"theme"`
	IAN                    string             `bson:"ian,omitempty" json:"ian,omitempty"`
	Thumbnail              string             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Activity               *Activity          `bson:"activity,omitempty" json:"activity,omitempty"`
	Read                   bool               `bson:"read" json:"read"`
	CreatedAt              time.Time          `bson:"created_at" json:"createdAt"`
	ExpiresAt              time.Time          `bson:"expires_at" json:"expiresAt"`
}
