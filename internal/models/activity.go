package models

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity is a recorded state change on a resource. It is persisted once and
// never mutated afterwards.
type Activity struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type                string             `bson:"type" json:"type" validate:"required"`
	ActivityBy          string             `bson:"activity_by" json:"activityBy" validate:"required"`
	ActivityByName      string             `bson:"activity_by_name" json:"activityByName" validate:"required"`
	ResourceName        string             `bson:"resource_name" json:"resourceName" validate:"required"`
	ResourceID          string             `bson:"resource_id" json:"resourceId" validate:"required"`
	TargetResourceName  string             `bson:"target_resource_name,omitempty" json:"targetResourceName,omitempty" validate:"required_with=TargetResourceID"`
	TargetResourceID    string             `bson:"target_resource_id,omitempty" json:"targetResourceId,omitempty"`
	Notify              string             `bson:"notify,omitempty" json:"notify,omitempty"`
	Departments         []string           `bson:"departments,omitempty" json:"departments,omitempty" validate:"omitempty,dive,required"`
	CommentActivityType string             `bson:"comment_activity_type,omitempty" json:"commentActivityType,omitempty" validate:"omitempty,oneof=INTERNAL EXTERNAL BUYERS_INTERNAL"`
	Message             string             `bson:"message" json:"message" validate:"required"`
	Metadata            string             `bson:"metadata,omitempty" json:"metadata,omitempty" validate:"omitempty,json"`
	ProductID           string             `bson:"product_id,omitempty" json:"productId,omitempty"`
	Origin              string             `bson:"origin" json:"origin"`
	CreatedAt           time.Time          `bson:"created_at" json:"createdAt"`
}

// UserTag is a user mentioned in a comment.
type UserTag struct {
	EmailID string `json:"emailId"`
	Name    string `json:"name"`
}

// ActivityMetadata is the structured form of Activity.Metadata.
type ActivityMetadata struct {
	Message  string    `json:"message,omitempty"`
	UserTags []UserTag `json:"userTags,omitempty"`
}

// HasMetadata reports whether the activity carries a metadata document.
func (a *Activity) HasMetadata() bool {
	return a.Metadata != ""
}

// ParseMetadata decodes Metadata. An empty document yields a zero value.
func (a *Activity) ParseMetadata() (ActivityMetadata, error) {
	var meta ActivityMetadata
	if a.Metadata == "" {
		return meta, nil
	}
	if err := json.Unmarshal([]byte(a.Metadata), &meta); err != nil {
		return meta, fmt.Errorf("invalid activity metadata: %w", err)
	}
	return meta, nil
}

// IsTagged reports whether email appears in the metadata user tags.
func (m ActivityMetadata) IsTagged(email string) bool {
	for _, tag := range m.UserTags {
		if tag.EmailID == email {
			return true
		}
	}
	return false
}
