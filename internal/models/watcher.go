package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// WatcherGroup tags the role a watcher holds on a resource.
type WatcherGroup string

const (
	GroupCreator      WatcherGroup = "CREATOR"
	GroupBuyer        WatcherGroup = "BUYER"
	GroupSupplier     WatcherGroup = "SUPPLIER"
	GroupMerchandiser WatcherGroup = "MERCHANDISER"
	GroupQuality      WatcherGroup = "QUALITY"
	GroupTechnologist WatcherGroup = "TECHNOLOGIST"
	GroupCommenter    WatcherGroup = "COMMENTER"
)

// WatcherGroupEntry is one group membership of a watcher.
type WatcherGroupEntry struct {
	Group WatcherGroup `bson:"group" json:"group"`
}

// Watcher is a user registered as interested in a resource.
type Watcher struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	NotificationID     string              `bson:"notification_id" json:"notificationId"`
	ResourceName       string              `bson:"resource_name" json:"resourceName"`
	ResourceID         string              `bson:"resource_id" json:"resourceId"`
	TargetResourceName string              `bson:"target_resource_name,omitempty" json:"targetResourceName,omitempty"`
	TargetResourceID   string              `bson:"target_resource_id,omitempty" json:"targetResourceId,omitempty"`
	Groups             []WatcherGroupEntry `bson:"groups" json:"groups"`
}

// InAnyGroup reports whether the watcher belongs to one of groups.
func (w Watcher) InAnyGroup(groups []WatcherGroup) bool {
	for _, g := range w.Groups {
		for _, want := range groups {
			if g.Group == want {
				return true
			}
		}
	}
	return false
}
