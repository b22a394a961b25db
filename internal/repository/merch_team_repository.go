package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type merchTeam struct {
	TeamID string `bson:"team_id"`
}

// MerchTeamRepository reads the merchandising teams catalogue.
type MerchTeamRepository struct {
	collection *mongo.Collection
}

func NewMerchTeamRepository(db *mongo.Database) *MerchTeamRepository {
	return &MerchTeamRepository{
		collection: db.Collection("merchandising_teams"),
	}
}

// GetValidTeamIDs returns the ids of every known merchandising team.
func (r *MerchTeamRepository) GetValidTeamIDs(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"team_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch merchandising teams: %v", err)
	}
	defer cursor.Close(ctx)

	var teams []merchTeam
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, fmt.Errorf("failed to decode merchandising teams: %v", err)
	}

	ids := make([]string, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.TeamID)
	}
	return ids, nil
}
