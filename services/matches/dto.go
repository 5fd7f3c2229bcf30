package matches

import (
	"time"

	foosball "github.com/kicktally/foosball-sync/repos/foosball"
)

// Define the structure for your JSON payload
type CreateMatchRequest struct {
	GroupID  string            `json:"groupId" binding:"required"`
	GameType string            `json:"gameType" binding:"required"`
	Team1    foosball.TeamSide `json:"team1" binding:"required"`
	Team2    foosball.TeamSide `json:"team2" binding:"required"`
	PlayedAt time.Time         `json:"playedAt" binding:"required"`
}

// UpdateMatchRequest carries a partial edit; nil fields keep their
// stored value.
type UpdateMatchRequest struct {
	GameType *string            `json:"gameType"`
	Team1    *foosball.TeamSide `json:"team1"`
	Team2    *foosball.TeamSide `json:"team2"`
	PlayedAt *time.Time         `json:"playedAt"`
}
