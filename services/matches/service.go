package matches

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"

	foosball "github.com/kicktally/foosball-sync/repos/foosball"
	ratelimit "github.com/kicktally/foosball-sync/services/ratelimit"
	stats "github.com/kicktally/foosball-sync/services/stats"
)

var (
	ErrNotGroupMember = errors.New("not a member of this group")
	ErrNotAllowed     = errors.New("only the creator or a group admin can do this")
)

type MatchesService struct {
	firestoreClient  *firestore.Client
	foosballService  *foosball.Service
	rateLimitService *ratelimit.RateLimitService
	statsService     *stats.StatsService
}

func NewMatchesService(
	firestoreClient *firestore.Client,
	foosballService *foosball.Service,
	rateLimitService *ratelimit.RateLimitService,
	statsService *stats.StatsService,
) *MatchesService {
	return &MatchesService{
		firestoreClient:  firestoreClient,
		foosballService:  foosballService,
		rateLimitService: rateLimitService,
		statsService:     statsService,
	}
}

// CreateMatch validates the payload, applies the cooldown, writes the
// match with a derived winner, and recomputes the group's stats.
func (s *MatchesService) CreateMatch(ctx context.Context, userID string, request CreateMatchRequest) (string, ratelimit.Decision, error) {
	var decision ratelimit.Decision

	group, err := s.foosballService.GetGroup(ctx, request.GroupID)
	if err != nil {
		return "", decision, err
	}
	if _, ok := group.Members[userID]; !ok {
		return "", decision, ErrNotGroupMember
	}

	if err := validateTeams(request.GameType, request.Team1, request.Team2); err != nil {
		return "", decision, err
	}

	decision, err = s.rateLimitService.CheckAndRecordMatchCreate(ctx, userID)
	if err != nil {
		return "", decision, err
	}

	match := foosball.Match{
		GroupID:   request.GroupID,
		GameType:  request.GameType,
		Team1:     request.Team1,
		Team2:     request.Team2,
		Winner:    foosball.DeriveWinner(request.Team1.Score, request.Team2.Score),
		PlayedAt:  request.PlayedAt,
		CreatedBy: userID,
	}

	matchID, err := s.foosballService.CreateMatch(ctx, match)
	if err != nil {
		log.Printf("Failed to write match to Firestore: %v\n", err)
		return "", decision, err
	}

	s.refreshStats(ctx, request.GroupID)
	return matchID, decision, nil
}

// UpdateMatch applies a partial edit. The winner is re-derived from
// the effective scores, so an edit can never leave them inconsistent.
func (s *MatchesService) UpdateMatch(ctx context.Context, userID, matchID string, request UpdateMatchRequest) error {
	match, err := s.foosballService.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}

	group, err := s.foosballService.GetGroup(ctx, match.GroupID)
	if err != nil {
		return err
	}
	if !canMutate(group, match, userID) {
		return ErrNotAllowed
	}

	merged := mergeMatch(*match, request)
	if err := validateTeams(merged.GameType, merged.Team1, merged.Team2); err != nil {
		return err
	}

	update := foosball.MatchUpdate{
		GameType: request.GameType,
		Team1:    request.Team1,
		Team2:    request.Team2,
		PlayedAt: request.PlayedAt,
	}
	if err := s.foosballService.UpdateMatch(ctx, matchID, update, merged.Winner); err != nil {
		log.Printf("Failed to update match %s: %v\n", matchID, err)
		return err
	}

	s.refreshStats(ctx, match.GroupID)
	return nil
}

func (s *MatchesService) DeleteMatch(ctx context.Context, userID, matchID string) error {
	match, err := s.foosballService.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}

	group, err := s.foosballService.GetGroup(ctx, match.GroupID)
	if err != nil {
		return err
	}
	if !canMutate(group, match, userID) {
		return ErrNotAllowed
	}

	if err := s.foosballService.DeleteMatch(ctx, matchID); err != nil {
		return err
	}

	s.refreshStats(ctx, match.GroupID)
	return nil
}

// refreshStats marks the group stale first, so the reconcile job picks
// it up if the synchronous recompute fails.
func (s *MatchesService) refreshStats(ctx context.Context, groupID string) {
	if err := s.foosballService.MarkStatsStale(ctx, groupID); err != nil {
		log.Printf("Failed to mark group %s stale: %v\n", groupID, err)
	}
	if _, err := s.statsService.Recompute(ctx, groupID); err != nil {
		log.Printf("Failed to recompute stats for group %s: %v\n", groupID, err)
	}
}

// mergeMatch overlays a partial edit onto a stored match and re-derives
// the winner from the effective scores.
func mergeMatch(match foosball.Match, request UpdateMatchRequest) foosball.Match {
	if request.GameType != nil {
		match.GameType = *request.GameType
	}
	if request.Team1 != nil {
		match.Team1 = *request.Team1
	}
	if request.Team2 != nil {
		match.Team2 = *request.Team2
	}
	if request.PlayedAt != nil {
		match.PlayedAt = *request.PlayedAt
	}
	match.Winner = foosball.DeriveWinner(match.Team1.Score, match.Team2.Score)
	return match
}

func canMutate(group *foosball.Group, match *foosball.Match, userID string) bool {
	if match.CreatedBy == userID || group.AdminUID == userID {
		return true
	}
	member, ok := group.Members[userID]
	return ok && member.Role == "admin"
}

// validateTeams enforces the shape the aggregator expects: the right
// number of players per side for the game type, non-negative scores,
// and positions on 2v2 slots.
func validateTeams(gameType string, team1, team2 foosball.TeamSide) error {
	var playersPerTeam int
	switch gameType {
	case foosball.GameType1v1:
		playersPerTeam = 1
	case foosball.GameType2v2:
		playersPerTeam = 2
	default:
		return fmt.Errorf("unknown game type %q", gameType)
	}

	if team1.Score < 0 || team2.Score < 0 {
		return fmt.Errorf("scores must be non-negative")
	}

	for i, team := range []foosball.TeamSide{team1, team2} {
		if len(team.Players) != playersPerTeam {
			return fmt.Errorf("team %d needs %d players for %s, got %d", i+1, playersPerTeam, gameType, len(team.Players))
		}
		for _, player := range team.Players {
			if player.UID == "" {
				return fmt.Errorf("team %d has a player without uid", i+1)
			}
			if gameType == foosball.GameType2v2 &&
				player.Position != foosball.PositionAttack &&
				player.Position != foosball.PositionDefense {
				return fmt.Errorf("team %d player %s needs a position of attack or defense", i+1, player.UID)
			}
		}
	}

	return nil
}
