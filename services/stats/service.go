package stats

import (
	"context"
	"errors"
	"log"

	"cloud.google.com/go/firestore"
	"golang.org/x/xerrors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	foosball "github.com/kicktally/foosball-sync/repos/foosball"
)

var ErrGroupNotFound = errors.New("group not found")

type StatsService struct {
	firestoreClient *firestore.Client
	foosballService *foosball.Service
}

func NewStatsService(firestoreClient *firestore.Client, foosballService *foosball.Service) *StatsService {
	return &StatsService{
		firestoreClient: firestoreClient,
		foosballService: foosballService,
	}
}

// GetStats returns the stored statistics document for a group.
func (s *StatsService) GetStats(ctx context.Context, groupID string) (*GroupStats, error) {
	doc, err := s.firestoreClient.Collection("groupStats").Doc(groupID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	var groupStats GroupStats
	if err := doc.DataTo(&groupStats); err != nil {
		// If this fails, we have an inconsistency error as we control both the data written to
		// Firestore and the shape of our stats struct.
		return nil, xerrors.Errorf(
			"consistency error. Converting %+v to internal stats struct failed: %w",
			doc,
			err,
		)
	}
	return &groupStats, nil
}

// Recompute rebuilds the group's stats document from its full match
// history and stores it. A failed read leaves the previously stored
// stats untouched.
func (s *StatsService) Recompute(ctx context.Context, groupID string) (*GroupStats, error) {
	group, err := s.foosballService.GetGroup(ctx, groupID)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrGroupNotFound
		}
		log.Printf("Failed to get group %s from Firestore: %v\n", groupID, err)
		return nil, err
	}

	matches, err := s.foosballService.GroupMatches(ctx, groupID)
	if err != nil {
		log.Printf("Failed to get matches for group %s: %v\n", groupID, err)
		return nil, err
	}

	groupStats := Aggregate(groupID, matches, BuildRoster(group), group.TeamColors)

	if _, err := s.firestoreClient.Collection("groupStats").Doc(groupID).Set(ctx, groupStats); err != nil {
		log.Printf("Failed to write stats for group %s: %v\n", groupID, err)
		return nil, err
	}

	if err := s.foosballService.ClearStatsStale(ctx, groupID); err != nil {
		log.Printf("Failed to clear stale flag for group %s: %v\n", groupID, err)
	}

	log.Printf("Updated stats for group %s (%d matches)\n", groupID, len(matches))
	return groupStats, nil
}

// ReconcileStale recomputes stats for every group still flagged stale.
// Runs periodically so a missed synchronous recompute converges.
func (s *StatsService) ReconcileStale(ctx context.Context) {
	ids, err := s.foosballService.StaleGroupIDs(ctx)
	if err != nil {
		log.Printf("Failed to list stale groups: %v\n", err)
		return
	}

	for _, groupID := range ids {
		if _, err := s.Recompute(ctx, groupID); err != nil {
			log.Printf("Failed to reconcile stats for group %s: %v\n", groupID, err)
		}
	}

	if len(ids) > 0 {
		log.Printf("Reconciled stats for %d stale groups\n", len(ids))
	}
}
