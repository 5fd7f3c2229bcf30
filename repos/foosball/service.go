package foosball

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
	"golang.org/x/xerrors"
	"google.golang.org/api/iterator"
)

// Service wraps Firestore access to the group and match collections.
type Service struct {
	Client *firestore.Client
}

// NewService creates a new empty service.
func NewService(client *firestore.Client) *Service {
	return &Service{
		Client: client,
	}
}

func (s Service) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	doc, err := s.Client.Collection("groups").Doc(groupID).Get(ctx)
	if err != nil {
		return nil, err
	}

	var group Group
	if err := doc.DataTo(&group); err != nil {
		// If this fails, we have an inconsistency error as we control both the data written to
		// Firestore and the shape of our group struct.
		return nil, xerrors.Errorf(
			"consistency error. Converting %+v to internal group struct failed: %w",
			doc,
			err,
		)
	}
	return &group, nil
}

func (s Service) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	doc, err := s.Client.Collection("matches").Doc(matchID).Get(ctx)
	if err != nil {
		return nil, err
	}

	var match Match
	if err := doc.DataTo(&match); err != nil {
		return nil, xerrors.Errorf(
			"consistency error. Converting %+v to internal match struct failed: %w",
			doc,
			err,
		)
	}
	match.ID = doc.Ref.ID
	return &match, nil
}

// GroupMatches returns every match recorded for the group. Documents
// that fail to decode are skipped so one bad record cannot take the
// whole aggregation down.
func (s Service) GroupMatches(ctx context.Context, groupID string) ([]Match, error) {
	iter := s.Client.Collection("matches").
		Where("groupId", "==", groupID).
		Documents(ctx)
	defer iter.Stop()

	var matches []Match
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var match Match
		if err := doc.DataTo(&match); err != nil {
			log.Printf("Skipping undecodable match %s: %v\n", doc.Ref.ID, err)
			continue
		}
		match.ID = doc.Ref.ID
		matches = append(matches, match)
	}

	return matches, nil
}

func (s Service) CreateMatch(ctx context.Context, match Match) (string, error) {
	ref, _, err := s.Client.Collection("matches").Add(ctx, match)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s Service) UpdateMatch(ctx context.Context, matchID string, update MatchUpdate, winner string) error {
	updates := createMatchUpdates(&update, winner)
	if len(updates) == 0 {
		return nil
	}
	_, err := s.Client.Collection("matches").Doc(matchID).Update(ctx, updates)
	return err
}

func (s Service) DeleteMatch(ctx context.Context, matchID string) error {
	_, err := s.Client.Collection("matches").Doc(matchID).Delete(ctx)
	return err
}

// MarkStatsStale flags the group so the reconcile job picks it up even
// if the synchronous recompute after a match write never ran.
func (s Service) MarkStatsStale(ctx context.Context, groupID string) error {
	_, err := s.Client.Collection("groups").Doc(groupID).Update(ctx, []firestore.Update{
		{
			Path:  "statsStale",
			Value: true,
		},
	})
	if err != nil {
		log.Printf("Failed to mark group %s stale: %v", groupID, err)
	}
	return err
}

func (s Service) ClearStatsStale(ctx context.Context, groupID string) error {
	_, err := s.Client.Collection("groups").Doc(groupID).Update(ctx, []firestore.Update{
		{
			Path:  "statsStale",
			Value: false,
		},
	})
	return err
}

func (s Service) StaleGroupIDs(ctx context.Context) ([]string, error) {
	docs, err := s.Client.Collection("groups").
		Where("statsStale", "==", true).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.Ref.ID)
	}
	return ids, nil
}

// DeleteGroupData removes the group's matches in batches of 500, then
// the stats document, then the group document itself.
func (s Service) DeleteGroupData(ctx context.Context, groupID string) error {
	docs, err := s.Client.Collection("matches").
		Where("groupId", "==", groupID).
		Documents(ctx).
		GetAll()
	if err != nil {
		return err
	}

	const batchSize = 500
	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}

		batch := s.Client.Batch()
		for _, doc := range docs[i:end] {
			batch.Delete(doc.Ref)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return err
		}
		log.Printf("Deleted batch of %d matches for group %s\n", end-i, groupID)
	}

	if _, err := s.Client.Collection("groupStats").Doc(groupID).Delete(ctx); err != nil {
		log.Printf("Failed to delete stats for group %s: %v\n", groupID, err)
	}

	_, err = s.Client.Collection("groups").Doc(groupID).Delete(ctx)
	return err
}

// MigrateGuestMatches rewrites every player slot that references the
// guest (bare id or "guest_" prefixed) to the member's uid and display
// name. Returns the number of matches touched.
func (s Service) MigrateGuestMatches(ctx context.Context, groupID, guestID, memberID, memberName string) (int, error) {
	guestUID := "guest_" + guestID

	docs, err := s.Client.Collection("matches").
		Where("groupId", "==", groupID).
		Documents(ctx).
		GetAll()
	if err != nil {
		return 0, err
	}

	batch := s.Client.Batch()
	updated := 0

	for _, doc := range docs {
		var match Match
		if err := doc.DataTo(&match); err != nil {
			log.Printf("Skipping undecodable match %s during migration: %v\n", doc.Ref.ID, err)
			continue
		}

		var updates []firestore.Update
		if players, changed := rewritePlayers(match.Team1.Players, guestID, guestUID, memberID, memberName); changed {
			updates = append(updates, firestore.Update{Path: "team1.players", Value: players})
		}
		if players, changed := rewritePlayers(match.Team2.Players, guestID, guestUID, memberID, memberName); changed {
			updates = append(updates, firestore.Update{Path: "team2.players", Value: players})
		}

		if len(updates) > 0 {
			batch.Update(doc.Ref, updates)
			updated++
		}
	}

	if updated == 0 {
		return 0, nil
	}
	if _, err := batch.Commit(ctx); err != nil {
		return 0, err
	}
	return updated, nil
}

func rewritePlayers(players []PlayerRef, guestID, guestUID, memberID, memberName string) ([]PlayerRef, bool) {
	changed := false
	out := make([]PlayerRef, len(players))
	for i, player := range players {
		if player.UID == guestID || player.UID == guestUID {
			player.UID = memberID
			player.DisplayName = memberName
			changed = true
		}
		out[i] = player
	}
	return out, changed
}

func createMatchUpdates(update *MatchUpdate, winner string) []firestore.Update {
	var updates []firestore.Update

	if update.GameType != nil {
		updates = append(updates, firestore.Update{Path: "gameType", Value: *update.GameType})
	}
	if update.Team1 != nil {
		updates = append(updates, firestore.Update{Path: "team1", Value: *update.Team1})
	}
	if update.Team2 != nil {
		updates = append(updates, firestore.Update{Path: "team2", Value: *update.Team2})
	}
	if update.PlayedAt != nil {
		updates = append(updates, firestore.Update{Path: "playedAt", Value: *update.PlayedAt})
	}
	if len(updates) > 0 {
		// Winner is derived from the scores, never taken from the request.
		updates = append(updates, firestore.Update{Path: "winner", Value: winner})
	}

	return updates
}
