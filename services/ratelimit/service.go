package ratelimit

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	foosball "github.com/kicktally/foosball-sync/repos/foosball"
)

type RateLimitService struct {
	firestoreClient *firestore.Client
}

func NewRateLimitService(firestoreClient *firestore.Client) *RateLimitService {
	return &RateLimitService{
		firestoreClient: firestoreClient,
	}
}

// CheckAndRecordGroupCreate decides whether the user may create a group
// right now and, if so, records the action. The read and write run in
// one transaction so two concurrent requests cannot both pass the
// cooldown check.
func (s *RateLimitService) CheckAndRecordGroupCreate(ctx context.Context, userID string) (Decision, error) {
	docRef := s.firestoreClient.Collection("ratelimits").Doc(userID)

	var decision Decision
	err := s.firestoreClient.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		record, err := groupRecord(tx, docRef)
		if err != nil {
			return err
		}

		decision, err = checkGroupCreate(record, time.Now())
		if err != nil {
			return err
		}

		return tx.Set(docRef, foosball.RateLimitRecord{
			GroupCount:        record.GroupCount + 1,
			LastGroupCreation: time.Now(),
		})
	})
	if err != nil {
		return decision, mapConflict(err)
	}
	return decision, nil
}

// CheckAndRecordMatchCreate is the match-creation counterpart. Matches
// have no cumulative cap, only the cooldown.
func (s *RateLimitService) CheckAndRecordMatchCreate(ctx context.Context, userID string) (Decision, error) {
	docRef := s.firestoreClient.Collection("matchRatelimits").Doc(userID)

	var decision Decision
	err := s.firestoreClient.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		record, err := matchRecord(tx, docRef)
		if err != nil {
			return err
		}

		decision, err = checkMatchCreate(record, time.Now())
		if err != nil {
			return err
		}

		return tx.Set(docRef, foosball.MatchRateLimitRecord{
			LastMatchCreation: time.Now(),
		})
	})
	if err != nil {
		return decision, mapConflict(err)
	}
	return decision, nil
}

// ReleaseGroupSlot decrements the stored group count after a group is
// deleted, floored at zero.
func (s *RateLimitService) ReleaseGroupSlot(ctx context.Context, userID string) error {
	docRef := s.firestoreClient.Collection("ratelimits").Doc(userID)

	err := s.firestoreClient.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		record, err := groupRecord(tx, docRef)
		if err != nil {
			return err
		}

		count := record.GroupCount - 1
		if count < 0 {
			count = 0
		}
		return tx.Update(docRef, []firestore.Update{
			{Path: "groupCount", Value: count},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		log.Printf("Failed to decrement group count for user %s: %v\n", userID, err)
		return err
	}
	return nil
}

// Status reports the current state of both limits without recording
// anything, for countdown displays.
func (s *RateLimitService) Status(ctx context.Context, userID string) (LimitStatus, error) {
	now := time.Now()
	result := LimitStatus{GroupsRemaining: GroupLimit}

	doc, err := s.firestoreClient.Collection("ratelimits").Doc(userID).Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return result, err
	}
	if doc != nil && doc.Exists() {
		var record foosball.RateLimitRecord
		if err := doc.DataTo(&record); err != nil {
			log.Printf("Failed to decode rate limit record for user %s: %v\n", userID, err)
		} else {
			result.GroupsRemaining = GroupLimit - record.GroupCount
			if result.GroupsRemaining < 0 {
				result.GroupsRemaining = 0
			}
			if d, err := checkCooldown(record.LastGroupCreation, GroupCooldownSeconds*time.Second, now); err != nil {
				result.GroupCooldownRemaining = d.RetryAfterSeconds()
			}
		}
	}

	doc, err = s.firestoreClient.Collection("matchRatelimits").Doc(userID).Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return result, err
	}
	if doc != nil && doc.Exists() {
		var record foosball.MatchRateLimitRecord
		if err := doc.DataTo(&record); err != nil {
			log.Printf("Failed to decode match rate limit record for user %s: %v\n", userID, err)
		} else if d, err := checkCooldown(record.LastMatchCreation, MatchCooldownSeconds*time.Second, now); err != nil {
			result.MatchCooldownRemaining = d.RetryAfterSeconds()
		}
	}

	return result, nil
}

func groupRecord(tx *firestore.Transaction, docRef *firestore.DocumentRef) (foosball.RateLimitRecord, error) {
	var record foosball.RateLimitRecord

	doc, err := tx.Get(docRef)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return record, nil
		}
		return record, err
	}
	if err := doc.DataTo(&record); err != nil {
		return record, err
	}
	return record, nil
}

func matchRecord(tx *firestore.Transaction, docRef *firestore.DocumentRef) (foosball.MatchRateLimitRecord, error) {
	var record foosball.MatchRateLimitRecord

	doc, err := tx.Get(docRef)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return record, nil
		}
		return record, err
	}
	if err := doc.DataTo(&record); err != nil {
		return record, err
	}
	return record, nil
}

// mapConflict turns a lost transaction race into a cooldown with a
// minimal wait, prompting the caller to retry.
func mapConflict(err error) error {
	if status.Code(err) == codes.Aborted {
		return ErrCooldownActive
	}
	return err
}

type LimitStatus struct {
	GroupsRemaining        int64 `json:"groupsRemaining"`
	GroupCooldownRemaining int64 `json:"groupCooldownRemaining"`
	MatchCooldownRemaining int64 `json:"matchCooldownRemaining"`
}
