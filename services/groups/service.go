package groups

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/samborkent/uuidv7"
	"google.golang.org/api/iterator"

	invitecode "github.com/kicktally/foosball-sync/pkg/inviteCode"
	foosball "github.com/kicktally/foosball-sync/repos/foosball"
	resend "github.com/kicktally/foosball-sync/repos/resend"
	ratelimit "github.com/kicktally/foosball-sync/services/ratelimit"
	stats "github.com/kicktally/foosball-sync/services/stats"
)

var (
	ErrInvalidInviteCode = errors.New("invalid invite code. No matching group found")
	ErrNotGroupAdmin     = errors.New("only group admins can do this")
	ErrGuestNotFound     = errors.New("guest does not exist in this group")
	ErrMemberNotFound    = errors.New("member does not exist in this group")
)

const maxGuestNameLength = 20

var guestNamePattern = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)
var guestNameStrip = regexp.MustCompile(`[^a-zA-Z0-9 ]`)

type GroupService struct {
	firestoreClient  *firestore.Client
	foosballService  *foosball.Service
	rateLimitService *ratelimit.RateLimitService
	statsService     *stats.StatsService
	resendService    *resend.Service
}

func NewGroupService(
	firestoreClient *firestore.Client,
	foosballService *foosball.Service,
	rateLimitService *ratelimit.RateLimitService,
	statsService *stats.StatsService,
	resendService *resend.Service,
) *GroupService {
	return &GroupService{
		firestoreClient:  firestoreClient,
		foosballService:  foosballService,
		rateLimitService: rateLimitService,
		statsService:     statsService,
		resendService:    resendService,
	}
}

// CreateGroup checks the rate limit, then writes the group with the
// creator as admin and a fresh invite code. Returns the group id and
// how many group slots the user has left.
func (s *GroupService) CreateGroup(ctx context.Context, userID, userName string, request CreateGroupRequest) (string, ratelimit.Decision, error) {
	decision, err := s.rateLimitService.CheckAndRecordGroupCreate(ctx, userID)
	if err != nil {
		return "", decision, err
	}

	code, err := invitecode.GenerateCode()
	if err != nil {
		return "", decision, err
	}

	memberName := request.MemberName
	if memberName == "" {
		memberName = userName
	}

	group := foosball.Group{
		Name:       request.Name,
		AdminUID:   userID,
		InviteCode: code,
		Members: map[string]foosball.Member{
			userID: {Name: memberName, Role: "admin"},
		},
		Guests: buildGuests(request.GuestNames),
		TeamColors: foosball.TeamColors{
			TeamOne: request.TeamOneColor,
			TeamTwo: request.TeamTwoColor,
		},
	}

	ref, _, err := s.firestoreClient.Collection("groups").Add(ctx, group)
	if err != nil {
		log.Printf("Failed to write group to Firestore: %v\n", err)
		return "", decision, err
	}

	// Seed an empty stats document so readers never 404 on a fresh group.
	if _, err := s.statsService.Recompute(ctx, ref.ID); err != nil {
		log.Printf("Failed to seed stats for group %s: %v\n", ref.ID, err)
	}

	return ref.ID, decision, nil
}

// JoinWithCode adds the user as a viewer of the group matching the
// invite code.
func (s *GroupService) JoinWithCode(ctx context.Context, userID, userName, code string) (JoinGroupResponse, error) {
	var response JoinGroupResponse

	code = invitecode.Normalize(code)
	if err := invitecode.Validate(code); err != nil {
		return response, err
	}

	iter := s.firestoreClient.Collection("groups").
		Where("inviteCode", "==", code).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return response, ErrInvalidInviteCode
	}
	if err != nil {
		return response, err
	}

	var group foosball.Group
	if err := doc.DataTo(&group); err != nil {
		log.Printf("Failed to decode group %s: %v\n", doc.Ref.ID, err)
		return response, err
	}

	response.GroupID = doc.Ref.ID
	response.GroupName = group.Name

	if _, ok := group.Members[userID]; ok {
		response.AlreadyMember = true
		return response, nil
	}

	_, err = doc.Ref.Update(ctx, []firestore.Update{
		{Path: "members." + userID, Value: foosball.Member{Name: userName, Role: "viewer"}},
	})
	if err != nil {
		log.Printf("Failed to add member %s to group %s: %v\n", userID, doc.Ref.ID, err)
		return response, err
	}

	return response, nil
}

// SendInvite mails the group's invite code and records the address on
// the group document.
func (s *GroupService) SendInvite(ctx context.Context, userID string, request resend.InviteRequest) error {
	group, err := s.foosballService.GetGroup(ctx, request.GroupID)
	if err != nil {
		return err
	}
	if !isAdmin(group, userID) {
		return ErrNotGroupAdmin
	}

	if err := s.resendService.SendInvite(ctx, request, group.Name, group.InviteCode); err != nil {
		return err
	}

	go func() {
		if err := s.resendService.RecordInvite(context.Background(), request.GroupID, request.Email); err != nil {
			log.Printf("Failed to record invite for group %s: %v\n", request.GroupID, err)
		}
	}()
	return nil
}

// MigrateGuest rewrites the guest's historical match references to the
// target member and drops the guest from the roster. Stats are
// recomputed so history follows the member id from now on.
func (s *GroupService) MigrateGuest(ctx context.Context, userID string, request MigrateGuestRequest) (int, error) {
	group, err := s.foosballService.GetGroup(ctx, request.GroupID)
	if err != nil {
		return 0, err
	}
	if !isAdmin(group, userID) {
		return 0, ErrNotGroupAdmin
	}

	guestName := ""
	found := false
	remaining := make([]foosball.Guest, 0, len(group.Guests))
	for _, guest := range group.Guests {
		if guest.ID == request.GuestID {
			guestName = guest.Name
			found = true
			continue
		}
		remaining = append(remaining, guest)
	}
	if !found {
		return 0, ErrGuestNotFound
	}

	member, ok := group.Members[request.MemberID]
	if !ok {
		return 0, ErrMemberNotFound
	}
	memberName := member.Name
	if memberName == "" {
		memberName = guestName
	}

	updated, err := s.foosballService.MigrateGuestMatches(ctx, request.GroupID, request.GuestID, request.MemberID, memberName)
	if err != nil {
		return 0, err
	}

	_, err = s.firestoreClient.Collection("groups").Doc(request.GroupID).Update(ctx, []firestore.Update{
		{Path: "guests", Value: remaining},
	})
	if err != nil {
		return updated, err
	}

	if _, err := s.statsService.Recompute(ctx, request.GroupID); err != nil {
		log.Printf("Failed to recompute stats after migration for group %s: %v\n", request.GroupID, err)
		if markErr := s.foosballService.MarkStatsStale(ctx, request.GroupID); markErr != nil {
			log.Printf("Failed to mark group %s stale: %v\n", request.GroupID, markErr)
		}
	}

	return updated, nil
}

// DeleteGroup removes the group, its matches and its stats document,
// and releases the creator's group-creation slot.
func (s *GroupService) DeleteGroup(ctx context.Context, userID, groupID string) error {
	group, err := s.foosballService.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !isAdmin(group, userID) {
		return ErrNotGroupAdmin
	}

	if err := s.foosballService.DeleteGroupData(ctx, groupID); err != nil {
		return err
	}

	if err := s.rateLimitService.ReleaseGroupSlot(ctx, group.AdminUID); err != nil {
		log.Printf("Failed to release group slot for user %s: %v\n", group.AdminUID, err)
	}
	return nil
}

func isAdmin(group *foosball.Group, userID string) bool {
	if group.AdminUID == userID {
		return true
	}
	member, ok := group.Members[userID]
	return ok && member.Role == "admin"
}

// buildGuests sanitizes the requested guest names and assigns each
// guest a fresh id. Names that sanitize down to nothing are dropped.
func buildGuests(names []string) []foosball.Guest {
	var guests []foosball.Guest
	for _, name := range names {
		sanitized := sanitizeGuestName(name)
		if sanitized == "" {
			continue
		}
		guests = append(guests, foosball.Guest{
			ID:   uuidv7.New().String(),
			Name: sanitized,
		})
	}
	return guests
}

func sanitizeGuestName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if len(name) <= maxGuestNameLength && guestNamePattern.MatchString(name) {
		return name
	}
	name = guestNameStrip.ReplaceAllString(name, "")
	if len(name) > maxGuestNameLength {
		name = name[:maxGuestNameLength]
	}
	return strings.TrimSpace(name)
}
