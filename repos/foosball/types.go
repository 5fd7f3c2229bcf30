package foosball

import "time"

const (
	GameType1v1 = "1v1"
	GameType2v2 = "2v2"

	PositionAttack  = "attack"
	PositionDefense = "defense"

	WinnerTeam1 = "team1"
	WinnerTeam2 = "team2"
	WinnerDraw  = "draw"
)

// DeriveWinner keeps the winner field a pure function of the scores.
func DeriveWinner(team1Score, team2Score int) string {
	switch {
	case team1Score > team2Score:
		return WinnerTeam1
	case team2Score > team1Score:
		return WinnerTeam2
	default:
		return WinnerDraw
	}
}

type Group struct {
	Name       string            `firestore:"name" json:"name"`
	AdminUID   string            `firestore:"adminUid" json:"adminUid"`
	InviteCode string            `firestore:"inviteCode" json:"inviteCode"`
	Members    map[string]Member `firestore:"members" json:"members"`
	Guests     []Guest           `firestore:"guests" json:"guests"`
	TeamColors TeamColors        `firestore:"teamColors" json:"teamColors"`
	GroupColor string            `firestore:"groupColor" json:"groupColor"`
	StatsStale bool              `firestore:"statsStale" json:"statsStale"`
	CreatedAt  time.Time         `firestore:"createdAt,serverTimestamp" json:"createdAt"`
}

type Member struct {
	Name string `firestore:"name" json:"name"`
	Role string `firestore:"role" json:"role"`
}

// Guest is a participant without an account. Its id carries the
// "guest_" prefix when referenced from match player slots.
type Guest struct {
	ID   string `firestore:"id" json:"id"`
	Name string `firestore:"name" json:"name"`
}

type TeamColors struct {
	TeamOne string `firestore:"teamOne" json:"teamOne"`
	TeamTwo string `firestore:"teamTwo" json:"teamTwo"`
}

type Match struct {
	ID        string    `firestore:"-" json:"id"`
	GroupID   string    `firestore:"groupId" json:"groupId"`
	GameType  string    `firestore:"gameType" json:"gameType"`
	Team1     TeamSide  `firestore:"team1" json:"team1"`
	Team2     TeamSide  `firestore:"team2" json:"team2"`
	Winner    string    `firestore:"winner" json:"winner"`
	PlayedAt  time.Time `firestore:"playedAt" json:"playedAt"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	CreatedBy string    `firestore:"createdBy" json:"createdBy"`
}

type TeamSide struct {
	Color   string      `firestore:"color" json:"color"`
	Score   int         `firestore:"score" json:"score"`
	Players []PlayerRef `firestore:"players" json:"players"`
}

// PlayerRef snapshots the display name at record time so history stays
// readable after a member leaves or a guest is removed.
type PlayerRef struct {
	UID         string `firestore:"uid" json:"uid"`
	DisplayName string `firestore:"displayName" json:"displayName"`
	Position    string `firestore:"position,omitempty" json:"position,omitempty"`
}

// MatchUpdate carries a partial edit. Nil fields are left untouched.
type MatchUpdate struct {
	GameType *string    `json:"gameType"`
	Team1    *TeamSide  `json:"team1"`
	Team2    *TeamSide  `json:"team2"`
	PlayedAt *time.Time `json:"playedAt"`
}

// RateLimitRecord tracks group creation per user, one doc per uid in
// the "ratelimits" collection.
type RateLimitRecord struct {
	GroupCount        int64     `firestore:"groupCount" json:"groupCount"`
	LastGroupCreation time.Time `firestore:"lastGroupCreation" json:"lastGroupCreation"`
}

// MatchRateLimitRecord tracks match creation per user, one doc per uid
// in the "matchRatelimits" collection.
type MatchRateLimitRecord struct {
	LastMatchCreation time.Time `firestore:"lastMatchCreation" json:"lastMatchCreation"`
}
