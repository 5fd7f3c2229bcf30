package stats

import "time"

// GroupStats is the denormalized statistics document, one per group,
// stored under groupStats/{groupId}. It is rebuilt in full from the
// group's match records on every change.
type GroupStats struct {
	GroupID             string                    `firestore:"groupId" json:"groupId"`
	LastUpdated         time.Time                 `firestore:"lastUpdated,serverTimestamp" json:"lastUpdated"`
	PlayerStats         map[string]*PlayerStats   `firestore:"playerStats" json:"playerStats"`
	TeamColorStats      map[string]*TeamColorStat `firestore:"teamColorStats" json:"teamColorStats"`
	TotalMatches        int                       `firestore:"totalMatches" json:"totalMatches"`
	MatchesByGameType   map[string]int            `firestore:"matchesByGameType" json:"matchesByGameType"`
	HighestScore        HighestScore              `firestore:"highestScore" json:"highestScore"`
	LongestWinStreak    StreakRecord              `firestore:"longestWinStreak" json:"longestWinStreak"`
	MostMatchesInOneDay DayRecord                 `firestore:"mostMatchesInOneDay" json:"mostMatchesInOneDay"`
	RecentMatches       []MatchSummary            `firestore:"recentMatches" json:"recentMatches"`
}

type PlayerStats struct {
	DisplayName          string                   `firestore:"displayName" json:"displayName"`
	IsGuest              bool                     `firestore:"isGuest" json:"isGuest"`
	TotalMatches         int                      `firestore:"totalMatches" json:"totalMatches"`
	Wins                 int                      `firestore:"wins" json:"wins"`
	Draws                int                      `firestore:"draws" json:"draws"`
	Losses               int                      `firestore:"losses" json:"losses"`
	WinRate              float64                  `firestore:"winRate" json:"winRate"`
	Rating               int                      `firestore:"rating" json:"rating"`
	CurrentStreak        int                      `firestore:"currentStreak" json:"currentStreak"`
	LongestWinStreak     int                      `firestore:"longestWinStreak" json:"longestWinStreak"`
	LongestLossStreak    int                      `firestore:"longestLossStreak" json:"longestLossStreak"`
	GoalsScored          int                      `firestore:"goalsScored" json:"goalsScored"`
	GoalsConceded        int                      `firestore:"goalsConceded" json:"goalsConceded"`
	AverageGoalsScored   float64                  `firestore:"averageGoalsScored" json:"averageGoalsScored"`
	AverageGoalsConceded float64                  `firestore:"averageGoalsConceded" json:"averageGoalsConceded"`
	TeamPartners         map[string]*PartnerStats `firestore:"teamPartners" json:"teamPartners"`
	LastPlayed           time.Time                `firestore:"lastPlayed" json:"lastPlayed"`
}

type PartnerStats struct {
	DisplayName string  `firestore:"displayName" json:"displayName"`
	Matches     int     `firestore:"matches" json:"matches"`
	Wins        int     `firestore:"wins" json:"wins"`
	WinRate     float64 `firestore:"winRate" json:"winRate"`
}

// TeamColorStat tracks the performance of a color slot itself,
// independent of which players occupied it.
type TeamColorStat struct {
	TotalMatches  int     `firestore:"totalMatches" json:"totalMatches"`
	Wins          int     `firestore:"wins" json:"wins"`
	Draws         int     `firestore:"draws" json:"draws"`
	Losses        int     `firestore:"losses" json:"losses"`
	WinRate       float64 `firestore:"winRate" json:"winRate"`
	GoalsScored   int     `firestore:"goalsScored" json:"goalsScored"`
	GoalsConceded int     `firestore:"goalsConceded" json:"goalsConceded"`
}

type HighestScore struct {
	Score   int       `firestore:"score" json:"score"`
	MatchID string    `firestore:"matchId" json:"matchId"`
	Player  string    `firestore:"player" json:"player"`
	Date    time.Time `firestore:"date" json:"date"`
}

type StreakRecord struct {
	Player     string `firestore:"player" json:"player"`
	PlayerName string `firestore:"playerName" json:"playerName"`
	Count      int    `firestore:"count" json:"count"`
}

type DayRecord struct {
	Date  string `firestore:"date" json:"date"`
	Count int    `firestore:"count" json:"count"`
}

type MatchSummary struct {
	ID         string    `firestore:"id" json:"id"`
	PlayedAt   time.Time `firestore:"playedAt" json:"playedAt"`
	Team1Score int       `firestore:"team1Score" json:"team1Score"`
	Team2Score int       `firestore:"team2Score" json:"team2Score"`
	GameType   string    `firestore:"gameType" json:"gameType"`
	Winner     string    `firestore:"winner" json:"winner"`
}

// RosterEntry is the membership info the aggregator seeds player
// accumulators from.
type RosterEntry struct {
	Name    string
	IsGuest bool
}
