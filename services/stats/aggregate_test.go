package stats

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	foosball "github.com/kicktally/foosball-sync/repos/foosball"
)

var baseTime = time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

func oneVsOne(id string, playedAt time.Time, aScore, bScore int) foosball.Match {
	return foosball.Match{
		ID:       id,
		GroupID:  "group-1",
		GameType: foosball.GameType1v1,
		Team1: foosball.TeamSide{
			Color: "#FF0000",
			Score: aScore,
			Players: []foosball.PlayerRef{
				{UID: "player-a", DisplayName: "Alice"},
			},
		},
		Team2: foosball.TeamSide{
			Color: "#0000FF",
			Score: bScore,
			Players: []foosball.PlayerRef{
				{UID: "player-b", DisplayName: "Ben"},
			},
		},
		Winner:   foosball.DeriveWinner(aScore, bScore),
		PlayedAt: playedAt,
	}
}

func defaultRoster() map[string]RosterEntry {
	return map[string]RosterEntry{
		"player-a": {Name: "Alice"},
		"player-b": {Name: "Ben"},
	}
}

func defaultColors() foosball.TeamColors {
	return foosball.TeamColors{TeamOne: "#FF0000", TeamTwo: "#0000FF"}
}

func TestAggregateAlternatingResults(t *testing.T) {
	// A beats B 5-3, then B beats A 2-1.
	matches := []foosball.Match{
		oneVsOne("m1", baseTime, 5, 3),
		oneVsOne("m2", baseTime.Add(time.Hour), 1, 2),
	}

	result := Aggregate("group-1", matches, defaultRoster(), defaultColors())

	a := result.PlayerStats["player-a"]
	b := result.PlayerStats["player-b"]
	require.NotNil(t, a)
	require.NotNil(t, b)

	assert.Equal(t, 1, a.Wins)
	assert.Equal(t, 1, a.Losses)
	assert.Equal(t, 0.5, a.WinRate)
	assert.Equal(t, 1, b.Wins)
	assert.Equal(t, 1, b.Losses)
	assert.Equal(t, 0.5, b.WinRate)

	assert.Equal(t, -1, a.CurrentStreak, "A lost the most recent match")
	assert.Equal(t, 1, b.CurrentStreak, "B won the most recent match")
	assert.Equal(t, 1, a.LongestWinStreak)
	assert.Equal(t, 1, a.LongestLossStreak)

	assert.Equal(t, 2, result.TotalMatches)
	assert.Equal(t, 2, result.MatchesByGameType[foosball.GameType1v1])
	assert.Equal(t, 0, result.MatchesByGameType[foosball.GameType2v2])
}

func TestAggregateInputOrderIndependence(t *testing.T) {
	matches := []foosball.Match{
		oneVsOne("m1", baseTime, 5, 3),
		oneVsOne("m2", baseTime.Add(time.Hour), 1, 2),
		oneVsOne("m3", baseTime.Add(2*time.Hour), 4, 2),
	}
	reversed := []foosball.Match{matches[2], matches[0], matches[1]}

	first := Aggregate("group-1", matches, defaultRoster(), defaultColors())
	second := Aggregate("group-1", reversed, defaultRoster(), defaultColors())

	firstJSON, err := json.Marshal(first)
	require.Nil(t, err)
	secondJSON, err := json.Marshal(second)
	require.Nil(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON), "input order must not change the output")
}

func TestAggregateWinnerFollowsScores(t *testing.T) {
	// Stored winner contradicts the scores; the aggregator must go by
	// the scores.
	match := oneVsOne("m1", baseTime, 5, 3)
	match.Winner = foosball.WinnerTeam2

	result := Aggregate("group-1", []foosball.Match{match}, defaultRoster(), defaultColors())

	assert.Equal(t, 1, result.PlayerStats["player-a"].Wins)
	assert.Equal(t, 0, result.PlayerStats["player-b"].Wins)
	require.Len(t, result.RecentMatches, 1)
	assert.Equal(t, foosball.WinnerTeam1, result.RecentMatches[0].Winner)
}

func TestAggregateTotalMatchesConservation(t *testing.T) {
	var matches []foosball.Match
	for i := 0; i < 7; i++ {
		matches = append(matches, oneVsOne("m", baseTime.Add(time.Duration(i)*time.Hour), i, 7-i))
	}

	result := Aggregate("group-1", matches, defaultRoster(), defaultColors())

	assert.Equal(t, len(matches), result.TotalMatches)
	assert.Equal(t, len(matches), result.PlayerStats["player-a"].TotalMatches)
	assert.Equal(t, len(matches), result.PlayerStats["player-b"].TotalMatches)
}

func TestAggregateZeroMatchesDivisionSafety(t *testing.T) {
	roster := map[string]RosterEntry{
		"idle-player": {Name: "Idle"},
		"guest_abc":   {Name: "Visitor", IsGuest: true},
	}

	result := Aggregate("group-1", nil, roster, defaultColors())

	idle := result.PlayerStats["idle-player"]
	require.NotNil(t, idle)
	assert.Equal(t, 0, idle.TotalMatches)
	assert.Equal(t, 0.0, idle.WinRate)
	assert.Equal(t, 0.0, idle.AverageGoalsScored)
	assert.Equal(t, 0.0, idle.AverageGoalsConceded)
	assert.Equal(t, baseRating, idle.Rating)
	assert.True(t, result.PlayerStats["guest_abc"].IsGuest)

	assert.Equal(t, 0, result.TotalMatches)
	assert.Equal(t, 0.0, result.TeamColorStats["#FF0000"].WinRate)
}

func TestAggregateTwoVsTwoPartnersAndColors(t *testing.T) {
	match := foosball.Match{
		ID:       "m1",
		GroupID:  "group-1",
		GameType: foosball.GameType2v2,
		Team1: foosball.TeamSide{
			Color: "#FF0000",
			Score: 10,
			Players: []foosball.PlayerRef{
				{UID: "player-a", DisplayName: "Alice", Position: foosball.PositionAttack},
				{UID: "player-b", DisplayName: "Ben", Position: foosball.PositionDefense},
			},
		},
		Team2: foosball.TeamSide{
			Color: "#0000FF",
			Score: 2,
			Players: []foosball.PlayerRef{
				{UID: "player-c", DisplayName: "Cara", Position: foosball.PositionAttack},
				{UID: "player-d", DisplayName: "Dan", Position: foosball.PositionDefense},
			},
		},
		Winner:   foosball.WinnerTeam1,
		PlayedAt: baseTime,
	}
	roster := map[string]RosterEntry{
		"player-a": {Name: "Alice"},
		"player-b": {Name: "Ben"},
		"player-c": {Name: "Cara"},
		"player-d": {Name: "Dan"},
	}

	result := Aggregate("group-1", []foosball.Match{match}, roster, defaultColors())

	red := result.TeamColorStats["#FF0000"]
	blue := result.TeamColorStats["#0000FF"]
	require.NotNil(t, red)
	require.NotNil(t, blue)
	assert.Equal(t, 1, red.Wins)
	assert.Equal(t, 10, red.GoalsScored)
	assert.Equal(t, 2, red.GoalsConceded)
	assert.Equal(t, 1, blue.Losses)

	a := result.PlayerStats["player-a"]
	require.NotNil(t, a.TeamPartners["player-b"])
	assert.Equal(t, 1, a.TeamPartners["player-b"].Matches)
	assert.Equal(t, 1, a.TeamPartners["player-b"].Wins)
	assert.Equal(t, 1.0, a.TeamPartners["player-b"].WinRate)

	b := result.PlayerStats["player-b"]
	require.NotNil(t, b.TeamPartners["player-a"], "partnership must be recorded bidirectionally")
	assert.Equal(t, 1, b.TeamPartners["player-a"].Matches)
	assert.Equal(t, 1, b.TeamPartners["player-a"].Wins)

	c := result.PlayerStats["player-c"]
	require.NotNil(t, c.TeamPartners["player-d"])
	assert.Equal(t, 1, c.TeamPartners["player-d"].Matches)
	assert.Equal(t, 0, c.TeamPartners["player-d"].Wins)

	assert.Equal(t, 1, result.MatchesByGameType[foosball.GameType2v2])
}

func TestAggregateDrawResetsStreak(t *testing.T) {
	matches := []foosball.Match{
		oneVsOne("m1", baseTime, 5, 3),
		oneVsOne("m2", baseTime.Add(time.Hour), 2, 1),
		oneVsOne("m3", baseTime.Add(2*time.Hour), 3, 3),
	}

	result := Aggregate("group-1", matches, defaultRoster(), defaultColors())

	a := result.PlayerStats["player-a"]
	assert.Equal(t, 0, a.CurrentStreak, "a draw resets the streak")
	assert.Equal(t, 2, a.LongestWinStreak)
	assert.Equal(t, 1, a.Draws)

	assert.Equal(t, "player-a", result.LongestWinStreak.Player)
	assert.Equal(t, "Alice", result.LongestWinStreak.PlayerName)
	assert.Equal(t, 2, result.LongestWinStreak.Count)
}

func TestAggregateRating(t *testing.T) {
	// One match, 5-3 win: winRate 1.0, avg scored 5, avg conceded 3.
	result := Aggregate("group-1", []foosball.Match{oneVsOne("m1", baseTime, 5, 3)}, defaultRoster(), defaultColors())

	// 1000 + 1.0*500 + (5-3)*10
	assert.Equal(t, 1520, result.PlayerStats["player-a"].Rating)
	// 1000 + 0*500 + (3-5)*10
	assert.Equal(t, 980, result.PlayerStats["player-b"].Rating)
}

func TestAggregateSkipsMalformedPlayerSlots(t *testing.T) {
	match := oneVsOne("m1", baseTime, 5, 3)
	match.Team2.Players = []foosball.PlayerRef{{UID: "", DisplayName: "ghost"}}

	result := Aggregate("group-1", []foosball.Match{match}, defaultRoster(), defaultColors())

	// The valid side is still aggregated.
	assert.Equal(t, 1, result.PlayerStats["player-a"].Wins)
	// The malformed slot contributes nothing, and B keeps zeros.
	assert.Equal(t, 0, result.PlayerStats["player-b"].TotalMatches)
	assert.Equal(t, 1, result.TotalMatches)
}

func TestAggregateUnknownPlayerFallsBackToSnapshot(t *testing.T) {
	match := oneVsOne("m1", baseTime, 5, 3)
	match.Team2.Players = []foosball.PlayerRef{{UID: "guest_gone", DisplayName: "Departed Guest"}}

	result := Aggregate("group-1", []foosball.Match{match}, map[string]RosterEntry{"player-a": {Name: "Alice"}}, defaultColors())

	gone := result.PlayerStats["guest_gone"]
	require.NotNil(t, gone, "players missing from the roster still get aggregated")
	assert.Equal(t, "Departed Guest", gone.DisplayName)
	assert.True(t, gone.IsGuest)
	assert.Equal(t, 1, gone.Losses)
}

func TestAggregateMostMatchesInOneDay(t *testing.T) {
	matches := []foosball.Match{
		oneVsOne("m1", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), 5, 3),
		oneVsOne("m2", time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC), 1, 2),
		oneVsOne("m3", time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC), 4, 2),
		// 23:30 in UTC-3 lands on the next UTC day.
		oneVsOne("m4", time.Date(2025, 3, 11, 23, 30, 0, 0, time.FixedZone("UTC-3", -3*60*60)), 2, 0),
	}

	result := Aggregate("group-1", matches, defaultRoster(), defaultColors())

	assert.Equal(t, "2025-03-10", result.MostMatchesInOneDay.Date)
	assert.Equal(t, 2, result.MostMatchesInOneDay.Count)
}

func TestAggregateRecentMatches(t *testing.T) {
	var matches []foosball.Match
	for i := 0; i < 7; i++ {
		score := 5
		matches = append(matches, oneVsOne("m", baseTime.Add(time.Duration(i)*time.Hour), score, i%3))
	}

	result := Aggregate("group-1", matches, defaultRoster(), defaultColors())

	require.Len(t, result.RecentMatches, 5)
	for i := 1; i < len(result.RecentMatches); i++ {
		assert.True(t, result.RecentMatches[i-1].PlayedAt.After(result.RecentMatches[i].PlayedAt),
			"recent matches should be newest first")
	}
}

func TestAggregateHighestScore(t *testing.T) {
	matches := []foosball.Match{
		oneVsOne("m1", baseTime, 5, 3),
		oneVsOne("m2", baseTime.Add(time.Hour), 2, 10),
	}

	result := Aggregate("group-1", matches, defaultRoster(), defaultColors())

	assert.Equal(t, 10, result.HighestScore.Score)
	assert.Equal(t, "m2", result.HighestScore.MatchID)
	assert.Equal(t, "Ben", result.HighestScore.Player)
}
