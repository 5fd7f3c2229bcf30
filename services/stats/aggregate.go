package stats

import (
	"log"
	"math"
	"sort"
	"strings"

	timehelper "github.com/kicktally/foosball-sync/pkg/timeHelper"
	foosball "github.com/kicktally/foosball-sync/repos/foosball"
)

const (
	baseRating     = 1000
	winRateFactor  = 500
	goalDiffFactor = 10

	recentMatchLimit = 5
)

// Aggregate rebuilds a group's statistics document from its full match
// history. It is a pure function: identical inputs produce identical
// output regardless of the order matches arrive in.
func Aggregate(groupID string, matches []foosball.Match, roster map[string]RosterEntry, teamColors foosball.TeamColors) *GroupStats {
	result := &GroupStats{
		GroupID:           groupID,
		PlayerStats:       map[string]*PlayerStats{},
		TeamColorStats:    map[string]*TeamColorStat{},
		MatchesByGameType: map[string]int{foosball.GameType1v1: 0, foosball.GameType2v2: 0},
		RecentMatches:     []MatchSummary{},
	}

	for uid, entry := range roster {
		result.PlayerStats[uid] = newPlayerStats(entry.Name, entry.IsGuest)
	}
	result.TeamColorStats[colorOrDefault(teamColors.TeamOne, "#000000")] = &TeamColorStat{}
	result.TeamColorStats[colorOrDefault(teamColors.TeamTwo, "#ffffff")] = &TeamColorStat{}

	sorted := make([]foosball.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].PlayedAt.Equal(sorted[j].PlayedAt) {
			return sorted[i].PlayedAt.Before(sorted[j].PlayedAt)
		}
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	dayCounts := map[string]int{}

	for _, match := range sorted {
		processMatch(result, match, dayCounts)
	}

	if len(result.RecentMatches) > recentMatchLimit {
		result.RecentMatches = result.RecentMatches[len(result.RecentMatches)-recentMatchLimit:]
	}
	// Newest first for display.
	for i, j := 0, len(result.RecentMatches)-1; i < j; i, j = i+1, j-1 {
		result.RecentMatches[i], result.RecentMatches[j] = result.RecentMatches[j], result.RecentMatches[i]
	}

	calculateDerivedStats(result)
	return result
}

func processMatch(result *GroupStats, match foosball.Match, dayCounts map[string]int) {
	result.TotalMatches++

	gameType := match.GameType
	if gameType == "" {
		gameType = foosball.GameType1v1
	}
	result.MatchesByGameType[gameType]++

	// The winner field is derived from the scores here, so a stored
	// winner that contradicts them can never leak into the stats.
	winner := foosball.DeriveWinner(match.Team1.Score, match.Team2.Score)
	if match.Winner != "" && match.Winner != winner {
		log.Printf("Match %s carries winner %q inconsistent with scores %d-%d\n",
			match.ID, match.Winner, match.Team1.Score, match.Team2.Score)
	}

	result.RecentMatches = append(result.RecentMatches, MatchSummary{
		ID:         match.ID,
		PlayedAt:   match.PlayedAt,
		Team1Score: match.Team1.Score,
		Team2Score: match.Team2.Score,
		GameType:   gameType,
		Winner:     winner,
	})

	if !match.PlayedAt.IsZero() {
		day := timehelper.DayKey(match.PlayedAt)
		dayCounts[day]++
		if dayCounts[day] > result.MostMatchesInOneDay.Count {
			result.MostMatchesInOneDay = DayRecord{Date: day, Count: dayCounts[day]}
		}
	}

	team1Color := colorOrDefault(match.Team1.Color, "#000000")
	team2Color := colorOrDefault(match.Team2.Color, "#ffffff")
	updateTeamColorStats(result.TeamColorStats, team1Color, team2Color, match.Team1.Score, match.Team2.Score, winner)

	checkHighestScore(result, match, match.Team1)
	checkHighestScore(result, match, match.Team2)

	updateTeamPlayers(result, match, match.Team1, match.Team2, winner == foosball.WinnerTeam1, winner == foosball.WinnerTeam2, gameType)
	updateTeamPlayers(result, match, match.Team2, match.Team1, winner == foosball.WinnerTeam2, winner == foosball.WinnerTeam1, gameType)
}

func updateTeamPlayers(result *GroupStats, match foosball.Match, own, opposing foosball.TeamSide, won, lost bool, gameType string) {
	for _, player := range own.Players {
		if player.UID == "" {
			// Malformed slot; skip it without aborting the rest of the match.
			log.Printf("Match %s has a player slot without uid, skipping\n", match.ID)
			continue
		}

		stat := ensurePlayer(result.PlayerStats, player)
		stat.TotalMatches++
		stat.GoalsScored += own.Score
		stat.GoalsConceded += opposing.Score
		if match.PlayedAt.After(stat.LastPlayed) {
			stat.LastPlayed = match.PlayedAt
		}

		switch {
		case won:
			stat.Wins++
			updateStreak(result, player.UID, stat, outcomeWin)
		case lost:
			stat.Losses++
			updateStreak(result, player.UID, stat, outcomeLoss)
		default:
			stat.Draws++
			updateStreak(result, player.UID, stat, outcomeDraw)
		}

		if gameType == foosball.GameType2v2 && len(own.Players) > 1 {
			updateTeamPartners(result.PlayerStats, stat, player.UID, own.Players, won)
		}
	}
}

const (
	outcomeWin  = "win"
	outcomeLoss = "loss"
	outcomeDraw = "draw"
)

// updateStreak keeps the signed run-length counter: wins extend a
// positive run or restart at +1, losses mirror that downwards, a draw
// resets to zero.
func updateStreak(result *GroupStats, uid string, stat *PlayerStats, outcome string) {
	switch outcome {
	case outcomeDraw:
		stat.CurrentStreak = 0
		return
	case outcomeWin:
		if stat.CurrentStreak < 0 {
			stat.CurrentStreak = 1
		} else {
			stat.CurrentStreak++
		}
		if stat.CurrentStreak > stat.LongestWinStreak {
			stat.LongestWinStreak = stat.CurrentStreak
		}
		if stat.CurrentStreak > result.LongestWinStreak.Count {
			result.LongestWinStreak = StreakRecord{
				Player:     uid,
				PlayerName: stat.DisplayName,
				Count:      stat.CurrentStreak,
			}
		}
	case outcomeLoss:
		if stat.CurrentStreak > 0 {
			stat.CurrentStreak = -1
		} else {
			stat.CurrentStreak--
		}
		if -stat.CurrentStreak > stat.LongestLossStreak {
			stat.LongestLossStreak = -stat.CurrentStreak
		}
	}
}

// updateTeamPartners records the teammate relationship for one player;
// called for every player on the team, so the pairing ends up
// bidirectional.
func updateTeamPartners(players map[string]*PlayerStats, stat *PlayerStats, uid string, teammates []foosball.PlayerRef, won bool) {
	for _, teammate := range teammates {
		if teammate.UID == "" || teammate.UID == uid {
			continue
		}

		partner, ok := stat.TeamPartners[teammate.UID]
		if !ok {
			name := teammate.DisplayName
			if known, exists := players[teammate.UID]; exists && known.DisplayName != "" {
				name = known.DisplayName
			}
			partner = &PartnerStats{DisplayName: name}
			stat.TeamPartners[teammate.UID] = partner
		}

		partner.Matches++
		if won {
			partner.Wins++
		}
	}
}

func updateTeamColorStats(colors map[string]*TeamColorStat, team1Color, team2Color string, team1Score, team2Score int, winner string) {
	one := ensureColor(colors, team1Color)
	two := ensureColor(colors, team2Color)

	one.TotalMatches++
	one.GoalsScored += team1Score
	one.GoalsConceded += team2Score

	two.TotalMatches++
	two.GoalsScored += team2Score
	two.GoalsConceded += team1Score

	switch winner {
	case foosball.WinnerTeam1:
		one.Wins++
		two.Losses++
	case foosball.WinnerTeam2:
		one.Losses++
		two.Wins++
	default:
		one.Draws++
		two.Draws++
	}
}

func checkHighestScore(result *GroupStats, match foosball.Match, team foosball.TeamSide) {
	if team.Score <= result.HighestScore.Score || len(team.Players) == 0 {
		return
	}
	result.HighestScore = HighestScore{
		Score:   team.Score,
		MatchID: match.ID,
		Player:  team.Players[0].DisplayName,
		Date:    match.PlayedAt,
	}
}

func calculateDerivedStats(result *GroupStats) {
	for _, stat := range result.PlayerStats {
		if stat.TotalMatches == 0 {
			continue
		}

		stat.WinRate = round3(float64(stat.Wins) / float64(stat.TotalMatches))
		stat.AverageGoalsScored = round2(float64(stat.GoalsScored) / float64(stat.TotalMatches))
		stat.AverageGoalsConceded = round2(float64(stat.GoalsConceded) / float64(stat.TotalMatches))

		winFactor := stat.WinRate * winRateFactor
		goalFactor := (stat.AverageGoalsScored - stat.AverageGoalsConceded) * goalDiffFactor
		stat.Rating = int(math.Round(baseRating + winFactor + goalFactor))

		for _, partner := range stat.TeamPartners {
			if partner.Matches > 0 {
				partner.WinRate = round3(float64(partner.Wins) / float64(partner.Matches))
			}
		}
	}

	for _, color := range result.TeamColorStats {
		if color.TotalMatches > 0 {
			color.WinRate = round3(float64(color.Wins) / float64(color.TotalMatches))
		}
	}
}

func ensurePlayer(players map[string]*PlayerStats, ref foosball.PlayerRef) *PlayerStats {
	if stat, ok := players[ref.UID]; ok {
		return stat
	}

	// Not on the roster anymore; fall back to the name snapshot stored
	// in the match record.
	name := ref.DisplayName
	if name == "" {
		name = "Unknown"
	}
	stat := newPlayerStats(name, strings.HasPrefix(ref.UID, "guest_"))
	players[ref.UID] = stat
	return stat
}

func ensureColor(colors map[string]*TeamColorStat, color string) *TeamColorStat {
	if stat, ok := colors[color]; ok {
		return stat
	}
	stat := &TeamColorStat{}
	colors[color] = stat
	return stat
}

func newPlayerStats(displayName string, isGuest bool) *PlayerStats {
	return &PlayerStats{
		DisplayName:  displayName,
		IsGuest:      isGuest,
		Rating:       baseRating,
		TeamPartners: map[string]*PartnerStats{},
	}
}

func colorOrDefault(color, fallback string) string {
	if color == "" {
		return fallback
	}
	return color
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// BuildRoster maps the group's members and guests to aggregator seed
// entries. Guest ids get the "guest_" prefix used in match records.
func BuildRoster(group *foosball.Group) map[string]RosterEntry {
	roster := map[string]RosterEntry{}
	if group == nil {
		return roster
	}
	for uid, member := range group.Members {
		name := member.Name
		if name == "" {
			name = "Unknown"
		}
		roster[uid] = RosterEntry{Name: name, IsGuest: false}
	}
	for _, guest := range group.Guests {
		if guest.ID == "" {
			continue
		}
		name := guest.Name
		if name == "" {
			name = "Unknown Guest"
		}
		roster["guest_"+guest.ID] = RosterEntry{Name: name, IsGuest: true}
	}
	return roster
}
