package game

import "sort"

// Points computes the turn score for a sheet: one point per correct category,
// plus the sweep bonus when all three are correct. 0,1,2 correct score
// 0,1,2 points; 3 correct scores 4, never 3.
func (s ScoreSheet) Points() int {
	n := 0
	if s.Artist {
		n++
	}
	if s.Title {
		n++
	}
	if s.Year {
		n++
	}
	if n == 3 {
		return 4
	}
	return n
}

// Standings returns the players sorted by score, highest first. The input is
// not modified; equal scores keep roster order.
func Standings(players []Player) []Player {
	out := make([]Player, len(players))
	copy(out, players)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Winners returns every player whose score equals the maximum. Ties produce
// multiple winners, never an arbitrary tiebreak.
func Winners(players []Player) []Player {
	if len(players) == 0 {
		return nil
	}
	max := players[0].Score
	for _, p := range players[1:] {
		if p.Score > max {
			max = p.Score
		}
	}
	var winners []Player
	for _, p := range players {
		if p.Score == max {
			winners = append(winners, p)
		}
	}
	return winners
}
