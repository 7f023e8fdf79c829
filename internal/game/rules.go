// Package game implements the rules engine for El Impostor: phrase shuffling,
// impostor assignment, vote tallying and win/continue decisions. Everything
// here is a pure function over snapshots; persistence is the caller's problem.
package game

import (
	"fmt"

	"github.com/fmarinoa/el-impostor-game/internal/models"
)

// OutcomeKind classifies the result of resolving a ballot.
type OutcomeKind string

const (
	// OutcomeWaiting means not every active player has voted yet; no state
	// may change.
	OutcomeWaiting OutcomeKind = "waiting"

	// OutcomeImpostorCaught means the plurality target is an impostor: the
	// crew wins the round and the room advances to the next phrase.
	OutcomeImpostorCaught OutcomeKind = "impostor_caught"

	// OutcomeEliminated means an innocent player got the plurality and is
	// eliminated; the round continues.
	OutcomeEliminated OutcomeKind = "eliminated"

	// OutcomeImpostorsWin means the elimination left two or fewer active
	// players, so the impostors win and the game ends.
	OutcomeImpostorsWin OutcomeKind = "impostors_win"
)

// Outcome is the decision produced by ResolveBallot.
type Outcome struct {
	Kind OutcomeKind

	// TargetID is the plurality winner of the ballot. Empty when Kind is
	// OutcomeWaiting.
	TargetID string

	// Counts holds the per-target vote counts of the tally, for display.
	Counts map[string]int
}

// Tally counts votes per target and returns the target with the highest
// count. Ties are broken by order of first appearance in the vote list, which
// keeps the result deterministic for a given ballot ordering.
func Tally(votes []models.Vote) (targetID string, counts map[string]int) {
	counts = make(map[string]int, len(votes))
	var order []string
	for _, v := range votes {
		if counts[v.VotedForID] == 0 {
			order = append(order, v.VotedForID)
		}
		counts[v.VotedForID]++
	}

	max := 0
	for _, id := range order {
		if counts[id] > max {
			max = counts[id]
			targetID = id
		}
	}
	return targetID, counts
}

// ResolveBallot applies the round rules to the submitted votes.
//
// The tally only runs once every active (non-eliminated) player has voted;
// before that the outcome is OutcomeWaiting and the caller must not mutate
// anything. Eliminated players are not valid targets: votes for them are
// rejected at submission time, so they can never win a tally.
func ResolveBallot(active []models.Player, votes []models.Vote) (Outcome, error) {
	if len(active) == 0 {
		return Outcome{}, fmt.Errorf("ballot has no active players")
	}

	if len(votes) < len(active) {
		return Outcome{Kind: OutcomeWaiting}, nil
	}

	targetID, counts := Tally(votes)

	var target *models.Player
	for i := range active {
		if active[i].ID == targetID {
			target = &active[i]
			break
		}
	}
	if target == nil {
		return Outcome{}, fmt.Errorf("tally winner %s is not an active player", targetID)
	}

	if target.IsImpostor {
		return Outcome{Kind: OutcomeImpostorCaught, TargetID: targetID, Counts: counts}, nil
	}

	// Innocent eliminated. With two or fewer players left the impostors
	// can no longer be outvoted.
	if len(active)-1 <= 2 {
		return Outcome{Kind: OutcomeImpostorsWin, TargetID: targetID, Counts: counts}, nil
	}
	return Outcome{Kind: OutcomeEliminated, TargetID: targetID, Counts: counts}, nil
}

// CountImpostors returns how many of the given players are impostors.
func CountImpostors(players []models.Player) int {
	n := 0
	for _, p := range players {
		if p.IsImpostor {
			n++
		}
	}
	return n
}
