package game

import (
	"sort"
	"strings"
	"testing"

	"github.com/fmarinoa/el-impostor-game/internal/models"
)

func TestNewRoomCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := NewRoomCode()
		if len(code) != roomCodeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), roomCodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(roomCodeAlphabet, c) {
				t.Fatalf("code %q contains %q, outside alphabet", code, c)
			}
		}
		seen[code] = true
	}
	// 100 draws from a 2.2B space colliding down to a handful would mean
	// the generator is broken.
	if len(seen) < 90 {
		t.Errorf("only %d distinct codes in 100 draws", len(seen))
	}
}

func TestShufflePhrases(t *testing.T) {
	phrases := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	original := make([]string, len(phrases))
	copy(original, phrases)

	shuffled := ShufflePhrases(phrases)

	if len(shuffled) != len(phrases) {
		t.Fatalf("shuffled length = %d, want %d", len(shuffled), len(phrases))
	}

	// Input must not be modified
	for i := range original {
		if phrases[i] != original[i] {
			t.Errorf("input was modified at index %d", i)
		}
	}

	// Same multiset of elements
	a := make([]string, len(original))
	b := make([]string, len(shuffled))
	copy(a, original)
	copy(b, shuffled)
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("shuffle is not a permutation: %v vs %v", original, shuffled)
		}
	}
}

func TestShufflePhrasesEmpty(t *testing.T) {
	if got := ShufflePhrases(nil); len(got) != 0 {
		t.Errorf("ShufflePhrases(nil) = %v, want empty", got)
	}
}

func TestPickImpostors(t *testing.T) {
	players := []models.Player{
		{ID: "p1"}, {ID: "p2"}, {ID: "p3"}, {ID: "p4"},
	}

	t.Run("returns n distinct players", func(t *testing.T) {
		ids := PickImpostors(players, 2)
		if len(ids) != 2 {
			t.Fatalf("got %d impostors, want 2", len(ids))
		}
		if ids[0] == ids[1] {
			t.Errorf("duplicate impostor %s", ids[0])
		}
		known := map[string]bool{"p1": true, "p2": true, "p3": true, "p4": true}
		for _, id := range ids {
			if !known[id] {
				t.Errorf("unknown player %s", id)
			}
		}
	})

	t.Run("n larger than player count returns everyone", func(t *testing.T) {
		ids := PickImpostors(players, 10)
		if len(ids) != len(players) {
			t.Errorf("got %d impostors, want %d", len(ids), len(players))
		}
	})

	t.Run("zero players", func(t *testing.T) {
		if ids := PickImpostors(nil, 1); len(ids) != 0 {
			t.Errorf("got %v, want empty", ids)
		}
	})
}
