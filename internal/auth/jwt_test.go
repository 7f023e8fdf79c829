package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/fmarinoa/el-impostor-game/internal/models"
)

var (
	testPlayer = &models.Player{ID: "player-1", Name: "Ana"}
	testRoom   = &models.Room{ID: "room-1", Code: "ABC123"}
)

func TestGenerateAndValidate(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	token, err := manager.Generate(testPlayer, testRoom)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.PlayerID != testPlayer.ID {
		t.Errorf("PlayerID = %s, want %s", claims.PlayerID, testPlayer.ID)
	}
	if claims.PlayerName != testPlayer.Name {
		t.Errorf("PlayerName = %s, want %s", claims.PlayerName, testPlayer.Name)
	}
	if claims.RoomID != testRoom.ID {
		t.Errorf("RoomID = %s, want %s", claims.RoomID, testRoom.ID)
	}
	if claims.RoomCode != testRoom.Code {
		t.Errorf("RoomCode = %s, want %s", claims.RoomCode, testRoom.Code)
	}
}

func TestValidateRejectsBadTokens(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	t.Run("garbage", func(t *testing.T) {
		if _, err := manager.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("different-secret", time.Hour)
		token, err := other.Generate(testPlayer, testRoom)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		short := NewJWTManager("test-secret", -time.Minute)
		token, err := short.Generate(testPlayer, testRoom)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want ErrInvalidToken", err)
		}
	})
}
