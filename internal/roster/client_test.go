package roster

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abhinavece/matchpay-backend/pkg/config"
	apperrors "github.com/abhinavece/matchpay-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSquadFromAvailability(t *testing.T) {
	playerID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/matches/match-7/availability/squad", r.URL.Path)
		require.Equal(t, "key-123", r.Header.Get("X-API-Key"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"players": []map[string]any{
				{"player_id": playerID, "player_name": "Rahul", "player_phone": "9876543210"},
				{"player_name": "Walk-in", "player_phone": "9876543211"},
			},
		})
	}))
	defer server.Close()

	c, err := NewClient(config.RosterConfig{BaseURL: server.URL, APIKey: "key-123"})
	require.NoError(t, err)

	squad, err := c.LoadSquadFromAvailability(context.Background(), "match-7")
	require.NoError(t, err)
	require.Len(t, squad, 2)
	require.NotNil(t, squad[0].PlayerID)
	assert.Equal(t, playerID, *squad[0].PlayerID)
	assert.Nil(t, squad[1].PlayerID)
	assert.Equal(t, "Walk-in", squad[1].PlayerName)
}

func TestSearchPlayers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/players/search", r.URL.Path)
		require.Equal(t, "rah", r.URL.Query().Get("q"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"players": []map[string]any{
				{"id": uuid.New(), "name": "Rahul", "phone": "9876543210"},
			},
		})
	}))
	defer server.Close()

	c, err := NewClient(config.RosterConfig{BaseURL: server.URL})
	require.NoError(t, err)

	players, err := c.SearchPlayers(context.Background(), "rah")
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Rahul", players[0].Name)
}

func TestCreatePlayer(t *testing.T) {
	created := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/players", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Rahul", body["name"])
		_ = json.NewEncoder(w).Encode(map[string]any{"id": created, "name": body["name"], "phone": body["phone"]})
	}))
	defer server.Close()

	c, err := NewClient(config.RosterConfig{BaseURL: server.URL})
	require.NoError(t, err)

	player, err := c.CreatePlayer(context.Background(), "Rahul", "9876543210")
	require.NoError(t, err)
	assert.Equal(t, created, player.ID)
}

func TestRosterErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	c, err := NewClient(config.RosterConfig{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = c.LoadSquadFromAvailability(context.Background(), "missing")
	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperrors.CodeNotFound, typed.Code())

	_, err = c.CreatePlayer(context.Background(), "", "")
	typed = apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperrors.CodeValidation, typed.Code())
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(config.RosterConfig{})
	assert.Error(t, err)
}
