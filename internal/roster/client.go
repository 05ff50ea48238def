package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/abhinavece/matchpay-backend/pkg/config"
	apperrors "github.com/abhinavece/matchpay-backend/pkg/errors"
	"github.com/google/uuid"
)

// SquadPlayer is one player from an availability snapshot. PlayerID is set
// when the roster already knows the player.
type SquadPlayer struct {
	PlayerID    *uuid.UUID `json:"player_id,omitempty"`
	PlayerName  string     `json:"player_name"`
	PlayerPhone string     `json:"player_phone"`
}

// Player is a durable player-directory record.
type Player struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
}

// Client talks to the team-management API that owns players, availability
// polls and match scheduling. The ledger only reads squads and resolves
// player identities through it.
type Client interface {
	LoadSquadFromAvailability(ctx context.Context, matchID string) ([]SquadPlayer, error)
	SearchPlayers(ctx context.Context, query string) ([]Player, error)
	CreatePlayer(ctx context.Context, name, phone string) (*Player, error)
}

type client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient wires the roster client from configuration.
func NewClient(cfg config.RosterConfig) (Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("roster base url is required")
	}
	return &client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
	}, nil
}

func (c *client) LoadSquadFromAvailability(ctx context.Context, matchID string) ([]SquadPlayer, error) {
	if matchID == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "match id is required")
	}

	var payload struct {
		Players []SquadPlayer `json:"players"`
	}
	path := fmt.Sprintf("/v1/matches/%s/availability/squad", url.PathEscape(matchID))
	if err := c.get(ctx, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Players, nil
}

func (c *client) SearchPlayers(ctx context.Context, query string) ([]Player, error) {
	var payload struct {
		Players []Player `json:"players"`
	}
	params := url.Values{"q": []string{query}}
	if err := c.get(ctx, "/v1/players/search", params, &payload); err != nil {
		return nil, err
	}
	return payload.Players, nil
}

func (c *client) CreatePlayer(ctx context.Context, name, phone string) (*Player, error) {
	if name == "" || phone == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "player name and phone are required")
	}

	body, err := json.Marshal(map[string]string{"name": name, "phone": phone})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/players", strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	var player Player
	if err := c.do(req, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (c *client) get(ctx context.Context, path string, params url.Values, out any) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	c.authorize(req)
	return c.do(req, out)
}

func (c *client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
}

func (c *client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "roster request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.New(apperrors.CodeNotFound, "roster resource not found")
	case resp.StatusCode >= http.StatusBadRequest:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return apperrors.New(apperrors.CodeDependency,
			fmt.Sprintf("roster returned %s: %s", resp.Status, strings.TrimSpace(string(body))))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "decoding roster response")
	}
	return nil
}
