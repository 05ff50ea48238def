package players

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abhinavece/matchpay-backend/api/responses"
	"github.com/abhinavece/matchpay-backend/api/validators"
	"github.com/abhinavece/matchpay-backend/internal/roster"
	pkgerrors "github.com/abhinavece/matchpay-backend/pkg/errors"
	"github.com/abhinavece/matchpay-backend/pkg/logger"
)

// LoadSquad returns the squad snapshot built from a match's availability
// responses, ready to seed create_payment.
func LoadSquad(client roster.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "roster client not configured"))
			return
		}

		matchID := strings.TrimSpace(chi.URLParam(r, "matchID"))
		if matchID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "match id is required"))
			return
		}

		squad, err := client.LoadSquadFromAvailability(r.Context(), matchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, squad)
	}
}

// Search proxies player-directory search so the UI can resolve walk-ins.
func Search(client roster.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "roster client not configured"))
			return
		}

		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "query is required"))
			return
		}

		players, err := client.SearchPlayers(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, players)
	}
}

type createPlayerRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

// Create registers a walk-in player in the team-management directory.
func Create(client roster.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "roster client not configured"))
			return
		}

		var payload createPlayerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		player, err := client.CreatePlayer(r.Context(), payload.Name, payload.Phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, player)
	}
}
