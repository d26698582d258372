package planner

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/stylesync/service/internal/middleware"
	"github.com/stylesync/service/internal/response"
)

// validDate reports whether date is a real calendar date in YYYY-MM-DD form.
func validDate(date string) bool {
	parsed, err := time.Parse(dateLayout, date)
	return err == nil && parsed.Format(dateLayout) == date
}

// Handler holds HTTP handlers for planner endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new planner Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type outfitRequest struct {
	TopID       string `json:"topId"`
	BottomID    string `json:"bottomId"`
	ShoeID      string `json:"shoeId"`
	AccessoryID string `json:"accessoryId"`
	Note        string `json:"note"`
}

// Plan godoc
//
//	@Summary		Plan outfit for a date
//	@Description	Saves the outfit for the given date. Planning the same date again replaces the previous plan.
//	@Tags			planner
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			date	path		string			true	"Date (YYYY-MM-DD)"
//	@Param			request	body		outfitRequest	true	"Outfit item ids"
//	@Success		200		{object}	Outfit
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		401		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/planner/{date} [put]
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "No token provided.")
		return
	}

	date := chi.URLParam(r, "date")
	if !validDate(date) {
		response.BadRequest(w, "Date must be in YYYY-MM-DD format.")
		return
	}

	var req outfitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body.")
		return
	}

	outfit, err := h.svc.Plan(r.Context(), &Outfit{
		UserID:      uid,
		Date:        date,
		TopID:       req.TopID,
		BottomID:    req.BottomID,
		ShoeID:      req.ShoeID,
		AccessoryID: req.AccessoryID,
		Note:        req.Note,
	})
	if err != nil {
		log.Error().Err(err).Str("uid", uid).Msg("plan outfit failed")
		response.InternalError(w, "Error saving planned outfit.")
		return
	}

	response.OK(w, outfit)
}

// List godoc
//
//	@Summary		Outfit history
//	@Description	With ?date= returns the single outfit planned for that date. Without it, returns the full history, newest first.
//	@Tags			planner
//	@Produce		json
//	@Security		BearerAuth
//	@Param			date	query		string	false	"Date (YYYY-MM-DD)"
//	@Success		200		{array}		Outfit
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		401		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/planner [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "No token provided.")
		return
	}

	if date := r.URL.Query().Get("date"); date != "" {
		if !validDate(date) {
			response.BadRequest(w, "Date must be in YYYY-MM-DD format.")
			return
		}
		outfit, err := h.svc.GetByDate(r.Context(), uid, date)
		if err != nil {
			if h.svc.IsNotFound(err) {
				response.NotFound(w, "No outfit planned for this date.")
				return
			}
			response.InternalError(w, "Error fetching planned outfit.")
			return
		}
		response.OK(w, outfit)
		return
	}

	outfits, err := h.svc.History(r.Context(), uid)
	if err != nil {
		log.Error().Err(err).Str("uid", uid).Msg("list outfits failed")
		response.InternalError(w, "Error fetching outfit history.")
		return
	}

	response.OK(w, outfits)
}

// Delete godoc
//
//	@Summary		Delete planned outfit
//	@Tags			planner
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Outfit id"
//	@Success		200	{object}	map[string]string
//	@Failure		401	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/planner/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "No token provided.")
		return
	}

	if err := h.svc.DeletePlan(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "Planned outfit not found.")
			return
		}
		log.Error().Err(err).Str("uid", uid).Msg("delete outfit failed")
		response.InternalError(w, "Error deleting planned outfit.")
		return
	}

	response.OK(w, map[string]string{"message": "Planned outfit deleted successfully."})
}

// AddFavorite godoc
//
//	@Summary		Save favorite outfit
//	@Tags			favorites
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		outfitRequest	true	"Outfit item ids"
//	@Success		201		{object}	Favorite
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		401		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/favorites [post]
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "No token provided.")
		return
	}

	var req outfitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body.")
		return
	}

	favorite, err := h.svc.AddFavorite(r.Context(), &Favorite{
		UserID:      uid,
		TopID:       req.TopID,
		BottomID:    req.BottomID,
		ShoeID:      req.ShoeID,
		AccessoryID: req.AccessoryID,
	})
	if err != nil {
		log.Error().Err(err).Str("uid", uid).Msg("add favorite failed")
		response.InternalError(w, "Error saving favorite outfit.")
		return
	}

	response.Created(w, favorite)
}

// ListFavorites godoc
//
//	@Summary		List favorite outfits
//	@Tags			favorites
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		Favorite
//	@Failure		401	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/favorites [get]
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "No token provided.")
		return
	}

	favorites, err := h.svc.Favorites(r.Context(), uid)
	if err != nil {
		log.Error().Err(err).Str("uid", uid).Msg("list favorites failed")
		response.InternalError(w, "Error fetching favorite outfits.")
		return
	}

	response.OK(w, favorites)
}

// DeleteFavorite godoc
//
//	@Summary		Remove favorite outfit
//	@Tags			favorites
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Favorite id"
//	@Success		200	{object}	map[string]string
//	@Failure		401	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/favorites/{id} [delete]
func (h *Handler) DeleteFavorite(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "No token provided.")
		return
	}

	if err := h.svc.RemoveFavorite(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "Favorite outfit not found.")
			return
		}
		log.Error().Err(err).Str("uid", uid).Msg("delete favorite failed")
		response.InternalError(w, "Error deleting favorite outfit.")
		return
	}

	response.OK(w, map[string]string{"message": "Favorite outfit deleted successfully."})
}
