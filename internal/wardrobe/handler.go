package wardrobe

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/stylesync/service/internal/middleware"
	"github.com/stylesync/service/internal/response"
)

// Handler holds HTTP handlers for wardrobe endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new wardrobe Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createItemRequest struct {
	Name     string   `json:"name"     example:"Blue Oxford Shirt"`
	Category string   `json:"category" example:"tops"`
	Color    string   `json:"color"    example:"blue"`
	Tags     []string `json:"tags"`
	ImageURL string   `json:"imageUrl" example:"https://acct.blob.core.windows.net/c/alice123/wardrobeImages/item1.png"`
	BlobName string   `json:"blobName" example:"alice123/wardrobeImages/item1.png"`
	Favorite bool     `json:"favorite"`
}

// Create godoc
//
//	@Summary		Add wardrobe item
//	@Description	Store metadata for an item whose image was already uploaded through /generateSas.
//	@Tags			wardrobe
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		createItemRequest	true	"Item metadata"
//	@Success		201		{object}	Item
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		401		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/wardrobe [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "No token provided.")
		return
	}

	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body.")
		return
	}
	if req.Name == "" || req.Category == "" {
		response.BadRequest(w, "Name and category are required.")
		return
	}
	if req.BlobName != "" && !strings.HasPrefix(req.BlobName, uid+"/") {
		response.BadRequest(w, "Blob name must be under your own user id.")
		return
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}

	item, err := h.svc.Create(r.Context(), &Item{
		UserID:   uid,
		Name:     req.Name,
		Category: req.Category,
		Color:    req.Color,
		Tags:     req.Tags,
		ImageURL: req.ImageURL,
		BlobName: req.BlobName,
		Favorite: req.Favorite,
	})
	if err != nil {
		log.Error().Err(err).Str("uid", uid).Msg("create wardrobe item failed")
		response.InternalError(w, "Error saving wardrobe item.")
		return
	}

	response.Created(w, item)
}

// List godoc
//
//	@Summary		List wardrobe items
//	@Description	Returns the caller's items, newest first. Filter with ?category= and ?favorite=true.
//	@Tags			wardrobe
//	@Produce		json
//	@Security		BearerAuth
//	@Param			category	query		string	false	"Category filter"
//	@Param			favorite	query		boolean	false	"Only favorites"
//	@Success		200			{array}		Item
//	@Failure		401			{object}	response.ErrorBody
//	@Failure		500			{object}	response.ErrorBody
//	@Router			/wardrobe [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "No token provided.")
		return
	}

	f := Filter{Category: r.URL.Query().Get("category")}
	if fav := r.URL.Query().Get("favorite"); fav != "" {
		favorite := fav == "true"
		f.Favorite = &favorite
	}

	items, err := h.svc.List(r.Context(), uid, f)
	if err != nil {
		log.Error().Err(err).Str("uid", uid).Msg("list wardrobe items failed")
		response.InternalError(w, "Error fetching wardrobe items.")
		return
	}

	response.OK(w, items)
}

// Get godoc
//
//	@Summary		Get wardrobe item
//	@Tags			wardrobe
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Item id"
//	@Success		200	{object}	Item
//	@Failure		401	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/wardrobe/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "No token provided.")
		return
	}

	item, err := h.svc.Get(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "Wardrobe item not found.")
			return
		}
		response.InternalError(w, "Error fetching wardrobe item.")
		return
	}

	response.OK(w, item)
}

// Update godoc
//
//	@Summary		Update wardrobe item
//	@Description	Partial update; omitted fields keep their stored value.
//	@Tags			wardrobe
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string		true	"Item id"
//	@Param			request	body		ItemUpdate	true	"Fields to change"
//	@Success		200		{object}	Item
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		401		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/wardrobe/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "No token provided.")
		return
	}

	var u ItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		response.BadRequest(w, "Invalid request body.")
		return
	}

	item, err := h.svc.Update(r.Context(), uid, chi.URLParam(r, "id"), u)
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "Wardrobe item not found.")
			return
		}
		log.Error().Err(err).Str("uid", uid).Msg("update wardrobe item failed")
		response.InternalError(w, "Error updating wardrobe item.")
		return
	}

	response.OK(w, item)
}

// Delete godoc
//
//	@Summary		Delete wardrobe item
//	@Description	Removes the item metadata and its stored image. A missing image is tolerated.
//	@Tags			wardrobe
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Item id"
//	@Success		200	{object}	map[string]string
//	@Failure		401	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/wardrobe/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "No token provided.")
		return
	}

	if err := h.svc.Delete(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "Wardrobe item not found.")
			return
		}
		log.Error().Err(err).Str("uid", uid).Msg("delete wardrobe item failed")
		response.InternalError(w, "Error deleting wardrobe item.")
		return
	}

	response.OK(w, map[string]string{"message": "Wardrobe item deleted successfully."})
}
