package blob

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/stylesync/service/internal/middleware"
	"github.com/stylesync/service/internal/response"
)

// Handler holds HTTP handlers for the blob proxy endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new blob Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type blobRequest struct {
	BlobName string `json:"blobName" example:"alice123/wardrobeImages/item1.png"`
}

type sasData struct {
	SASURL  string `json:"sasUrl"  example:"https://acct.blob.core.windows.net/c/alice123/wardrobeImages/item1.png?sp=cw&..."`
	BlobURL string `json:"blobUrl" example:"https://acct.blob.core.windows.net/c/alice123/wardrobeImages/item1.png"`
}

type messageData struct {
	Message string `json:"message" example:"Blob deleted successfully."`
}

// GenerateSAS godoc
//
//	@Summary		Generate upload SAS URL
//	@Description	Mint a short-lived signed URL (create+write, HTTPS only) for uploading one blob. The blob name must be prefixed with the caller's own user id.
//	@Tags			blobs
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		blobRequest	true	"Blob name"
//	@Success		200		{object}	sasData
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		401		{object}	response.ErrorBody
//	@Failure		403		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/generateSas [post]
func (h *Handler) GenerateSAS(w http.ResponseWriter, r *http.Request) {
	uid, req, ok := h.decode(w, r)
	if !ok {
		return
	}

	grant, err := h.svc.IssueUploadGrant(r.Context(), uid, req.BlobName)
	if err != nil {
		if errors.Is(err, ErrKeyOutsideNamespace) {
			response.Forbidden(w, "Blob name must be under your own user id.")
			return
		}
		log.Error().Err(err).Str("uid", uid).Msg("sas generation failed")
		response.InternalError(w, "Error generating SAS: "+err.Error())
		return
	}

	response.OK(w, sasData{SASURL: grant.SASURL, BlobURL: grant.BlobURL})
}

// DeleteBlob godoc
//
//	@Summary		Delete a blob
//	@Description	Delete one blob owned by the caller. Deleting a blob that does not exist succeeds.
//	@Tags			blobs
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		blobRequest	true	"Blob name"
//	@Success		200		{object}	messageData
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		401		{object}	response.ErrorBody
//	@Failure		403		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/deleteBlob [post]
func (h *Handler) DeleteBlob(w http.ResponseWriter, r *http.Request) {
	uid, req, ok := h.decode(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteObject(r.Context(), uid, req.BlobName); err != nil {
		if errors.Is(err, ErrKeyOutsideNamespace) {
			response.Forbidden(w, "Blob name must be under your own user id.")
			return
		}
		log.Error().Err(err).Str("uid", uid).Msg("blob deletion failed")
		response.InternalError(w, "Error deleting blob: "+err.Error())
		return
	}

	response.OK(w, messageData{Message: "Blob deleted successfully."})
}

// decode pulls the authenticated uid from the context and the blob name from
// the body, writing the error response itself when either is missing.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (string, blobRequest, bool) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "No token provided.")
		return "", blobRequest{}, false
	}

	var req blobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body.")
		return "", blobRequest{}, false
	}
	if req.BlobName == "" {
		response.BadRequest(w, "Blob name is required.")
		return "", blobRequest{}, false
	}
	return uid, req, true
}
