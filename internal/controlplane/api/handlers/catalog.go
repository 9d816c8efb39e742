package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/dittomds/pkg/catalog"
)

// CatalogEntry is the JSON form of a catalog entry.
type CatalogEntry struct {
	FileID       string `json:"file_id"`
	Type         string `json:"type"`
	StorageClass string `json:"storage_class,omitempty"`
	CreatedOnly  bool   `json:"created_only,omitempty"`
	Size         uint64 `json:"size,omitempty"`
}

// PutCatalogEntryRequest creates or replaces the entry named in the URL.
type PutCatalogEntryRequest struct {
	Type         string `json:"type"`
	StorageClass string `json:"storage_class,omitempty"`
	CreatedOnly  bool   `json:"created_only,omitempty"`
	Size         uint64 `json:"size,omitempty"`
}

func toCatalogEntry(e catalog.Entry) CatalogEntry {
	return CatalogEntry{
		FileID:       e.FileID,
		Type:         e.Type.String(),
		StorageClass: e.Storage.StorageClass,
		CreatedOnly:  e.Storage.CreatedOnly,
		Size:         e.Storage.Size,
	}
}

// CatalogHandler manages storage-class catalog entries.
type CatalogHandler struct {
	store catalog.Store
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(store catalog.Store) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// List handles GET /api/v1/catalog.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.List(r.Context())
	if err != nil {
		InternalServerError(w, "Failed to list catalog: "+err.Error())
		return
	}

	out := make([]CatalogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, toCatalogEntry(e))
	}
	WriteJSONOK(w, out)
}

// Get handles GET /api/v1/catalog/{fileID}.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	e, err := h.store.Get(r.Context(), fileID)
	if err != nil {
		h.writeStoreError(w, fileID, err)
		return
	}
	WriteJSONOK(w, toCatalogEntry(e))
}

// Put handles PUT /api/v1/catalog/{fileID}.
func (h *CatalogHandler) Put(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	var req PutCatalogEntryRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	ft, err := catalog.ParseFileType(req.Type)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	e := catalog.Entry{
		FileID: fileID,
		Type:   ft,
		Storage: catalog.StorageInfo{
			StorageClass: req.StorageClass,
			CreatedOnly:  req.CreatedOnly,
			Size:         req.Size,
		},
	}
	if err := e.Validate(); err != nil {
		UnprocessableEntity(w, err.Error())
		return
	}

	if err := h.store.Put(r.Context(), e); err != nil {
		InternalServerError(w, "Failed to store entry: "+err.Error())
		return
	}
	WriteJSONOK(w, toCatalogEntry(e))
}

// Delete handles DELETE /api/v1/catalog/{fileID}.
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	if err := h.store.Delete(r.Context(), fileID); err != nil {
		h.writeStoreError(w, fileID, err)
		return
	}
	WriteNoContent(w)
}

func (h *CatalogHandler) writeStoreError(w http.ResponseWriter, fileID string, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		NotFound(w, "No catalog entry for "+fileID)
		return
	}
	InternalServerError(w, err.Error())
}
