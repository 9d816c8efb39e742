package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittomds/pkg/catalog"
	"github.com/marmos91/dittomds/pkg/catalog/memory"
)

func catalogRouter(store catalog.Store) http.Handler {
	h := NewCatalogHandler(store)
	r := chi.NewRouter()
	r.Get("/catalog", h.List)
	r.Get("/catalog/{fileID}", h.Get)
	r.Put("/catalog/{fileID}", h.Put)
	r.Delete("/catalog/{fileID}", h.Delete)
	return r
}

func TestCatalogHandler_CRUD(t *testing.T) {
	store := memory.New()
	router := catalogRouter(store)

	w := serve(router, "PUT", "/catalog/00ff", `{"type":"regular","storage_class":"disk:tape","size":4096}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := store.Get(context.Background(), "00ff")
	require.NoError(t, err)
	assert.Equal(t, catalog.FileTypeRegular, stored.Type)
	assert.Equal(t, "disk:tape", stored.Storage.StorageClass)

	w = serve(router, "GET", "/catalog/00ff", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got CatalogEntry
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, CatalogEntry{FileID: "00ff", Type: "regular", StorageClass: "disk:tape", Size: 4096}, got)

	w = serve(router, "GET", "/catalog", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []CatalogEntry
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Len(t, list, 1)

	w = serve(router, "DELETE", "/catalog/00ff", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(router, "GET", "/catalog/00ff", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = serve(router, "DELETE", "/catalog/00ff", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogHandler_PutValidation(t *testing.T) {
	router := catalogRouter(memory.New())

	w := serve(router, "PUT", "/catalog/00ff", `{"type":"socket"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(router, "PUT", "/catalog/00ff", `{"type":"regular"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "regular files need a storage class")

	w = serve(router, "PUT", "/catalog/00fe", `{"type":"directory"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}
