package apiclient

import "net/url"

// CatalogEntry is a storage-class catalog entry.
type CatalogEntry struct {
	FileID       string `json:"file_id"`
	Type         string `json:"type"`
	StorageClass string `json:"storage_class,omitempty"`
	CreatedOnly  bool   `json:"created_only,omitempty"`
	Size         uint64 `json:"size,omitempty"`
}

// PutCatalogEntryRequest creates or replaces an entry.
type PutCatalogEntryRequest struct {
	Type         string `json:"type"`
	StorageClass string `json:"storage_class,omitempty"`
	CreatedOnly  bool   `json:"created_only,omitempty"`
	Size         uint64 `json:"size,omitempty"`
}

func catalogPath(fileID string) string {
	return "/api/v1/catalog/" + url.PathEscape(fileID)
}

// ListCatalog returns all catalog entries.
func (c *Client) ListCatalog() ([]CatalogEntry, error) {
	return listResources[CatalogEntry](c, "/api/v1/catalog")
}

// GetCatalogEntry returns the entry for fileID.
func (c *Client) GetCatalogEntry(fileID string) (*CatalogEntry, error) {
	return getResource[CatalogEntry](c, catalogPath(fileID))
}

// PutCatalogEntry creates or replaces the entry for fileID.
func (c *Client) PutCatalogEntry(fileID string, req *PutCatalogEntryRequest) (*CatalogEntry, error) {
	return updateResource[CatalogEntry](c, catalogPath(fileID), req)
}

// DeleteCatalogEntry removes the entry for fileID.
func (c *Client) DeleteCatalogEntry(fileID string) error {
	return deleteResource(c, catalogPath(fileID))
}
