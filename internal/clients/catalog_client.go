package clients

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// CatalogClient fetches categories with their nested products from the
// catalog service. The catalog is the source of truth for which categories
// and products exist; this service only stores how they are ordered.
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
}

// CatalogProduct is a product as returned by the catalog service.
type CatalogProduct struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Code       string   `json:"code"`
	Price      float64  `json:"price"`
	OfferPrice *float64 `json:"offerPrice,omitempty"`
	Images     []string `json:"images,omitempty"`
}

// CatalogCategory is a category with nested products as returned by the
// catalog service.
type CatalogCategory struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Products []CatalogProduct `json:"products"`
}

// CatalogResponse is the catalog service's list envelope.
type CatalogResponse struct {
	Success bool              `json:"success"`
	Data    []CatalogCategory `json:"data"`
	Message *string           `json:"message,omitempty"`
}

// NewCatalogClient creates a new catalog service client
func NewCatalogClient() *CatalogClient {
	baseURL := os.Getenv("CATALOG_SERVICE_URL")
	if baseURL == "" {
		baseURL = "http://products-service:8080"
	}

	return &CatalogClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetCategories fetches the tenant's categories with nested products in
// catalog order.
func (c *CatalogClient) GetCategories(tenantID string) ([]CatalogCategory, error) {
	url := c.baseURL + "/api/v1/storefront/categories?includeProducts=true"
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog service returned status %d", resp.StatusCode)
	}

	var catalogResp CatalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&catalogResp); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	if !catalogResp.Success {
		msg := "unknown error"
		if catalogResp.Message != nil {
			msg = *catalogResp.Message
		}
		return nil, fmt.Errorf("catalog service rejected request: %s", msg)
	}

	return catalogResp.Data, nil
}
