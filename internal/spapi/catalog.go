package spapi

import (
	"context"
	"net/url"
)

type catalogItemEnvelope struct {
	ASIN      string `json:"asin"`
	Summaries []struct {
		ItemName  string `json:"itemName"`
		Brand     string `json:"brand"`
		BrandName string `json:"brandName"`
	} `json:"summaries"`
	Images []struct {
		Images []struct {
			Link   string `json:"link"`
			Height int    `json:"height"`
			Width  int    `json:"width"`
		} `json:"images"`
	} `json:"images"`
}

// GetCatalogItem fetches title, brand, and primary image for one ASIN.
func (c *Client) GetCatalogItem(ctx context.Context, asin string) (*CatalogInfo, error) {
	query := url.Values{
		"marketplaceIds": {c.marketplaceID},
		"includedData":   {"summaries,images"},
	}

	var envelope catalogItemEnvelope
	if err := c.getJSON(ctx, "catalog", "/catalog/2022-04-01/items/"+url.PathEscape(asin), query, &envelope); err != nil {
		return nil, err
	}

	info := &CatalogInfo{ASIN: asin}
	if len(envelope.Summaries) > 0 {
		info.Title = envelope.Summaries[0].ItemName
		info.Brand = envelope.Summaries[0].Brand
		if info.Brand == "" {
			info.Brand = envelope.Summaries[0].BrandName
		}
	}
	if len(envelope.Images) > 0 && len(envelope.Images[0].Images) > 0 {
		info.ImageURL = envelope.Images[0].Images[0].Link
	}
	return info, nil
}
