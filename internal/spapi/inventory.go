package spapi

import (
	"context"
	"net/url"
	"time"
)

type inventoryEnvelope struct {
	Payload struct {
		InventorySummaries []InventorySummary `json:"inventorySummaries"`
	} `json:"payload"`
	Pagination struct {
		NextToken string `json:"nextToken"`
	} `json:"pagination"`
}

// ListInventorySummaries pages through every fulfillment-network summary
// for the marketplace, waiting pageDelay between pages to respect the
// endpoint's rate limit.
func (c *Client) ListInventorySummaries(ctx context.Context, pageDelay time.Duration) ([]InventorySummary, error) {
	var all []InventorySummary
	nextToken := ""
	for page := 0; ; page++ {
		if page > 0 && pageDelay > 0 {
			if err := sleepCtx(ctx, pageDelay); err != nil {
				return nil, err
			}
		}

		query := url.Values{
			"granularityType": {"Marketplace"},
			"granularityId":   {c.marketplaceID},
			"marketplaceIds":  {c.marketplaceID},
			"details":         {"true"},
		}
		if nextToken != "" {
			query.Set("nextToken", nextToken)
		}

		var envelope inventoryEnvelope
		if err := c.getJSON(ctx, "inventory", "/fba/inventory/v1/summaries", query, &envelope); err != nil {
			return nil, err
		}
		all = append(all, envelope.Payload.InventorySummaries...)

		nextToken = envelope.Pagination.NextToken
		if nextToken == "" {
			return all, nil
		}
	}
}
