package spapi

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

type ordersEnvelope struct {
	Payload struct {
		Orders    []Order `json:"Orders"`
		NextToken string  `json:"NextToken"`
	} `json:"payload"`
}

type orderItemsEnvelope struct {
	Payload struct {
		OrderItems []OrderItem `json:"OrderItems"`
		NextToken  string      `json:"NextToken"`
	} `json:"payload"`
}

// ListOrdersInput bounds the order listing window.
type ListOrdersInput struct {
	CreatedAfter  time.Time
	CreatedBefore time.Time
	PageSize      int
	MaxPages      int
}

// ListOrders pages through every order created inside the window and
// returns them in marketplace order. CreatedBefore may be zero for an
// open-ended window. Each page after the first waits pageDelay.
func (c *Client) ListOrders(ctx context.Context, input ListOrdersInput, pageDelay time.Duration) ([]Order, error) {
	pageSize := input.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}

	var all []Order
	nextToken := ""
	for page := 0; input.MaxPages <= 0 || page < input.MaxPages; page++ {
		if page > 0 && pageDelay > 0 {
			if err := sleepCtx(ctx, pageDelay); err != nil {
				return nil, err
			}
		}

		query := url.Values{}
		if nextToken != "" {
			query.Set("NextToken", nextToken)
		} else {
			query.Set("MarketplaceIds", c.marketplaceID)
			query.Set("CreatedAfter", input.CreatedAfter.UTC().Format(time.RFC3339))
			if !input.CreatedBefore.IsZero() {
				query.Set("CreatedBefore", input.CreatedBefore.UTC().Format(time.RFC3339))
			}
			query.Set("MaxResultsPerPage", strconv.Itoa(pageSize))
		}

		var envelope ordersEnvelope
		if err := c.getJSON(ctx, "orders", "/orders/v0/orders", query, &envelope); err != nil {
			return nil, err
		}
		all = append(all, envelope.Payload.Orders...)

		nextToken = envelope.Payload.NextToken
		if nextToken == "" {
			break
		}
	}
	return all, nil
}

// ListOrderItems returns the line items of one order. Items rarely span
// pages but the token is honored when they do.
func (c *Client) ListOrderItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	var all []OrderItem
	nextToken := ""
	for {
		query := url.Values{}
		if nextToken != "" {
			query.Set("NextToken", nextToken)
		}

		var envelope orderItemsEnvelope
		if err := c.getJSON(ctx, "order_items", "/orders/v0/orders/"+url.PathEscape(orderID)+"/orderItems", query, &envelope); err != nil {
			return nil, err
		}
		all = append(all, envelope.Payload.OrderItems...)

		nextToken = envelope.Payload.NextToken
		if nextToken == "" {
			return all, nil
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
