package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mtanaka/pricewise/internal/analysis"
)

// ListReceipts returns all receipts owned by the caller, in server order
// (newest first).
func (c *Client) ListReceipts(ctx context.Context) ([]*Receipt, error) {
	receipts := make([]*Receipt, 0)
	if err := c.do(ctx, http.MethodGet, "/receipts", nil, nil, "", &receipts); err != nil {
		return nil, err
	}
	return receipts, nil
}

// CreateReceipt persists a new receipt; the server assigns id and timestamps.
func (c *Client) CreateReceipt(ctx context.Context, create ReceiptCreate) (*Receipt, error) {
	body, err := json.Marshal(create)
	if err != nil {
		return nil, fmt.Errorf("marshaling receipt: %w", err)
	}
	var receipt Receipt
	if err := c.do(ctx, http.MethodPost, "/receipts", nil, bytes.NewReader(body), "application/json", &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// UpdateReceipt replaces the stored result for id. A receipt that does not
// exist or is not owned by the caller fails with NotFound.
func (c *Client) UpdateReceipt(ctx context.Context, id string, result *analysis.Result) (*Receipt, error) {
	body, err := json.Marshal(ReceiptUpdate{Result: result})
	if err != nil {
		return nil, fmt.Errorf("marshaling receipt update: %w", err)
	}
	var receipt Receipt
	if err := c.do(ctx, http.MethodPut, "/receipts/"+id, nil, bytes.NewReader(body), "application/json", &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// DeleteReceipt removes one receipt by id.
func (c *Client) DeleteReceipt(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/receipts/"+id, nil, nil, "", nil)
}

// ClearReceipts removes all receipts owned by the caller.
func (c *Client) ClearReceipts(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/receipts", nil, nil, "", nil)
}
