// Package remote talks XML-RPC to the business-management server. Rows come
// back as dynamically typed maps; they are decoded into tagged structs
// through a JSON round trip.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kolo/xmlrpc"
)

// Client is an XML-RPC client for the business server.
type Client struct {
	URL       string
	Database  string
	Username  string
	Password  string
	CommonURL string
	ObjectURL string

	mu  sync.Mutex
	uid int

	HTTPClient *http.Client
}

// NewClient creates a client for the server at url.
func NewClient(url, db, username, password string) *Client {
	return &Client{
		URL:        url,
		Database:   db,
		Username:   username,
		Password:   password,
		CommonURL:  fmt.Sprintf("%s/xmlrpc/2/common", url),
		ObjectURL:  fmt.Sprintf("%s/xmlrpc/2/object", url),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Authenticate logs in and caches the user id for subsequent calls.
func (c *Client) Authenticate(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	client, err := xmlrpc.NewClient(c.CommonURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create XML-RPC client: %w", err)
	}
	defer client.Close()

	args := []interface{}{c.Database, c.Username, c.Password, make([]interface{}, 0)}
	var uid int
	if err := client.Call("authenticate", args, &uid); err != nil {
		return 0, fmt.Errorf("authentication failed: %w", err)
	}

	c.mu.Lock()
	c.uid = uid
	c.mu.Unlock()
	return uid, nil
}

func (c *Client) userID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uid
}

// executeKw runs one execute_kw call against the object endpoint.
func (c *Client) executeKw(ctx context.Context, model, method string, args []interface{}, kwargs map[string]interface{}, result interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	client, err := xmlrpc.NewClient(c.ObjectURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create XML-RPC client: %w", err)
	}
	defer client.Close()

	callArgs := []interface{}{
		c.Database,
		c.userID(),
		c.Password,
		model,
		method,
		args,
	}
	if kwargs != nil {
		callArgs = append(callArgs, kwargs)
	}

	if err := client.Call("execute_kw", callArgs, result); err != nil {
		return fmt.Errorf("failed to execute %s on %s: %w", method, model, err)
	}
	return nil
}

// SearchRead fetches the matching records, decoded into result (a pointer
// to a slice of json-tagged structs).
func (c *Client) SearchRead(ctx context.Context, model string, domain []interface{}, fields []string, limit, offset int, result interface{}) error {
	var raw []map[string]interface{}
	kwargs := map[string]interface{}{
		"fields": fields,
		"limit":  limit,
		"offset": offset,
	}
	if err := c.executeKw(ctx, model, "search_read", []interface{}{domain}, kwargs, &raw); err != nil {
		return err
	}
	return decodeRows(raw, result)
}

// Read fetches records by id, decoded into result.
func (c *Client) Read(ctx context.Context, model string, ids []int64, fields []string, result interface{}) error {
	var raw []map[string]interface{}
	kwargs := map[string]interface{}{"fields": fields}
	if err := c.executeKw(ctx, model, "read", []interface{}{ids}, kwargs, &raw); err != nil {
		return err
	}
	return decodeRows(raw, result)
}

// Create inserts one record and returns its server id.
func (c *Client) Create(ctx context.Context, model string, values map[string]interface{}) (int64, error) {
	var id int64
	if err := c.executeKw(ctx, model, "create", []interface{}{values}, nil, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// CallMethod invokes a custom server-side method on records.
func (c *Client) CallMethod(ctx context.Context, model, method string, ids []int64, params map[string]interface{}) (interface{}, error) {
	var result interface{}
	if err := c.executeKw(ctx, model, method, []interface{}{ids}, params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// decodeRows converts the raw maps into the caller's tagged structs via a
// JSON round trip.
func decodeRows(raw []map[string]interface{}, result interface{}) error {
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal raw result: %w", err)
	}
	if err := json.Unmarshal(jsonData, result); err != nil {
		return fmt.Errorf("failed to unmarshal into target: %w", err)
	}
	return nil
}
