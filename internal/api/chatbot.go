package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"mrdoc/pkg/medtypes"
)

// SendChatMessage posts one user message and returns the assistant reply.
func (c *Client) SendChatMessage(ctx context.Context, message, sessionID string) (*medtypes.ChatReply, error) {
	var reply medtypes.ChatReply
	req := medtypes.ChatRequest{Message: message, SessionID: sessionID}
	if err := c.do(ctx, http.MethodPost, "/chatbot/message", nil, req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// GetChatHistory returns the server-side conversation for a session.
func (c *Client) GetChatHistory(ctx context.Context, sessionID string) (*medtypes.History, error) {
	var history medtypes.History
	path := "/chatbot/conversation/" + url.PathEscape(sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// ClearChatHistory deletes the server-side conversation for a session.
func (c *Client) ClearChatHistory(ctx context.Context, sessionID string) error {
	path := "/chatbot/conversation/" + url.PathEscape(sessionID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// SuggestDoctors asks the backend which doctors fit a condition.
// The response shape is owned by the server and returned verbatim.
func (c *Client) SuggestDoctors(ctx context.Context, condition string) (json.RawMessage, error) {
	var raw json.RawMessage
	query := url.Values{"condition": []string{condition}}
	if err := c.do(ctx, http.MethodPost, "/chatbot/suggest-doctors", query, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
