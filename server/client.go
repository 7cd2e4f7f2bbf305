package server

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/webagent/core/protocol"
)

// Reply is the outcome of a remote turn.
type Reply struct {
	SessionID  string
	Text       string
	RoundTrips int
}

// Client calls the agent service. Errors are *connect.Error values;
// connect.CodeOf reports their code.
type Client struct {
	runTurn *connect.Client[structpb.Struct, structpb.Struct]
	history *connect.Client[structpb.Struct, structpb.Struct]
}

// NewClient creates a client for the server at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		runTurn: connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+RunTurnProcedure, opts...),
		history: connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+HistoryProcedure, opts...),
	}
}

// RunTurn runs one turn on sessionID. An empty sessionID lets the server
// generate one, reported in Reply.SessionID.
func (c *Client) RunTurn(ctx context.Context, sessionID, text string) (*Reply, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		"session_id": structpb.NewStringValue(sessionID),
		"text":       structpb.NewStringValue(text),
	}}

	resp, err := c.runTurn.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}

	fields := resp.Msg.GetFields()
	return &Reply{
		SessionID:  fields["session_id"].GetStringValue(),
		Text:       fields["text"].GetStringValue(),
		RoundTrips: int(fields["round_trips"].GetNumberValue()),
	}, nil
}

// History returns the stored messages of sessionID.
func (c *Client) History(ctx context.Context, sessionID string) ([]protocol.Message, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		"session_id": structpb.NewStringValue(sessionID),
	}}

	resp, err := c.history.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return decodeMessages(resp.Msg.GetFields()["messages"].GetListValue())
}
