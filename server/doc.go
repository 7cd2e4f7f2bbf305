// Package server exposes a kernel over the network.
//
// Two surfaces share one http.Handler:
//
//   - Connect unary procedures RunTurn and History on the
//     webagent.v1.AgentService service. Requests and responses are
//     google.protobuf.Struct messages, so no generated code is needed.
//   - A WebSocket chat endpoint at /ws?session=<id> carrying JSON frames.
//
// Kernel errors map onto Connect codes through ErrorCode; NewClient returns
// a client for the Connect procedures.
package server
