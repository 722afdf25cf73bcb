// Package protocol defines the JSON envelopes exchanged over the
// WebSocket channel: {"t": type, "p": payload}.
package protocol

import "encoding/json"

const (
	MsgHello   = "hello"   // client → server
	MsgTarget  = "target"  // client → server
	MsgStart   = "start"   // client → server
	MsgStop    = "stop"    // client → server
	MsgWelcome = "welcome" // server → client
	MsgState   = "state"   // server → client
	MsgEvent   = "event"   // server → client
	MsgError   = "error"   // server → client
)

const (
	SimTickHz   = 60
	BroadcastHz = 30
)

// Version is the protocol version carried in Hello.
const Version = 1

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"`
}
