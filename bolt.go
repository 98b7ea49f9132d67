package packstream

import (
	"encoding/binary"
	"fmt"
)

// Handshake is the preamble a client sends before proposing versions.
var Handshake = [4]byte{0x60, 0x60, 0xB0, 0x17}

// ProtocolVersion is the version this codec's structures describe.
const ProtocolVersion uint32 = 4

// VersionProposal returns the four 4-byte big-endian version slots sent
// after Handshake, proposing ProtocolVersion and leaving the rest empty.
func VersionProposal() [16]byte {
	var p [16]byte
	binary.BigEndian.PutUint32(p[0:4], ProtocolVersion)
	return p
}

// MessageType is the structure tag of a request or response message.
type MessageType byte

const (
	MessageHello    MessageType = 0x01
	MessageGoodbye  MessageType = 0x02
	MessageReset    MessageType = 0x0F
	MessageRun      MessageType = 0x10
	MessageBegin    MessageType = 0x11
	MessageCommit   MessageType = 0x12
	MessageRollback MessageType = 0x13
	MessageDiscard  MessageType = 0x2F
	MessagePull     MessageType = 0x3F
	MessageSuccess  MessageType = 0x70
	MessageRecord   MessageType = 0x71
	MessageIgnored  MessageType = 0x7E
	MessageFailure  MessageType = 0x7F
)

var messageNames = map[MessageType]string{
	MessageHello:    "HELLO",
	MessageGoodbye:  "GOODBYE",
	MessageReset:    "RESET",
	MessageRun:      "RUN",
	MessageBegin:    "BEGIN",
	MessageCommit:   "COMMIT",
	MessageRollback: "ROLLBACK",
	MessageDiscard:  "DISCARD",
	MessagePull:     "PULL",
	MessageSuccess:  "SUCCESS",
	MessageRecord:   "RECORD",
	MessageIgnored:  "IGNORED",
	MessageFailure:  "FAILURE",
}

func (m MessageType) String() string {
	if name, ok := messageNames[m]; ok {
		return name
	}
	return fmt.Sprintf("MessageType(0x%02X)", byte(m))
}

// Response reports whether m is sent by the server.
func (m MessageType) Response() bool {
	switch m {
	case MessageSuccess, MessageRecord, MessageIgnored, MessageFailure:
		return true
	}
	return false
}
