// Package packstream implements PackStream, the binary serialization used
// by graph database drivers to exchange values with the server.
//
// Values are modelled by the closed Value interface. Encode and the typed
// Encode* helpers produce the canonical, narrowest encoding; a Decoder
// turns bytes back into Values, including the graph, temporal and spatial
// Structure kinds. LeadByteLength, ByteLength and TotalBytes measure an
// encoded value without decoding it. Marshal and Unmarshal bridge native
// Go types.
package packstream
