// Package wire defines the JSON protocol spoken between the simulation and
// the inspector, plus the delimiter framing used to carry it over datagrams.
package wire

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Delimiter terminates every envelope on the wire. The inspector's IPC layer
// splits its input stream on this byte, so it must never appear inside a
// message body; JSON text never contains a raw form feed.
const Delimiter = 0x0C

// EntityRef identifies an entity slot together with the generation currently
// occupying it. A reference whose generation no longer matches the live slot
// is stale and must be ignored.
type EntityRef struct {
	ID         uint32 `json:"id"`
	Generation int32  `json:"generation"`
}

// BlobKind tags a serialized fragment queued for transmission.
type BlobKind int

const (
	// BlobComponent is a per-entity record snapshot, {"name":...,"data":{id:...}}.
	BlobComponent BlobKind = iota
	// BlobResource is a singleton record snapshot, {"name":...,"data":...}.
	BlobResource
	// BlobMessage is an arbitrary tagged message, delivered every tick.
	BlobMessage
)

// Blob is one completed JSON fragment handed from a producer stage to the
// coordinator. The JSON is immutable once produced.
type Blob struct {
	Kind BlobKind
	JSON json.RawMessage
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type fullSyncData struct {
	Entities   []EntityRef       `json:"entities"`
	Components []json.RawMessage `json:"components"`
	Resources  []json.RawMessage `json:"resources"`
	Messages   []json.RawMessage `json:"messages"`
}

type throttledData struct {
	Messages []json.RawMessage `json:"messages"`
}

// EncodeFullSync renders a full-state envelope carrying the complete entity
// list alongside every queued component, resource, and message blob.
func EncodeFullSync(entities []EntityRef, components, resources, messages []json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(fullSyncData{
		Entities:   emptyRefs(entities),
		Components: emptyRaw(components),
		Resources:  emptyRaw(resources),
		Messages:   emptyRaw(messages),
	})
	if err != nil {
		return nil, fmt.Errorf("encode full sync data: %w", err)
	}
	return json.Marshal(envelope{Type: "message", Data: data})
}

// EncodeThrottled renders a messages-only envelope for ticks that fall
// between full-sync deadlines.
func EncodeThrottled(messages []json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(throttledData{Messages: emptyRaw(messages)})
	if err != nil {
		return nil, fmt.Errorf("encode throttled data: %w", err)
	}
	return json.Marshal(envelope{Type: "message", Data: data})
}

func emptyRefs(refs []EntityRef) []EntityRef {
	if refs == nil {
		return []EntityRef{}
	}
	return refs
}

func emptyRaw(raw []json.RawMessage) []json.RawMessage {
	if raw == nil {
		return []json.RawMessage{}
	}
	return raw
}

// Inbound message variants, discriminated by the "type" field.
const (
	TypeComponentUpdate = "ComponentUpdate"
	TypeResourceUpdate  = "ResourceUpdate"
	TypeCreateEntities  = "CreateEntities"
	TypeDestroyEntities = "DestroyEntities"
)

// ComponentUpdate asks the simulation to overwrite one entity's record of
// the named component type.
type ComponentUpdate struct {
	ID     string          `json:"id"`
	Entity EntityRef       `json:"entity"`
	Data   json.RawMessage `json:"data"`
}

// ResourceUpdate asks the simulation to overwrite the named singleton record.
type ResourceUpdate struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// CreateEntities asks the simulation to allocate new empty entities.
type CreateEntities struct {
	Amount int `json:"amount"`
}

// DestroyEntities asks the simulation to delete the referenced entities.
type DestroyEntities struct {
	Entities []EntityRef `json:"entities"`
}

// Inbound is implemented by every decoded inspector message.
type Inbound interface {
	inbound()
}

func (ComponentUpdate) inbound() {}
func (ResourceUpdate) inbound()  {}
func (CreateEntities) inbound()  {}
func (DestroyEntities) inbound() {}

// DecodeInbound parses one delimiter-terminated message body into its
// concrete variant. Malformed UTF-8, malformed JSON, and unknown
// discriminators are all errors; the caller drops the message and moves on.
func DecodeInbound(raw []byte) (Inbound, error) {
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("message is not valid UTF-8")
	}
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	switch probe.Type {
	case TypeComponentUpdate:
		var msg ComponentUpdate
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("decode component update: %w", err)
		}
		return msg, nil
	case TypeResourceUpdate:
		var msg ResourceUpdate
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("decode resource update: %w", err)
		}
		return msg, nil
	case TypeCreateEntities:
		var msg CreateEntities
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("decode create entities: %w", err)
		}
		return msg, nil
	case TypeDestroyEntities:
		var msg DestroyEntities
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("decode destroy entities: %w", err)
		}
		return msg, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", probe.Type)
	}
}
