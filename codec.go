package quill

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// Codec translates messages to and from wire bytes. The router uses one
// codec for all routes; the client must be configured with the same codec
// as the server it talks to.
type Codec interface {
	// Name identifies the codec ("json", "proto").
	Name() string
	// ContentType is the HTTP content type for bodies produced by Marshal.
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec encodes messages as JSON. Protobuf messages use protojson so
// field names and well-known types follow the proto3 JSON mapping; plain Go
// structs fall back to encoding/json. This is the default codec.
type JSONCodec struct{}

func (JSONCodec) Name() string        { return "json" }
func (JSONCodec) ContentType() string { return "application/json" }

func (JSONCodec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return protojson.Unmarshal(data, m)
	}
	return json.Unmarshal(data, v)
}

// ProtoCodec encodes messages as binary protobuf. Every message must
// implement proto.Message.
type ProtoCodec struct{}

func (ProtoCodec) Name() string        { return "proto" }
func (ProtoCodec) ContentType() string { return "application/protobuf" }

func (ProtoCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("proto codec: %T does not implement proto.Message", v)
	}
	return proto.Marshal(m)
}

func (ProtoCodec) Unmarshal(data []byte, v any) error {
	m, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("proto codec: %T does not implement proto.Message", v)
	}
	return proto.Unmarshal(data, m)
}
