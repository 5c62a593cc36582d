// Package quillgen generates Go service bindings from a service descriptor:
// a server capability interface, a delegation wrapper, a router constructor,
// and a client interface with its implementation. Generation is a pure
// function over the descriptor; identical input yields byte-identical output.
package quillgen

import (
	"encoding/json"
	"fmt"
	"go/token"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ServiceDescriptor is the input model: one named service and its methods.
// It is produced by an external schema compiler (or loaded from JSON) and
// only ever read here.
type ServiceDescriptor struct {
	// Name is the Go-facing service identifier, e.g. "TestAPI".
	Name string `json:"name" validate:"required"`
	// Package is the proto package, e.g. "test".
	Package string `json:"package" validate:"required"`
	// ProtoName is the service name as declared in the schema. It usually
	// equals Name but is kept separate so Go renaming never changes the wire.
	ProtoName string `json:"proto_name" validate:"required"`
	// Methods is ordered; the order affects generated-source layout only,
	// never routing semantics.
	Methods []MethodDescriptor `json:"methods" validate:"dive"`
}

// MethodDescriptor describes one method of a service.
type MethodDescriptor struct {
	// Name is the Go method identifier, e.g. "Ping".
	Name string `json:"name" validate:"required"`
	// WireName is the method name on the wire, the last path segment.
	WireName string `json:"wire_name" validate:"required"`
	// InputType and OutputType are Go type names, optionally
	// package-qualified (e.g. "PingRequest", "pb.PingRequest").
	InputType  string `json:"input_type" validate:"required"`
	OutputType string `json:"output_type" validate:"required"`
}

// FQN returns the fully-qualified service name, "<package>.<proto name>".
func (s *ServiceDescriptor) FQN() string {
	return s.Package + "." + s.ProtoName
}

// PathPrefix returns the canonical routing prefix, "/<fqn>". Every method
// routes at PathPrefix + "/" + WireName, on both server and client.
func (s *ServiceDescriptor) PathPrefix() string {
	return "/" + s.FQN()
}

// Validate checks the descriptor before any code is emitted: required
// fields, identifier well-formedness, and wire-name uniqueness. A descriptor
// with two methods on the same wire path must never reach emission.
func (s *ServiceDescriptor) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("service %q: %w", s.Name, err)
	}
	if !token.IsIdentifier(s.Name) {
		return fmt.Errorf("service name %q is not a valid Go identifier", s.Name)
	}
	seenWire := make(map[string]string, len(s.Methods))
	seenName := make(map[string]bool, len(s.Methods))
	for _, m := range s.Methods {
		if !token.IsIdentifier(m.Name) {
			return fmt.Errorf("method name %q is not a valid Go identifier", m.Name)
		}
		if seenName[m.Name] {
			return fmt.Errorf("duplicate method name %q", m.Name)
		}
		seenName[m.Name] = true
		if prev, ok := seenWire[m.WireName]; ok {
			return fmt.Errorf("methods %q and %q share wire name %q: routes would collide", prev, m.Name, m.WireName)
		}
		seenWire[m.WireName] = m.Name
		for _, typ := range []string{m.InputType, m.OutputType} {
			if !isTypeName(typ) {
				return fmt.Errorf("method %q: %q is not a valid type name", m.Name, typ)
			}
		}
	}
	return nil
}

// isTypeName reports whether s is an identifier or a package-qualified one.
func isTypeName(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return false
	}
	for _, p := range parts {
		if !token.IsIdentifier(p) {
			return false
		}
	}
	return true
}

// LoadDescriptor reads a JSON-encoded ServiceDescriptor and validates it.
func LoadDescriptor(r io.Reader) (*ServiceDescriptor, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var svc ServiceDescriptor
	if err := dec.Decode(&svc); err != nil {
		return nil, fmt.Errorf("decode descriptor: %w", err)
	}
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	return &svc, nil
}
