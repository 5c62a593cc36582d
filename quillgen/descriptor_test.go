package quillgen

import (
	"strings"
	"testing"
)

func testService() *ServiceDescriptor {
	return &ServiceDescriptor{
		Name:      "TestAPI",
		Package:   "test",
		ProtoName: "TestAPI",
		Methods: []MethodDescriptor{
			{Name: "Ping", WireName: "Ping", InputType: "PingRequest", OutputType: "PingResponse"},
			{Name: "Boom", WireName: "Boom", InputType: "PingRequest", OutputType: "PingResponse"},
		},
	}
}

func TestFQNAndPathPrefix(t *testing.T) {
	svc := testService()
	if got := svc.FQN(); got != "test.TestAPI" {
		t.Errorf("FQN = %q, want test.TestAPI", got)
	}
	if got := svc.PathPrefix(); got != "/test.TestAPI" {
		t.Errorf("PathPrefix = %q, want /test.TestAPI", got)
	}
}

func TestValidateAcceptsFixture(t *testing.T) {
	if err := testService().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsBadDescriptors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServiceDescriptor)
		wantErr string
	}{
		{
			"missing name",
			func(s *ServiceDescriptor) { s.Name = "" },
			"required",
		},
		{
			"missing package",
			func(s *ServiceDescriptor) { s.Package = "" },
			"required",
		},
		{
			"missing proto name",
			func(s *ServiceDescriptor) { s.ProtoName = "" },
			"required",
		},
		{
			"service name not an identifier",
			func(s *ServiceDescriptor) { s.Name = "Test-API" },
			"not a valid Go identifier",
		},
		{
			"method name not an identifier",
			func(s *ServiceDescriptor) { s.Methods[0].Name = "ping pong" },
			"not a valid Go identifier",
		},
		{
			"duplicate wire names",
			func(s *ServiceDescriptor) { s.Methods[1].WireName = "Ping" },
			"share wire name",
		},
		{
			"duplicate method names",
			func(s *ServiceDescriptor) { s.Methods[1].Name = "Ping"; s.Methods[1].WireName = "Ping2" },
			"duplicate method name",
		},
		{
			"bad input type",
			func(s *ServiceDescriptor) { s.Methods[0].InputType = "a.b.c" },
			"not a valid type name",
		},
		{
			"missing output type",
			func(s *ServiceDescriptor) { s.Methods[0].OutputType = "" },
			"required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testService()
			tt.mutate(svc)
			err := svc.Validate()
			if err == nil {
				t.Fatal("expected Validate to fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAcceptsQualifiedTypes(t *testing.T) {
	svc := testService()
	svc.Methods[0].InputType = "pb.PingRequest"
	svc.Methods[0].OutputType = "pb.PingResponse"
	if err := svc.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadDescriptor(t *testing.T) {
	const input = `{
		"name": "TestAPI",
		"package": "test",
		"proto_name": "TestAPI",
		"methods": [
			{"name": "Ping", "wire_name": "Ping", "input_type": "PingRequest", "output_type": "PingResponse"}
		]
	}`
	svc, err := LoadDescriptor(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if svc.FQN() != "test.TestAPI" || len(svc.Methods) != 1 {
		t.Errorf("descriptor = %+v", svc)
	}
}

func TestLoadDescriptorRejectsUnknownFields(t *testing.T) {
	if _, err := LoadDescriptor(strings.NewReader(`{"name":"S","package":"p","proto_name":"S","surprise":1}`)); err == nil {
		t.Error("expected unknown field to be rejected")
	}
}

func TestLoadDescriptorRejectsInvalid(t *testing.T) {
	if _, err := LoadDescriptor(strings.NewReader(`{"name":"S","package":"p"}`)); err == nil {
		t.Error("expected invalid descriptor to be rejected")
	}
}
