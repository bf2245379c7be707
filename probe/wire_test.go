package probe

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWireToolDescriptor(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ToolDescriptor
	}{
		{
			name: "Schema properties become sorted parameter names",
			raw:  `{"name":"search","description":"Search things","inputSchema":{"type":"object","properties":{"query":{"type":"string"},"limit":{"type":"number"},"cursor":{"type":"string"}}}}`,
			want: ToolDescriptor{
				Name:        "search",
				Description: "Search things",
				Parameters:  []string{"cursor", "limit", "query"},
			},
		},
		{
			name: "No schema",
			raw:  `{"name":"ping","description":"Liveness check"}`,
			want: ToolDescriptor{Name: "ping", Description: "Liveness check"},
		},
		{
			name: "Empty properties",
			raw:  `{"name":"ping","description":"Liveness check","inputSchema":{"type":"object","properties":{}}}`,
			want: ToolDescriptor{Name: "ping", Description: "Liveness check"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tool wireTool
			if err := json.Unmarshal([]byte(tt.raw), &tool); err != nil {
				t.Fatalf("Failed to unmarshal wire tool: %v", err)
			}
			got := tool.descriptor()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("descriptor() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
