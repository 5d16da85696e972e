package mtf

import "testing"

func TestNewField(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		content    string
		descriptor string
		hasDesc    bool
	}{
		{name: "descriptor and content", raw: "A:B", content: "B", descriptor: "A", hasDesc: true},
		{name: "bare content", raw: "B", content: "B"},
		{name: "empty", raw: ""},
		{name: "splits on first colon only", raw: "NAME:ROZ:1", content: "ROZ:1", descriptor: "NAME", hasDesc: true},
		{name: "null field", raw: "-", content: "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewField(tt.raw)
			if f.Content() != tt.content {
				t.Errorf("Content() = %q, want %q", f.Content(), tt.content)
			}
			if f.Descriptor() != tt.descriptor {
				t.Errorf("Descriptor() = %q, want %q", f.Descriptor(), tt.descriptor)
			}
			if f.HasDescriptor() != tt.hasDesc {
				t.Errorf("HasDescriptor() = %v, want %v", f.HasDescriptor(), tt.hasDesc)
			}
			if f.Raw() != tt.raw {
				t.Errorf("Raw() = %q, want %q", f.Raw(), tt.raw)
			}
		})
	}
}
