package llm

import "testing"

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `[{"a":1}]`, `[{"a":1}]`},
		{"plain fences", "```\n[1,2]\n```", "[1,2]"},
		{"json tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n[]\n```\n ", "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var out []struct {
		Premise string `json:"premise"`
	}
	text := "```json\n[{\"premise\": \"a\"}]\n```"
	if err := DecodeJSON(text, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Premise != "a" {
		t.Errorf("unexpected decode result: %+v", out)
	}
}

func TestDecodeJSON_Malformed(t *testing.T) {
	var out []any
	if err := DecodeJSON("this is not JSON at all", &out); err == nil {
		t.Error("expected error for malformed response")
	}
	if err := DecodeJSON("", &out); err == nil {
		t.Error("expected error for empty response")
	}
}
