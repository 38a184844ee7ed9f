package utils

import (
	"testing"
	"unicode/utf8"
)

func TestParseAIJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]interface{}
		wantErr bool
	}{
		{
			name:  "Pure JSON",
			input: `{"city": "Paris", "wants_weather": true}`,
			want: map[string]interface{}{
				"city":          "Paris",
				"wants_weather": true,
			},
			wantErr: false,
		},
		{
			name: "JSON in markdown code block",
			input: "```json\n" +
				`{"city": "Tokyo", "wants_places": false}` + "\n```",
			want: map[string]interface{}{
				"city":         "Tokyo",
				"wants_places": false,
			},
			wantErr: false,
		},
		{
			name:  "JSON in bare code block",
			input: "```\n{\"city\": \"Rome\"}\n```",
			want: map[string]interface{}{
				"city": "Rome",
			},
			wantErr: false,
		},
		{
			name:  "Inline fence on one line",
			input: "```json {\"city\": \"Oslo\"} ```",
			want: map[string]interface{}{
				"city": "Oslo",
			},
			wantErr: false,
		},
		{
			name:    "JSON with surrounding text",
			input:   `Here is the result: {"city": "Lima"}`,
			want:    nil,
			wantErr: true,
		},
		{
			name:    "Trailing value",
			input:   `{"city": "Lima"} {"city": "Quito"}`,
			want:    nil,
			wantErr: true,
		},
		{
			name:    "Empty string",
			input:   "",
			want:    nil,
			wantErr: true,
		},
		{
			name:    "Only a fence",
			input:   "```json\n```",
			want:    nil,
			wantErr: true,
		},
		{
			name:    "Invalid JSON",
			input:   "not json at all",
			want:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]interface{}
			err := ParseAIJSON(tt.input, &got)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseAIJSON() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				if len(got) != len(tt.want) {
					t.Errorf("ParseAIJSON() got = %v, want %v", got, tt.want)
				}
				for k, v := range tt.want {
					if got[k] != v {
						t.Errorf("ParseAIJSON()[%q] = %v, want %v", k, got[k], v)
					}
				}
			}
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "JSON code block with json tag",
			input: "```json\n{\"test\": true}\n```",
			want:  `{"test": true}`,
		},
		{
			name:  "JSON code block without tag",
			input: "```\n{\"test\": true}\n```",
			want:  `{"test": true}`,
		},
		{
			name:  "No code block",
			input: `  {"test": true}  `,
			want:  `{"test": true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripCodeFence(tt.input)
			if got != tt.want {
				t.Errorf("StripCodeFence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseAIJSON_TypeMismatch(t *testing.T) {
	var target struct {
		WantsWeather *bool `json:"wants_weather"`
	}
	if err := ParseAIJSON(`{"wants_weather": "yes"}`, &target); err == nil {
		t.Fatal("expected error for string in bool field")
	}
}

func TestCompactJSON(t *testing.T) {
	if got := CompactJSON("{\n  \"a\": 1\n}"); got != `{"a":1}` {
		t.Errorf("CompactJSON() = %q", got)
	}
	if got := CompactJSON("nope"); got != "nope" {
		t.Errorf("CompactJSON() should return invalid input unchanged, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short", "Paris", 10, "Paris"},
		{"exact", "Paris", 5, "Paris"},
		{"ascii cut", "Lisbon", 3, "Lis..."},
		{"multibyte cut", "Sacré-Cœur", 5, "Sacré..."},
		{"cjk cut", "東京タワー", 2, "東京..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("Truncate() = %q, want %q", got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("Truncate() returned invalid UTF-8: %q", got)
			}
		})
	}
}
