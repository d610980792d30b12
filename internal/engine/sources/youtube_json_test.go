package sources

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", `{"a":1};rest`, `{"a":1}`},
		{"nested", `{"a":{"b":{}}} trailing`, `{"a":{"b":{}}}`},
		{"brace in string", `{"a":"}{"}x`, `{"a":"}{"}`},
		{"escaped quote", `{"a":"say \"}\""};`, `{"a":"say \"}\""}`},
		{"escaped backslash before quote", `{"a":"c:\\"};`, `{"a":"c:\\"}`},
		{"not object", `[1,2]`, ""},
		{"unterminated", `{"a":1`, ""},
		{"empty", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(extractJSON([]byte(tt.in))); got != tt.want {
				t.Errorf("extractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFindJSONBlob(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{
			name: "var marker",
			page: `<script>var ytInitialData = {"x":1};</script>`,
			want: `{"x":1}`,
		},
		{
			name: "window marker",
			page: `<script>window["ytInitialData"] = {"x":2};</script>`,
			want: `{"x":2}`,
		},
		{
			name: "bare marker",
			page: `<script>ytInitialData = {"x":3};</script>`,
			want: `{"x":3}`,
		},
		{
			name: "first occurrence invalid",
			page: `ytInitialData = {bad json}; ytInitialData = {"x":4};`,
			want: `{"x":4}`,
		},
		{
			name: "missing",
			page: `<html><body>consent</body></html>`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(findJSONBlob([]byte(tt.page), ytInitialDataMarkers))
			if got != tt.want {
				t.Errorf("findJSONBlob() = %q, want %q", got, tt.want)
			}
		})
	}
}
