package orders

import "testing"

func TestExtractOrderNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"#123456", "123456"},
		{"order 83920 please", "83920"},
		{"my order #1234567 never arrived", "1234567"},
		{"status of 12345", "12345"},
		{"too short 1234", ""},
		{"tracking number 123456789", ""},
		{"call me at 5551234567", ""},
		{"sku a1234567 maybe", ""},
		{"no digits here", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ExtractOrderNumber(tt.input); got != tt.want {
			t.Errorf("ExtractOrderNumber(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
