package sanitizer

import "testing"

func TestCollapseSpaces(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic trim",
			input: "  hello  ",
			want:  "hello",
		},
		{
			name:  "multiple spaces",
			input: "hello    world",
			want:  "hello world",
		},
		{
			name:  "tabs and newlines",
			input: "hello\t\nworld",
			want:  "hello world",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
		{
			name:  "non breaking space",
			input: "Swift\u00a0 Dzire",
			want:  "Swift Dzire",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CollapseSpaces(tt.input)
			if got != tt.want {
				t.Errorf("CollapseSpaces(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  Swift   Dzire \t VXi "); got != "Swift Dzire VXi" {
		t.Errorf("NormalizeName = %q", got)
	}
}

func TestNormalizeLocation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercase city", input: "new delhi", want: "New Delhi"},
		{name: "shouting", input: "TAMIL NADU", want: "Tamil Nadu"},
		{name: "extra whitespace", input: "  navi \t mumbai ", want: "Navi Mumbai"},
		{name: "already normalized", input: "Pune", want: "Pune"},
		{name: "non ascii", input: "évry", want: "Évry"},
		{name: "empty", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeLocation(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeLocation(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeLocation(got); again != got {
				t.Errorf("NormalizeLocation not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestPaymentFieldNormalization(t *testing.T) {
	tests := []struct {
		name string
		fn   Strategy
		in   string
		want string
	}{
		{name: "license trimmed and upper", fn: NormalizeLicense, in: " dl0420110149 ", want: "DL0420110149"},
		{name: "customer id trimmed", fn: NormalizeCustomerID, in: " cust-42\n", want: "cust-42"},
		{name: "card groups with spaces", fn: NormalizeCardNumber, in: "4111 1111 1111 1111", want: "4111111111111111"},
		{name: "card groups with dashes", fn: NormalizeCardNumber, in: " 4111-1111-1111-1111 ", want: "4111111111111111"},
		{name: "upi lower", fn: NormalizeUPIID, in: " Rahul@OKAXIS ", want: "rahul@okaxis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
