package gatesig

import "testing"

func TestVerify(t *testing.T) {
	body := []byte(`{"parkingLotId":"65f000000000000000000001"}`)
	secret := "gate-secret"

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"prefixed", HeaderValue(body, secret), true},
		{"bare hex", Sign(body, secret), true},
		{"upper case hex", "sha256=" + upper(Sign(body, secret)), true},
		{"other secret", HeaderValue(body, "other"), false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Verify(body, Parse(tt.header), secret); got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
