package nc

import "testing"

func TestTransliterate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ROUGH PASS", "ROUGH PASS"},
		{"Черновая обработка", "Chernovaya obrabotka"},
		{"Щека", "SHCHeka"},
		{"Ёмкость", "Emkost"},
		{"Fräsen über Kante", "Frasen uber Kante"},
		{"café", "cafe"},
		{"50°", "50?"},
	}
	for _, tt := range tests {
		if got := Transliterate(tt.in); got != tt.want {
			t.Errorf("Transliterate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
