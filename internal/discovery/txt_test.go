package discovery

import "testing"

func TestParseTXT(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{
			name: "quoted key light metadata",
			raw:  `"pv=1.0" "md=Elgato Key Light 20GAK9901" "id=FF:6A:9D:30:B1:6E" "dt=53" "mf=Elgato"`,
			want: map[string]string{
				"pv": "1.0",
				"md": "Elgato Key Light 20GAK9901",
				"id": "FF:6A:9D:30:B1:6E",
				"dt": "53",
				"mf": "Elgato",
			},
		},
		{
			name: "bare tokens",
			raw:  "pv=1.0 md=KeyLight",
			want: map[string]string{"pv": "1.0", "md": "KeyLight"},
		},
		{
			name: "token without equals is skipped",
			raw:  `"pv=1.0" "flag" "md=KeyLight"`,
			want: map[string]string{"pv": "1.0", "md": "KeyLight"},
		},
		{
			name: "unmatched quote drops the rest, keeps earlier tokens",
			raw:  `"pv=1.0" "md=Elgato Key`,
			want: map[string]string{"pv": "1.0"},
		},
		{
			name: "unknown keys preserved verbatim",
			raw:  `"x-custom=whatever" "pv=1.0"`,
			want: map[string]string{"x-custom": "whatever", "pv": "1.0"},
		},
		{
			name: "empty value kept",
			raw:  `"md="`,
			want: map[string]string{"md": ""},
		},
		{
			name: "value containing equals",
			raw:  `"note=a=b"`,
			want: map[string]string{"note": "a=b"},
		},
		{
			name: "empty string",
			raw:  "",
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTXT(tt.raw)

			if len(got) != len(tt.want) {
				t.Errorf("ParseTXT() returned %d entries, want %d: %v", len(got), len(tt.want), got)
			}
			for key, want := range tt.want {
				if got[key] != want {
					t.Errorf("ParseTXT()[%q] = %q, want %q", key, got[key], want)
				}
			}
		})
	}
}

func TestServiceRecordTXT(t *testing.T) {
	record := &ServiceRecord{
		Text: []string{`"pv=1.0" "md=Elgato Key Light 20GAK9901"`, "id=FF:6A:9D:30:B1:6E"},
	}

	meta := record.TXT()

	if meta["md"] != "Elgato Key Light 20GAK9901" {
		t.Errorf(`TXT()["md"] = %q, want "Elgato Key Light 20GAK9901"`, meta["md"])
	}
	if meta["id"] != "FF:6A:9D:30:B1:6E" {
		t.Errorf(`TXT()["id"] = %q, want "FF:6A:9D:30:B1:6E"`, meta["id"])
	}
}
