package util

import (
	"errors"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "report.pdf", want: "report.pdf"},
		{name: "spaces", in: "Annual  Report 2024.pdf", want: "Annual_Report_2024.pdf"},
		{name: "windows path", in: `C:\Users\me\notes.txt`, want: "notes.txt"},
		{name: "unix path", in: "../../etc/passwd", want: "passwd"},
		{name: "unsafe runes", in: "a<b>c?.docx", want: "abc.docx"},
		{name: "dots only", in: "..", wantErr: true},
		{name: "empty", in: "   ", wantErr: true},
		{name: "nothing usable", in: "???", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeFileName(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFileName) {
					t.Fatalf("expected ErrInvalidFileName, got %q, %v", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
