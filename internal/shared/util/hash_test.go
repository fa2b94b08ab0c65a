package util

import (
	"io"
	"strings"
	"testing"
)

func TestFileHashFromStartAndRewinds(t *testing.T) {
	r := strings.NewReader("hello world")
	// Move the cursor first; the hash must still cover the whole content.
	if _, err := r.Seek(6, io.SeekStart); err != nil {
		t.Fatalf("seek: %v", err)
	}

	got, err := FileHash(r)
	if err != nil {
		t.Fatalf("FileHash: %v", err)
	}
	const want = "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"
	if got != want {
		t.Fatalf("FileHash = %s, want %s", got, want)
	}

	rest, _ := io.ReadAll(r)
	if string(rest) != "hello world" {
		t.Fatalf("expected reader rewound to start, read %q", rest)
	}
}

func TestFileHashEmpty(t *testing.T) {
	got, err := FileHash(strings.NewReader(""))
	if err != nil {
		t.Fatalf("FileHash: %v", err)
	}
	if got != "da39a3ee5e6b4b0d3255bfef95601890afd80709" {
		t.Fatalf("unexpected empty hash %s", got)
	}
}
