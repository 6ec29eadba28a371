package fingerprint

import (
	"testing"
	"time"
)

func TestSanitizeFolder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/home/user/data", "home_user_data"},
		{"/home/user/data/", "home_user_data"},
		{`C:\Users\me\docs`, "C:_Users_me_docs"},
		{"relative", "relative"},
		{"/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFolder(tt.input); got != tt.expected {
				t.Errorf("SanitizeFolder(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSnapshotFilename_RoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
	name := SnapshotFilename("/srv/my_share", ts)

	if name != "srv_my_share_2024-03-09_14-05-07.txt" {
		t.Fatalf("SnapshotFilename() = %q", name)
	}

	prefix, got, err := ParseSnapshotName(name)
	if err != nil {
		t.Fatalf("ParseSnapshotName() error = %v", err)
	}
	if prefix != "srv_my_share" {
		t.Errorf("prefix = %q, want srv_my_share", prefix)
	}
	if !got.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", got, ts)
	}
}

func TestParseSnapshotName_Invalid(t *testing.T) {
	for _, name := range []string{
		"srv_2024-03-09_14-05-07.json",
		"2024-03-09.txt",
		"srv_yesterday_noon.txt",
	} {
		if _, _, err := ParseSnapshotName(name); err == nil {
			t.Errorf("ParseSnapshotName(%q) should fail", name)
		}
	}
}
