package settings

import "testing"

func TestMaskKey(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"ab", "**"},
		{"abcd", "****"},
		{"abcdefgh", "****efgh"},
		{"sk-live-0123456789", "**************6789"},
	}
	for _, tc := range cases {
		if got := maskKey(tc.in); got != tc.want {
			t.Errorf("maskKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidIntegrationKind(t *testing.T) {
	for _, kind := range []string{IntegrationSlack, IntegrationWebhook, IntegrationCalendar} {
		if !ValidIntegrationKind(kind) {
			t.Errorf("expected %q to be valid", kind)
		}
	}
	if ValidIntegrationKind("ftp") {
		t.Error("expected ftp to be invalid")
	}
}
