package slug

import "testing"

func TestMake(t *testing.T) {
	tests := map[string]string{
		"Gaming Laptops":         "gaming-laptops",
		"  Café  Crème ":         "cafe-creme",
		"USB-C / Thunderbolt 4":  "usb-c-thunderbolt-4",
		"Видеокарты":             "видеокарты",
		"!!!":                    "",
		"Monitor 27\" (IPS)":     "monitor-27-ips",
	}

	for in, want := range tests {
		if got := Make(in); got != want {
			t.Errorf("Make(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWithSuffix(t *testing.T) {
	if got := WithSuffix("mouse", "X7k"); got != "mouse-x7k" {
		t.Fatalf("got %q", got)
	}
	if got := WithSuffix("", "X7k"); got != "x7k" {
		t.Fatalf("got %q", got)
	}
}
