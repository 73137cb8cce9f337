package raw

import "testing"

func TestConf(t *testing.T) {
	t.Setenv("STRIDEKIT_NAME", " stridekit ")
	t.Setenv("LOG_CALLER", "Yes")
	t.Setenv("LOG_JSON", "nope")
	t.Setenv("LOG_SAMPLE_EVERY", "10")
	t.Setenv("LOG_BAD_INT", "-3")

	log := New().Prefix("LOG_")
	if got := log.Key("LEVEL"); got != "LOG_LEVEL" {
		t.Fatalf("Key = %q", got)
	}
	if got := New().Get("STRIDEKIT_NAME", "x"); got != "stridekit" {
		t.Fatalf("Get trims, got %q", got)
	}
	if got := log.Get("MISSING", "def"); got != "def" {
		t.Fatalf("Get default, got %q", got)
	}
	if _, ok := log.Lookup("MISSING"); ok {
		t.Fatal("Lookup of an unset key reported ok")
	}

	if !log.GetBool("CALLER", false) || log.GetBool("JSON", true) || !log.GetBool("MISSING", true) {
		t.Fatal("GetBool truthiness")
	}
	if log.GetInt("SAMPLE_EVERY", 0) != 10 || log.GetInt("BAD_INT", 7) != 7 || log.GetInt("MISSING", 3) != 3 {
		t.Fatal("GetInt parsing")
	}
}
