package tempo

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Config
		ok      bool
	}{
		{"simple", "3/5", Config{Back: 3, Down: 5}, true},
		{"zeros", "0/0", Config{}, true},
		{"surrounding spaces", " 21 / 7 ", Config{Back: 21, Down: 7}, true},
		{"no delimiter", "abc", Config{}, false},
		{"empty", "", Config{}, false},
		{"malformed back", "x/4", Config{Back: 0, Down: 4}, true},
		{"malformed down", "4/", Config{Back: 4, Down: 0}, true},
		{"extra slash", "1/2/3", Config{Back: 1, Down: 2}, true},
		{"trailing text", "12abc/3", Config{Back: 12, Down: 3}, true},
		{"trailing word", "3/5 frames", Config{Back: 3, Down: 5}, true},
		{"explicit plus", "+4/+2", Config{Back: 4, Down: 2}, true},
		{"sign without digits", "-/7", Config{Back: 0, Down: 7}, true},
		{"digits after text", "a1/2", Config{Back: 0, Down: 2}, true},
		{"overflow clamps", "99999999999999999999/1", Config{Back: maxField, Down: 1}, true},
		{"negative", "-2/3", Config{Back: -2, Down: 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse([]byte(tt.payload))
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.payload, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.payload, got, tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	c := Config{Back: 3, Down: 5}

	if c.Apply([]byte("abc")) {
		t.Error("Apply(abc) should be rejected")
	}
	if c != (Config{Back: 3, Down: 5}) {
		t.Errorf("rejected write changed config to %+v", c)
	}

	if !c.Apply([]byte("21/7")) {
		t.Fatal("Apply(21/7) should be accepted")
	}
	if c != (Config{Back: 21, Down: 7}) {
		t.Errorf("config = %+v, want 21/7", c)
	}
}

func TestDelays(t *testing.T) {
	frame := 33 * time.Millisecond

	c := Config{Back: 2, Down: 3}
	if got := c.BackDelay(frame); got != 66*time.Millisecond {
		t.Errorf("BackDelay = %v, want 66ms", got)
	}
	if got := c.DownDelay(frame); got != 99*time.Millisecond {
		t.Errorf("DownDelay = %v, want 99ms", got)
	}

	neg := Config{Back: -4, Down: 1}
	if got := neg.BackDelay(frame); got != 0 {
		t.Errorf("negative BackDelay = %v, want 0", got)
	}
}

func TestString(t *testing.T) {
	if got := (Config{Back: 21, Down: 7}).String(); got != "21/7" {
		t.Errorf("String() = %q, want 21/7", got)
	}
}
