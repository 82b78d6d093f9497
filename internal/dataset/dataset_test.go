package dataset

import "testing"

func TestEncode(t *testing.T) {
	tests := []struct {
		name    string
		samples []Sample
		want    string
	}{
		{
			name: "two samples",
			samples: []Sample{
				{Elapsed: 0.0, Lead: 500.0, Trail: 510.0},
				{Elapsed: 0.0125, Lead: 520.0, Trail: 530.0},
			},
			want: "(0.0000,0.0125);(500.0,520.0);(0.0000,0.0125);(510.0,530.0)",
		},
		{
			name:    "single sample has no separators",
			samples: []Sample{{Elapsed: 1.5, Lead: 1234.56, Trail: 987.04}},
			want:    "(1.5000);(1234.6);(1.5000);(987.0)",
		},
		{
			name:    "empty buffer",
			samples: nil,
			want:    "();();();()",
		},
		{
			name:    "negative weight after tare drift",
			samples: []Sample{{Elapsed: 0.025, Lead: -3.26, Trail: 0}},
			want:    "(0.0250);(-3.3);(0.0250);(0.0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(Encode(tt.samples)); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuffer(t *testing.T) {
	var b Buffer
	b.Append(Sample{Elapsed: 0, Lead: 1, Trail: 2})
	b.Append(Sample{Elapsed: 0.0125, Lead: 3, Trail: 4})

	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", b.Len())
	}

	snap := b.Samples()
	snap[0].Lead = 99
	if b.Samples()[0].Lead != 1 {
		t.Error("Samples() should return a copy")
	}

	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", b.Len())
	}
	if got := string(Encode(b.Samples())); got != "();();();()" {
		t.Errorf("Encode(after reset) = %q", got)
	}
}
