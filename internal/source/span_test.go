package source

import "testing"

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 5, End: 12}
	if got := a.Cover(b); got != (Span{File: 1, Start: 5, End: 20}) {
		t.Errorf("unexpected cover %v", got)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Errorf("expected spans from different files to stay apart, got %v", got)
	}
}

func TestSpanOf(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		expected   Span
	}{
		{"regular", 3, 9, Span{File: 4, Start: 3, End: 9}},
		{"negative start", -1, 9, Span{File: 4}},
		{"end before start", 9, 3, Span{File: 4, Start: 9, End: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpanOf(4, tt.start, tt.end); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
	if !SpanOf(0, 5, 5).Empty() {
		t.Error("expected empty span")
	}
}
