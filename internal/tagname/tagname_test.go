package tagname

import "testing"

func TestName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"MyViewHolder1", "TYPE_MY_VIEW_HOLDER1"},
		{"A", "TYPE_A"},
		{"FooHolder", "TYPE_FOO_HOLDER"},
		{"BarHolder", "TYPE_BAR_HOLDER"},
		{"lower", "TYPELOWER"},
		{"HTTPRow", "TYPE_H_T_T_P_ROW"},
		{"Row_2", "TYPE_ROW_2"},
		{"Straße", "TYPE_STRASSE"},
		{"Émile", "TYPEÉMILE"},
		{"", "TYPE"},
	}
	for _, tt := range tests {
		if got := Name(tt.in); got != tt.want {
			t.Errorf("Name(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestNameIsStable(t *testing.T) {
	for i := 0; i < 3; i++ {
		if Name("MyViewHolder1") != Name("MyViewHolder1") {
			t.Fatal("expected repeated calls to agree")
		}
	}
}

func TestCollisions(t *testing.T) {
	got := Collisions([]string{"FooBar", "Other", "Foo_bar", "AB", "A_b"})
	if len(got) != 2 {
		t.Fatalf("expected two collisions, got %+v", got)
	}
	if got[0].Tag != "TYPE_FOO_BAR" || len(got[0].Names) != 2 || got[0].Names[1] != "Foo_bar" {
		t.Errorf("unexpected first collision %+v", got[0])
	}
	if got[1].Tag != "TYPE_A_B" {
		t.Errorf("unexpected second collision %+v", got[1])
	}
	if len(Collisions([]string{"FooHolder", "BarHolder"})) != 0 {
		t.Error("expected no collisions for distinct tags")
	}
}
