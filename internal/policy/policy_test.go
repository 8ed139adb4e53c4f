package policy

import (
	"testing"

	"github.com/pudaweed/clubman/internal/model"
)

func TestNew_CopiesInput(t *testing.T) {
	allowed := map[string]model.Role{
		"a@x.com": model.RolePlayer,
	}
	p, err := New(allowed)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// 呼び出し側でマップを書き換えてもPolicyには反映されない
	allowed["b@x.com"] = model.RoleAdmin

	if _, ok := p.ResolveRole("b@x.com"); ok {
		t.Error("ResolveRole(b@x.com) = ok, want not found (policy must be immutable)")
	}
}

func TestNew_RejectsInvalidRole(t *testing.T) {
	_, err := New(map[string]model.Role{"a@x.com": model.Role("coach")})
	if err == nil {
		t.Fatal("New() with invalid role should return error")
	}
}

func TestNew_RejectsEmptyEmail(t *testing.T) {
	_, err := New(map[string]model.Role{"": model.RolePlayer})
	if err == nil {
		t.Fatal("New() with empty email should return error")
	}
}

func TestResolveRole(t *testing.T) {
	p, err := New(map[string]model.Role{
		"capitan@club.cl": model.RoleBoth,
		"jugador@club.cl": model.RolePlayer,
		"tesorero@club.cl": model.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		wantRole model.Role
		wantOK   bool
	}{
		{"both role", "capitan@club.cl", model.RoleBoth, true},
		{"player role", "jugador@club.cl", model.RolePlayer, true},
		{"admin role", "tesorero@club.cl", model.RoleAdmin, true},
		{"unknown email", "extra@club.cl", "", false},
		{"empty email", "", "", false},
		// 照合は大文字小文字を区別する完全一致
		{"case differs", "Jugador@club.cl", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, ok := p.ResolveRole(tt.email)
			if ok != tt.wantOK {
				t.Fatalf("ResolveRole(%q) ok = %v, want %v", tt.email, ok, tt.wantOK)
			}
			if ok && role != tt.wantRole {
				t.Errorf("ResolveRole(%q) = %q, want %q", tt.email, role, tt.wantRole)
			}
		})
	}
}

func TestParse(t *testing.T) {
	p, err := Parse("capitan@club.cl:both, jugador@club.cl:player ,tesorero@club.cl:admin,")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.Len() != 3 {
		t.Errorf("Len() = %d, want 3", p.Len())
	}
	role, ok := p.ResolveRole("jugador@club.cl")
	if !ok || role != model.RolePlayer {
		t.Errorf("ResolveRole(jugador@club.cl) = %q, %v, want player, true", role, ok)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing role separator", "a@x.com"},
		{"invalid role", "a@x.com:coach"},
		{"duplicate email", "a@x.com:player,a@x.com:admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.input); err == nil {
				t.Errorf("Parse(%q) should return error", tt.input)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	p, err := Parse("")
	if err != nil {
		t.Fatalf("Parse(\"\") error = %v", err)
	}
	if p.Len() != 0 {
		t.Errorf("Len() = %d, want 0", p.Len())
	}
}
