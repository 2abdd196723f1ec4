package models

import "testing"

func TestSession(t *testing.T) {
	tc := []struct {
		name    string
		session *Session
		want    bool
	}{
		{name: "nil", session: nil, want: false},
		{name: "missing token", session: &Session{User: AuthUser{UID: "1"}}, want: false},
		{name: "blank uid", session: &Session{User: AuthUser{UID: "  "}, Token: "t"}, want: false},
		{name: "valid", session: &Session{User: AuthUser{UID: "1"}, Token: "t"}, want: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("WithVIP copies", func(t *testing.T) {
		s := Session{User: AuthUser{UID: "1"}, Token: "t"}
		vip := s.WithVIP()
		if !vip.User.IsVIP || s.User.IsVIP {
			t.Errorf("expected copy with VIP set and original untouched")
		}
	})

	t.Run("DisplayName", func(t *testing.T) {
		if got := (AuthUser{UID: "9", Email: "a@b.c"}).DisplayName(); got != "a@b.c" {
			t.Errorf("expected email fallback, got %q", got)
		}
		if got := (AuthUser{UID: "9"}).DisplayName(); got != "9" {
			t.Errorf("expected uid fallback, got %q", got)
		}
	})
}

func TestNewPlaylistValidate(t *testing.T) {
	tc := []struct {
		name    string
		input   NewPlaylist
		wantVis string
		wantErr bool
	}{
		{name: "defaults visibility", input: NewPlaylist{Name: " Road trip "}, wantVis: VisibilityPublic},
		{name: "normalizes case", input: NewPlaylist{Name: "x", Visibility: "Private"}, wantVis: VisibilityPrivate},
		{name: "missing name", input: NewPlaylist{Name: "  "}, wantErr: true},
		{name: "bad visibility", input: NewPlaylist{Name: "x", Visibility: "secret"}, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.input
			err := in.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && in.Visibility != tt.wantVis {
				t.Errorf("visibility = %q, want %q", in.Visibility, tt.wantVis)
			}
		})
	}
}

func TestProfileUpdate(t *testing.T) {
	if err := (ProfileUpdate{}).Validate(); err == nil {
		t.Error("expected error for empty update")
	}

	age := -1
	if err := (ProfileUpdate{Age: &age}).Validate(); err == nil {
		t.Error("expected error for negative age")
	}

	if err := (ProfileUpdate{Hobbies: []string{}}).Validate(); err != nil {
		t.Errorf("clearing hobbies should be a valid update, got %v", err)
	}
}

func TestRankingYearWeek(t *testing.T) {
	r := Ranking{YearWeek: 202447}
	if r.Year() != 2024 || r.Week() != 47 {
		t.Errorf("expected 2024 week 47, got %d week %d", r.Year(), r.Week())
	}
}

func TestSearchPage(t *testing.T) {
	p := EmptySearchPage(1, 20)
	if p.Items == nil || len(p.Items) != 0 {
		t.Error("expected non-nil empty items")
	}
	if p.HasPrev() {
		t.Error("first page has no previous page")
	}
	if !(SearchPage{Page: 2}).HasPrev() {
		t.Error("second page has a previous page")
	}
}
