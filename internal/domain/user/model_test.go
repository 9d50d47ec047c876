package user

import (
	"errors"
	"testing"
)

func strp(s string) *string { return &s }

func TestUpdateProfileInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      UpdateProfileInput
		wantErr bool
	}{
		{name: "nickname ok", in: UpdateProfileInput{Nickname: strp("  동네  주민 ")}},
		{name: "empty display name", in: UpdateProfileInput{DisplayName: strp("   ")}, wantErr: true},
		{name: "long nickname", in: UpdateProfileInput{Nickname: strp("가나다라마바사아자차카타파하가나다라마바사")}, wantErr: true},
		{name: "phone ok", in: UpdateProfileInput{Phone: strp("010-1234-5678")}},
		{name: "phone cleared", in: UpdateProfileInput{Phone: strp("")}},
		{name: "phone letters", in: UpdateProfileInput{Phone: strp("call me")}, wantErr: true},
		{name: "photo http", in: UpdateProfileInput{PhotoURL: strp("http://x/y.png")}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			in.Trim()
			err := in.Validate()
			if tt.wantErr && !errors.Is(err, ErrBadRequest) {
				t.Fatalf("err = %v, want ErrBadRequest", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestUpdateProfileInputTrim(t *testing.T) {
	in := UpdateProfileInput{Nickname: strp("  동네   주민 ")}
	in.Trim()
	if *in.Nickname != "동네 주민" {
		t.Errorf("nickname = %q", *in.Nickname)
	}
	if in.Empty() {
		t.Error("input with nickname is not empty")
	}
	if !(UpdateProfileInput{}).Empty() {
		t.Error("zero input should be empty")
	}
}

func TestProfileLabel(t *testing.T) {
	tests := []struct {
		p    Profile
		want string
	}{
		{Profile{UID: "u1", DisplayName: "김철수", Nickname: "철수"}, "철수"},
		{Profile{UID: "u1", DisplayName: "김철수"}, "김철수"},
		{Profile{UID: "u1"}, "u1"},
	}
	for _, tt := range tests {
		if got := tt.p.Label(); got != tt.want {
			t.Errorf("Label() = %q, want %q", got, tt.want)
		}
	}
}

func TestPublicHidesPrivateFields(t *testing.T) {
	p := Profile{UID: "u1", DisplayName: "Kim", Phone: "010-0000-0000", PushToken: "tok", Email: "k@example.com"}
	pub := p.Public()
	if pub.UID != "u1" || pub.DisplayName != "Kim" {
		t.Errorf("public = %+v", pub)
	}
}
