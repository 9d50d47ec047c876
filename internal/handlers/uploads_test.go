package handlers

import (
	"strings"
	"testing"
)

func TestSafeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"사진 1.png", "사진_1.png"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\kim\report.pdf`, "report.pdf"},
		{".hidden", "hidden"},
		{"   ", "file"},
		{"a/b?c=d.txt", "b_c_d.txt"},
	}
	for _, tt := range tests {
		if got := SafeName(tt.in); got != tt.want {
			t.Errorf("SafeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := SafeName(strings.Repeat("가", 200)); len([]rune(got)) != maxNameLength {
		t.Errorf("long name kept %d runes", len([]rune(got)))
	}
}

func TestSignReqClean(t *testing.T) {
	tests := []struct {
		name    string
		in      signReq
		wantErr bool
		wantCT  string
	}{
		{name: "ok", in: signReq{FileName: "a.png", Size: 10, Scope: "chat"}, wantCT: "image/png"},
		{name: "explicit type", in: signReq{FileName: "a.bin", Size: 10, Scope: "dm", ContentType: "application/pdf"}, wantCT: "application/pdf"},
		{name: "unknown ext", in: signReq{FileName: "noext", Size: 10, Scope: "notices"}, wantCT: "application/octet-stream"},
		{name: "bad scope", in: signReq{FileName: "a.png", Size: 10, Scope: "avatars"}, wantErr: true},
		{name: "too large", in: signReq{FileName: "a.png", Size: MaxUploadBytes + 1, Scope: "chat"}, wantErr: true},
		{name: "zero size", in: signReq{FileName: "a.png", Scope: "chat"}, wantErr: true},
		{name: "no name", in: signReq{Size: 1, Scope: "chat"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			err := in.clean()
			if tt.wantErr != (err != nil) {
				t.Fatalf("clean() = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && in.ContentType != tt.wantCT {
				t.Errorf("contentType = %q, want %q", in.ContentType, tt.wantCT)
			}
		})
	}
}

func TestObjectPathOwnership(t *testing.T) {
	p := ObjectPath("meetings", "kakao:1", "id-1", "초대장.pdf")
	if p != "attachments/meetings/kakao:1/id-1-초대장.pdf" {
		t.Fatalf("ObjectPath = %q", p)
	}
	if scope, ok := ownedScope(p, "kakao:1"); !ok || scope != "meetings" {
		t.Errorf("ownedScope = %q %v", scope, ok)
	}
	if _, ok := ownedScope(p, "someone-else"); ok {
		t.Error("path should not belong to another user")
	}
	for _, bad := range []string{
		"attachments/meetings/kakao:1",
		"attachments/avatars/kakao:1/x",
		"other/meetings/kakao:1/x",
		"attachments/meetings/kakao:1/",
	} {
		if _, ok := ownedScope(bad, "kakao:1"); ok {
			t.Errorf("%q should be rejected", bad)
		}
	}
}

func TestDownloadURL(t *testing.T) {
	got := DownloadURL("town.appspot.com", "attachments/chat/u1/x-a b.png", "tok")
	want := "https://firebasestorage.googleapis.com/v0/b/town.appspot.com/o/attachments%2Fchat%2Fu1%2Fx-a%20b.png?alt=media&token=tok"
	if got != want {
		t.Errorf("DownloadURL = %q\nwant %q", got, want)
	}
}
