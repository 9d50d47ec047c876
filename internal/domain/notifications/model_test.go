package notifications

import (
	"errors"
	"reflect"
	"testing"

	"firebase.google.com/go/v4/messaging"
)

func TestRecipients(t *testing.T) {
	got := recipients([]string{"a", " b ", "", "a", "sender", "c"}, "sender")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("recipients = %v, want %v", got, want)
	}
}

func TestChunk(t *testing.T) {
	tests := []struct {
		in   []string
		size int
		want int
	}{
		{nil, 3, 0},
		{[]string{"a", "b"}, 3, 1},
		{[]string{"a", "b", "c"}, 3, 1},
		{[]string{"a", "b", "c", "d"}, 3, 2},
	}
	for _, tt := range tests {
		if got := len(chunk(tt.in, tt.size)); got != tt.want {
			t.Errorf("chunk(%v, %d) = %d parts, want %d", tt.in, tt.size, got, tt.want)
		}
	}
}

func TestBuildMulticast(t *testing.T) {
	m := buildMulticast([]string{"t1", "t2"}, Message{
		Title: "새 메시지",
		Body:  "안녕하세요",
		Type:  TypeChat,
		Data:  map[string]string{"roomId": "r1"},
	})
	if len(m.Tokens) != 2 {
		t.Fatalf("tokens = %v", m.Tokens)
	}
	if m.Notification.Title != "새 메시지" {
		t.Errorf("title = %q", m.Notification.Title)
	}
	if m.Data["type"] != TypeChat || m.Data["roomId"] != "r1" {
		t.Errorf("data = %v", m.Data)
	}
}

func TestUnregisteredTokensSkipsSuccessAndOtherErrors(t *testing.T) {
	resp := &messaging.BatchResponse{
		Responses: []*messaging.SendResponse{
			{Success: true, MessageID: "m1"},
			{Success: false, Error: errors.New("transient")},
		},
	}
	if got := unregisteredTokens([]string{"t1", "t2"}, resp); len(got) != 0 {
		t.Errorf("unregisteredTokens = %v, want none", got)
	}
	if got := unregisteredTokens([]string{"t1"}, nil); got != nil {
		t.Errorf("nil response should give nil, got %v", got)
	}
}
