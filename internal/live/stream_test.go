package live

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/firestore"

	"neighborhood/backend/internal/testutil"
)

func nextFrame(t *testing.T, send <-chan []byte) Frame {
	t.Helper()
	select {
	case b, ok := <-send:
		if !ok {
			t.Fatal("stream closed early")
		}
		var f Frame
		if err := json.Unmarshal(b, &f); err != nil {
			t.Fatalf("bad frame %s: %v", b, err)
		}
		return f
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
	return Frame{}
}

func TestStreamInitialSnapshotThenChanges(t *testing.T) {
	fs := testutil.Firestore(t)
	col := fs.Collection("streamItems")
	bg := context.Background()
	if _, err := col.Doc("a").Set(bg, map[string]interface{}{"text": "첫 글"}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(bg)
	defer cancel()
	send := make(chan []byte, 8)
	decode := func(doc *firestore.DocumentSnapshot) (interface{}, error) { return doc.Data(), nil }
	go Stream(ctx, col.Query, decode, send)

	if f := nextFrame(t, send); f.Type != FrameAdded || f.ID != "a" {
		t.Fatalf("first frame = %+v, want added a", f)
	}
	if f := nextFrame(t, send); f.Type != FrameReady {
		t.Fatalf("second frame = %+v, want ready", f)
	}

	if _, err := col.Doc("b").Set(bg, map[string]interface{}{"text": "두번째"}); err != nil {
		t.Fatal(err)
	}
	f := nextFrame(t, send)
	if f.Type != FrameAdded || f.ID != "b" {
		t.Fatalf("frame = %+v, want added b", f)
	}
	if data, _ := f.Data.(map[string]interface{}); data["text"] != "두번째" {
		t.Errorf("data = %v", f.Data)
	}

	if _, err := col.Doc("a").Delete(bg); err != nil {
		t.Fatal(err)
	}
	if f := nextFrame(t, send); f.Type != FrameRemoved || f.ID != "a" || f.Data != nil {
		t.Fatalf("frame = %+v, want removed a without data", f)
	}

	cancel()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case _, ok := <-send:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("send was not closed after cancel")
		}
	}
}
