package live

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Stream attaches a snapshot listener to q and forwards every change to
// send until ctx is done. A ready frame follows the first snapshot. The
// listener is stopped and send closed on return.
func Stream(ctx context.Context, q firestore.Query, decode Decoder, send chan<- []byte) {
	defer close(send)

	it := q.Snapshots(ctx)
	defer it.Stop()

	push := func(f Frame) bool {
		b, err := f.Encode()
		if err != nil {
			log.Printf("[live] encode frame: %v", err)
			return true
		}
		select {
		case send <- b:
			return true
		case <-ctx.Done():
			return false
		}
	}

	first := true
	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() == nil && status.Code(err) != codes.Canceled {
				log.Printf("[live] snapshot: %v", err)
				push(Frame{Type: FrameError, Error: "subscription ended"})
			}
			return
		}
		for _, ch := range snap.Changes {
			f, err := changeFrame(ch.Kind, ch.Doc, decode)
			if err != nil {
				log.Printf("[live] decode %s: %v", ch.Doc.Ref.Path, err)
				continue
			}
			if !push(f) {
				return
			}
		}
		if first {
			first = false
			if !push(Frame{Type: FrameReady}) {
				return
			}
		}
	}
}
