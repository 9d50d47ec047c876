package live

import (
	"encoding/json"

	"cloud.google.com/go/firestore"
)

const (
	FrameAdded    = "added"
	FrameModified = "modified"
	FrameRemoved  = "removed"
	FrameReady    = "ready"
	FrameError    = "error"
)

// Frame is one WebSocket text message.
type Frame struct {
	Type  string      `json:"type"`
	ID    string      `json:"id,omitempty"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

func (f Frame) Encode() ([]byte, error) { return json.Marshal(f) }

func kindName(k firestore.DocumentChangeKind) string {
	switch k {
	case firestore.DocumentAdded:
		return FrameAdded
	case firestore.DocumentRemoved:
		return FrameRemoved
	default:
		return FrameModified
	}
}

// Decoder turns a snapshot document into the payload clients receive.
type Decoder func(doc *firestore.DocumentSnapshot) (interface{}, error)

// changeFrame builds the frame for one document change. Removed documents
// carry no data.
func changeFrame(kind firestore.DocumentChangeKind, doc *firestore.DocumentSnapshot, decode Decoder) (Frame, error) {
	f := Frame{Type: kindName(kind), ID: doc.Ref.ID}
	if kind == firestore.DocumentRemoved {
		return f, nil
	}
	data, err := decode(doc)
	if err != nil {
		return Frame{}, err
	}
	f.Data = data
	return f, nil
}
