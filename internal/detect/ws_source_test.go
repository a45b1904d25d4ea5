package detect

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/normanking/captionmesh/internal/landmark"
)

func newTestSource(handler FrameHandler) *StreamSource {
	s := NewStreamSource("http://localhost:0", 4, 0, nil, zerolog.Nop())
	s.handler = handler
	return s
}

func TestHandleMessage_FrameDelivery(t *testing.T) {
	var got *landmark.Frame
	s := newTestSource(func(f *landmark.Frame) { got = f })

	s.handleMessage([]byte(`{"type":"frame","landmarks":[[{"x":0.1,"y":0.2,"z":0.3}]]}`))

	if got == nil {
		t.Fatal("expected frame delivery")
	}
	if len(got.Faces) != 1 || got.Faces[0][0].X() != 0.1 {
		t.Errorf("unexpected frame contents: %+v", got)
	}
}

func TestHandleMessage_ZeroFaces(t *testing.T) {
	var got *landmark.Frame
	s := newTestSource(func(f *landmark.Frame) { got = f })

	s.handleMessage([]byte(`{"type":"frame","landmarks":[]}`))

	if got == nil {
		t.Fatal("expected delivery of an empty frame")
	}
	if len(got.Faces) != 0 {
		t.Errorf("expected zero faces, got %d", len(got.Faces))
	}
}

func TestHandleMessage_MaxFacesApplied(t *testing.T) {
	var got *landmark.Frame
	s := NewStreamSource("http://localhost:0", 1, 0, nil, zerolog.Nop())
	s.handler = func(f *landmark.Frame) { got = f }

	s.handleMessage([]byte(`{"type":"frame","landmarks":[[[0.1,0.1,0]],[[0.2,0.2,0]]]}`))

	if got == nil {
		t.Fatal("expected frame delivery")
	}
	if len(got.Faces) != 1 {
		t.Errorf("expected cap at 1 face, got %d", len(got.Faces))
	}
}

func TestHandleMessage_IgnoresMalformedAndUnknown(t *testing.T) {
	delivered := false
	s := newTestSource(func(*landmark.Frame) { delivered = true })

	s.handleMessage([]byte(`not json`))
	s.handleMessage([]byte(`{"type":"frame","landmarks":{"bad":"shape"}}`))
	s.handleMessage([]byte(`{"type":"mystery"}`))
	s.handleMessage([]byte(`{"type":"error","message":"detector down"}`))

	if delivered {
		t.Error("expected no frame delivery for malformed or non-frame messages")
	}
}
