package bufpool

import "testing"

func TestAcquireWriteShareRelease(t *testing.T) {
	p := New()

	w := p.Acquire()
	buf := w.Write()
	*buf = append(*buf, "hello"...)

	shared, err := w.Share()
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	if string(shared.Bytes()) != "hello" {
		t.Fatalf("Bytes() = %q, want %q", shared.Bytes(), "hello")
	}

	shared.Release()
}

func TestShareTwiceErrors(t *testing.T) {
	p := New()
	w := p.Acquire()
	if _, err := w.Share(); err != nil {
		t.Fatalf("first Share: %v", err)
	}
	if _, err := w.Share(); err != ErrAlreadyShared {
		t.Fatalf("second Share err = %v, want ErrAlreadyShared", err)
	}
}

func TestRetainKeepsBufferAliveUntilAllReleased(t *testing.T) {
	p := New()
	w := p.Acquire()
	*w.Write() = append(*w.Write(), "x"...)
	shared, _ := w.Share()

	second := shared.Retain()
	shared.Release()
	if string(second.Bytes()) != "x" {
		t.Fatalf("buffer released early: got %q", second.Bytes())
	}
	second.Release()
}

func TestReleaseResetsLengthPreservesCapacity(t *testing.T) {
	p := New()
	w := p.Acquire()
	buf := w.Write()
	*buf = append(*buf, make([]byte, 100)...)
	cap1 := cap(*buf)
	shared, _ := w.Share()
	shared.Release()

	w2 := p.Acquire()
	if len(*w2.Write()) != 0 {
		t.Fatalf("reused buffer length = %d, want 0", len(*w2.Write()))
	}
	if cap(*w2.Write()) < cap1 {
		t.Fatalf("reused buffer capacity shrank: got %d want >= %d", cap(*w2.Write()), cap1)
	}
}
