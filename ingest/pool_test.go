package ingest

import "testing"

func TestClassFor(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{1, 0},
		{64, 0},
		{65, 1},
		{128, 1},
		{129, 2},
		{1 << 20, classCount - 1},
		{1<<20 + 1, -1},
	}
	for _, tt := range tests {
		if got := classFor(tt.n); got != tt.want {
			t.Errorf("classFor(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestBufferPool_RentReturn(t *testing.T) {
	p := NewBufferPool()

	buf := p.Rent(100)
	if len(buf) != 100 {
		t.Errorf("len = %d, want 100", len(buf))
	}
	if cap(buf) != 128 {
		t.Errorf("cap = %d, want 128", cap(buf))
	}
	p.Return(buf)

	big := p.Rent(2 << 20)
	if len(big) != 2<<20 {
		t.Errorf("oversized len = %d", len(big))
	}
	p.Return(big)

	st := p.Stats()
	if st.Rented != 2 || st.Returned != 2 || st.Outstanding() != 0 {
		t.Errorf("Stats = %+v, want 2/2", st)
	}
}

func TestBufferPool_ReturnNil(t *testing.T) {
	p := NewBufferPool()
	p.Return(nil)
	if st := p.Stats(); st.Returned != 0 {
		t.Errorf("Return(nil) counted: %+v", st)
	}
}

func TestKind_String(t *testing.T) {
	if KindSample.String() != "Sample" || KindTrade.String() != "Trade" {
		t.Errorf("unexpected names %q %q", KindSample, KindTrade)
	}
	if Kind(42).String() != "Unknown" {
		t.Errorf("Kind(42).String() = %q", Kind(42).String())
	}
	if KindInvalid.Size() != 0 {
		t.Errorf("KindInvalid.Size() = %d", KindInvalid.Size())
	}
}

func BenchmarkWrite(b *testing.B) {
	bus, _ := NewBus(1024)
	records := make([]Sample, 256)
	b.ReportAllocs()
	for b.Loop() {
		_ = Write(bus, records)
		if s, ok := bus.TryRead(); ok {
			s.Dispose()
		}
	}
}
