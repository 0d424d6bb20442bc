package flake

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"testing/quick"
)

func mustBig(t *testing.T, s string) ID {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("invalid decimal %q", s)
	}
	id, err := FromBig(v)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestPackDifferentTimestamp(t *testing.T) {
	f := func(ts0, ts1, node uint64, seq uint16) bool {
		if ts0 == ts1 {
			return true
		}
		return Pack(ts0, node, seq) != Pack(ts1, node, seq)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestPackDifferentNode(t *testing.T) {
	f := func(ts, node0, node1 uint64, seq uint16) bool {
		node0, node1 = node0&MaxNode, node1&MaxNode
		if node0 == node1 {
			return true
		}
		return Pack(ts, node0, seq) != Pack(ts, node1, seq)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestPackDifferentSequence(t *testing.T) {
	f := func(ts, node uint64, seq0, seq1 uint16) bool {
		if seq0 == seq1 {
			return true
		}
		return Pack(ts, node, seq0) != Pack(ts, node, seq1)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestPackFields(t *testing.T) {
	f := func(ts, node uint64, seq uint16) bool {
		id := Pack(ts, node, seq)
		return id.Timestamp() == ts && id.Node() == node&MaxNode && id.Sequence() == seq
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestPackOrdering(t *testing.T) {
	tests := []struct {
		name string
		a, b ID
	}{
		{"timestamp", Pack(1, MaxNode, MaxSequence), Pack(2, 0, 0)},
		{"node", Pack(5, 1, MaxSequence), Pack(5, 2, 0)},
		{"sequence", Pack(5, 7, 1), Pack(5, 7, 2)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if !tt.a.Less(tt.b) {
				t.Errorf("%x should sort before %x", tt.a, tt.b)
			}
			if got, want := tt.b.Compare(tt.a), 1; got != want {
				t.Errorf("Compare: got %d, want %d", got, want)
			}
			if got, want := tt.a.Big().Cmp(tt.b.Big()), -1; got != want {
				t.Errorf("integer order: got %d, want %d", got, want)
			}
		})
	}
}

func TestByteRepr(t *testing.T) {
	id0 := mustBig(t, "29866156537351941961353716432896")
	id1 := FromBytes(id0.Bytes())
	if id0 != id1 {
		t.Errorf("byte round trip: got %d, want %d", id1, id0)
	}

	f := func(hi, lo uint64) bool {
		id := FromUint64s(hi, lo)
		return FromBytes(id.Bytes()) == id
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestBytesLittleEndian(t *testing.T) {
	b := Pack(0, 0, 1).Bytes()
	if b[0] != 1 {
		t.Errorf("least significant byte first: got % x", b)
	}
	b = Pack(1<<56, 0, 0).Bytes()
	if b[Size-1] != 1 {
		t.Errorf("most significant byte last: got % x", b)
	}
}

func TestTimestamp(t *testing.T) {
	id := mustBig(t, "30556157387769903979283677052928")
	if got, want := id.Timestamp(), uint64(1656452611131); got != want {
		t.Errorf("timestamp: got %d, want %d", got, want)
	}
	if got, want := id.Time().UnixMilli(), int64(1656452611131); got != want {
		t.Errorf("time: got %d, want %d", got, want)
	}
}

func TestString(t *testing.T) {
	id := mustBig(t, "29866156537351941961353716432896")
	if got, want := id.String(), "AAABePbBqL900Cue9CYAAA=="; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := len(id.String()); got != EncodedLen {
		t.Errorf("encoded length: got %d, want %d", got, EncodedLen)
	}
}

func TestTextRoundTrip(t *testing.T) {
	f := func(hi, lo uint64) bool {
		id := FromUint64s(hi, lo)
		parsed, err := Parse(id.String())
		return err == nil && parsed == id
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"short", "AAAA"},
		{"missing padding", "AAABePbBqL900Cue9CYAAA"},
		{"too long", "AAABePbBqL900Cue9CYAAAAAAAAA"},
		{"not base64", "!!!!!!!!!!!!!!!!!!!!!!!!"},
		{"url alphabet", "AAABePbBqL900Cue9CY-_A=="},
		{"trailing bits", "AAABePbBqL900Cue9CYAAB=="},
		{"all trailing bits", "AAABePbBqL900Cue9CYAAP=="},
		{"inner line break", "AAABePbBqL900Cue\n9CYAAA=="},
		{"line break at full length", "AAABePbBqL900Cue\n9CYAA=="},
		{"trailing crlf", "AAABePbBqL900Cue9CYAAA==\r\n"},
		{"padding inside", "AAABePbBqL900Cue9CYA=AA="},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
			if !errors.Is(err, ErrInvalidEncoding) {
				t.Errorf("got %v, want ErrInvalidEncoding", err)
			}
			if IsRetryable(err) {
				t.Errorf("decode error %v must not look like a generation error", err)
			}
			var derr *DecodeError
			if !errors.As(err, &derr) || derr.Input != tt.input {
				t.Errorf("expected *DecodeError for %q, got %#v", tt.input, err)
			}
		})
	}
}

func TestFromBig(t *testing.T) {
	if _, err := FromBig(big.NewInt(-1)); err == nil {
		t.Error("expected error for negative value")
	}
	tooBig := new(big.Int).Lsh(big.NewInt(1), 128)
	if _, err := FromBig(tooBig); err == nil {
		t.Error("expected error for 129 bit value")
	}
	max := new(big.Int).Sub(tooBig, big.NewInt(1))
	id, err := FromBig(max)
	if err != nil {
		t.Fatal(err)
	}
	if id.Hi() != ^uint64(0) || id.Lo() != ^uint64(0) {
		t.Errorf("got %x, want all bits set", id)
	}
}

func TestFormat(t *testing.T) {
	id := mustBig(t, "29866156537351941961353716432896")

	tests := []struct {
		format string
		want   string
	}{
		{"%s", "AAABePbBqL900Cue9CYAAA=="},
		{"%v", "AAABePbBqL900Cue9CYAAA=="},
		{"%q", `"AAABePbBqL900Cue9CYAAA=="`},
		{"%d", "29866156537351941961353716432896"},
		{"%x", "00000178f6c1a8bf74d02b9ef4260000"},
		{"%X", "00000178F6C1A8BF74D02B9EF4260000"},
		{"%#x", "0x00000178f6c1a8bf74d02b9ef4260000"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.format, func(t *testing.T) {
			if got := fmt.Sprintf(tt.format, id); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	bin := fmt.Sprintf("%b", Pack(0, 0, 5))
	if got, want := len(bin), 128; got != want {
		t.Errorf("binary width: got %d, want %d", got, want)
	}
	if !strings.HasSuffix(bin, "101") || strings.Trim(bin[:125], "0") != "" {
		t.Errorf("unexpected binary output %s", bin)
	}
}

func TestJSON(t *testing.T) {
	type record struct {
		ID ID `json:"id"`
	}

	in := record{ID: mustBig(t, "29866156537351941961353716432896")}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"id":"AAABePbBqL900Cue9CYAAA=="}`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	var out record
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("got %v, want %v", out.ID, in.ID)
	}

	if err := json.Unmarshal([]byte(`{"id":"nope"}`), &out); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("got %v, want ErrInvalidEncoding", err)
	}
}

func TestScanValue(t *testing.T) {
	id := Pack(1656452611131, 0xC0FFEE, 42)
	raw := id.Bytes()

	v, err := id.Value()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		src     interface{}
		want    ID
		wantErr bool
	}{
		{"value", v, id, false},
		{"text bytes", []byte(id.String()), id, false},
		{"raw bytes", raw[:], id, false},
		{"nil", nil, Nil, false},
		{"int", 42, Nil, true},
		{"garbage", "garbage", Nil, true},
		{"trailing bits", "AAABePbBqL900Cue9CYAAB==", Nil, true},
		{"trailing newline", []byte("AAABePbBqL900Cue9CYAAA==\n"), Nil, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var got ID
			err := got.Scan(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Scan(%v): err = %v, wantErr %v", tt.src, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnmarshalBinaryLength(t *testing.T) {
	var id ID
	if err := id.UnmarshalBinary([]byte{1, 2, 3}); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("got %v, want ErrInvalidEncoding", err)
	}
}
