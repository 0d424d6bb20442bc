package flake

import (
	"database/sql/driver"
	"encoding/base64"
	"fmt"
	"strconv"
)

// EncodedLen is the length of the canonical text form of an ID.
const EncodedLen = 24

// String returns the canonical text form of the ID: the value as 16
// big-endian bytes, encoded with padded standard base64.
func (id ID) String() string {
	b := id.bigEndian()
	return base64.StdEncoding.EncodeToString(b[:])
}

// Parse decodes the canonical text form of an ID as produced by String.
// Only the exact 24 character form is accepted: line breaks and non-zero
// trailing bits are rejected, so every ID has a single valid spelling.
func Parse(s string) (ID, error) {
	if len(s) != EncodedLen {
		return Nil, &DecodeError{Input: s, Err: fmt.Errorf("got %d characters, want %d", len(s), EncodedLen)}
	}
	buf, err := base64.StdEncoding.Strict().DecodeString(s)
	if err != nil {
		return Nil, &DecodeError{Input: s, Err: err}
	}
	if len(buf) != Size {
		return Nil, &DecodeError{Input: s, Err: fmt.Errorf("decoded %d bytes, want %d", len(buf), Size)}
	}
	var b [Size]byte
	copy(b[:], buf)
	return fromBigEndian(b), nil
}

// MustParse is like Parse but panics if s cannot be decoded.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Format implements fmt.Formatter.
//
//	%s %v  canonical base64 text
//	%q     quoted base64 text
//	%d     decimal value
//	%b     128 binary digits
//	%x %X  32 hexadecimal digits
//
// The # flag adds a 0b or 0x prefix to binary and hexadecimal output.
func (id ID) Format(f fmt.State, verb rune) {
	switch verb {
	case 's', 'v':
		fmt.Fprint(f, id.String())
	case 'q':
		fmt.Fprint(f, strconv.Quote(id.String()))
	case 'd':
		fmt.Fprint(f, id.Big().String())
	case 'b':
		if f.Flag('#') {
			fmt.Fprint(f, "0b")
		}
		fmt.Fprintf(f, "%064b%064b", id.hi, id.lo)
	case 'x':
		if f.Flag('#') {
			fmt.Fprint(f, "0x")
		}
		fmt.Fprintf(f, "%016x%016x", id.hi, id.lo)
	case 'X':
		if f.Flag('#') {
			fmt.Fprint(f, "0X")
		}
		fmt.Fprintf(f, "%016X%016X", id.hi, id.lo)
	default:
		fmt.Fprintf(f, "%%!%c(flake.ID=%s)", verb, id.String())
	}
}

// MarshalText implements encoding.TextMarshaler using the canonical text form.
func (id ID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler using the little-endian
// byte order of Bytes.
func (id ID) MarshalBinary() ([]byte, error) {
	b := id.Bytes()
	return b[:], nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (id *ID) UnmarshalBinary(data []byte) error {
	if len(data) != Size {
		return &DecodeError{Input: string(data), Err: fmt.Errorf("got %d bytes, want %d", len(data), Size)}
	}
	var b [Size]byte
	copy(b[:], data)
	*id = FromBytes(b)
	return nil
}

// Value implements driver.Valuer. IDs are stored in their canonical text form.
func (id ID) Value() (driver.Value, error) { return id.String(), nil }

// Scan implements sql.Scanner. It accepts the canonical text form, either as a
// string or as bytes, as well as the 16 raw bytes returned by Bytes.
func (id *ID) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*id = Nil
		return nil
	case string:
		return id.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == Size {
			return id.UnmarshalBinary(v)
		}
		return id.UnmarshalText(v)
	default:
		return fmt.Errorf("flake: cannot scan %T into ID", src)
	}
}
