package execpb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// The consume* wrappers turn protowire's (value, n) convention, where a
// negative n signals a malformed varint/length/tag, into an idiomatic
// (value, consumed, error) triple so the message-level Unmarshal functions
// above never have to inline the sentinel check themselves.

func consumeTag(b []byte) (protowire.Number, protowire.Type, int, error) {
	num, typ, n := protowire.ConsumeTag(b)
	if n < 0 {
		return 0, 0, 0, fmt.Errorf("execpb: malformed tag: %w", protowire.ParseError(n))
	}
	return num, typ, n, nil
}

func consumeVarint(b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, fmt.Errorf("execpb: malformed varint: %w", protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeFixed64(b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return 0, 0, fmt.Errorf("execpb: malformed fixed64: %w", protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeBytes(b []byte) ([]byte, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, fmt.Errorf("execpb: malformed length-delimited field: %w", protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeString(b []byte) (string, int, error) {
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return "", 0, fmt.Errorf("execpb: malformed string field: %w", protowire.ParseError(n))
	}
	return v, n, nil
}

// skipField discards the value of a field whose number this package doesn't
// recognize, so an older decoder can still read a Plan written by a newer
// encoder that has added fields.
func skipField(b []byte, typ protowire.Type) (int, error) {
	n := protowire.ConsumeFieldValue(0, typ, b)
	if n < 0 {
		return 0, fmt.Errorf("execpb: malformed unknown field: %w", protowire.ParseError(n))
	}
	return n, nil
}
