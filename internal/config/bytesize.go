package config

import (
	"fmt"
	"strconv"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"gopkg.in/yaml.v3"
)

// ByteSize is a byte count that also accepts unit suffixes ("64MB", "1G").
type ByteSize uint64

// ParseByteSize parses a plain byte count or a bytefmt quantity.
func ParseByteSize(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return ByteSize(n), nil
	}
	n, err := bytefmt.ToBytes(s)
	if err != nil {
		return 0, fmt.Errorf("parse byte size %q: %w", s, err)
	}
	return ByteSize(n), nil
}

// String renders the size with a unit suffix.
func (b ByteSize) String() string {
	return bytefmt.ByteSize(uint64(b))
}

// UnmarshalYAML accepts both integers and quantity strings.
func (b *ByteSize) UnmarshalYAML(node *yaml.Node) error {
	v, err := ParseByteSize(node.Value)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Set implements pflag.Value.
func (b *ByteSize) Set(s string) error {
	v, err := ParseByteSize(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Type implements pflag.Value.
func (b *ByteSize) Type() string {
	return "bytes"
}
