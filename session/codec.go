package session

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// record is the on-disk form of a Session.
type record struct {
	Credential string    `cbor:"1,keyasint"`
	CreatedAt  time.Time `cbor:"2,keyasint"`
}

var (
	// Canonical ordering keeps identical sessions byte-identical on disk.
	encMode cbor.EncMode
	// Limits bound what a corrupted or planted file can make us allocate.
	decMode cbor.DecMode
)

//nolint:gochecknoinits // CBOR modes are built once at package load
func init() {
	var err error

	encMode, err = cbor.EncOptions{
		Sort: cbor.SortCanonical,
		Time: cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoding mode: %v", err))
	}

	decMode, err = cbor.DecOptions{
		MaxArrayElements: 16,
		MaxMapPairs:      16,
		MaxNestedLevels:  4,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoding mode: %v", err))
	}
}

func encodeRecord(r record) ([]byte, error) {
	data, err := encMode.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("cbor marshal failed: %w", err)
	}
	return data, nil
}

func decodeRecord(data []byte) (record, error) {
	var r record
	if err := decMode.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("cbor unmarshal failed: %w", err)
	}
	return r, nil
}
