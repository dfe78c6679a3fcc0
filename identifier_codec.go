// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

import "unsafe"

// DefaultIdentifierExtensionType is the extension type code used to tag a
// first-occurrence (id, bytes) pair, or a later 4-byte id reference, on the
// wire. Per spec §6 this is a private extension type, not cross-compatible
// with other MessagePack implementations. NewIdentifierEncoder and
// NewIdentifierDecoder always use this code: the IdentifierEncoder and
// IdentifierDecoder interfaces they return expose no way to select a
// different one.
const DefaultIdentifierExtensionType int8 = 17

// IdentifierEncoder and IdentifierDecoder intern short, frequently repeated
// strings (typically map keys) using a private extension type (spec §4.9).
// First occurrence of a string emits its id plus its UTF-8 bytes; later
// occurrences emit only the 4-byte id, which is why the decoder must keep
// an id-indexed table alongside its wire-bytes cache: a reference payload
// carries no bytes to probe a byte-keyed cache with.
type IdentifierEncoder interface {
	Encode(sink *MessageSink, s string) error
}

type IdentifierDecoder interface {
	Decode(source *MessageSource) (string, error)
}

// identifierCacheDecoder implements the decode side of spec §4.9: byID
// resolves reference-only occurrences (4-byte payload, no trailing bytes);
// byBytes is the zero-copy, keyed-by-wire-bytes cache for first
// occurrences, so a repeated first-occurrence payload still skips UTF-8
// decoding.
type identifierCacheDecoder struct {
	ExtensionType int8
	MaxCacheSize  int

	byID      map[uint32]string
	byBytes   map[string]string
	cacheSize int
}

// NewIdentifierDecoder returns the built-in id-indexed identifier decoder.
func NewIdentifierDecoder(maxCacheSize int) IdentifierDecoder {
	return &identifierCacheDecoder{
		ExtensionType: DefaultIdentifierExtensionType,
		MaxCacheSize:  maxCacheSize,
		byID:          make(map[uint32]string),
		byBytes:       make(map[string]string),
	}
}

func (d *identifierCacheDecoder) Decode(source *MessageSource) (string, error) {
	n, extType, err := readExtensionHeaderRaw(source)
	if err != nil {
		return "", err
	}
	if extType != d.ExtensionType {
		return "", &Error{Kind: TypeMismatch, Tag: byte(extType), Requested: "Identifier"}
	}
	if n < 4 {
		return "", &Error{Kind: InvalidFormat, Tag: byte(extType)}
	}
	if n > cap(source.buf) {
		return "", &Error{Kind: IdentifierTooLarge, Length: int64(n), Max: int64(cap(source.buf))}
	}
	if err := source.EnsureRemaining(n); err != nil {
		return "", err
	}

	idBytes := source.buf[source.position : source.position+4]
	id := uint32(idBytes[0])<<24 | uint32(idBytes[1])<<16 | uint32(idBytes[2])<<8 | uint32(idBytes[3])

	if n == 4 {
		s, ok := d.byID[id]
		source.position += 4
		if !ok {
			return "", &Error{Kind: InvalidFormat, Tag: byte(extType)}
		}
		return s, nil
	}

	strLen := n - 4
	strStart := source.position + 4

	// Zero-copy view over the on-wire bytes, per spec §4.9 step 2-3: no
	// allocation, no UTF-8 decode, just a cache probe.
	view := unsafe.String(unsafe.SliceData(source.buf[strStart:strStart+strLen]), strLen)
	decoded, ok := d.byBytes[view]
	if !ok {
		owned := string(source.buf[strStart : strStart+strLen])
		decoded = decodeUTF8WithReplacement([]byte(owned))
		d.byBytes[owned] = decoded
		d.cacheSize += strLen
	}
	d.byID[id] = decoded
	if d.MaxCacheSize > 0 && d.cacheSize > d.MaxCacheSize {
		d.byBytes = make(map[string]string)
		d.byID = make(map[uint32]string)
		d.cacheSize = 0
	}
	source.position += n
	return decoded, nil
}

// identifierInternEncoder implements the encode side: a string -> numeric
// id map. First occurrence emits an extension-tagged (id, bytes) pair;
// later occurrences emit a 4-byte id reference (spec §4.9 "Encoder").
//
// Ids are leased from freeIDs, a plain LIFO free list, with nextID handing
// out a fresh id once it's empty; releaseAll repopulates freeIDs from every
// outstanding id when the cache overflows and clears, so ids are recycled
// rather than growing without bound. freeIDs needs no atomics or locking:
// a MessageSink (and so the MessageWriter an encoder is attached to) is
// owned by a single goroutine for its lifetime, per sink.go.
type identifierInternEncoder struct {
	ExtensionType int8
	MaxCacheSize  int

	ids       map[string]uint32
	freeIDs   []uint32
	nextID    uint32
	cacheSize int
}

// NewIdentifierEncoder returns the built-in string-to-id interning
// encoder.
func NewIdentifierEncoder(maxCacheSize int) IdentifierEncoder {
	return &identifierInternEncoder{
		ExtensionType: DefaultIdentifierExtensionType,
		MaxCacheSize:  maxCacheSize,
		ids:           make(map[string]uint32),
	}
}

func (e *identifierInternEncoder) Encode(sink *MessageSink, s string) error {
	if id, ok := e.ids[s]; ok {
		return writeExtensionHeaderAndPayload(sink, e.ExtensionType, idRefPayload(id))
	}

	id := e.acquireID()
	e.ids[s] = id
	e.cacheSize += len(s)
	if e.MaxCacheSize > 0 && e.cacheSize > e.MaxCacheSize {
		e.releaseAll()
		return &Error{Kind: IdentifierCacheSizeExceeded, Max: int64(e.MaxCacheSize)}
	}

	payload := make([]byte, 4+len(s))
	payload[0] = byte(id >> 24)
	payload[1] = byte(id >> 16)
	payload[2] = byte(id >> 8)
	payload[3] = byte(id)
	copy(payload[4:], s)
	return writeExtensionHeaderAndPayload(sink, e.ExtensionType, payload)
}

// acquireID pops a recycled id off freeIDs, or mints a fresh one.
func (e *identifierInternEncoder) acquireID() uint32 {
	if n := len(e.freeIDs); n > 0 {
		id := e.freeIDs[n-1]
		e.freeIDs = e.freeIDs[:n-1]
		return id
	}
	id := e.nextID
	e.nextID++
	return id
}

// releaseAll returns every outstanding id to freeIDs and resets the
// string->id cache, mirroring identifierCacheDecoder's clear-on-overflow.
func (e *identifierInternEncoder) releaseAll() {
	for _, id := range e.ids {
		e.freeIDs = append(e.freeIDs, id)
	}
	e.ids = make(map[string]uint32)
	e.cacheSize = 0
}

func idRefPayload(id uint32) []byte {
	return []byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
}

// readExtensionHeaderRaw reads an ext/fixext header without depending on
// MessageReader, so the identifier decoder can be used directly atop a
// MessageSource (it is also reachable through MessageReader.ReadIdentifier).
func readExtensionHeaderRaw(source *MessageSource) (length int, extType int8, err error) {
	tag, err := source.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	switch tag {
	case tagFixExt1:
		length = 1
	case tagFixExt2:
		length = 2
	case tagFixExt4:
		length = 4
	case tagFixExt8:
		length = 8
	case tagFixExt16:
		length = 16
	case tagExt8:
		length, err = source.ReadLength8()
	case tagExt16:
		length, err = source.ReadLength16()
	case tagExt32:
		length, err = source.ReadLength32()
	default:
		return 0, 0, &Error{Kind: TypeMismatch, Tag: tag, Requested: "Extension"}
	}
	if err != nil {
		return 0, 0, err
	}
	t, err := source.ReadI8()
	if err != nil {
		return 0, 0, err
	}
	return length, t, nil
}
