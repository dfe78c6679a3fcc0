// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

// Wire format tag bytes (spec §3/§4.1). Naming follows the mfixint/mnil
// convention used by the peer MessagePack implementations surveyed for this
// codec, not a teacher naming scheme (iobuf has no wire format of its own).
const (
	tagPosFixIntMax byte = 0x7f
	tagFixMapMin    byte = 0x80
	tagFixMapMax    byte = 0x8f
	tagFixArrayMin  byte = 0x90
	tagFixArrayMax  byte = 0x9f
	tagFixStrMin    byte = 0xa0
	tagFixStrMax    byte = 0xbf

	tagNil          byte = 0xc0
	tagInvalid      byte = 0xc1
	tagFalse        byte = 0xc2
	tagTrue         byte = 0xc3
	tagBin8         byte = 0xc4
	tagBin16        byte = 0xc5
	tagBin32        byte = 0xc6
	tagExt8         byte = 0xc7
	tagExt16        byte = 0xc8
	tagExt32        byte = 0xc9
	tagFloat32      byte = 0xca
	tagFloat64      byte = 0xcb
	tagUint8        byte = 0xcc
	tagUint16       byte = 0xcd
	tagUint32       byte = 0xce
	tagUint64       byte = 0xcf
	tagInt8         byte = 0xd0
	tagInt16        byte = 0xd1
	tagInt32        byte = 0xd2
	tagInt64        byte = 0xd3
	tagFixExt1      byte = 0xd4
	tagFixExt2      byte = 0xd5
	tagFixExt4      byte = 0xd6
	tagFixExt8      byte = 0xd7
	tagFixExt16     byte = 0xd8
	tagStr8         byte = 0xd9
	tagStr16        byte = 0xda
	tagStr32        byte = 0xdb
	tagArray16      byte = 0xdc
	tagArray32      byte = 0xdd
	tagMap16        byte = 0xde
	tagMap32        byte = 0xdf
	tagNegFixIntMin byte = 0xe0
)

// extTypeTimestamp is the reserved extension type code for the -1 timestamp
// extension (spec §3).
const extTypeTimestamp int8 = -1

// ValueKind is the wire-level sum type of spec §3: every MessagePack tag
// denotes exactly one of these kinds.
type ValueKind int

const (
	KindInvalid ValueKind = iota
	KindNil
	KindBool
	KindInt
	KindUInt
	KindFloat32
	KindFloat64
	KindStr
	KindBin
	KindArray
	KindMap
	KindExtension
)

func (k ValueKind) String() string {
	switch k {
	case KindNil:
		return "Nil"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindUInt:
		return "UInt"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindStr:
		return "Str"
	case KindBin:
		return "Bin"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	case KindExtension:
		return "Extension"
	default:
		return "Invalid"
	}
}

// IsFixInt reports whether b is a positive or negative fixint tag.
func IsFixInt(b byte) bool {
	return b <= tagPosFixIntMax || b >= tagNegFixIntMin
}

// IsFixMap reports whether b is a fixmap tag.
func IsFixMap(b byte) bool {
	return b >= tagFixMapMin && b <= tagFixMapMax
}

// IsFixArray reports whether b is a fixarray tag.
func IsFixArray(b byte) bool {
	return b >= tagFixArrayMin && b <= tagFixArrayMax
}

// IsFixStr reports whether b is a fixstr tag.
func IsFixStr(b byte) bool {
	return b >= tagFixStrMin && b <= tagFixStrMax
}

// FixMapLength returns the entry count encoded in a fixmap tag's low 4 bits.
func FixMapLength(b byte) int {
	return int(b &^ tagFixMapMin)
}

// FixArrayLength returns the element count encoded in a fixarray tag's low
// 4 bits.
func FixArrayLength(b byte) int {
	return int(b &^ tagFixArrayMin)
}

// FixStrLength returns the byte length encoded in a fixstr tag's low 5 bits.
func FixStrLength(b byte) int {
	return int(b &^ tagFixStrMin)
}

// TagToValueKind maps a wire tag byte to the ValueKind it denotes. Tag
// 0xc1 ("never used") and any tag this table does not recognize yield
// KindInvalid.
func TagToValueKind(b byte) ValueKind {
	switch {
	case b <= tagPosFixIntMax, b >= tagNegFixIntMin:
		return KindInt
	case IsFixMap(b):
		return KindMap
	case IsFixArray(b):
		return KindArray
	case IsFixStr(b):
		return KindStr
	}
	switch b {
	case tagNil:
		return KindNil
	case tagInvalid:
		return KindInvalid
	case tagFalse, tagTrue:
		return KindBool
	case tagBin8, tagBin16, tagBin32:
		return KindBin
	case tagExt8, tagExt16, tagExt32,
		tagFixExt1, tagFixExt2, tagFixExt4, tagFixExt8, tagFixExt16:
		return KindExtension
	case tagFloat32:
		return KindFloat32
	case tagFloat64:
		return KindFloat64
	case tagUint8, tagUint16, tagUint32, tagUint64:
		return KindUInt
	case tagInt8, tagInt16, tagInt32, tagInt64:
		return KindInt
	case tagStr8, tagStr16, tagStr32:
		return KindStr
	case tagArray16, tagArray32:
		return KindArray
	case tagMap16, tagMap32:
		return KindMap
	default:
		return KindInvalid
	}
}
