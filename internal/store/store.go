// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store provides the key encoding used by the sequence-DB index
// (seqdb), a length-prefixed binary.BigEndian packing of a sequence
// identifier.
package store

import "encoding/binary"

var order = binary.BigEndian

// MarshalSeqKey returns a length-prefixed encoding of a sequence
// identifier suitable for use as a modernc.org/kv key.
func MarshalSeqKey(id string) []byte {
	buf := make([]byte, 8+len(id))
	order.PutUint64(buf[:8], uint64(len(id)))
	copy(buf[8:], id)
	return buf
}

// UnmarshalSeqKey recovers the sequence identifier packed by
// MarshalSeqKey.
func UnmarshalSeqKey(data []byte) string {
	n := order.Uint64(data[:8])
	return string(data[8 : 8+n])
}
