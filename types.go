// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

import "net"

// Buffers is an alias for net.Buffers. A SinkProvider backed by a net.Conn
// uses this directly so a write of the encoded tag/header plus an overflow
// payload buffer can be flushed as a single vectored Write.
type Buffers = net.Buffers

// noCopy is a sentinel used to prevent copying of synchronization primitives.
// Embedded by value in lockFreePool so `go vet` flags any accidental copy.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
