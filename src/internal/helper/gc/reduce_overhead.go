// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gc

import (
	"github.com/valyala/bytebufferpool"
)

// Buffer is the subset of [bytebufferpool.ByteBuffer] used when rendering
// certificate fields.
type Buffer interface {
	Write(p []byte) (int, error)
	WriteString(s string) (int, error)
	WriteByte(c byte) error
	String() string
	Len() int
	Reset()
}

// Pool hands out reusable buffers.
//
// Pool implementations must be safe for concurrent use by multiple goroutines,
// since the monitor may describe several certificates at once.
type Pool interface {
	Get() Buffer
	Put(b Buffer)
}

type pool struct{ p *bytebufferpool.Pool }

func (p *pool) Get() Buffer { return p.p.Get() }

// Put resets b and returns it to the pool. Buffers that did not come from
// bytebufferpool are dropped.
func (p *pool) Put(b Buffer) {
	if buf, ok := b.(*bytebufferpool.ByteBuffer); ok {
		buf.Reset()
		p.p.Put(buf)
	}
}

// Default is the buffer pool shared by the certificate formatters.
//
// Typical usage:
//
//	buf := gc.Default.Get()
//	defer gc.Default.Put(buf)
//
//	for i, b := range cert.Raw {
//		if i > 0 {
//			buf.WriteByte('-')
//		}
//		buf.WriteString(hexByte(b))
//	}
//	return buf.String()
var Default Pool = &pool{p: &bytebufferpool.Pool{}}
