// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509inspect

import (
	"github.com/H0llyW00dzZ/tls-cert-monitor/src/internal/helper/gc"
)

const hexDigits = "0123456789ABCDEF"

// FormatHex renders b as upper-case hex, byte order preserved, with sep
// between bytes. An empty sep yields a contiguous string.
//
// The output is reversible: removing sep and hex-decoding yields b.
func FormatHex(b []byte, sep string) string {
	if len(b) == 0 {
		return ""
	}

	buf := gc.Default.Get()
	defer gc.Default.Put(buf)

	for i, v := range b {
		if i > 0 && sep != "" {
			buf.WriteString(sep)
		}
		buf.WriteByte(hexDigits[v>>4])
		buf.WriteByte(hexDigits[v&0x0f])
	}
	return buf.String()
}
