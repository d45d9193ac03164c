// APT source encoding detection
//
// CAM systems write APT files as UTF-8, UTF-16/32 with byte order mark,
// or in the Windows Cyrillic code page.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package apt

import (
	"bufio"
	"bytes"
	"io"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// Encoding names reported by DetectEncoding.
const (
	EncodingUTF8    = "UTF-8"
	EncodingUTF16BE = "UTF-16BE"
	EncodingUTF16LE = "UTF-16LE"
	EncodingUTF32BE = "UTF-32BE"
	EncodingUTF32LE = "UTF-32LE"
	EncodingCP1251  = "CP1251"
)

// sniffSize is how much of the input the heuristic looks at.
const sniffSize = 4096

type bom struct {
	mark []byte
	name string
	enc  encoding.Encoding
}

// UTF-32LE must be tested before UTF-16LE, its mark starts the same way.
var boms = []bom{
	{[]byte{0xEF, 0xBB, 0xBF}, EncodingUTF8, xunicode.UTF8BOM},
	{[]byte{0x00, 0x00, 0xFE, 0xFF}, EncodingUTF32BE, utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM)},
	{[]byte{0xFF, 0xFE, 0x00, 0x00}, EncodingUTF32LE, utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM)},
	{[]byte{0xFE, 0xFF}, EncodingUTF16BE, xunicode.UTF16(xunicode.BigEndian, xunicode.ExpectBOM)},
	{[]byte{0xFF, 0xFE}, EncodingUTF16LE, xunicode.UTF16(xunicode.LittleEndian, xunicode.ExpectBOM)},
}

// DetectEncoding looks at the start of the input: a byte order mark
// decides first. Without one the input is UTF-8 unless it is not valid
// UTF-8 and reads as Cyrillic in CP1251. enc is nil for plain UTF-8.
func DetectEncoding(head []byte) (name string, enc encoding.Encoding) {
	for _, b := range boms {
		if bytes.HasPrefix(head, b.mark) {
			return b.name, b.enc
		}
	}
	if len(head) > sniffSize {
		head = head[:sniffSize]
	}
	if utf8.Valid(trimPartialRune(head)) {
		return EncodingUTF8, nil
	}
	if decoded, err := charmap.Windows1251.NewDecoder().Bytes(head); err == nil && hasCyrillic(decoded) {
		return EncodingCP1251, charmap.Windows1251
	}
	return EncodingUTF8, nil
}

// decode wraps r so that it yields UTF-8.
func decode(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, sniffSize)
	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", err
	}
	name, enc := DetectEncoding(head)
	if enc == nil {
		return br, name, nil
	}
	return transform.NewReader(br, enc.NewDecoder()), name, nil
}

// trimPartialRune drops an incomplete UTF-8 sequence cut off by the
// sniff window.
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		c := b[len(b)-i]
		if !utf8.RuneStart(c) {
			continue
		}
		if !utf8.FullRune(b[len(b)-i:]) {
			return b[:len(b)-i]
		}
		break
	}
	return b
}

func hasCyrillic(b []byte) bool {
	for _, r := range string(b) {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}
