package client

import (
	"io"
	"unicode/utf8"
)

// Stream pulls incremental text chunks off a live response body. Chunk
// boundaries are arbitrary, so a multi-byte UTF-8 sequence may be split
// across reads; the undecodable tail is carried over and completed by the
// next pull instead of being emitted broken.
type Stream struct {
	body io.ReadCloser
	buf  []byte
	rem  []byte
}

func newStream(body io.ReadCloser) *Stream {
	return &Stream{
		body: body,
		buf:  make([]byte, 4096),
	}
}

// Next returns the next decoded chunk. done is true once the stream is
// exhausted, at which point any carried-over bytes are flushed as-is.
func (s *Stream) Next() (chunk string, done bool, err error) {
	for {
		n, rerr := s.body.Read(s.buf)
		if n > 0 {
			data := append(s.rem, s.buf[:n]...)
			complete, rest := splitCompleteUTF8(data)
			s.rem = rest
			if len(complete) > 0 {
				return string(complete), false, nil
			}
			// Nothing decodable yet, keep pulling.
		}
		if rerr == io.EOF {
			if len(s.rem) > 0 {
				flushed := string(s.rem)
				s.rem = nil
				return flushed, false, nil
			}
			return "", true, nil
		}
		if rerr != nil {
			return "", false, rerr
		}
	}
}

func (s *Stream) Close() error {
	return s.body.Close()
}

// splitCompleteUTF8 splits b into a prefix of complete UTF-8 sequences and
// a trailing partial sequence, if any. Only the final rune can be partial,
// so at most utf8.UTFMax-1 bytes are ever held back.
func splitCompleteUTF8(b []byte) (complete, rest []byte) {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return b[:i], b[i:]
			}
			break
		}
	}
	return b, nil
}
