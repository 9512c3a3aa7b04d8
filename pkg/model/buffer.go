package model

// bufferGrowStep is the initial capacity of a new Buffer. Later growth is
// whatever append chooses; Buffer does not grow in fixed steps.
const bufferGrowStep = 256

// Buffer is a growable byte buffer. It exists as a distinct type (rather
// than bare []byte) so that Rewind and Finalize read as the deliberate,
// named operations spec.md §4.1 describes. The parser and writer do not
// use it; they accumulate text in strings.Builder. Push and PushStr return
// no error, so allocation failure is not reported through Buffer.
type Buffer struct {
	data []byte
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{data: make([]byte, 0, bufferGrowStep)}
}

// Push appends a single byte.
func (b *Buffer) Push(c byte) {
	b.data = append(b.data, c)
}

// PushStr appends every byte of s.
func (b *Buffer) PushStr(s string) {
	b.data = append(b.data, s...)
}

// Rewind undoes the last n pushes. It is a no-op clamp to empty if n
// exceeds the buffer's current length, rather than an error: callers only
// ever rewind bytes they just pushed.
func (b *Buffer) Rewind(n int) {
	if n <= 0 {
		return
	}
	if n > len(b.data) {
		n = len(b.data)
	}
	b.data = b.data[:len(b.data)-n]
}

// Len reports the number of bytes currently buffered.
func (b *Buffer) Len() int { return len(b.data) }

// Bytes returns the buffered bytes without consuming them.
func (b *Buffer) Bytes() []byte { return b.data }

// Finalize returns the accumulated content as an owned string and resets
// the buffer to empty, ready for reuse.
func (b *Buffer) Finalize() string {
	s := string(b.data)
	b.data = b.data[:0]
	return s
}
