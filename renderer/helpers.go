package renderer

import (
	"bytes"
	"io"
)

// ConditionalBlock renders block into a buffer and copies it to w only if
// block reports that it wrote something worth showing.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	var b bytes.Buffer
	if block(&b) {
		io.Copy(w, &b)
	}
}
