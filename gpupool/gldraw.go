//go:build gl

package gpupool

import (
	"encoding/binary"

	"github.com/go-gl/gl/v3.3-core/gl"
)

// GLDrawBuilder packs DrawCommand slices into the
// GL_DRAW_INDIRECT_BUFFER wire layout (glMultiDrawElementsIndirect) and
// owns the GL buffer object that holds those packed commands. It is
// the OpenGL-flavored alternative to the raylib upload path named in
// SPEC_FULL.md's domain-stack wiring table; built only with the "gl" tag
// since go-gl/gl requires an active GL context to initialize.
type GLDrawBuilder struct {
	indirectBuf uint32
}

// NewGLDrawBuilder creates the GL buffer object that will hold the packed
// indirect command stream.
func NewGLDrawBuilder() *GLDrawBuilder {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return &GLDrawBuilder{indirectBuf: buf}
}

// glIndirectCmd mirrors the 20-byte C struct DrawElementsIndirectCommand.
type glIndirectCmd struct {
	count         uint32
	instanceCount uint32
	firstIndex    uint32
	baseVertex    int32
	baseInstance  uint32
}

// Upload packs cmds and uploads them to GL_DRAW_INDIRECT_BUFFER, ready
// for a single glMultiDrawElementsIndirect call.
func (b *GLDrawBuilder) Upload(cmds []DrawCommand) {
	buf := make([]byte, 0, len(cmds)*20)
	for _, c := range cmds {
		var raw [20]byte
		binary.LittleEndian.PutUint32(raw[0:4], c.IndexCount)
		binary.LittleEndian.PutUint32(raw[4:8], c.InstanceCount)
		binary.LittleEndian.PutUint32(raw[8:12], c.FirstIndex)
		binary.LittleEndian.PutUint32(raw[12:16], uint32(c.BaseVertex))
		binary.LittleEndian.PutUint32(raw[16:20], 0)
		buf = append(buf, raw[:]...)
	}

	gl.BindBuffer(gl.DRAW_INDIRECT_BUFFER, b.indirectBuf)
	gl.BufferData(gl.DRAW_INDIRECT_BUFFER, len(buf), gl.Ptr(buf), gl.DYNAMIC_DRAW)
}

// Handle exposes the underlying GL buffer name for explicit binding.
func (b *GLDrawBuilder) Handle() uint32 { return b.indirectBuf }
