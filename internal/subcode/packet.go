package subcode

// PacketSize is the length of one subcode pack.
const PacketSize = 24

// PacketsPerSecond is the nominal subcode rate: 75 sectors/s × 4 packs.
const PacketsPerSecond = 300

const (
	modeMask     = 0x3F
	graphicsMode = 0x09
)

func parsePacket(buf []byte) Packet {
	var p Packet
	p.Command = buf[0]
	p.Instruction = buf[1]
	copy(p.ParityQ[:], buf[2:4])
	copy(p.Data[:], buf[4:20])
	copy(p.ParityP[:], buf[20:24])
	return p
}

// Reader iterates fixed-size packets over a byte buffer. A trailing fragment
// shorter than PacketSize is never returned. A Reader is not restartable.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader over buf. The buffer is not copied.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Next returns the next packet and true, or false once fewer than
// PacketSize bytes remain.
func (r *Reader) Next() (Packet, bool) {
	if len(r.buf)-r.off < PacketSize {
		return Packet{}, false
	}
	p := parsePacket(r.buf[r.off : r.off+PacketSize])
	r.off += PacketSize
	return p, true
}

// Count returns the number of whole packets in the underlying buffer.
func (r *Reader) Count() int {
	return len(r.buf) / PacketSize
}

// Offset returns the byte offset of the next packet.
func (r *Reader) Offset() int {
	return r.off
}
