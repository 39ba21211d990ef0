package voice

import (
	"bufio"
	"io"
)

const oggCapturePattern = "OggS"

type oggPage struct {
	isHeader bool
	packets  [][]byte
}

// oggReader splits an ogg/opus byte stream into opus packets page by page.
type oggReader struct {
	r *bufio.Reader
}

func newOggReader(r io.Reader) *oggReader {
	return &oggReader{r: bufio.NewReaderSize(r, 65536)}
}

func (o *oggReader) ReadPage() (*oggPage, error) {
	if err := o.sync(); err != nil {
		return nil, err
	}

	// capture pattern already consumed; 23 bytes remain of the fixed header
	header := make([]byte, 23)
	if _, err := io.ReadFull(o.r, header); err != nil {
		return nil, err
	}
	headerType := header[1]
	segments := header[22]

	segmentTable := make([]byte, segments)
	if _, err := io.ReadFull(o.r, segmentTable); err != nil {
		return nil, err
	}

	size := 0
	for _, seg := range segmentTable {
		size += int(seg)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(o.r, data); err != nil {
		return nil, err
	}

	isHeader := headerType&0x02 != 0
	if len(data) >= 8 {
		switch string(data[:8]) {
		case "OpusHead", "OpusTags":
			isHeader = true
		}
	}

	return &oggPage{
		isHeader: isHeader,
		packets:  splitPackets(segmentTable, data),
	}, nil
}

func (o *oggReader) sync() error {
	for {
		b, err := o.r.ReadByte()
		if err != nil {
			return err
		}
		if b != oggCapturePattern[0] {
			continue
		}

		peek, err := o.r.Peek(3)
		if err != nil {
			return err
		}
		if string(peek) == oggCapturePattern[1:] {
			_, _ = o.r.Discard(3)
			return nil
		}
	}
}

// splitPackets joins lacing segments into packets. A segment shorter than
// 255 bytes terminates a packet.
func splitPackets(segmentTable []byte, data []byte) [][]byte {
	var packets [][]byte
	var current []byte
	offset := 0

	for _, seg := range segmentTable {
		size := int(seg)
		if offset+size > len(data) {
			break
		}
		current = append(current, data[offset:offset+size]...)
		offset += size

		if seg < 255 && len(current) > 0 {
			packets = append(packets, append([]byte(nil), current...))
			current = current[:0]
		}
	}

	if len(current) > 0 {
		packets = append(packets, append([]byte(nil), current...))
	}
	return packets
}
