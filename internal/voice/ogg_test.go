package voice

import (
	"bytes"
	"io"
	"reflect"
	"testing"
)

func buildPage(headerType byte, packets ...[]byte) []byte {
	var table []byte
	var body []byte
	for _, packet := range packets {
		n := len(packet)
		for n >= 255 {
			table = append(table, 255)
			n -= 255
		}
		table = append(table, byte(n))
		body = append(body, packet...)
	}

	page := []byte("OggS")
	header := make([]byte, 23)
	header[1] = headerType
	header[22] = byte(len(table))
	page = append(page, header...)
	page = append(page, table...)
	return append(page, body...)
}

func TestOggReader_SkipsGarbageAndMarksHeaders(t *testing.T) {
	// given
	var stream bytes.Buffer
	stream.WriteString("noise")
	stream.Write(buildPage(0x02, []byte("OpusHead\x01\x02")))
	stream.Write(buildPage(0, []byte{1, 2, 3}, []byte{4, 5}))
	uut := newOggReader(&stream)

	// when
	head, err := uut.ReadPage()
	if err != nil {
		t.Fatalf("Unexpected error reading header page: %s", err)
	}
	audio, err := uut.ReadPage()
	if err != nil {
		t.Fatalf("Unexpected error reading audio page: %s", err)
	}
	_, err = uut.ReadPage()

	// then
	if !head.isHeader {
		t.Errorf("Expected OpusHead page to be a header")
	}
	if audio.isHeader {
		t.Errorf("Expected audio page not to be a header")
	}
	expected := [][]byte{{1, 2, 3}, {4, 5}}
	if !reflect.DeepEqual(audio.packets, expected) {
		t.Errorf("Expected packets %v to equal %v", audio.packets, expected)
	}
	if err != io.EOF {
		t.Errorf("Expected EOF after the last page, got %v", err)
	}
}

func TestSplitPackets_LongPacketSpansSegments(t *testing.T) {
	packet := bytes.Repeat([]byte{7}, 300)

	packets := splitPackets([]byte{255, 45}, packet)

	if len(packets) != 1 || len(packets[0]) != 300 {
		t.Errorf("Expected one 300 byte packet, got %d packets", len(packets))
	}
}
