package icon

import (
	"bytes"
	"encoding/binary"
	"image"
)

// encodeIcon Windows 托盘需要 .ico，这里把 PNG 原样包进单图 ICO 容器
func encodeIcon(img image.Image) []byte {
	pngData := encodePNG(img)
	if pngData == nil {
		return nil
	}

	var buf bytes.Buffer
	// ICONDIR
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY
	size := img.Bounds().Dx()
	entry := struct {
		Width, Height, Colors, Reserved uint8
		Planes, BitCount                uint16
		BytesInRes, ImageOffset         uint32
	}{
		Width:       uint8(size),
		Height:      uint8(size),
		Planes:      1,
		BitCount:    32,
		BytesInRes:  uint32(len(pngData)),
		ImageOffset: 6 + 16,
	}
	_ = binary.Write(&buf, binary.LittleEndian, entry)
	buf.Write(pngData)
	return buf.Bytes()
}
