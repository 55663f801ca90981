//go:build !windows

package icon

import "image"

func encodeIcon(img image.Image) []byte {
	return encodePNG(img)
}
