package sniffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	jpegBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	pngBytes  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00, 0x00}
)

func TestDetect(t *testing.T) {
	res, err := Detect(jpegBytes)
	require.NoError(t, err)
	require.Equal(t, TypeJPEG, res.Type)
	require.Equal(t, MIMEJPEG, res.MIME)

	res, err = Detect(pngBytes)
	require.NoError(t, err)
	require.Equal(t, TypePNG, res.Type)
	require.Equal(t, MIMEPNG, res.MIME)

	_, err = Detect([]byte("GIF89a......"))
	require.ErrorIs(t, err, ErrUnknownType)

	_, err = Detect(nil)
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestFromFilename(t *testing.T) {
	for name, want := range map[string]MediaType{
		"cat.jpg":  TypeJPEG,
		"cat.JPEG": TypeJPEG,
		"cat.png":  TypePNG,
		"a.b.PNG":  TypePNG,
	} {
		res, err := FromFilename(name)
		require.NoError(t, err, name)
		require.Equal(t, want, res.Type, name)
	}

	for _, name := range []string{"cat.gif", "cat", "cat.png.exe"} {
		_, err := FromFilename(name)
		require.ErrorIs(t, err, ErrUnsupportedName, name)
	}
}

func TestVerify(t *testing.T) {
	res, err := Verify("cat.png", pngBytes)
	require.NoError(t, err)
	require.Equal(t, MIMEPNG, res.MIME)

	_, err = Verify("cat.jpg", pngBytes)
	require.ErrorIs(t, err, ErrContentMismatch)

	_, err = Verify("cat.gif", pngBytes)
	require.ErrorIs(t, err, ErrUnsupportedName)

	_, err = Verify("cat.jpg", []byte("not an image"))
	require.ErrorIs(t, err, ErrUnknownType)
}
