package sniffer

import (
	"bytes"
	"errors"
	"path"
	"strings"
)

type MediaType string

const (
	TypeJPEG MediaType = "jpeg"
	TypePNG  MediaType = "png"
)

const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
)

var (
	ErrUnknownType     = errors.New("unknown media type")
	ErrUnsupportedName = errors.New("unsupported file extension")
	ErrContentMismatch = errors.New("file content does not match its extension")
)

type Result struct {
	Type MediaType
	MIME string
}

// Detect inspects the leading bytes of an upload. Only the formats the
// classifier accepts are recognised.
func Detect(data []byte) (Result, error) {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}

	if isJPEG(head) {
		return Result{Type: TypeJPEG, MIME: MIMEJPEG}, nil
	}
	if isPNG(head) {
		return Result{Type: TypePNG, MIME: MIMEPNG}, nil
	}
	return Result{}, ErrUnknownType
}

// FromFilename maps an upload's extension to the type it claims to be.
func FromFilename(filename string) (Result, error) {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg":
		return Result{Type: TypeJPEG, MIME: MIMEJPEG}, nil
	case ".png":
		return Result{Type: TypePNG, MIME: MIMEPNG}, nil
	}
	return Result{}, ErrUnsupportedName
}

// Verify checks that data really is the type its filename declares and
// returns that type.
func Verify(filename string, data []byte) (Result, error) {
	declared, err := FromFilename(filename)
	if err != nil {
		return Result{}, err
	}

	actual, err := Detect(data)
	if err != nil {
		return Result{}, err
	}
	if actual.Type != declared.Type {
		return Result{}, ErrContentMismatch
	}
	return declared, nil
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return len(head) >= len(pngMagic) && bytes.Equal(head[:len(pngMagic)], pngMagic)
}
