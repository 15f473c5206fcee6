package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContentTypeFor(t *testing.T) {
	require.Equal(t, "image/png", ContentTypeFor("cat.png"))
	require.Equal(t, "image/png", ContentTypeFor("CAT.PNG"))
	require.Equal(t, "image/jpeg", ContentTypeFor("cat.jpg"))
	require.Equal(t, "image/jpeg", ContentTypeFor("cat.jpeg"))
	require.Equal(t, "image/jpeg", ContentTypeFor("cat"))
	require.Equal(t, "image/jpeg", ContentTypeFor("png"))
}

func TestValidate(t *testing.T) {
	require.ErrorIs(t, Validate("", []byte("x")), ErrEmptyKey)
	require.ErrorIs(t, Validate("k", nil), ErrEmptyData)
	require.NoError(t, Validate("k", []byte("x")))
}
