package api

import (
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForm_OrderAndReplace(t *testing.T) {
	f := NewForm().
		Set("name", "Eggs").
		SetFloat("quantity", 12).
		SetBool("purchased", false).
		Set("name", "Free-range eggs")

	assert.Equal(t, []string{"name", "quantity", "purchased"}, f.Keys())
	v, ok := f.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "Free-range eggs", v)
	v, _ = f.Get("quantity")
	assert.Equal(t, "12", v)
	assert.Equal(t, 3, f.Len())
}

func TestForm_Encode(t *testing.T) {
	f := NewForm().Set("first_name", "Ada").SetFloat("quantity", 0.25)

	ctype, r, err := f.Encode()
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(ctype)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	mr := multipart.NewReader(r, params["boundary"])
	var names, values []string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, _ := io.ReadAll(p)
		names = append(names, p.FormName())
		values = append(values, string(data))
	}
	assert.Equal(t, []string{"first_name", "quantity"}, names)
	assert.Equal(t, []string{"Ada", "0.25"}, values)
}

func TestForm_NilEncode(t *testing.T) {
	var f *Form
	_, _, err := f.Encode()
	assert.ErrorIs(t, err, errNilForm)
}
