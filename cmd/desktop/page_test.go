package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExternalLinksGoToBrowser(t *testing.T) {
	assert.Contains(t, page, `<a href="https://`)
	assert.Contains(t, linkInterceptor, "openExternal(url)")
	assert.Contains(t, linkInterceptor, "e.preventDefault()")
}

func TestJSONString(t *testing.T) {
	assert.Equal(t, `"a\"b"`, jsonString(`a"b`))
	assert.Equal(t, `3`, jsonString(3))
}
