package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectDecodesBody(t *testing.T) {
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out

	require.NoError(t, app.Run([]string{"filedrop", "inspect", "3f2b.txt|512"}))
	assert.Contains(t, out.String(), "file:  3f2b.txt")
	assert.Contains(t, out.String(), "lines: 512")
}

func TestInspectRejectsMalformedBody(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}

	err := app.Run([]string{"filedrop", "inspect", "no-delimiter"})
	assert.ErrorContains(t, err, "malformed")
}
