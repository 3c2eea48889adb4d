package email

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInjectPreheader_SingleBodyTag(t *testing.T) {
	layout := `<html><body style="margin:0;"><p>content</p></body></html>`

	injected := InjectPreheader(layout)

	assert.Equal(t, 1, strings.Count(injected, "{{#if preheader}}"))
	assert.Contains(t, injected, `<body style="margin:0;">{{#if preheader}}`)
	assert.Contains(t, injected, "&nbsp;&zwnj;")
}

func TestInjectPreheader_NoBodyTagUnchanged(t *testing.T) {
	fragment := `<div><p>content</p></div>`
	assert.Equal(t, fragment, InjectPreheader(fragment))
}

func TestInjectPreheader_EveryBodyTagRewritten(t *testing.T) {
	layout := `<body><p>a</p></body><body class="x"><p>b</p></body>`

	injected := InjectPreheader(layout)

	assert.Equal(t, 2, strings.Count(injected, "{{#if preheader}}"))
}

// Applying the transform twice to one body tag stacks a second conditional
// block. This documents current behavior; it is not deduplicated.
func TestInjectPreheader_DoubleApplicationStacksBlocks(t *testing.T) {
	layout := `<html><body><p>content</p></body></html>`

	once := InjectPreheader(layout)
	assert.Equal(t, 1, strings.Count(once, "{{#if preheader}}"))

	twice := InjectPreheader(once)
	assert.Equal(t, 2, strings.Count(twice, "{{#if preheader}}"))
}

func TestInjectPreheader_UnterminatedBodyTagUnchanged(t *testing.T) {
	fragment := `<html><body class="x`
	assert.Equal(t, fragment, InjectPreheader(fragment))
}
