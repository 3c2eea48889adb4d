package email

import "strings"

// PreheaderMarker is the opening of the injected preview-text block, exposed
// for assertions on compiled output.
const PreheaderMarker = `<div style="display: none; max-height: 0px; overflow: hidden;">`

// preheaderBlock is appended after every body-opening tag. The repeated
// "&nbsp;&zwnj;" run pads the preview text so email clients do not pull the
// message body into the preview pane.
var preheaderBlock = "{{#if preheader}}" +
	PreheaderMarker +
	"{{preheader}}" +
	strings.Repeat("&nbsp;&zwnj;", 120) +
	"</div>{{/if}}"

// InjectPreheader rewrites layout content so that every literal, case-sensitive
// `<body...>` opening tag is followed by a conditional preheader block. The
// rewrite is a pure string transform applied before template compilation.
// Applying it to already-injected content injects again; callers must inject
// exactly once per compilation.
func InjectPreheader(content string) string {
	var out strings.Builder
	rest := content

	for {
		open := strings.Index(rest, "<body")
		if open < 0 {
			out.WriteString(rest)
			break
		}
		end := strings.Index(rest[open:], ">")
		if end < 0 {
			out.WriteString(rest)
			break
		}

		out.WriteString(rest[:open+end+1])
		out.WriteString(preheaderBlock)
		rest = rest[open+end+1:]
	}

	return out.String()
}
