package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerRaw string

// RenderBanner returns the banner art and an optional tagline, centred
// for the current terminal width.
func RenderBanner(tagline string) string {
	return renderBanner(termWidth(), tagline)
}

func renderBanner(width int, tagline string) string {
	art := strings.Split(strings.TrimRight(bannerRaw, "\n"), "\n")

	var b strings.Builder
	writeCentred(&b, art, width)
	if tagline != "" {
		b.WriteByte('\n')
		writeCentred(&b, []string{tagline}, width)
	}
	return b.String()
}

// writeCentred pads every line by the same amount so the block keeps its
// internal alignment.
func writeCentred(b *strings.Builder, lines []string, width int) {
	block := 0
	for _, l := range lines {
		block = max(block, len(l))
	}
	pad := ""
	if width > block {
		pad = strings.Repeat(" ", (width-block)/2)
	}
	for _, l := range lines {
		b.WriteString(pad)
		b.WriteString(BannerStyle.Render(l))
		b.WriteByte('\n')
	}
}

// termWidth returns the current terminal column count, or 80 as fallback.
func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}
