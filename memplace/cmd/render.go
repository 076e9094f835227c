package cmd

import (
	"hash/fnv"
	"strings"

	"github.com/fatih/color"

	"github.com/sarchlab/memplace/placement"
	"github.com/sarchlab/memplace/session"
)

var ownerColors = []color.Attribute{
	color.FgRed,
	color.FgGreen,
	color.FgYellow,
	color.FgBlue,
	color.FgMagenta,
	color.FgCyan,
}

// colorRenderFunc draws cells like placement.AddressSpace.Render, with every
// owner in a colour of its own. Colours are dropped when color.NoColor is set.
func colorRenderFunc() session.RenderFunc {
	return func(cells []string) string {
		var b strings.Builder

		for _, owner := range cells {
			cell := "[" + string(placement.Initial(owner)) + "]"
			if owner == "" {
				b.WriteString(cell)
				continue
			}

			b.WriteString(color.New(ownerColor(owner)).Sprint(cell))
		}

		return b.String()
	}
}

func ownerColor(owner string) color.Attribute {
	h := fnv.New32a()
	_, _ = h.Write([]byte(owner))

	return ownerColors[h.Sum32()%uint32(len(ownerColors))]
}
