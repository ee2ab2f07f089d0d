package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/coregx/packetizer"
	"github.com/coregx/packetizer/mir"
	"github.com/coregx/packetizer/target"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	bundleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7BD88F"))
	singleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
	classStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// renderFunction draws one box per block listing its packets in issue
// order. Bundled packets are braced.
func renderFunction(tgt *target.Target, fn *mir.Function) string {
	boxes := make([]string, 0, len(fn.Blocks)+1)
	boxes = append(boxes, titleStyle.Render(fmt.Sprintf("%s · %s", fn.Name, tgt.Name())))
	for _, b := range fn.Blocks {
		boxes = append(boxes, boxStyle.Render(renderBlock(tgt, b)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

func renderBlock(tgt *target.Target, b *mir.Block) string {
	lines := []string{titleStyle.Render(b.Name + ":")}
	for cycle, pkt := range b.Packets() {
		if len(pkt) == 1 {
			lines = append(lines, fmt.Sprintf("%3d   %s", cycle, renderInstr(tgt, pkt[0], singleStyle)))
			continue
		}
		for k, in := range pkt {
			lb, rb := "│", ""
			switch k {
			case 0:
				lb = "{"
			case len(pkt) - 1:
				rb = " }"
			}
			prefix := "   "
			if k == 0 {
				prefix = fmt.Sprintf("%3d", cycle)
			}
			lines = append(lines, fmt.Sprintf("%s %s %s%s", prefix, bundleStyle.Render(lb),
				renderInstr(tgt, in, bundleStyle), bundleStyle.Render(rb)))
		}
	}
	return strings.Join(lines, "\n")
}

func renderInstr(tgt *target.Target, in *mir.Instr, style lipgloss.Style) string {
	return style.Render(in.String()) + classStyle.Render(fmt.Sprintf("  [%s]", tgt.ClassName(in.Class)))
}

// renderTargets lists the builtin targets with their units and classes.
func renderTargets(names []string) (string, error) {
	lines := []string{titleStyle.Render("targets")}
	for _, name := range names {
		tgt, err := target.Builtin(name)
		if err != nil {
			return "", err
		}
		desc := tgt.Description()
		classes := make([]string, len(desc.Classes))
		for i, c := range desc.Classes {
			classes[i] = c.Name
		}
		lines = append(lines, fmt.Sprintf("%-8s units %s  classes %s", desc.Name,
			strings.Join(desc.Units, " "), classStyle.Render(strings.Join(classes, " "))))
	}
	return boxStyle.Render(strings.Join(lines, "\n")), nil
}

// renderStats summarizes packetization statistics.
func renderStats(st packetizer.Stats) string {
	rows := [][2]string{
		{"instructions", fmt.Sprint(st.Instrs)},
		{"packets", fmt.Sprint(st.Packets)},
		{"bundles", fmt.Sprintf("%d (%d instructions)", st.Bundles, st.Bundled)},
		{"solo", fmt.Sprint(st.Solo)},
		{"ignored", fmt.Sprint(st.Ignored)},
		{"resource stalls", fmt.Sprint(st.ResourceStalls)},
		{"dependence stalls", fmt.Sprint(st.DependenceStalls)},
		{"policy stalls", fmt.Sprint(st.PolicyStalls)},
	}
	lines := []string{titleStyle.Render("statistics")}
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%-18s %s", r[0], r[1]))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
