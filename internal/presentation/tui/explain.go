package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ofekfell/mediaflow/internal/runtime"
	"github.com/ofekfell/mediaflow/pkg/domain"
)

// Explain describes a compiled plan as markdown.
func Explain(root domain.Node, plan *runtime.Plan) string {
	var sb strings.Builder

	sb.WriteString("# Render plan\n\n")
	fmt.Fprintf(&sb, "Actions: **%d**, leaves: **%d**\n\n", countActions(root), len(domain.Leaves(root)))

	sb.WriteString("## Inputs\n\n")
	sb.WriteString("| File | Uses | Copies |\n|---|---|---|\n")
	paths := make([]string, 0, len(plan.Usage))
	for p := range plan.Usage {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		fmt.Fprintf(&sb, "| `%s` | %d | %d |\n", p, plan.Usage[p], len(plan.Copies[p]))
	}
	sb.WriteString("\n")

	if plan.Job == nil {
		return sb.String()
	}

	sb.WriteString("## Filter graph\n\n")
	if plan.Job.FilterComplex == "" {
		sb.WriteString("_No filters: the input is remuxed as is._\n\n")
	} else {
		sb.WriteString("```\n")
		for _, chain := range strings.Split(plan.Job.FilterComplex, ";") {
			sb.WriteString(chain)
			sb.WriteString("\n")
		}
		sb.WriteString("```\n\n")
	}

	sb.WriteString("## Command\n\n```sh\nffmpeg")
	for _, arg := range plan.Job.Args() {
		sb.WriteString(" ")
		sb.WriteString(quote(arg))
	}
	sb.WriteString("\n```\n")

	return sb.String()
}

func countActions(root domain.Node) int {
	n, ok := root.(*domain.ActionNode)
	if !ok || n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children() {
		total += countActions(c)
	}
	return total
}

func quote(arg string) string {
	if arg == "" || strings.ContainsAny(arg, " \t'\"[];,$") {
		return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
	}
	return arg
}
