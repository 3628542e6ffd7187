package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"
)

const indentUnit = "    "

func indentAt(level int) string { return strings.Repeat(indentUnit, level) }

type App struct {
	Name        string
	Synopsis    string
	Description string
	Authors     []string
	Repository  string
	FlagSet     *FlagSet
	Action      func(args []string) error
	Stdout      io.Writer
	Stderr      io.Writer
}

func NewApp(name string) *App {
	return &App{
		Name:    name,
		FlagSet: NewFlagSet(name),
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Run parses arguments and invokes Action with the positional arguments.
// A parse error prints the short usage page to Stderr.
func (a *App) Run(arguments []string) error {
	help := false
	a.FlagSet.Bool(&help, "help", "h", false, "Display this information")

	if err := a.FlagSet.Parse(arguments); err != nil {
		fmt.Fprintln(a.Stderr, err)
		a.WriteUsage(a.Stderr)
		return err
	}
	if help {
		a.WriteHelp(a.Stdout)
		return nil
	}
	if a.Action != nil {
		return a.Action(a.FlagSet.Args())
	}
	return nil
}

func (a *App) WriteUsage(w io.Writer) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Usage: %s %s\n", a.Name, a.Synopsis)
	a.writeOptions(&sb, newLayout(a))
	fmt.Fprintf(&sb, "\nRun '%s --help' for all available options and flags.\n", a.Name)
	io.WriteString(w, sb.String())
}

func (a *App) WriteHelp(w io.Writer) {
	var sb strings.Builder
	lay := newLayout(a)

	if len(a.Authors) > 0 {
		fmt.Fprintf(&sb, "\n%sCopyright (c): %s and contributors\n", indentAt(1), strings.Join(a.Authors, ", "))
	}
	if a.Repository != "" {
		fmt.Fprintf(&sb, "%sFor more details refer to %s\n", indentAt(1), a.Repository)
	}
	if a.Synopsis != "" {
		fmt.Fprintf(&sb, "\n%sSynopsis\n%s%s %s\n", indentAt(1), indentAt(2), a.Name, a.Synopsis)
	}
	if a.Description != "" {
		fmt.Fprintf(&sb, "\n%sDescription\n", indentAt(1))
		for _, line := range wrapText(a.Description, lay.termWidth-len(indentAt(2))) {
			fmt.Fprintf(&sb, "%s%s\n", indentAt(2), line)
		}
	}
	a.writeOptions(&sb, lay)

	groups := append([]FlagGroup(nil), a.FlagSet.groups...)
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	for _, group := range groups {
		a.writeGroup(&sb, group, lay)
	}
	io.WriteString(w, sb.String())
}

// layout holds the column widths shared by every entry of a page.
type layout struct {
	termWidth  int
	leftWidth  int
	usageWidth int
}

func newLayout(a *App) layout {
	lay := layout{termWidth: terminalWidth()}
	grow := func(left, usage string) {
		lay.leftWidth = max(lay.leftWidth, len(left))
		lay.usageWidth = max(lay.usageWidth, len(usage))
	}
	for _, flag := range a.optionFlags() {
		grow(flagString(flag), flag.Usage)
	}
	for _, group := range a.FlagSet.groups {
		if len(group.Flags) == 0 {
			continue
		}
		grow(fmt.Sprintf("-%sno-<%s>", group.Flags[0].Prefix, group.GroupType), "")
		for _, entry := range group.Flags {
			grow(entry.Name, entry.Usage)
		}
	}
	return lay
}

// optionFlags returns the flags that are not members of a group, sorted
// by name.
func (a *App) optionFlags() []*Flag {
	grouped := make(map[string]bool)
	for _, group := range a.FlagSet.groups {
		for _, e := range group.Flags {
			grouped[e.Prefix+e.Name] = true
			grouped[e.Prefix+"no-"+e.Name] = true
		}
	}
	var flags []*Flag
	for _, flag := range a.FlagSet.flags {
		if !grouped[flag.Name] {
			flags = append(flags, flag)
		}
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i].Name < flags[j].Name })
	return flags
}

func (a *App) writeOptions(sb *strings.Builder, lay layout) {
	flags := a.optionFlags()
	if len(flags) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%sOptions\n", indentAt(1))
	for _, flag := range flags {
		right := ""
		if !isBoolFlag(flag) && flag.DefValue != "" {
			right = fmt.Sprintf("|%s|", flag.DefValue)
		}
		lay.writeEntry(sb, flagString(flag), flag.Usage, right)
	}
}

func (a *App) writeGroup(sb *strings.Builder, group FlagGroup, lay layout) {
	if len(group.Flags) == 0 {
		return
	}
	prefix := group.Flags[0].Prefix
	fmt.Fprintf(sb, "\n%s%s\n", indentAt(1), group.Name)
	lay.writeEntry(sb, fmt.Sprintf("-%s<%s>", prefix, group.GroupType), "Enable a specific "+group.GroupType, "")
	lay.writeEntry(sb, fmt.Sprintf("-%sno-<%s>", prefix, group.GroupType), "Disable a specific "+group.GroupType, "")
	if group.Header != "" {
		fmt.Fprintf(sb, "%s%s\n", indentAt(1), group.Header)
	}

	entries := append([]FlagGroupEntry(nil), group.Flags...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	for _, e := range entries {
		state := "|-|"
		if e.Enabled != nil && *e.Enabled && (e.Disabled == nil || !*e.Disabled) {
			state = "|x|"
		}
		lay.writeEntry(sb, e.Name, e.Usage, state)
	}
}

func flagString(flag *Flag) string {
	var sb strings.Builder
	if flag.Shorthand != "" {
		fmt.Fprintf(&sb, "-%s, ", flag.Shorthand)
	}
	fmt.Fprintf(&sb, "--%s", flag.Name)
	if !isBoolFlag(flag) && flag.ExpectedType != "" {
		fmt.Fprintf(&sb, " <%s>", flag.ExpectedType)
	}
	return sb.String()
}

// writeEntry prints `left usage right`, wrapping usage to the terminal
// width. Continuation lines align with the usage column.
func (lay layout) writeEntry(sb *strings.Builder, left, usage, right string) {
	indent := indentAt(2)
	avail := lay.termWidth - len(indent) - lay.leftWidth - 1
	if right != "" {
		avail -= len(right) + 2
	}
	avail = max(avail, 10)
	lines := wrapText(usage, avail)
	first := ""
	if len(lines) > 0 {
		first = lines[0]
	}
	if right != "" {
		fmt.Fprintf(sb, "%s%-*s %-*s  %s\n", indent, lay.leftWidth, left, min(lay.usageWidth, avail), first, right)
	} else {
		fmt.Fprintf(sb, "%s%-*s %s\n", indent, lay.leftWidth, left, first)
	}
	for _, line := range lines[min(1, len(lines)):] {
		fmt.Fprintf(sb, "%s%s %s\n", indent, strings.Repeat(" ", lay.leftWidth), line)
	}
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return max(width, 20)
}

func wrapText(text string, maxWidth int) []string {
	words := strings.Fields(text)
	if maxWidth <= 0 || len(words) == 0 {
		return words
	}
	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > maxWidth {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	return append(lines, line)
}
