package ui

import "strings"

type binding struct {
	keys  string
	label string
}

// KeyHelp collects the key bindings shown in the browser's status bar.
type KeyHelp []binding

func NewKeyHelp(keysAndLabels ...string) *KeyHelp {
	if len(keysAndLabels)%2 != 0 {
		panic("key help must be given in pairs")
	}
	help := make(KeyHelp, 0, len(keysAndLabels)/2)
	for i := 0; i < len(keysAndLabels); i += 2 {
		help = append(help, binding{keys: keysAndLabels[i], label: keysAndLabels[i+1]})
	}
	return &help
}

func (h *KeyHelp) Add(keys, label string) *KeyHelp {
	*h = append(*h, binding{keys: keys, label: label})
	return h
}

func (h *KeyHelp) AddIf(b bool, keys, label string) *KeyHelp {
	if b {
		h.Add(keys, label)
	}
	return h
}

func (h *KeyHelp) Render(theme Theme) string {
	parts := make([]string, len(*h))
	for i, b := range *h {
		parts[i] = b.keys + " " + theme.MutedTextStyle.Render(b.label)
	}
	return strings.Join(parts, theme.MutedTextStyle.Render(", "))
}
