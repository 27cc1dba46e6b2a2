package console

import (
	"sort"
	"strings"

	"zenith/internal/catalog"
)

// Suggest completes a partial line. With no space typed it offers verbs by
// prefix; after a level-add verb it offers quoted upgrade names.
func Suggest(input string, cat catalog.Catalog) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, " ")
	token := strings.ToLower(parts[0])

	if len(parts) == 1 {
		var out []string
		for _, v := range Verbs {
			if strings.HasPrefix(string(v), token) {
				out = append(out, string(v))
			}
		}
		for alias := range aliases {
			if strings.HasPrefix(alias, token) {
				out = append(out, alias)
			}
		}
		sortAliasesAfterVerbs(out)
		return out
	}

	verb := Verb(token)
	if v, ok := aliases[token]; ok {
		verb = v
	}
	var list []catalog.Upgrade
	switch verb {
	case VerbUpgradeAmount:
		list = cat.Standard
	case VerbProtocolAmount:
		list = cat.Prestige
	default:
		return nil
	}

	partial := strings.Join(parts[1:], " ")
	partial = strings.ToLower(strings.NewReplacer(`"`, "", `'`, "").Replace(partial))

	var out []string
	for _, u := range list {
		if strings.HasPrefix(strings.ToLower(u.Name), partial) {
			out = append(out, parts[0]+` "`+u.Name+`"`)
		}
	}
	return out
}

// verbs keep help order; aliases follow alphabetically
func sortAliasesAfterVerbs(out []string) {
	start := 0
	for start < len(out) && strings.HasPrefix(out[start], "-") {
		start++
	}
	sort.Strings(out[start:])
}
