// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package command

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// targetLexer tokenizes a "<target> <rest>" argument tail shared by
// whisper/reply/mute/mute_global: a target that may be a bare word or a
// quoted multi-word character name, followed by everything else.
var targetLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Word", Pattern: `\S+`},
	{Name: "whitespace", Pattern: `\s+`},
})

// targetAndRest is the grammar: target = String | Word; rest = Word*.
type targetAndRest struct {
	Target string   `parser:"@(String|Word)"`
	Rest   []string `parser:"@Word*"`
}

var targetParser *participle.Parser[targetAndRest]

func init() {
	var err error
	targetParser, err = participle.Build[targetAndRest](
		participle.Lexer(targetLexer),
		participle.Unquote("String"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to build target grammar parser: %v", err))
	}
}

// parseTargetAndRest splits args into a named target and the remaining free
// text, using the same quoted-name grammar as the policy DSL: a bare word
// (`whisper Jane hello`) or a quoted multi-word name (`whisper "Jane Doe"
// hello there`) names the target, everything after it is rejoined with
// single spaces (Normalize has already collapsed whitespace runs by the
// time this runs, so no spacing is lost).
func parseTargetAndRest(field, args string) (target, rest string, err error) {
	trimmed := strings.TrimSpace(args)
	if trimmed == "" {
		return "", "", ErrBadArguments(field, "missing target")
	}

	parsed, parseErr := targetParser.ParseString("", trimmed)
	if parseErr != nil {
		return "", "", ErrBadArguments(field, fmt.Sprintf("malformed target: %v", parseErr))
	}

	return parsed.Target, strings.Join(parsed.Rest, " "), nil
}
