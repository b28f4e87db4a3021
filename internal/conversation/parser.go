// Package conversation turns typed user input into session commands and
// delivers notifications back to the user.
package conversation

import (
	"context"
	"regexp"
	"strings"

	"github.com/ahmedmed7t/smartcookly/internal/domain"
	"github.com/ahmedmed7t/smartcookly/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.CommandParser = (*KeywordParser)(nil)
	_ domain.CommandParser = (*FallbackParser)(nil)
)

// KeywordParser matches user input to commands using keywords and simple
// patterns.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex *regexp.Regexp
	cmd   domain.CommandType
}

// NewKeywordParser creates a keyword-based command parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(next|n|done|advance|forward)$`), domain.CmdNext},
		{regexp.MustCompile(`(?i)^(prev|previous|back|b|p)$`), domain.CmdPrevious},
		{regexp.MustCompile(`(?i)^(finish|f|finished|all done)$`), domain.CmdFinish},
		{regexp.MustCompile(`(?i)^(timer|t|start|start timer|set timer)$`), domain.CmdStartTimer},
		{regexp.MustCompile(`(?i)^(pause|hold|wait|pause timer)$`), domain.CmdPauseTimer},
		{regexp.MustCompile(`(?i)^(resume|continue|unpause|resume timer)$`), domain.CmdResumeTimer},
		{regexp.MustCompile(`(?i)^(reset|clear|reset timer|cancel timer)$`), domain.CmdResetTimer},
		{regexp.MustCompile(`(?i)^(retry|r|again|try again|reload)$`), domain.CmdRetry},
		{regexp.MustCompile(`(?i)^(status|s|where|progress|info)$`), domain.CmdStatus},
		{regexp.MustCompile(`(?i)^(fav|favorite|favourite|save|love)$`), domain.CmdFavorite},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), domain.CmdHelp},
		{regexp.MustCompile(`(?i)^(quit|exit|q|stop|abandon)$`), domain.CmdQuit},
	}
	return p
}

// Parse converts user input into a command. Input that matches no
// pattern yields CmdUnknown.
func (p *KeywordParser) Parse(ctx context.Context, input string) (*domain.Command, error) {
	trimmed := strings.Join(strings.Fields(input), " ")
	if trimmed == "" {
		return &domain.Command{Type: domain.CmdUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			p.log.Debug("matched command: %s", rule.cmd)
			return &domain.Command{Type: rule.cmd, Raw: trimmed}, nil
		}
	}

	p.log.Debug("no match, returning unknown command")
	return &domain.Command{Type: domain.CmdUnknown, Raw: trimmed}, nil
}

// FallbackParser tries a primary parser and hands input it does not
// understand to a secondary one, typically an LLM classifier.
type FallbackParser struct {
	primary   domain.CommandParser
	secondary domain.CommandParser
	log       *logger.Logger
}

// NewFallbackParser chains primary and secondary. A nil secondary makes
// the chain behave like primary alone.
func NewFallbackParser(primary, secondary domain.CommandParser, log *logger.Logger) *FallbackParser {
	return &FallbackParser{primary: primary, secondary: secondary, log: log}
}

// Parse returns the primary result unless it is CmdUnknown. A failing
// secondary degrades to CmdUnknown; the error is only logged.
func (f *FallbackParser) Parse(ctx context.Context, input string) (*domain.Command, error) {
	cmd, err := f.primary.Parse(ctx, input)
	if err != nil {
		return nil, err
	}
	if cmd.Type != domain.CmdUnknown || cmd.Raw == "" || f.secondary == nil {
		return cmd, nil
	}

	f.log.Debug("falling back to secondary parser for %q", cmd.Raw)
	fallback, err := f.secondary.Parse(ctx, cmd.Raw)
	if err != nil {
		f.log.Warn("secondary parser failed: %v", err)
		return cmd, nil
	}
	return fallback, nil
}
