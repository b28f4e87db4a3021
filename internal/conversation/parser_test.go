package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmedmed7t/smartcookly/internal/domain"
	"github.com/ahmedmed7t/smartcookly/internal/logger"
)

func TestKeywordParser(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewKeywordParser(log)
	ctx := context.Background()

	tests := []struct {
		input   string
		want    domain.CommandType
		wantRaw string
	}{
		// Navigation
		{"next", domain.CmdNext, "next"},
		{"N", domain.CmdNext, "N"},
		{"done", domain.CmdNext, "done"},
		{"prev", domain.CmdPrevious, "prev"},
		{"back", domain.CmdPrevious, "back"},
		{"finish", domain.CmdFinish, "finish"},
		{"all   done", domain.CmdFinish, "all done"},

		// Timer
		{"timer", domain.CmdStartTimer, "timer"},
		{"start timer", domain.CmdStartTimer, "start timer"},
		{"pause", domain.CmdPauseTimer, "pause"},
		{"resume", domain.CmdResumeTimer, "resume"},
		{"continue", domain.CmdResumeTimer, "continue"},
		{"reset", domain.CmdResetTimer, "reset"},
		{"cancel timer", domain.CmdResetTimer, "cancel timer"},

		// Session
		{"retry", domain.CmdRetry, "retry"},
		{"try again", domain.CmdRetry, "try again"},
		{"status", domain.CmdStatus, "status"},
		{"fav", domain.CmdFavorite, "fav"},
		{"favourite", domain.CmdFavorite, "favourite"},
		{"help", domain.CmdHelp, "help"},
		{"?", domain.CmdHelp, "?"},
		{"quit", domain.CmdQuit, "quit"},
		{"  q  ", domain.CmdQuit, "q"},

		// Unknown
		{"", domain.CmdUnknown, ""},
		{"   ", domain.CmdUnknown, ""},
		{"can I use butter instead", domain.CmdUnknown, "can I use butter instead"},
		{"next please", domain.CmdUnknown, "next please"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, err := parser.Parse(ctx, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd.Type != tt.want {
				t.Fatalf("input %q: expected %s, got %s", tt.input, tt.want, cmd.Type)
			}
			if cmd.Raw != tt.wantRaw {
				t.Fatalf("input %q: expected raw %q, got %q", tt.input, tt.wantRaw, cmd.Raw)
			}
		})
	}
}

// stubParser returns a fixed command or error and counts calls.
type stubParser struct {
	cmd   domain.CommandType
	err   error
	calls int
}

func (s *stubParser) Parse(ctx context.Context, input string) (*domain.Command, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Command{Type: s.cmd, Raw: input}, nil
}

func TestFallbackParser(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	ctx := context.Background()

	tests := []struct {
		name          string
		input         string
		secondary     *stubParser
		want          domain.CommandType
		wantSecondary int
	}{
		{"keyword wins", "next", &stubParser{cmd: domain.CmdQuit}, domain.CmdNext, 0},
		{"fallback used", "move along please", &stubParser{cmd: domain.CmdNext}, domain.CmdNext, 1},
		{"empty input skips fallback", "  ", &stubParser{cmd: domain.CmdNext}, domain.CmdUnknown, 0},
		{"fallback error degrades", "move along please", &stubParser{err: errors.New("offline")}, domain.CmdUnknown, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewFallbackParser(NewKeywordParser(log), tt.secondary, log)
			cmd, err := p.Parse(ctx, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd.Type != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, cmd.Type)
			}
			if tt.secondary.calls != tt.wantSecondary {
				t.Fatalf("expected %d secondary calls, got %d", tt.wantSecondary, tt.secondary.calls)
			}
		})
	}

	t.Run("nil secondary", func(t *testing.T) {
		p := NewFallbackParser(NewKeywordParser(log), nil, log)
		cmd, err := p.Parse(ctx, "something odd")
		if err != nil || cmd.Type != domain.CmdUnknown {
			t.Fatalf("expected unknown, got %v %v", cmd, err)
		}
	})
}
