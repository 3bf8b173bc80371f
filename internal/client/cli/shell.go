package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
)

const shellPrompt = "metareview> "

// newShellCommand запускает интерактивную оболочку. Сессия и активный
// проект живут в памяти между командами, как в одностраничном приложении.
func (r *runner) newShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r.shell = true

			r.io.Println("metareview shell. Type 'help' for commands, 'exit' to quit.")

			for {
				if err := ctx.Err(); err != nil {
					return nil
				}

				line, err := r.io.ReadInput(shellPrompt)
				if err != nil {
					if errors.Is(err, io.EOF) {
						r.io.Println()
						return nil
					}
					return fmt.Errorf("failed to read command: %w", err)
				}

				args, err := splitArgs(line)
				if err != nil {
					r.io.Printf("Error: %v\n", err)
					continue
				}
				if len(args) == 0 {
					continue
				}
				if args[0] == "exit" || args[0] == "quit" {
					return nil
				}

				sub := r.newRootCommand()
				sub.SetArgs(args)
				if err := sub.ExecuteContext(ctx); err != nil {
					r.io.Printf("Error: %v\n", err)
				}
			}
		},
	}
}

// splitArgs разбивает строку на аргументы с учетом кавычек и экранирования
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quote   rune
		escaped bool
		inArg   bool
	)

	for _, c := range line {
		switch {
		case escaped:
			current.WriteRune(c)
			escaped = false
		case c == '\\' && quote != '\'':
			escaped = true
			inArg = true
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				current.WriteRune(c)
			}
		case c == '"' || c == '\'':
			quote = c
			inArg = true
		case unicode.IsSpace(c):
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(c)
			inArg = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inArg {
		args = append(args, current.String())
	}
	return args, nil
}
