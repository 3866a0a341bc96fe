package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/tracked/internal/cli"
	"github.com/julianstephens/tracked/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	client, err := ctx.RequireClient()
	if err != nil {
		return err
	}
	if err := client.Ping(ctx.Context()); err != nil {
		return fmt.Errorf("cannot reach server at %s (start it with 'tracked serve'): %w", ctx.Config.ServerURL, err)
	}

	model := tui.NewModel(client, tui.WithClock(ctx.CurrentTime))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}
