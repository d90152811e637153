package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	coreapp "blueprints/internal/core/app"
	"blueprints/internal/core/ports"
)

// runUI drives a full project generation behind a terminal UI. Progress
// events from the pipeline feed the model; quitting early cancels the
// generation context.
func runUI(ctx context.Context, app *coreapp.App, root string) (ports.ProjectResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(initialModel(root, cancel), tea.WithAltScreen())

	app.SetProgressHandler(func(ev coreapp.ProgressEvent) {
		p.Send(progressMsg(ev))
	})

	go func() {
		result, err := app.GenerateProject(ctx, root)
		p.Send(doneMsg{result: result, err: err})
	}()

	final, err := p.Run()
	app.SetProgressHandler(nil)
	if err != nil {
		return ports.ProjectResult{}, err
	}

	m := final.(model)
	if !m.finished {
		return m.result, context.Canceled
	}
	return m.result, m.err
}
