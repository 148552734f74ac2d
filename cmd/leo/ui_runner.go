package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"leo/internal/driver"
	"leo/internal/ui"
)

type runOutcome struct {
	results []driver.RunResult
	err     error
}

// runFilesWithUI runs files while a progress view renders their events.
func runFilesWithUI(ctx context.Context, title string, files []string, opts driver.RunOptions) ([]driver.RunResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.RunFiles(ctx, files, opts)
		outcomeCh <- runOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	if uiErr != nil {
		for range events {
		}
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
