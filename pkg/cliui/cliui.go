// Package cliui provides terminal helpers, a step spinner and markdown
// rendering, for the cozeprox chat command.
package cliui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// palette holds the styles, resolved against the terminal background on
// first use so commands that never draw do not query the terminal.
type palette struct {
	success lipgloss.Style
	fail    lipgloss.Style
	muted   lipgloss.Style
	prompt  lipgloss.Style
	dark    bool
}

var styles = sync.OnceValue(func() palette {
	dark := termenv.HasDarkBackground()
	lightDark := lipgloss.LightDark(dark)

	successColor := lightDark(lipgloss.Color("28"), lipgloss.Color("82"))
	return palette{
		success: lipgloss.NewStyle().Foreground(successColor),
		fail:    lipgloss.NewStyle().Foreground(lightDark(lipgloss.Color("160"), lipgloss.Color("196"))),
		muted:   lipgloss.NewStyle().Foreground(lightDark(lipgloss.Color("242"), lipgloss.Color("245"))),
		prompt:  lipgloss.NewStyle().Bold(true).Foreground(successColor),
		dark:    dark,
	}
})

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// IsTerminal reports whether f is attached to a terminal. Spinners and
// markdown rendering are only used when it is.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Step prints an animated spinner while fn runs, then replaces it with
// a ✓ or ✗ checkmark and elapsed time.
func Step(w io.Writer, msg string, fn func() error) error {
	done := make(chan struct{})
	stopped := make(chan struct{})
	var mu sync.Mutex

	go func() {
		defer close(stopped)
		frame := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			mu.Lock()
			fmt.Fprintf(w, "\r  %s %s",
				styles().success.Render(spinnerFrames[frame%len(spinnerFrames)]),
				msg,
			)
			mu.Unlock()

			select {
			case <-done:
				return
			case <-ticker.C:
				frame++
			}
		}
	}()

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	close(done)
	<-stopped

	mu.Lock()
	fmt.Fprintf(w, "\r  %s %s %s\n",
		Mark(err),
		msg,
		styles().muted.Render(fmt.Sprintf("(%s)", FormatDuration(elapsed))),
	)
	mu.Unlock()

	return err
}

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return styles().fail.Render("✗")
	}
	return styles().success.Render("✓")
}

// Muted renders s in the secondary text color.
func Muted(s string) string {
	return styles().muted.Render(s)
}

// Prompt renders an input prompt.
func Prompt(s string) string {
	return styles().prompt.Render(s)
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// RenderMarkdown renders markdown content for terminal display using glamour.
// On failure the unrendered content is returned alongside the error.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(markdownStyle()),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}

func markdownStyle() string {
	if styles().dark {
		return "dark"
	}
	return "light"
}

