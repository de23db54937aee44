package utils

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// ProgressIndicator initializes the progress indicator.
type ProgressIndicator struct {
	mu         *sync.RWMutex
	delay      time.Duration
	writer     io.Writer
	message    string
	lastOutput string
	StopMsg    string
	hideCursor bool
	running    bool
	stopChan   chan struct{}
	doneChan   chan struct{}
}

const (
	errorColor   = "\x1b[31m"
	successColor = "\x1b[32m"
	defaultColor = "\x1b[0m"
)

// NewProgressIndicator instantiates a new progress indicator writing to stderr.
func NewProgressIndicator(msg string, d time.Duration) *ProgressIndicator {
	return NewProgressIndicatorTo(os.Stderr, msg, d)
}

// NewProgressIndicatorTo instantiates a new progress indicator writing to w.
func NewProgressIndicatorTo(w io.Writer, msg string, d time.Duration) *ProgressIndicator {
	return &ProgressIndicator{
		mu:         &sync.RWMutex{},
		delay:      d,
		writer:     w,
		message:    msg,
		hideCursor: false,
	}
}

// Start starts the progress indicator. Starting a running indicator is a no-op.
func (pi *ProgressIndicator) Start() {
	pi.mu.Lock()
	defer pi.mu.Unlock()

	if pi.running {
		return
	}
	pi.running = true
	pi.stopChan = make(chan struct{})
	pi.doneChan = make(chan struct{})

	if pi.hideCursor && runtime.GOOS != "windows" {
		// hides the cursor
		fmt.Fprint(pi.writer, "\033[?25l")
	}

	go func(stop, done chan struct{}) {
		defer close(done)
		for {
			for _, r := range `⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏` {
				select {
				case <-stop:
					return
				default:
					pi.mu.Lock()

					output := fmt.Sprintf("\r%s%s %c%s", pi.message, successColor, r, defaultColor)
					fmt.Fprint(pi.writer, output)
					pi.lastOutput = output

					pi.mu.Unlock()
					time.Sleep(pi.delay)
				}
			}
		}
	}(pi.stopChan, pi.doneChan)
}

// Stop stops the progress indicator and prints StopMsg, if any.
// Stopping an indicator which is not running is a no-op.
func (pi *ProgressIndicator) Stop() {
	pi.mu.Lock()
	if !pi.running {
		pi.mu.Unlock()
		return
	}
	pi.running = false
	close(pi.stopChan)
	done := pi.doneChan
	pi.mu.Unlock()

	// Wait for the spinner so it cannot redraw over the stop message.
	<-done

	pi.mu.Lock()
	defer pi.mu.Unlock()

	pi.clear()
	pi.RestoreCursor()
	if len(pi.StopMsg) > 0 {
		fmt.Fprint(pi.writer, pi.StopMsg)
	}
}

// Begin sets the message and starts the indicator.
func (pi *ProgressIndicator) Begin(message string) {
	pi.mu.Lock()
	pi.message = message
	pi.StopMsg = ""
	pi.mu.Unlock()

	pi.Start()
}

// End stops the indicator with a finished or failed mark depending on err.
func (pi *ProgressIndicator) End(err error) {
	pi.mu.Lock()
	if err != nil {
		pi.StopMsg = fmt.Sprintf("%s %sfailed ✗%s\n", pi.message, errorColor, defaultColor)
	} else {
		pi.StopMsg = fmt.Sprintf("%s %sfinished ✔%s\n", pi.message, successColor, defaultColor)
	}
	pi.mu.Unlock()

	pi.Stop()
}

// RestoreCursor restores back the cursor visibility.
func (pi *ProgressIndicator) RestoreCursor() {
	if pi.hideCursor && runtime.GOOS != "windows" {
		// makes the cursor visible
		fmt.Fprint(pi.writer, "\033[?25h")
	}
}

// clear deletes the last line. Caller must hold the the locker.
func (pi *ProgressIndicator) clear() {
	n := utf8.RuneCountInString(pi.lastOutput)
	if n == 0 {
		return
	}
	if runtime.GOOS == "windows" {
		clearString := "\r" + strings.Repeat(" ", n) + "\r"
		fmt.Fprint(pi.writer, clearString)
		pi.lastOutput = ""
		return
	}
	for _, c := range []string{"\b", "\127", "\b", "\033[K"} { // "\033[K" for macOS Terminal
		fmt.Fprint(pi.writer, strings.Repeat(c, n))
	}
	fmt.Fprint(pi.writer, "\r\033[K") // clear line
	pi.lastOutput = ""
}
