package alert

import (
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/rileyhilliard/emuwatch/internal/logger"
)

// DefaultNotifyCommand returns the desktop notification command for the
// current platform. Title and body are appended as arguments.
func DefaultNotifyCommand() []string {
	if runtime.GOOS == "darwin" {
		return []string{"terminal-notifier", "-message"}
	}
	return []string{"notify-send"}
}

// DefaultSoundCommand returns the audio player for the current platform.
// The sound file is appended as the last argument.
func DefaultSoundCommand() []string {
	if runtime.GOOS == "darwin" {
		return []string{"afplay"}
	}
	return []string{"paplay"}
}

// spawn starts argv without waiting for it; a goroutine reaps the child.
func spawn(argv []string, log logger.Logger) {
	if len(argv) == 0 {
		return
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		log.Warn("couldn't run %s: %v", argv[0], err)
		return
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Debug("%s exited: %v", argv[0], err)
		}
	}()
}

// CommandNotifier runs an external command for every alert.
type CommandNotifier struct {
	Command []string
	Log     logger.Logger
}

// NewCommandNotifier creates a notifier; an empty command selects the
// platform default.
func NewCommandNotifier(command []string, log logger.Logger) *CommandNotifier {
	if len(command) == 0 {
		command = DefaultNotifyCommand()
	}
	if log == nil {
		log = logger.Noop()
	}
	return &CommandNotifier{Command: command, Log: log}
}

// Args returns the argv for one notification.
func (n *CommandNotifier) Args(title, body string) []string {
	argv := append([]string(nil), n.Command...)
	if len(argv) > 0 && argv[0] == "terminal-notifier" {
		return append(argv, body, "-title", title)
	}
	return append(argv, title, body)
}

// Notify implements Notifier.
func (n *CommandNotifier) Notify(title, body string) {
	spawn(n.Args(title, body), n.Log)
}

// LogNotifier writes alerts to a logger.
type LogNotifier struct {
	Log logger.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(title, body string) {
	n.Log.Warn("%s: %s", title, body)
}

// MultiNotifier fans an alert out to several notifiers.
type MultiNotifier []Notifier

// Notify implements Notifier.
func (m MultiNotifier) Notify(title, body string) {
	for _, n := range m {
		if n != nil {
			n.Notify(title, body)
		}
	}
}

// CommandPlayer plays a sound file with an external player.
type CommandPlayer struct {
	Command []string
	File    string
	Log     logger.Logger
}

// NewCommandPlayer creates a player; an empty command selects the
// platform default.
func NewCommandPlayer(command []string, file string, log logger.Logger) *CommandPlayer {
	if len(command) == 0 {
		command = DefaultSoundCommand()
	}
	if log == nil {
		log = logger.Noop()
	}
	return &CommandPlayer{Command: command, File: file, Log: log}
}

// Args returns the player argv.
func (p *CommandPlayer) Args() []string {
	return append(append([]string(nil), p.Command...), p.File)
}

// Play implements Player.
func (p *CommandPlayer) Play() {
	spawn(p.Args(), p.Log)
}

// BellPlayer rings the terminal bell.
type BellPlayer struct {
	mu  sync.Mutex
	Out io.Writer
}

// Play implements Player.
func (b *BellPlayer) Play() {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.Out
	if out == nil {
		out = os.Stderr
	}
	_, _ = io.WriteString(out, "\a")
}

// NewPlayer returns a CommandPlayer for file, or a BellPlayer when no
// file is configured.
func NewPlayer(command []string, file string, log logger.Logger) Player {
	if file == "" {
		return &BellPlayer{}
	}
	return NewCommandPlayer(command, file, log)
}
