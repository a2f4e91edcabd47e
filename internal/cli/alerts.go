package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/rileyhilliard/emuwatch/internal/errors"
	"github.com/rileyhilliard/emuwatch/internal/ui"
)

// alertTestCommand sends the test alert through the configured notifier
// and player.
func alertTestCommand(s *Session, out io.Writer) error {
	if s.Limiter.Test() {
		fmt.Fprintf(out, "%s Sent test alert with sound\n", ui.SuccessStyle.Render(ui.SymbolSuccess))
		return nil
	}
	fmt.Fprintf(out, "%s Sent test alert %s\n",
		ui.SuccessStyle.Render(ui.SymbolSuccess),
		ui.MutedStyle.Render("(sound is off; enable with 'emuwatch settings audio on')"))
	return nil
}

// settingsAudioCommand prints the audio toggle, or sets it when value is
// given.
func settingsAudioCommand(s *Session, out io.Writer, value string) error {
	if value == "" {
		fmt.Fprintf(out, "audio: %s\n", onOff(s.Settings.AudioEnabled()))
		return nil
	}

	on, err := parseOnOff(value)
	if err != nil {
		return err
	}
	if err := s.Settings.SetAudio(on); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't save settings",
			fmt.Sprintf("Check that %s is writable.", s.Settings.Path()))
	}
	fmt.Fprintf(out, "%s audio: %s %s\n",
		ui.SuccessStyle.Render(ui.SymbolSuccess), onOff(on),
		ui.MutedStyle.Render("("+s.Settings.Path()+")"))
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, errors.New(errors.ErrConfig,
		fmt.Sprintf("'%s' isn't on or off", s),
		"Use 'emuwatch settings audio on' or 'emuwatch settings audio off'.")
}
