// Package ui provides the terminal pieces used by emuwatch's one-shot
// commands: a line spinner for slow adb calls, device tables, an
// interactive device picker and the command header. The full-screen
// dashboard lives in internal/monitor.
//
// Colors are ANSI codes so output follows the terminal theme. Call
// DisableColors for --no-color.
//
//	s := ui.NewSpinner(os.Stderr, "Connecting to emulators")
//	s.Start()
//	// ... adb connect ...
//	s.Success() // or s.Fail()
package ui
