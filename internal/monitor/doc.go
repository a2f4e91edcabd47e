// Package monitor implements the emuwatch terminal dashboard.
//
// The dashboard shows the latest status lines, two braille charts (host
// free memory and remaining virtual memory per watched package), and an
// alert banner. It never polls the device itself: the scheduler publishes
// Status and ChartData on latest-wins channels and the model waits on them
// with tea.Cmds.
//
// # Message Flow
//
//  1. waitStatus/waitChart block on the scheduler channels
//  2. statusMsg/chartMsg replace the model's copy and re-arm the wait
//  3. BannerNotifier forwards alerts into the program as bannerMsg
//  4. clockMsg fires every second to age the banner and the "updated" label
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	m           - Mute or unmute alerts
//	a           - Toggle alert sound (persisted)
//	t           - Fire a test alert
//	?           - Toggle full help
package monitor
