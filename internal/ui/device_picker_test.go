package ui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/emuwatch/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceItem(t *testing.T) {
	item := deviceItem{device: DeviceInfo{Serial: "127.0.0.1:16384", State: "device", Emulator: "MuMu"}}

	assert.Equal(t, "127.0.0.1:16384", item.Title())
	assert.Equal(t, "MuMu | device", item.Description())
	assert.Contains(t, item.FilterValue(), "MuMu")
	assert.Contains(t, item.FilterValue(), "16384")

	bare := deviceItem{device: DeviceInfo{Serial: "emulator-5554"}}
	assert.Empty(t, bare.Description())
}

func pickerWith(serials ...string) DevicePickerModel {
	devices := make([]DeviceInfo, len(serials))
	for i, s := range serials {
		devices[i] = DeviceInfo{Serial: s, State: "device"}
	}
	return NewDevicePickerModel(devices)
}

func TestDevicePicker_EnterSelects(t *testing.T) {
	m := pickerWith("a", "b")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := next.(DevicePickerModel).Update(tea.KeyMsg{Type: tea.KeyEnter})

	final := next.(DevicePickerModel)
	require.NotNil(t, final.Selected())
	assert.Equal(t, "b", final.Selected().Serial)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, final.View())
}

func TestDevicePicker_Cancel(t *testing.T) {
	m := pickerWith("a", "b")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, next.(DevicePickerModel).Selected())
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestDevicePicker_View(t *testing.T) {
	view := pickerWith("127.0.0.1:16384", "127.0.0.1:5555").View()
	assert.Contains(t, view, "Select a device")
	assert.Contains(t, view, "127.0.0.1:16384")
}

func TestPickDeviceWithIO_NoDevices(t *testing.T) {
	_, err := PickDeviceWithIO(nil, &bytes.Buffer{}, strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrDevice))
}

func TestPickDeviceWithIO_SingleDeviceSkipsPrompt(t *testing.T) {
	var out bytes.Buffer
	got, err := PickDeviceWithIO([]DeviceInfo{{Serial: "only"}}, &out, strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "only", got.Serial)
	assert.Empty(t, out.String())
}
