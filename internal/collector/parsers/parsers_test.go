package parsers

import (
	"testing"

	"github.com/rileyhilliard/emuwatch/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseABI(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    string
		wantErr bool
	}{
		{"x86", "    primaryCpuAbi=x86\n", "x86", false},
		{"arm64", "    primaryCpuAbi=arm64-v8a\n    secondaryCpuAbi=null\n", "arm64-v8a", false},
		{"null", "    primaryCpuAbi=null\n", "", false},
		{"trailing CR", "primaryCpuAbi=x86_64\r\n", "x86_64", false},
		{"empty value", "primaryCpuAbi=\n", "", false},
		{"missing", "", "", true},
		{"unrelated output", "Unable to find package: com.example\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseABI(tt.output)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrParse))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePid(t *testing.T) {
	pid, err := ParsePid("4321\n")
	require.NoError(t, err)
	assert.Equal(t, 4321, pid)

	pid, err = ParsePid("4321 4400\n")
	require.NoError(t, err)
	assert.Equal(t, 4321, pid)

	for _, bad := range []string{"", "\n", "abc", "0", "-5"} {
		_, err := ParsePid(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestParseStatmVSS(t *testing.T) {
	vss, err := ParseStatmVSS("998400 21504 15360 4 0 120832 0\n")
	require.NoError(t, err)
	assert.Equal(t, int64(998400*4096), vss)

	_, err = ParseStatmVSS("")
	assert.Error(t, err)

	_, err = ParseStatmVSS("cat: /proc/1/statm: No such file or directory")
	assert.Error(t, err)
}

func TestParseFreeBytes(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    int64
		wantErr bool
	}{
		{
			name: "toybox free",
			output: "\t\ttotal\t\tused\t\tfree\t\tshared\t\tbuffers\n" +
				"Mem:\t\t4124442624\t3716497408\t407945216\t2203648\t\t61304832\n" +
				"-/+ buffers/cache:\t3655192576\t469250048\n" +
				"Swap:\t\t0\t\t0\t\t0\n",
			want: 407945216,
		},
		{
			name:   "leading blank line",
			output: "\n      total  used  free\nMem:  100    60    40\n",
			want:   40,
		},
		{name: "header only", output: "total used free\n", wantErr: true},
		{name: "short row", output: "total used free\nMem: 1 2\n", wantErr: true},
		{name: "not a number", output: "total used free\nMem: 1 2 lots\n", wantErr: true},
		{name: "empty", output: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFreeBytes(tt.output)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
