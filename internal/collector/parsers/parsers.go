// Package parsers turns raw device shell output into metric values.
// Every function is pure and returns an ErrParse error when the output
// doesn't have the expected shape.
package parsers

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/rileyhilliard/emuwatch/internal/errors"
)

// PageSize is the page size /proc/<pid>/statm counts in.
const PageSize = 4096

const abiKey = "primaryCpuAbi="

// ParseABI extracts the value of primaryCpuAbi from "pm dump" output.
// The literal "null" is returned as an empty string with no error: the
// package is installed but has no native code.
func ParseABI(output string) (string, error) {
	idx := strings.Index(output, abiKey)
	if idx < 0 {
		return "", errors.Parsef("no %s in pm dump output", strings.TrimSuffix(abiKey, "="))
	}
	value := output[idx+len(abiKey):]
	if fields := strings.Fields(value); len(fields) > 0 {
		value = fields[0]
	} else {
		value = ""
	}
	if value == "null" {
		return "", nil
	}
	return value, nil
}

// ParsePid reads the pid printed by "pidof -s". An empty output means the
// process is not running.
func ParsePid(output string) (int, error) {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return 0, errors.Parsef("process not running")
	}
	pid, err := strconv.Atoi(fields[0])
	if err != nil || pid <= 0 {
		return 0, errors.Parsef("invalid pid %q", fields[0])
	}
	return pid, nil
}

// ParseStatmVSS returns the virtual set size in bytes from the first field
// of /proc/<pid>/statm.
func ParseStatmVSS(output string) (int64, error) {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return 0, errors.Parsef("empty statm")
	}
	pages, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || pages < 0 {
		return 0, errors.Parsef("invalid statm size %q", fields[0])
	}
	return pages * PageSize, nil
}

// ParseFreeBytes returns the free column of the memory row of "free"
// output, in bytes:
//
//	      total        used        free      shared     buffers
//	Mem:  4124442624  3716497408  407945216   2203648  61304832
func ParseFreeBytes(output string) (int64, error) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	line := 0
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		line++
		if line != 2 {
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return 0, errors.Parsef("short memory row in free output: %q", scanner.Text())
		}
		free, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil || free < 0 {
			return 0, errors.Parsef("invalid free value %q", fields[3])
		}
		return free, nil
	}
	return 0, errors.Parsef("no memory row in free output")
}
