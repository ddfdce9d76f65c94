// MIT License
//
// Copyright (c) 2024-2026 Remora Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfo(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := New(InfoLevel, buffer)
	logger.Info("test info")

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "test info", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, InfoLevel, logger.LogLevel())
}

func TestDebug(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := New(DebugLevel, buffer)
	logger.Debugf("hello %s", "world")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &entry))
	assert.Equal(t, "hello world", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, DebugLevel, logger.LogLevel())
}

func TestLevelFiltering(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := New(ErrorLevel, buffer)
	logger.Info("filtered out")
	logger.Debug("filtered out")
	assert.Zero(t, buffer.Len())

	logger.Error("kept")
	assert.NotZero(t, buffer.Len())
}

func TestDiscardLogger(t *testing.T) {
	DiscardLogger.Info("nothing happens")
	DiscardLogger.Errorf("nothing %s", "either")
	assert.Equal(t, InvalidLevel, DiscardLogger.LogLevel())
	assert.Panics(t, func() { DiscardLogger.Panic("boom") })
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "INFO", InfoLevel.String())
	assert.Equal(t, "WARNING", WarningLevel.String())
	assert.Equal(t, "ERROR", ErrorLevel.String())
	assert.Equal(t, "PANIC", PanicLevel.String())
	assert.Equal(t, "DEBUG", DebugLevel.String())
	assert.Empty(t, InvalidLevel.String())
}
