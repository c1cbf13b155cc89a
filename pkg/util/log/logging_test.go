/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap/zapcore"
)

func withConsole(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	prev, prevLogger := console, globalLogger
	console = &buf
	t.Cleanup(func() {
		console, globalLogger = prev, prevLogger
	})
	return &buf
}

func TestLogLevel_UnmarshalText(t *testing.T) {
	for text, expect := range map[string]LogLevel{
		"debug": DebugLevel,
		"INFO":  InfoLevel,
		"":      InfoLevel,
		"Warn":  WarnLevel,
		"error": ErrorLevel,
		"fatal": FatalLevel,
	} {
		var l LogLevel
		require.NoError(t, l.UnmarshalText([]byte(text)), text)
		assert.Equal(t, expect, l, text)
	}

	var l LogLevel
	assert.Error(t, l.UnmarshalText([]byte("verbose")))

	var nilLevel *LogLevel
	assert.Error(t, nilLevel.UnmarshalText([]byte("info")))
}

func TestGetLoggerLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, getLoggerLevel(int(DebugLevel)))
	assert.Equal(t, zapcore.ErrorLevel, getLoggerLevel(int(ErrorLevel)))
	assert.Equal(t, zapcore.InfoLevel, getLoggerLevel(100))
}

func TestConsole(t *testing.T) {
	buf := withConsole(t)

	Init(&LoggingConfig{LogLevel: int(InfoLevel)})
	Debugf("hidden %d", 1)
	Infof("compiled %s", "avg_price")
	Warn("careful")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "compiled avg_price")
	assert.Contains(t, out, "WARN")
}

func TestFile(t *testing.T) {
	_ = withConsole(t)
	dir := t.TempDir()

	Init(&LoggingConfig{
		LogName:           "main.log",
		LogPath:           dir,
		LogLevel:          int(DebugLevel),
		LogMaxSize:        1,
		CompileLogEnabled: true,
		CompileLogName:    "compile.log",
	})
	Infof("hello")
	CompileWarnf("rejected %s", "bad_metric")
	CompileDebugf("compiled %s", "good_metric")
	require.NoError(t, Sync())

	main, err := os.ReadFile(filepath.Join(dir, "main.log"))
	require.NoError(t, err)
	assert.Contains(t, string(main), "hello")
	assert.Contains(t, string(main), "rejected bad_metric")

	compile, err := os.ReadFile(filepath.Join(dir, "compile.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(compile), "hello")
	assert.Contains(t, string(compile), "rejected bad_metric")
	assert.Contains(t, string(compile), "compiled good_metric")
}

func TestInitNil(t *testing.T) {
	buf := withConsole(t)
	Init(nil)
	Info("default")
	assert.Contains(t, buf.String(), "default")
}
