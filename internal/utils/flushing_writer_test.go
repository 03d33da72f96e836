package utils_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleet/internal/utils"
)

type flushRecordingWriter struct {
	buffer     bytes.Buffer
	flushCount int
}

func (writer *flushRecordingWriter) Write(data []byte) (int, error) {
	return writer.buffer.Write(data)
}

func (writer *flushRecordingWriter) Flush() error {
	writer.flushCount++
	return nil
}

func TestFlushingWriterFlushesAfterEachWrite(testInstance *testing.T) {
	recordingWriter := &flushRecordingWriter{}
	flushingWriter := utils.NewFlushingWriter(recordingWriter)

	bytesWritten, writeError := flushingWriter.Write([]byte("pulled"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, 6, bytesWritten)
	require.Equal(testInstance, "pulled", recordingWriter.buffer.String())
	require.Equal(testInstance, 1, recordingWriter.flushCount)
}

func TestFlushingWriterPassesThroughPlainWriters(testInstance *testing.T) {
	plainBuffer := &bytes.Buffer{}
	flushingWriter := utils.NewFlushingWriter(plainBuffer)

	_, writeError := flushingWriter.Write([]byte("status"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, "status", plainBuffer.String())
}

func TestFlushingWriterAvoidsDoubleWrapping(testInstance *testing.T) {
	plainBuffer := &bytes.Buffer{}
	flushingWriter := utils.NewFlushingWriter(plainBuffer)
	require.Same(testInstance, flushingWriter, utils.NewFlushingWriter(flushingWriter))
}
