package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodecError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantEncoding bool
		wantDecoding bool
		wantMsg      string
	}{
		{
			name:         "encode with path",
			err:          NewEncodingError("protobuf", "users[3].age", io.ErrUnexpectedEOF),
			wantEncoding: true,
			wantMsg:      "protobuf encode at users[3].age: unexpected EOF",
		},
		{
			name:         "decode without path",
			err:          NewDecodingError("msgpack", "", io.ErrUnexpectedEOF),
			wantDecoding: true,
			wantMsg:      "msgpack decode: unexpected EOF",
		},
		{
			name:         "size counts as encode",
			err:          &CodecError{Codec: "msgpack", Op: OpSize, Err: io.EOF},
			wantEncoding: true,
			wantMsg:      "msgpack size: EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("measure: %w", tt.err)
			assert.Equal(t, tt.wantEncoding, errors.Is(wrapped, ErrEncoding))
			assert.Equal(t, tt.wantDecoding, errors.Is(wrapped, ErrDecoding))
			assert.Equal(t, tt.wantMsg, tt.err.Error())

			var codecErr *CodecError
			assert.True(t, errors.As(wrapped, &codecErr))
		})
	}
}

func TestCorruptRecordError(t *testing.T) {
	err := fmt.Errorf("load: %w", &CorruptRecordError{Key: "serbench-run-01.json", Err: io.ErrUnexpectedEOF})

	assert.True(t, errors.Is(err, ErrCorruptRecord))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	var corrupt *CorruptRecordError
	if assert.True(t, errors.As(err, &corrupt)) {
		assert.Equal(t, "serbench-run-01.json", corrupt.Key)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"no records", fmt.Errorf("compare: %w", ErrNoRecordsFound), ExitMissingInput},
		{"codec unavailable", fmt.Errorf("prepare: %w", ErrCodecUnavailable), ExitMissingInput},
		{"invalid config", ErrInvalidConfiguration, ExitInvalidConfig},
		{"encoding", NewEncodingError("json", "", io.EOF), ExitFailure},
		{"generic", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
