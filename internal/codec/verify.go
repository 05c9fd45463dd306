package codec

import (
	"fmt"

	benchErrors "serbench/internal/errors"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// VerifyRoundTrip checks decode(encode(v)) == v and SizeOf(v) == len(encode(v)).
// A codec failing either check is unavailable for the run.
func VerifyRoundTrip(c Codec, v any) error {
	b, err := c.Encode(v)
	if err != nil {
		return err
	}

	size, err := c.SizeOf(v)
	if err != nil {
		return err
	}
	if size != len(b) {
		return fmt.Errorf("%s: SizeOf reported %d bytes but encoding is %d: %w",
			c.Name(), size, len(b), benchErrors.ErrCodecUnavailable)
	}

	got, err := c.Decode(b)
	if err != nil {
		return err
	}
	if diff := cmp.Diff(v, got, cmpopts.EquateEmpty()); diff != "" {
		return fmt.Errorf("%s: round trip mismatch (-want +got):\n%s: %w",
			c.Name(), diff, benchErrors.ErrCodecUnavailable)
	}
	return nil
}
