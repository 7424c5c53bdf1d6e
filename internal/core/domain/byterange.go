package domain

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformedRange indicates a Range header that could not be parsed.
// Transports treat it as if no range was sent.
var ErrMalformedRange = errors.New("domain: malformed range")

// ErrRangeNotSatisfiable matches any RangeNotSatisfiableError.
var ErrRangeNotSatisfiable = errors.New("domain: range not satisfiable")

// RangeNotSatisfiableError reports a window that falls outside an asset.
type RangeNotSatisfiableError struct {
	Size int64
}

func (e RangeNotSatisfiableError) Error() string {
	return fmt.Sprintf("range not satisfiable for asset of %d bytes", e.Size)
}

func (e RangeNotSatisfiableError) Is(target error) bool {
	return target == ErrRangeNotSatisfiable
}

// ByteRange is an inclusive window [Start, End] of an asset.
type ByteRange struct {
	Start int64
	End   int64
}

// Len returns the number of bytes covered by the range.
func (r ByteRange) Len() int64 {
	return r.End - r.Start + 1
}

// ContentRange formats the range for a Content-Range header.
func (r ByteRange) ContentRange(total int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, total)
}

const rangeUnitPrefix = "bytes="

// ParseRange parses a header of the form "bytes=<start>-<end>" against an
// asset of size bytes. Either bound may be omitted: a missing start means 0
// and a missing end means size-1. An empty header yields (nil, nil).
func ParseRange(header string, size int64) (*ByteRange, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, nil
	}
	if !strings.HasPrefix(header, rangeUnitPrefix) {
		return nil, ErrMalformedRange
	}
	bounds := strings.TrimSpace(strings.TrimPrefix(header, rangeUnitPrefix))
	if strings.Contains(bounds, ",") {
		return nil, ErrMalformedRange
	}
	rawStart, rawEnd, ok := strings.Cut(bounds, "-")
	if !ok {
		return nil, ErrMalformedRange
	}
	rawStart = strings.TrimSpace(rawStart)
	rawEnd = strings.TrimSpace(rawEnd)

	start, err := parseBound(rawStart, 0, size)
	if err != nil {
		return nil, err
	}
	end, err := parseBound(rawEnd, size-1, size)
	if err != nil {
		return nil, err
	}

	if start >= size || end >= size || start > end {
		return nil, RangeNotSatisfiableError{Size: size}
	}
	return &ByteRange{Start: start, End: end}, nil
}

func parseBound(raw string, fallback, size int64) (int64, error) {
	if raw == "" {
		return fallback, nil
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return 0, ErrMalformedRange
		}
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// only digits reach here, so the value overflowed int64
		return 0, RangeNotSatisfiableError{Size: size}
	}
	return v, nil
}

// StreamStatus distinguishes full-body and partial-content responses.
type StreamStatus int

const (
	StreamFull StreamStatus = iota
	StreamPartial
)

// RangeResponse is the result of a streaming request. Body yields exactly
// Length bytes and must be closed by the caller. Body is nil for
// header-only requests.
type RangeResponse struct {
	Status   StreamStatus
	Body     io.ReadCloser
	Length   int64
	Total    int64
	Range    *ByteRange
	MimeType string
}

// ContentRange returns the Content-Range header value for partial responses.
func (r RangeResponse) ContentRange() string {
	if r.Range == nil {
		return ""
	}
	return r.Range.ContentRange(r.Total)
}
