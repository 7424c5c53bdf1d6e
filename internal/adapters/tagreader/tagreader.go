// Package tagreader identifies uploaded audio and reads its embedded tags.
package tagreader

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/dhowden/tag"
	"github.com/h2non/filetype"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/ewilliams-labs/encore/internal/core/domain"
	"github.com/ewilliams-labs/encore/internal/core/ports"
)

// headerSize is enough for every matcher filetype ships.
const headerSize = 8192

// Reader implements ports.AudioProber.
type Reader struct{}

var _ ports.AudioProber = Reader{}

// New returns a Reader.
func New() Reader {
	return Reader{}
}

// Probe sniffs the file's magic bytes and rejects anything that is not audio,
// then reads title, artist, album and lyrics from ID3, MP4, FLAC or OGG tags.
// Missing tags are not an error.
func (Reader) Probe(r io.ReadSeeker) (domain.AudioMetadata, error) {
	head := make([]byte, headerSize)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return domain.AudioMetadata{}, fmt.Errorf("tagreader: failed to read header: %w", err)
	}
	head = head[:n]

	if !filetype.IsAudio(head) {
		return domain.AudioMetadata{}, fmt.Errorf("tagreader: upload is not audio: %w", domain.ErrUnsupportedMedia)
	}
	kind, err := filetype.Match(head)
	if err != nil {
		return domain.AudioMetadata{}, fmt.Errorf("tagreader: failed to match type: %w", err)
	}

	meta := domain.AudioMetadata{
		MimeType:  kind.MIME.Value,
		Extension: kind.Extension,
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return domain.AudioMetadata{}, fmt.Errorf("tagreader: failed to rewind: %w", err)
	}
	tags, err := tag.ReadFrom(r)
	if err != nil {
		if !errors.Is(err, tag.ErrNoTagsFound) {
			log.Printf("WARN tagreader: unreadable tags in %s file: %v", kind.Extension, err)
		}
		return meta, nil
	}

	meta.Title = clean(tags.Title())
	meta.Artist = clean(tags.Artist())
	if meta.Artist == "" {
		meta.Artist = clean(tags.AlbumArtist())
	}
	meta.Album = clean(tags.Album())
	meta.Lyrics = strings.TrimSpace(decodeLegacy(tags.Lyrics()))
	return meta, nil
}

// clean drops NUL padding some taggers leave behind.
func clean(s string) string {
	return strings.TrimSpace(strings.Trim(decodeLegacy(s), "\x00"))
}

// decodeLegacy returns s unchanged when it is UTF-8. Vorbis and MP4 tags are
// handed through as raw bytes, and files tagged by older Chinese tools carry
// GBK there, so anything else is decoded as GBK.
func decodeLegacy(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	out, _, err := transform.String(simplifiedchinese.GBK.NewDecoder(), s)
	if err != nil {
		return strings.ToValidUTF8(s, "\uFFFD")
	}
	return out
}
