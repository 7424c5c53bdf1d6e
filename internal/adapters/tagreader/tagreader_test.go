package tagreader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

// id3Frame encodes an ID3v2.3 frame with an ISO-8859-1 payload.
func id3Frame(id string, payload []byte) []byte {
	var b bytes.Buffer
	b.WriteString(id)
	binary.Write(&b, binary.BigEndian, uint32(len(payload)))
	b.Write([]byte{0, 0})
	b.Write(payload)
	return b.Bytes()
}

func textFrame(id, text string) []byte {
	return id3Frame(id, append([]byte{0}, text...))
}

func lyricsFrame(text string) []byte {
	payload := []byte{0, 'e', 'n', 'g', 0}
	return id3Frame("USLT", append(payload, text...))
}

// buildMP3 returns an ID3v2.3 tag followed by a few MPEG frame headers.
func buildMP3(frames ...[]byte) []byte {
	var body bytes.Buffer
	for _, f := range frames {
		body.Write(f)
	}
	size := body.Len()
	syncsafe := []byte{
		byte(size >> 21 & 0x7f),
		byte(size >> 14 & 0x7f),
		byte(size >> 7 & 0x7f),
		byte(size & 0x7f),
	}

	var out bytes.Buffer
	out.WriteString("ID3")
	out.Write([]byte{3, 0, 0})
	out.Write(syncsafe)
	out.Write(body.Bytes())
	for i := 0; i < 4; i++ {
		out.Write([]byte{0xFF, 0xFB, 0x90, 0x64})
		out.Write(make([]byte, 413))
	}
	return out.Bytes()
}

func TestReader_Probe(t *testing.T) {
	lyrics := "Here comes the sun, and I say it's all right"

	tests := []struct {
		name    string
		input   []byte
		want    domain.AudioMetadata
		wantErr error
	}{
		{
			name: "id3 tags with lyrics",
			input: buildMP3(
				textFrame("TIT2", "Here Comes the Sun"),
				textFrame("TPE1", "The Beatles"),
				textFrame("TALB", "Abbey Road"),
				lyricsFrame(lyrics),
			),
			want: domain.AudioMetadata{
				MimeType:  "audio/mpeg",
				Extension: "mp3",
				Title:     "Here Comes the Sun",
				Artist:    "The Beatles",
				Album:     "Abbey Road",
				Lyrics:    lyrics,
			},
		},
		{
			name:  "untagged mpeg stream",
			input: append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 600)...),
			want: domain.AudioMetadata{
				MimeType:  "audio/mpeg",
				Extension: "mp3",
			},
		},
		{
			name:    "plain text is rejected",
			input:   []byte("definitely not a song, just some words in a file"),
			wantErr: domain.ErrUnsupportedMedia,
		},
		{
			name:    "png is rejected",
			input:   []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D},
			wantErr: domain.ErrUnsupportedMedia,
		},
		{
			name:    "empty file",
			input:   nil,
			wantErr: domain.ErrUnsupportedMedia,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().Probe(bytes.NewReader(tt.input))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReader_ProbeWav(t *testing.T) {
	wav := make([]byte, 44)
	copy(wav[0:], "RIFF")
	copy(wav[8:], "WAVE")
	copy(wav[12:], "fmt ")

	got, err := New().Probe(bytes.NewReader(wav))
	require.NoError(t, err)
	assert.Equal(t, "wav", got.Extension)
	assert.Contains(t, got.MimeType, "wav")
}

func TestClean_DecodesLegacyText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "utf8 untouched", input: "  Café del Mar\x00\x00", want: "Café del Mar"},
		{name: "gbk decoded", input: "\xc4\xe3\xba\xc3", want: "你好"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clean(tt.input))
		})
	}
}
