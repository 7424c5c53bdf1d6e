package domain

import (
	"errors"
	"testing"
)

func TestPlaylist_Add(t *testing.T) {
	tests := []struct {
		name    string
		initial []string
		toAdd   string
		wantErr error
		wantLen int
	}{
		{
			name:    "adds new song successfully",
			initial: []string{},
			toAdd:   "s1",
			wantErr: nil,
			wantLen: 1,
		},
		{
			name:    "fails when adding a song twice",
			initial: []string{"s1"},
			toAdd:   "s1",
			wantErr: ErrDuplicateSong,
			wantLen: 1,
		},
		{
			name:    "rejects empty song id",
			initial: []string{},
			toAdd:   "",
			wantErr: ErrInvalidArgument,
			wantLen: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPlaylist("pl-1", "Test Playlist")
			if err != nil {
				t.Fatalf("failed to create playlist: %v", err)
			}
			p.SongIDs = append(p.SongIDs, tc.initial...)

			err = p.Add(tc.toAdd)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
			} else if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}

			if got := len(p.SongIDs); got != tc.wantLen {
				t.Fatalf("expected %d songs, got %d", tc.wantLen, got)
			}
		})
	}
}

func TestPlaylist_Remove(t *testing.T) {
	p, err := NewPlaylist("pl-1", "Road Trip")
	if err != nil {
		t.Fatalf("failed to create playlist: %v", err)
	}
	p.SongIDs = []string{"a", "b", "c"}

	if err := p.Remove("b"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if p.Contains("b") || len(p.SongIDs) != 2 {
		t.Fatalf("expected b removed, got %v", p.SongIDs)
	}
	if err := p.Remove("b"); !errors.Is(err, ErrNotInPlaylist) {
		t.Fatalf("expected ErrNotInPlaylist, got %v", err)
	}
}

func TestNewPlaylist_Invalid(t *testing.T) {
	if _, err := NewPlaylist("pl-1", "   "); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for blank name, got %v", err)
	}
	if _, err := NewPlaylist("", "Name"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty id, got %v", err)
	}
}
